package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api/router"
	"github.com/RoyceAzure/lab/storefront/internal/appcontext"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	loader := config.NewLoader()
	cf, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(constants.ServiceName, cf.AppEnv, cf.LogLevel)

	// 設定檔變更只套用 log level, 其他設定需重啟
	if loader.Watch(func(next *config.Config) {
		lvl := logger.SetLevel(next.LogLevel)
		log.Info().Str("level", lvl.String()).Msg("config reloaded")
	}) {
		log.Info().Msg("watching config file")
	}

	app, err := appcontext.NewApplicationContext(context.Background(), cf, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init application")
	}

	r := router.SetupRouter(app.Server, app.RouterOptions(), &log)

	// 設定服務器參數
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cf.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutDownCompleted := make(chan struct{}, 1)
	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal")
		shutdown(srv, app, &log)
		shutDownCompleted <- struct{}{}
	}()

	// 啟動服務
	log.Info().Msgf("Server starting on %s", srv.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped unexpectedly")
	}
	<-shutDownCompleted
	log.Info().Msg("closed completed")
}

func shutdown(srv *http.Server, app *appcontext.ApplicationContext, log *zerolog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 先停止接新請求, 進行中的結帳跑完才關閉 store
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	if err := app.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Application shutdown error")
	}
}
