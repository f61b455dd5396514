package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New development 用 console writer, 其他環境輸出 json
func New(service, env, level string) zerolog.Logger {
	var w io.Writer = os.Stdout
	if env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(w, service, env, level)
}

func NewWithWriter(w io.Writer, service, env, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	SetLevel(level)
	return zerolog.New(w).With().
		Timestamp().
		Str("service", service).
		Str("env", env).
		Logger()
}

// SetLevel 無法解析時維持 info
func SetLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	return lvl
}
