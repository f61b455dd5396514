package appcontext

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	"github.com/RoyceAzure/lab/storefront/internal/api/router"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/memory"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	_ service.Store     = (*db.PostgresStore)(nil)
	_ service.Store     = (*memory.Store)(nil)
	_ service.CartStore = (*redis_repo.CartRepo)(nil)
)

type auditSink interface {
	service.AuditRecorder
	Close() error
}

type ApplicationContext struct {
	Cf               *config.Config
	Logger           *zerolog.Logger
	DbDao            *db.DbDao
	Store            service.Store
	RedisClient      *redis.Client
	Audit            auditSink
	Pricing          *service.PricingCalculator
	CheckoutLimiter  *ratelimit.TokenBucket
	CartService      *service.CartService
	CheckoutService  *service.CheckoutService
	OrderService     *service.OrderService
	InventoryService *service.InventoryService
	Server           *router.Server
}

func NewApplicationContext(ctx context.Context, cf *config.Config, logger *zerolog.Logger) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf:     cf,
		Logger: logger,
	}
	logger.Info().
		Str("store_driver", cf.StoreDriver).
		Str("redis_addr", cf.RedisAddr).
		Strs("kafka_brokers", cf.KafkaBrokers).
		Dur("checkout_tx_timeout", cf.CheckoutTxTimeout).
		Msg("application config")

	if err := app.Init(ctx); err != nil {
		// 已經建立的連線要收掉
		app.closeResources()
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"store", app.setUpStore},
		{"redis", app.setUpRedis},
		{"audit", app.setUpAudit},
		{"pricing", app.setUpPricing},
		{"services", app.setUpServices},
		{"rate limiter", app.setUpLimiter},
		{"http handlers", app.setUpServer},
	}
	for _, step := range steps {
		app.Logger.Info().Msgf("Start setup %s", step.name)
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("setup %s: %w", step.name, err)
		}
		app.Logger.Info().Msgf("Finish setup %s", step.name)
	}
	return nil
}

func (app *ApplicationContext) setUpStore(ctx context.Context) error {
	if app.Cf.StoreDriver == config.StoreDriverMemory {
		app.Logger.Warn().Msg("using in-memory store, data is lost on restart")
		app.Store = memory.NewStore()
		return nil
	}

	conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas, db.PoolConfig{
		MaxOpenConns:    app.Cf.DbMaxOpenConns,
		MaxIdleConns:    app.Cf.DbMaxOpenConns / 2,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return err
	}
	app.DbDao = db.NewDbDao(conn)
	if app.Cf.DbAutoMigrate {
		if err := app.DbDao.InitMigrate(); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}
	app.Store = db.NewPostgresStore(app.DbDao)
	return nil
}

func (app *ApplicationContext) setUpRedis(ctx context.Context) error {
	client, err := redis_repo.NewRedisClient(ctx, app.Cf.RedisAddr,
		redis_repo.WithPassword(app.Cf.RedisPassword),
		redis_repo.WithDB(app.Cf.RedisDB),
	)
	if err != nil {
		return err
	}
	app.RedisClient = client
	return nil
}

// 沒設定 broker 時稽核事件只寫 log
func (app *ApplicationContext) setUpAudit(ctx context.Context) error {
	if len(app.Cf.KafkaBrokers) == 0 {
		app.Audit = producer.NewLogRecorder(app.Logger)
		return nil
	}
	app.Audit = producer.NewAuditProducer(producer.AuditConfig{
		Brokers:       app.Cf.KafkaBrokers,
		Topic:         app.Cf.AuditTopic,
		WriteTimeout:  5 * time.Second,
		RetryAttempts: 3,
	}, app.Logger)
	return nil
}

func (app *ApplicationContext) setUpPricing(ctx context.Context) error {
	taxRate, shippingFee := app.Cf.Pricing()
	app.Pricing = service.NewPricingCalculator(taxRate, shippingFee)
	return nil
}

func (app *ApplicationContext) setUpServices(ctx context.Context) error {
	carts := redis_repo.NewCartRepo(app.RedisClient, app.Cf.SessionTTL)
	app.CartService = service.NewCartService(
		app.Store,
		carts,
		redis_repo.NewIdempotencyRepo(app.RedisClient, app.Cf.IdempotencyTTL),
		app.Pricing,
		app.Logger,
	)
	app.CheckoutService = service.NewCheckoutService(
		app.Store,
		app.Store,
		carts,
		redis_repo.NewCheckoutGuardRepo(app.RedisClient, app.Cf.CheckoutLockTTL),
		app.Pricing,
		app.Audit,
		service.CheckoutConfig{
			TxTimeout:            app.Cf.CheckoutTxTimeout,
			MaxConcurrentLookups: app.Cf.CheckoutMaxConcurrent,
		},
		app.Logger,
	)
	app.OrderService = service.NewOrderService(app.Store)
	app.InventoryService = service.NewInventoryService(app.Store, app.Store, app.Audit, app.Logger)
	return nil
}

func (app *ApplicationContext) setUpLimiter(ctx context.Context) error {
	app.CheckoutLimiter = ratelimit.NewTokenBucket(&ratelimit.LimiterConfig{
		Capacity:   app.Cf.RateLimitCapacity,
		Rate:       app.Cf.RateLimitPerSecond,
		RefillRate: 100 * time.Millisecond,
	})
	return nil
}

func (app *ApplicationContext) setUpServer(ctx context.Context) error {
	app.Server = &router.Server{
		CartHandler:     handler.NewCartHandler(app.CartService),
		CheckoutHandler: handler.NewCheckoutHandler(app.CheckoutService),
		OrderHandler:    handler.NewOrderHandler(app.OrderService),
		SessionHandler:  handler.NewSessionHandler(app.CartService),
		AdminHandler:    handler.NewAdminHandler(app.InventoryService),
	}
	return nil
}

func (app *ApplicationContext) RouterOptions() router.Options {
	return router.Options{
		SessionTTL:      app.Cf.SessionTTL,
		SecureCookie:    !app.Cf.IsDevelopment(),
		AdminToken:      app.Cf.AdminToken,
		CheckoutLimiter: app.CheckoutLimiter,
		RequestTimeout:  app.Cf.CheckoutTxTimeout * 2,
	}
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	app.Logger.Info().Msg("Start application shutdown")

	done := make(chan error, 1)
	go func() {
		done <- app.closeResources()
	}()

	select {
	case err := <-done:
		app.Logger.Info().Msg("Application shutdown complete")
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}

// closeResources 有錯誤不結束流程, 全部關完再一起回傳
func (app *ApplicationContext) closeResources() error {
	var errs []error
	if app.CheckoutLimiter != nil {
		app.CheckoutLimiter.Stop()
	}
	if app.Audit != nil {
		// 先關 producer, 等待中的稽核事件要送完
		if err := app.Audit.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close audit: %w", err))
		}
	}
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if app.DbDao != nil {
		if err := app.DbDao.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	return errors.Join(errs...)
}
