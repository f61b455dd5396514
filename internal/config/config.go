package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	AppEnv                string        `mapstructure:"APP_ENV"`
	LogLevel              string        `mapstructure:"LOG_LEVEL"`
	ServerPort            string        `mapstructure:"SERVER_PORT"`
	StoreDriver           string        `mapstructure:"STORE_DRIVER"`
	DbAutoMigrate         bool          `mapstructure:"DB_AUTO_MIGRATE"`
	DbName                string        `mapstructure:"POSTGRES_DB"`
	DbHost                string        `mapstructure:"POSTGRES_HOST"`
	DbPort                string        `mapstructure:"POSTGRES_PORT"`
	DbUser                string        `mapstructure:"POSTGRES_USER"`
	DbPas                 string        `mapstructure:"POSTGRES_PASSWORD"`
	DbMaxOpenConns        int           `mapstructure:"POSTGRES_MAX_OPEN_CONNS"`
	RedisAddr             string        `mapstructure:"REDIS_ADDR"`
	RedisPassword         string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB               int           `mapstructure:"REDIS_DB"`
	SessionTTL            time.Duration `mapstructure:"SESSION_TTL"`
	IdempotencyTTL        time.Duration `mapstructure:"IDEMPOTENCY_TTL"`
	KafkaBrokers          []string      `mapstructure:"KAFKA_BROKERS"`
	AuditTopic            string        `mapstructure:"AUDIT_TOPIC"`
	TaxRate               string        `mapstructure:"TAX_RATE"`
	ShippingFee           string        `mapstructure:"SHIPPING_FEE"`
	CheckoutTxTimeout     time.Duration `mapstructure:"CHECKOUT_TX_TIMEOUT"`
	CheckoutLockTTL       time.Duration `mapstructure:"CHECKOUT_LOCK_TTL"`
	CheckoutMaxConcurrent int           `mapstructure:"CHECKOUT_MAX_CONCURRENT"`
	RateLimitCapacity     int           `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitPerSecond    float64       `mapstructure:"RATE_LIMIT_PER_SECOND"`
	AdminToken            string        `mapstructure:"ADMIN_TOKEN"`
}

var defaults = map[string]any{
	"APP_ENV":                 "development",
	"LOG_LEVEL":               "info",
	"SERVER_PORT":             "8080",
	"STORE_DRIVER":            StoreDriverPostgres,
	"DB_AUTO_MIGRATE":         true,
	"POSTGRES_DB":             "storefront",
	"POSTGRES_HOST":           "localhost",
	"POSTGRES_PORT":           "5432",
	"POSTGRES_USER":           "postgres",
	"POSTGRES_PASSWORD":       "",
	"POSTGRES_MAX_OPEN_CONNS": 20,
	"REDIS_ADDR":              "localhost:6379",
	"REDIS_PASSWORD":          "",
	"REDIS_DB":                0,
	"SESSION_TTL":             "24h",
	"IDEMPOTENCY_TTL":         "10m",
	"KAFKA_BROKERS":           "",
	"AUDIT_TOPIC":             "storefront.audit",
	"TAX_RATE":                "0.18",
	"SHIPPING_FEE":            "500",
	"CHECKOUT_TX_TIMEOUT":     "5s",
	"CHECKOUT_LOCK_TTL":       "30s",
	"CHECKOUT_MAX_CONCURRENT": 8,
	"RATE_LIMIT_CAPACITY":     20,
	"RATE_LIMIT_PER_SECOND":   10.0,
	"ADMIN_TOKEN":             "",
}

/*
Loader 包一個 viper instance
設定來源優先順序: 環境變數 > CONFIG_FILE > default
*/
type Loader struct {
	v   *viper.Viper
	mu  sync.RWMutex
	cfg *Config
}

func NewLoader() *Loader {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()
	return &Loader{v: v}
}

// Load 單純回傳錯誤, 由外部決定要不要 Fatal
func (l *Loader) Load() (*Config, error) {
	if file := os.Getenv("CONFIG_FILE"); file != "" {
		l.v.SetConfigFile(file)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cf, err := l.unmarshal()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.cfg = cf
	l.mu.Unlock()
	return cf, nil
}

func (l *Loader) Current() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

/*
Watch 只在有 CONFIG_FILE 時生效
重新載入失敗會保留舊設定
*/
func (l *Loader) Watch(onChange func(*Config)) bool {
	if l.v.ConfigFileUsed() == "" {
		return false
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cf, err := l.unmarshal()
		if err != nil {
			return
		}
		l.mu.Lock()
		l.cfg = cf
		l.mu.Unlock()
		onChange(cf)
	})
	l.v.WatchConfig()
	return true
}

func (l *Loader) unmarshal() (*Config, error) {
	cf := &Config{}
	if err := l.v.Unmarshal(cf); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cf.KafkaBrokers = compact(cf.KafkaBrokers)
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return cf, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q", StoreDriverPostgres, StoreDriverMemory))
	}
	if tax, err := decimal.NewFromString(c.TaxRate); err != nil || tax.IsNegative() {
		errs = append(errs, fmt.Errorf("TAX_RATE %q must be a non-negative decimal", c.TaxRate))
	}
	if fee, err := decimal.NewFromString(c.ShippingFee); err != nil || fee.IsNegative() {
		errs = append(errs, fmt.Errorf("SHIPPING_FEE %q must be a non-negative decimal", c.ShippingFee))
	}
	if c.CheckoutTxTimeout <= 0 {
		errs = append(errs, errors.New("CHECKOUT_TX_TIMEOUT must be positive"))
	}
	if c.CheckoutLockTTL < c.CheckoutTxTimeout {
		errs = append(errs, errors.New("CHECKOUT_LOCK_TTL must not be shorter than CHECKOUT_TX_TIMEOUT"))
	}
	if c.RateLimitCapacity <= 0 || c.RateLimitPerSecond <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_CAPACITY and RATE_LIMIT_PER_SECOND must be positive"))
	}
	return errors.Join(errs...)
}

// Pricing 在 Validate 之後呼叫, 不會失敗
func (c *Config) Pricing() (taxRate, shippingFee decimal.Decimal) {
	return decimal.RequireFromString(c.TaxRate), decimal.RequireFromString(c.ShippingFee)
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
