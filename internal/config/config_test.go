package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cf, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cf.ServerPort)
	assert.Equal(t, StoreDriverPostgres, cf.StoreDriver)
	assert.Equal(t, 5*time.Second, cf.CheckoutTxTimeout)
	assert.Equal(t, 30*time.Second, cf.CheckoutLockTTL)
	assert.Empty(t, cf.KafkaBrokers)

	tax, fee := cf.Pricing()
	assert.Equal(t, "0.18", tax.String())
	assert.Equal(t, "500", fee.String())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("TAX_RATE", "0.05")
	t.Setenv("CHECKOUT_TX_TIMEOUT", "2s")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cf, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cf.StoreDriver)
	assert.Equal(t, 2*time.Second, cf.CheckoutTxTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cf.KafkaBrokers)
	tax, _ := cf.Pricing()
	assert.Equal(t, "0.05", tax.String())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.env")
	require.NoError(t, os.WriteFile(path, []byte("SERVER_PORT=9090\nSHIPPING_FEE=0\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	l := NewLoader()
	cf, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cf.ServerPort)
	_, fee := cf.Pricing()
	assert.True(t, fee.IsZero())
	assert.Same(t, cf, l.Current())
}

func TestValidate(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TAX_RATE", "-1")
	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TAX_RATE")

	t.Setenv("TAX_RATE", "0.18")
	t.Setenv("STORE_DRIVER", "mysql")
	_, err = NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CHECKOUT_LOCK_TTL", "1s")
	_, err = NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHECKOUT_LOCK_TTL")
}

func TestWatchWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	l := NewLoader()
	_, err := l.Load()
	require.NoError(t, err)
	assert.False(t, l.Watch(func(*Config) {}))
}
