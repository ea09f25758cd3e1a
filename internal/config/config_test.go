package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Minute, cfg.ProductCacheTTL)
	assert.Equal(t, 5, cfg.LowStockThreshold)
	assert.Equal(t, "storefront.exchange", cfg.RabbitMQ.Exchange)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MYSQL_USER", "shop")
	t.Setenv("MYSQL_PASSWORD", "secret")
	t.Setenv("MYSQL_HOST", "db")
	t.Setenv("MYSQL_DATABASE", "shop")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("LOW_STOCK_THRESHOLD", "3")
	t.Setenv("COMPANY_NAME", "Toko")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Equal(t, 3, cfg.LowStockThreshold)
	assert.Equal(t, "Toko", cfg.Company.Domain().Name)
	assert.Contains(t, cfg.MySQL.DSN(), "shop:secret@tcp(db:3306)/shop?")
	assert.Contains(t, cfg.MySQL.DSN(), "multiStatements=true")
	assert.Contains(t, cfg.MySQL.DSN(), "parseTime=True")
}

func TestRedisAddr_EmptyWhenUnset(t *testing.T) {
	assert.Equal(t, "", Redis{Port: "6379"}.Addr())
}

func TestLoad_NestedKeysIgnoreUnprefixedEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("USER", "alice")
	t.Setenv("HOST", "workstation")
	t.Setenv("URL", "amqp://elsewhere")
	t.Setenv("NAME", "shell")
	t.Setenv("LEVEL", "trace")
	t.Setenv("REDIS_HOST", "cache")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "root", cfg.MySQL.User)
	assert.Equal(t, "localhost", cfg.MySQL.Host)
	assert.Equal(t, "3306", cfg.MySQL.Port)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Equal(t, "", cfg.RabbitMQ.URL)
	assert.Equal(t, "Storefront", cfg.Company.Name)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Contains(t, cfg.MySQL.DSN(), "root:@tcp(localhost:3306)/storefront?")
}

func TestLoad_MultiWordNestedKeys(t *testing.T) {
	t.Setenv("MYSQL_MAX_OPEN_CONNS", "7")
	t.Setenv("MYSQL_CONN_MAX_LIFETIME", "90s")
	t.Setenv("MYSQL_AUTO_MIGRATE", "true")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.MySQL.MaxOpenConns)
	assert.Equal(t, 90*time.Second, cfg.MySQL.ConnMaxLifetime)
	assert.True(t, cfg.MySQL.AutoMigrate)
	assert.Equal(t, 2, cfg.Redis.DB)
}
