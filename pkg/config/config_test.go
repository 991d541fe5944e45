package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("STORAGE_KEY_PREFIX", "")
	t.Setenv("METRICS_ENABLED", "")

	cfg := LoadConfig()
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, "mydrugs_", cfg.StorageKeyPrefix)
	assert.Equal(t, 2*time.Second, cfg.StorageTimeout)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORAGE_BACKEND", StorageRedis)
	t.Setenv("REDIS_TTL", "24h")
	t.Setenv("STORAGE_TIMEOUT", "not-a-duration")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := LoadConfig()
	assert.Equal(t, 9090, cfg.GetAppPortInt())
	assert.Equal(t, StorageRedis, cfg.StorageBackend)
	assert.Equal(t, 24*time.Hour, cfg.RedisTTL)
	assert.Equal(t, 2*time.Second, cfg.StorageTimeout)
	assert.False(t, cfg.MetricsEnabled)
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "3306", DBName: "shop"}
	assert.Equal(t, "u:p@tcp(h:3306)/shop?parseTime=true&charset=utf8mb4", cfg.GetDSN())
}

func TestGetAppPortIntFallback(t *testing.T) {
	assert.Equal(t, 8080, (&Config{AppPort: "nope"}).GetAppPortInt())
}
