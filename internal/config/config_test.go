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

	assert.Equal(t, "School Ledger", cfg.AppName)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 10*time.Minute, cfg.ReportCacheTTL)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("REPORT_CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, 50, cfg.DBMaxOpenConns)
	assert.Equal(t, 30*time.Second, cfg.ReportCacheTTL)
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{
		DBUsername: "ledger",
		DBPassword: "secret",
		DBHost:     "db.local",
		DBPort:     "3306",
		DBDatabase: "school_ledger",
	}

	assert.Equal(t, "ledger:secret@tcp(db.local:3306)/school_ledger?parseTime=true&loc=Local", cfg.GetDSN())
}

func TestGetRedisAddr(t *testing.T) {
	cfg := &Config{RedisHost: "cache.local", RedisPort: "6380"}
	assert.Equal(t, "cache.local:6380", cfg.GetRedisAddr())
}
