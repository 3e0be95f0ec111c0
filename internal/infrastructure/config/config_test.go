package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults apply without a config file", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "marketplace-backend", cfg.App.Name)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 14, cfg.Fulfillment.ReturnWindowDays)
		assert.True(t, cfg.Sla.SweepEnabled)
		assert.Equal(t, 5*time.Minute, cfg.Sla.SweepInterval)
		assert.Equal(t, 200, cfg.Sla.SweepBatch)
		assert.Equal(t, "0.05", cfg.Commission.Rate)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		t.Setenv("MARKET_DATABASE_HOST", "db.internal")
		t.Setenv("MARKET_COMMISSION_RATE", "0.08")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, "0.08", cfg.Commission.Rate)
	})

	t.Run("sweep can be explicitly disabled", func(t *testing.T) {
		t.Setenv("MARKET_SLA_SWEEP_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)

		assert.False(t, cfg.Sla.SweepEnabled)
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "s3cret",
		DBName:   "marketplace",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "marketplace")
}

func TestRedisConfigAddr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", cfg.Addr())
}
