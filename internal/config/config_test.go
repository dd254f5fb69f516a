package config

import (
    "testing"
    "time"

    "github.com/spf13/viper"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
    t.Setenv("JWT_SECRET", "s3cret")

    cfg, err := load(viper.New())
    require.NoError(t, err)
    assert.Equal(t, "8080", cfg.Port)
    assert.Equal(t, "mysql", cfg.DBDriver)
    assert.Equal(t, 15, cfg.AccessTTLMin)
    assert.Equal(t, "none", cfg.EventsDriver)
    assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
    assert.Equal(t, 60, cfg.RateLimit.Capacity)
    assert.Equal(t, time.Second, cfg.RateLimit.RefillInterval)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
    t.Setenv("JWT_SECRET", "")

    _, err := load(viper.New())
    assert.ErrorIs(t, err, ErrMissing)
}

func TestLoadOverrides(t *testing.T) {
    t.Setenv("JWT_SECRET", "s3cret")
    t.Setenv("APP_PORT", "9000")
    t.Setenv("DB_DRIVER", "SQLITE")
    t.Setenv("REDIS_HOST", "cache")
    t.Setenv("REDIS_PORT", "6380")
    t.Setenv("RATE_LIMIT_BURST", "5")
    t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")

    cfg, err := load(viper.New())
    require.NoError(t, err)
    assert.Equal(t, "9000", cfg.Port)
    assert.Equal(t, "sqlite", cfg.DBDriver)
    assert.Equal(t, "cache:6380", cfg.Redis.Addr)
    assert.Equal(t, 5, cfg.RateLimit.Capacity)
    assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
    assert.Equal(t, 10*time.Minute, cfg.RateLimit.TTL)
}
