package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/require"
)

func TestLoadMemoryDriverSkipsDatabaseVars(t *testing.T) {
    t.Setenv("APP_PORT", "8080")
    t.Setenv("JWT_SECRET", "s3cret")
    t.Setenv("BCRYPT_COST", "10")
    t.Setenv("STORE_DRIVER", "memory")
    t.Setenv("SESSION_TTL_HOURS", "2")
    t.Setenv("FARE_STRATEGY", "bfs")
    t.Setenv("TICKET_PRICE_CHECK", "yes")

    cfg := Load()
    require.Equal(t, DriverMemory, cfg.StoreDriver)
    require.Equal(t, 2*time.Hour, cfg.SessionTTL)
    require.Equal(t, "bfs", cfg.FareStrategy)
    require.Equal(t, "legacy", cfg.RouteDeleteMode)
    require.True(t, cfg.TicketPriceCheck)
    require.Equal(t, 5*time.Second, cfg.RequestTimeout)
    require.Empty(t, cfg.DBHost)
}

func TestRateLimitDefaultsAndOverrides(t *testing.T) {
    t.Setenv("LOGIN_RATE_LIMIT_BURST", "3")
    t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    api := LoadRateLimitConfig()
    require.Equal(t, 60, api.Capacity)
    require.Equal(t, 2*time.Second, api.RefillInterval)
    require.Equal(t, 10*time.Second, api.TTL)

    login := LoadLoginRateLimitConfig()
    require.Equal(t, 3, login.Capacity)
    require.Equal(t, "metro:rl:login", login.Prefix)
}

func TestCacheAndQueueDefaults(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")
    c := LoadCacheConfig()
    require.True(t, c.Methods["GET"])
    require.True(t, c.Methods["HEAD"])
    require.Equal(t, time.Minute, c.TTL)

    q := LoadQueueConfig()
    require.False(t, q.Enabled)
    require.Equal(t, "metro.events", q.Queue)
}

func TestRedisHostPortWins(t *testing.T) {
    t.Setenv("REDIS_ADDR", "cache:6379")
    t.Setenv("REDIS_HOST", "redis")
    t.Setenv("REDIS_PORT", "6380")
    require.Equal(t, "redis:6380", LoadRedisConfig().Addr)
}
