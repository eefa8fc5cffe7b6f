package config

// Redis backs the rate limiters, the listing cache and the idempotency
// keys of the purchase endpoints.  When it cannot be reached at start-up
// the server runs without those features.

import (
    "context"
    "crypto/tls"
    "os"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig is read from REDIS_* variables.
type RedisConfig struct {
    Addr        string
    Password    string
    DB          int
    TLS         bool
    IdemTTL     time.Duration // how long an Idempotency-Key is remembered
    IdemEnabled bool
}

// LoadRedisConfig builds a RedisConfig.  REDIS_HOST and REDIS_PORT take
// precedence over REDIS_ADDR.
func LoadRedisConfig() RedisConfig {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    tlsEnv := os.Getenv("REDIS_TLS")
    return RedisConfig{
        Addr:        addr,
        Password:    os.Getenv("REDIS_PASSWORD"),
        DB:          envInt("REDIS_DB", 0),
        TLS:         strings.EqualFold(tlsEnv, "true") || tlsEnv == "1",
        IdemTTL:     envDur("IDEMPOTENCY_TTL", 24*time.Hour),
        IdemEnabled: envBool("IDEMPOTENCY_ENABLED", true),
    }
}

// NewRedisClient connects and pings with a short timeout.  It returns nil
// on failure so callers can degrade gracefully.
func NewRedisClient(cfg RedisConfig) *redis.Client {
    var tlsConf *tls.Config
    if cfg.TLS {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      cfg.Addr,
        Password:  cfg.Password,
        DB:        cfg.DB,
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
