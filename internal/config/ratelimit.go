package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig configures one token bucket limiter.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig reads the RATE_LIMIT_* variables for the API as a whole.
func LoadRateLimitConfig() RateLimitConfig {
    return loadRateLimit("RATE_LIMIT_", RateLimitConfig{
        Enabled:        true,
        Capacity:       60,
        RefillTokens:   1,
        RefillInterval: time.Second,
        TTL:            10 * time.Minute,
        KeyStrategy:    "ip_user_route",
        Prefix:         "metro:rl",
    })
}

// LoadLoginRateLimitConfig reads LOGIN_RATE_LIMIT_* for the stricter bucket
// in front of login and registration.
func LoadLoginRateLimitConfig() RateLimitConfig {
    return loadRateLimit("LOGIN_RATE_LIMIT_", RateLimitConfig{
        Enabled:        true,
        Capacity:       5,
        RefillTokens:   1,
        RefillInterval: 12 * time.Second,
        TTL:            10 * time.Minute,
        KeyStrategy:    "ip_route",
        Prefix:         "metro:rl:login",
    })
}

func loadRateLimit(env string, def RateLimitConfig) RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool(env+"ENABLED", def.Enabled),
        Capacity:       envInt(env+"CAPACITY", def.Capacity),
        RefillTokens:   envInt(env+"REFILL_TOKENS", def.RefillTokens),
        RefillInterval: envDur(env+"REFILL_INTERVAL", def.RefillInterval),
        TTL:            envDur(env+"TTL", def.TTL),
        KeyStrategy:    envStr(env+"KEY_STRATEGY", def.KeyStrategy),
        Prefix:         envStr(env+"PREFIX", def.Prefix),
        Debug:          envBool(env+"DEBUG", false),
    }
    if b := envInt(env+"BURST", -1); b > 0 { cfg.Capacity = b }
    if every := envDur(env+"REFILL_EVERY", 0); every > 0 {
        cfg.RefillTokens = 1
        cfg.RefillInterval = every
    }
    if cfg.Capacity < 1 { cfg.Capacity = 1 }
    if cfg.RefillTokens < 1 { cfg.RefillTokens = 1 }
    if cfg.RefillInterval <= 0 { cfg.RefillInterval = time.Second }
    minTTL := 5 * cfg.RefillInterval
    if cfg.TTL < minTTL { cfg.TTL = minTTL }
    return cfg
}

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch v {
    case "1","true","TRUE","True","yes","YES","on","ON": return true
    case "0","false","FALSE","False","no","NO","off","OFF": return false
    }
    return d
}
func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}
func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}
