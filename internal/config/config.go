package config // package config loads application configuration from environment variables

import (
    "log"
    "os"
    "strconv"
    "time"

    "github.com/joho/godotenv"
)

// Store drivers.
const (
    DriverMySQL  = "mysql"
    DriverMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    LogLevel       string // debug|info|warn|error for the echo logger

    StoreDriver   string // mysql or memory
    DBUser        string
    DBPass        string // may be empty
    DBHost        string
    DBPort        string
    DBName        string
    DBAutoMigrate bool // apply the embedded schema on start

    JWTSecret      string        // HS256 key for bearer tokens
    SessionTTL     time.Duration // lifetime of a login session
    BcryptCost     int
    RequestTimeout time.Duration // per-request deadline for handlers

    FareStrategy     string // legacy|bfs
    RouteDeleteMode  string // legacy|degree
    TicketPriceCheck bool   // direct purchases must cover the walked fare
}

// Load reads the optional .env file and then the environment.  Required
// variables are enforced by must() and missing values stop the program.
// The database variables are only required for the mysql driver.
func Load() Config {
    if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
        log.Printf("config: .env not loaded: %v", err)
    }

    cfg := Config{
        Env:              envStr("APP_ENV", "dev"),
        Port:             must("APP_PORT"),
        LogLevel:         envStr("LOG_LEVEL", "info"),
        StoreDriver:      envStr("STORE_DRIVER", DriverMySQL),
        DBPass:           os.Getenv("DB_PASS"),
        DBAutoMigrate:    envBool("DB_AUTO_MIGRATE", true),
        JWTSecret:        must("JWT_SECRET"),
        SessionTTL:       time.Duration(envInt("SESSION_TTL_HOURS", 24)) * time.Hour,
        BcryptCost:       mustInt("BCRYPT_COST"),
        RequestTimeout:   envDur("REQUEST_TIMEOUT", 5*time.Second),
        FareStrategy:     envStr("FARE_STRATEGY", "legacy"),
        RouteDeleteMode:  envStr("ROUTE_DELETE_MODE", "legacy"),
        TicketPriceCheck: envBool("TICKET_PRICE_CHECK", false),
    }
    switch cfg.StoreDriver {
    case DriverMySQL:
        cfg.DBUser = must("DB_USER")
        cfg.DBHost = must("DB_HOST")
        cfg.DBPort = must("DB_PORT")
        cfg.DBName = must("DB_NAME")
    case DriverMemory:
    default:
        log.Fatalf("invalid STORE_DRIVER: %q", cfg.StoreDriver)
    }
    if cfg.SessionTTL <= 0 {
        cfg.SessionTTL = 24 * time.Hour
    }
    return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
