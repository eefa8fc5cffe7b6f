package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Health is a liveness probe for load balancers.  It always answers "ok".
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// PingFunc adapts a function, e.g. a redis ping, to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Ready reports 503 while any dependency fails to answer a ping.  Nil
// pingers are skipped, so the in-memory store is always ready.
func Ready(deps map[string]Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()

        status := echo.Map{}
        code := http.StatusOK
        for name, p := range deps {
            if p == nil {
                continue
            }
            if err := p.PingContext(ctx); err != nil {
                c.Logger().Warnf("ready: %s: %v", name, err)
                status[name] = "down"
                code = http.StatusServiceUnavailable
                continue
            }
            status[name] = "up"
        }
        return c.JSON(code, status)
    }
}
