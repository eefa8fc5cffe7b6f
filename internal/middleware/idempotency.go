package middleware

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
)

// IdempotencyHeader carries the client-chosen key of a purchase.
const IdempotencyHeader = "Idempotency-Key"

const (
    idemProcessing = "PROCESSING"
    idemLockTTL    = 30 * time.Second
)

// Idempotency replays the stored response when a state-changing request
// is retried with the same Idempotency-Key by the same user.  While the
// first request is running, retries get 409.  Server errors are not
// remembered so the client may retry them.  Redis failures fail open.
func Idempotency(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
    if rdb == nil {
        return passThrough
    }
    if ttl <= 0 {
        ttl = 24 * time.Hour
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            switch c.Request().Method {
            case http.MethodPost, http.MethodPut, http.MethodPatch:
            default:
                return next(c)
            }
            key := c.Request().Header.Get(IdempotencyHeader)
            if key == "" {
                return next(c)
            }
            ctx := c.Request().Context()
            rkey := idempotencyKey(c, key)

            val, err := rdb.Get(ctx, rkey).Bytes()
            switch {
            case err == nil:
                if string(val) == idemProcessing {
                    return c.JSON(http.StatusConflict, echo.Map{"error": "request with this Idempotency-Key is still in progress"})
                }
                if status, hdr, body, ok := decodePayload(val); ok {
                    return replay(c, status, hdr, body, "X-Idempotency-Hit", "true")
                }
                return next(c)
            case !errors.Is(err, redis.Nil):
                c.Logger().Warnf("idempotency: get %s: %v", rkey, err)
                return next(c)
            }

            acquired, err := rdb.SetNX(ctx, rkey, idemProcessing, idemLockTTL).Result()
            if err != nil {
                c.Logger().Warnf("idempotency: lock %s: %v", rkey, err)
                return next(c)
            }
            if !acquired {
                return c.JSON(http.StatusConflict, echo.Map{"error": "concurrent request with the same Idempotency-Key"})
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
            c.Response().Writer = cw
            herr := next(c)

            bg := context.WithoutCancel(ctx)
            if herr != nil || cw.status >= http.StatusInternalServerError {
                _ = rdb.Del(bg, rkey).Err()
                return herr
            }
            payload, err := encodePayload(cw.status, c.Response().Header().Clone(), cw.buf.Bytes())
            if err != nil {
                _ = rdb.Del(bg, rkey).Err()
                return nil
            }
            if err := rdb.Set(bg, rkey, payload, ttl).Err(); err != nil {
                c.Logger().Warnf("idempotency: store %s: %v", rkey, err)
            }
            return nil
        }
    }
}

func idempotencyKey(c echo.Context, key string) string {
    return fmt.Sprintf("metro:idem:%s:%s:%s", userID(c), c.Path(), key)
}
