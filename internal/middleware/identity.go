package middleware

// identity.go holds the accessors handlers and other middleware use to
// read what Session stored on the echo context.

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/metro-ticketing/internal/model"
)

// CurrentUser returns the authenticated caller.
func CurrentUser(c echo.Context) (model.User, bool) {
    u, ok := c.Get(ctxUser).(*model.User)
    if !ok || u == nil {
        return model.User{}, false
    }
    return *u, true
}

// SessionToken returns the raw session token of the request, if any.
func SessionToken(c echo.Context) string {
    s, _ := c.Get(ctxSessionToken).(string)
    return s
}

// userID is used in rate limit and idempotency keys; "guest" when no
// session is attached.
func userID(c echo.Context) string {
    if v, ok := c.Get(ctxUserID).(string); ok && v != "" {
        return v
    }
    return "guest"
}
