package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/metro-ticketing/internal/auth"
)

// RequireAction rejects callers whose role may not perform action.  It
// must run after Session.
func RequireAction(action auth.Action) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            u, ok := CurrentUser(c)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
            }
            if !auth.Can(u.RoleID, action) {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "unauthorized"})
            }
            return next(c)
        }
    }
}
