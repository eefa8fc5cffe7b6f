package middleware // middleware provides shared request processing for handlers

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/metro-ticketing/internal/model"
    "github.com/iliyamo/metro-ticketing/internal/utils"
)

// SessionCookie is the cookie set at login.
const SessionCookie = "session_token"

// Context keys populated by Session.
const (
    ctxUser         = "user"
    ctxUserID       = "user_id"
    ctxRole         = "role"
    ctxSessionToken = "session_token"
)

// IdentityResolver maps a session token to its user.
type IdentityResolver interface {
    Resolve(ctx context.Context, token string) (*model.User, error)
}

// Session authenticates the request.  The session token is taken from the
// session_token cookie or, failing that, from the "sid" claim of a Bearer
// JWT signed with secret.  Handlers read the caller through CurrentUser.
func Session(resolver IdentityResolver, secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            token, err := sessionToken(c, secret)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
            }
            u, err := resolver.Resolve(c.Request().Context(), token)
            if err != nil {
                if errors.Is(err, model.ErrUnauthenticated) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired session"})
                }
                c.Logger().Errorf("session: resolve: %v", err)
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
            }
            c.Set(ctxUser, u)
            c.Set(ctxUserID, strconv.FormatUint(u.ID, 10))
            c.Set(ctxRole, u.RoleName)
            c.Set(ctxSessionToken, token)
            return next(c)
        }
    }
}

func sessionToken(c echo.Context, secret string) (string, error) {
    if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
        return ck.Value, nil
    }
    auth := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(auth, "Bearer ") {
        return "", errors.New("missing session")
    }
    sid, err := utils.ParseSessionJWT(secret, strings.TrimPrefix(auth, "Bearer "))
    if err != nil {
        return "", errors.New("invalid token")
    }
    return sid, nil
}
