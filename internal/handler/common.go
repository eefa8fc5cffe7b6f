package handler // handler defines http handlers

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/metro-ticketing/internal/middleware"
    "github.com/iliyamo/metro-ticketing/internal/model"
)

// defaultTimeout applies when a handler is built without one.
const defaultTimeout = 5 * time.Second

// statusFor maps a service error onto an HTTP status code.
func statusFor(err error) int {
    switch {
    case errors.Is(err, model.ErrValidation):
        return http.StatusBadRequest
    case errors.Is(err, model.ErrUnauthenticated):
        return http.StatusUnauthorized
    case errors.Is(err, model.ErrUnauthorized):
        return http.StatusForbidden
    case errors.Is(err, model.ErrNotFound):
        return http.StatusNotFound
    case errors.Is(err, model.ErrConflict):
        return http.StatusConflict
    }
    return http.StatusInternalServerError
}

// writeError renders err as {"error": "..."}.  Unknown errors are logged
// and hidden behind a generic message.
func writeError(c echo.Context, err error) error {
    status := statusFor(err)
    if status == http.StatusInternalServerError {
        c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
        return c.JSON(status, echo.Map{"error": "internal error"})
    }
    return c.JSON(status, echo.Map{"error": err.Error()})
}

// requestCtx derives the per-request deadline.
func requestCtx(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
    if timeout <= 0 {
        timeout = defaultTimeout
    }
    return context.WithTimeout(c.Request().Context(), timeout)
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
    raw := strings.TrimSpace(c.Param(name))
    id, err := strconv.ParseUint(raw, 10, 64)
    if err != nil || id == 0 {
        return 0, fmt.Errorf("%w: invalid %s", model.ErrValidation, name)
    }
    return id, nil
}

// bind decodes the request body; decode failures are validation errors.
func bind(c echo.Context, dst any) error {
    if err := c.Bind(dst); err != nil {
        return fmt.Errorf("%w: invalid body", model.ErrValidation)
    }
    return nil
}

// caller returns the authenticated user set by the session middleware.
func caller(c echo.Context) (model.User, error) {
    u, ok := middleware.CurrentUser(c)
    if !ok {
        return model.User{}, fmt.Errorf("%w: login required", model.ErrUnauthenticated)
    }
    return u, nil
}

var tripDateLayouts = []string{
    time.RFC3339,
    "2006-01-02T15:04",
    "2006-01-02 15:04:05",
    "2006-01-02 15:04",
    "2006-01-02",
}

// parseTripDate accepts RFC 3339 and the shorter forms HTML date inputs send.
// Values without a zone are taken as UTC.
func parseTripDate(raw string) (time.Time, error) {
    raw = strings.TrimSpace(raw)
    if raw == "" {
        return time.Time{}, fmt.Errorf("%w: tripDate is required", model.ErrValidation)
    }
    for _, layout := range tripDateLayouts {
        if t, err := time.Parse(layout, raw); err == nil {
            return t.UTC(), nil
        }
    }
    return time.Time{}, fmt.Errorf("%w: invalid tripDate %q", model.ErrValidation, raw)
}

// message writes a {"message": ...} body.
func message(c echo.Context, status int, msg string) error {
    return c.JSON(status, echo.Map{"message": msg})
}
