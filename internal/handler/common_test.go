package handler

import (
    "errors"
    "fmt"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/metro-ticketing/internal/model"
)

func TestStatusFor(t *testing.T) {
    cases := map[error]int{
        fmt.Errorf("%w: bad", model.ErrValidation):        http.StatusBadRequest,
        fmt.Errorf("%w: who", model.ErrUnauthenticated):   http.StatusUnauthorized,
        fmt.Errorf("%w: no", model.ErrUnauthorized):       http.StatusForbidden,
        fmt.Errorf("ticket: %w", model.ErrNotFound):       http.StatusNotFound,
        fmt.Errorf("%w: dup", model.ErrConflict):          http.StatusConflict,
        errors.New("connection reset"):                    http.StatusInternalServerError,
    }
    for err, want := range cases {
        require.Equal(t, want, statusFor(err), err.Error())
    }
}

func TestWriteErrorHidesInternalErrors(t *testing.T) {
    e := echo.New()
    rec := httptest.NewRecorder()
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

    require.NoError(t, writeError(c, errors.New("dial tcp 10.0.0.1:3306: refused")))
    require.Equal(t, http.StatusInternalServerError, rec.Code)
    require.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())

    rec = httptest.NewRecorder()
    c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
    require.NoError(t, writeError(c, fmt.Errorf("%w: station \"A\" already exists", model.ErrConflict)))
    require.Equal(t, http.StatusConflict, rec.Code)
    require.Contains(t, rec.Body.String(), "already exists")
}

func TestParseID(t *testing.T) {
    e := echo.New()
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
    c.SetParamNames("id")

    c.SetParamValues("42")
    id, err := parseID(c, "id")
    require.NoError(t, err)
    require.Equal(t, uint64(42), id)

    for _, bad := range []string{"", "0", "-1", "abc"} {
        c.SetParamValues(bad)
        _, err := parseID(c, "id")
        require.ErrorIs(t, err, model.ErrValidation, bad)
    }
}

func TestParseTripDate(t *testing.T) {
    want := time.Date(2025, 2, 1, 8, 30, 0, 0, time.UTC)
    for _, raw := range []string{"2025-02-01T08:30:00Z", "2025-02-01T10:30:00+02:00", "2025-02-01T08:30", "2025-02-01 08:30:00"} {
        got, err := parseTripDate(raw)
        require.NoError(t, err, raw)
        require.True(t, want.Equal(got), raw)
    }
    day, err := parseTripDate("2025-02-01")
    require.NoError(t, err)
    require.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), day)

    _, err = parseTripDate("")
    require.ErrorIs(t, err, model.ErrValidation)
    _, err = parseTripDate("tomorrow")
    require.ErrorIs(t, err, model.ErrValidation)
}

func TestSplitPair(t *testing.T) {
    o, d, err := splitPair("3&7")
    require.NoError(t, err)
    require.Equal(t, uint64(3), o)
    require.Equal(t, uint64(7), d)

    for _, bad := range []string{"3", "3&", "&7", "a&b", "0&1"} {
        _, _, err := splitPair(bad)
        require.ErrorIs(t, err, model.ErrValidation, bad)
    }
}
