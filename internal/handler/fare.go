package handler

import (
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/metro-ticketing/internal/model"
    "github.com/iliyamo/metro-ticketing/internal/service"
)

// FareHandler answers price checks.
type FareHandler struct {
    Fares   *service.FareService
    Timeout time.Duration
}

func NewFareHandler(fares *service.FareService, timeout time.Duration) *FareHandler {
    return &FareHandler{Fares: fares, Timeout: timeout}
}

// Price handles GET /api/v1/tickets/price/:originId/:destinationId.
func (h *FareHandler) Price(c echo.Context) error {
    origin, err := parseID(c, "originId")
    if err != nil {
        return writeError(c, err)
    }
    destination, err := parseID(c, "destinationId")
    if err != nil {
        return writeError(c, err)
    }
    return h.price(c, origin, destination)
}

// PricePair handles the older GET /api/v1/tickets/price/:pair form where
// pair is "originId&destinationId".
func (h *FareHandler) PricePair(c echo.Context) error {
    origin, destination, err := splitPair(c.Param("pair"))
    if err != nil {
        return writeError(c, err)
    }
    return h.price(c, origin, destination)
}

func (h *FareHandler) price(c echo.Context, origin, destination uint64) error {
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    fare, err := h.Fares.Price(ctx, origin, destination)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, fare)
}

func splitPair(raw string) (uint64, uint64, error) {
    a, b, ok := strings.Cut(raw, "&")
    if !ok {
        return 0, 0, fmt.Errorf("%w: expected originId&destinationId", model.ErrValidation)
    }
    origin, err1 := strconv.ParseUint(strings.TrimSpace(a), 10, 64)
    destination, err2 := strconv.ParseUint(strings.TrimSpace(b), 10, 64)
    if err1 != nil || err2 != nil || origin == 0 || destination == 0 {
        return 0, 0, fmt.Errorf("%w: invalid station ids", model.ErrValidation)
    }
    return origin, destination, nil
}
