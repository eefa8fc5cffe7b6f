package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/metro-ticketing/internal/service"
)

// TicketHandler covers purchases, subscription draws, rides and the
// caller's own listings.
type TicketHandler struct {
    Tickets *service.TicketService
    Timeout time.Duration
}

func NewTicketHandler(tickets *service.TicketService, timeout time.Duration) *TicketHandler {
    if tickets == nil {
        panic("nil ticket service passed to NewTicketHandler")
    }
    return &TicketHandler{Tickets: tickets, Timeout: timeout}
}

// ----- DTOs -----

type payTicketReq struct {
    CreditCardNumber string  `json:"creditCardNumber"`
    HolderName       string  `json:"holderName"`
    PayedAmount      float64 `json:"payedAmount"`
    Origin           string  `json:"origin"`
    Destination      string  `json:"destination"`
    TripDate         string  `json:"tripDate"`
}
type paySubscriptionReq struct {
    CreditCardNumber string  `json:"creditCardNumber"`
    HolderName       string  `json:"holderName"`
    PayedAmount      float64 `json:"payedAmount"`
    SubType          string  `json:"subType"`
    ZoneID           uint64  `json:"zoneId"`
}
type drawTicketReq struct {
    SubID       uint64 `json:"subId"`
    Origin      string `json:"origin"`
    Destination string `json:"destination"`
    TripDate    string `json:"tripDate"`
}
type tripReq struct {
    Origin      string `json:"origin"`
    Destination string `json:"destination"`
    TripDate    string `json:"tripDate"`
}

// PayTicket: POST /api/v1/payment/ticket
func (h *TicketHandler) PayTicket(c echo.Context) error {
    u, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    var req payTicketReq
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    tripDate, err := parseTripDate(req.TripDate)
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    out, err := h.Tickets.PurchaseTicket(ctx, u, service.PurchaseTicketInput{
        CreditCardNumber: req.CreditCardNumber,
        HolderName:       req.HolderName,
        PayedAmount:      req.PayedAmount,
        Origin:           req.Origin,
        Destination:      req.Destination,
        TripDate:         tripDate,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, out)
}

// PaySubscription: POST /api/v1/payment/subscription
func (h *TicketHandler) PaySubscription(c echo.Context) error {
    u, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    var req paySubscriptionReq
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    out, err := h.Tickets.PurchaseSubscription(ctx, u, service.PurchaseSubscriptionInput{
        CreditCardNumber: req.CreditCardNumber,
        HolderName:       req.HolderName,
        PayedAmount:      req.PayedAmount,
        SubType:          req.SubType,
        ZoneID:           req.ZoneID,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, out)
}

// DrawTicket: POST /api/v1/tickets/purchase/subscription
func (h *TicketHandler) DrawTicket(c echo.Context) error {
    u, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    var req drawTicketReq
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    tripDate, err := parseTripDate(req.TripDate)
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    out, err := h.Tickets.DrawTicket(ctx, u, service.DrawTicketInput{
        SubID:       req.SubID,
        Origin:      req.Origin,
        Destination: req.Destination,
        TripDate:    tripDate,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, out)
}

// SimulateRide: PUT /api/v1/ride/simulate
func (h *TicketHandler) SimulateRide(c echo.Context) error {
    u, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    var req tripReq
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    tripDate, err := parseTripDate(req.TripDate)
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    ride, err := h.Tickets.SimulateRide(ctx, u, req.Origin, req.Destination, tripDate)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, ride)
}

// UserTickets: GET /api/v1/user_tickets
func (h *TicketHandler) UserTickets(c echo.Context) error {
    u, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    tickets, err := h.Tickets.ListTickets(ctx, u.ID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, tickets)
}

// UserRides: GET /api/v1/ridesUser
func (h *TicketHandler) UserRides(c echo.Context) error {
    u, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    rides, err := h.Tickets.ListRides(ctx, u.ID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, rides)
}

// UserSubscriptions: GET /api/v1/viewSub, 404 when the caller has none.
func (h *TicketHandler) UserSubscriptions(c echo.Context) error {
    u, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    subs, err := h.Tickets.ListSubscriptions(ctx, u.ID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, subs)
}
