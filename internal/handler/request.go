package handler

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/metro-ticketing/internal/service"
)

// RequestHandler serves refund and senior requests for both sides: users
// file them, admins decide them.
type RequestHandler struct {
    Tickets  *service.TicketService
    Accounts *service.AccountService
    Timeout  time.Duration
}

func NewRequestHandler(tickets *service.TicketService, accounts *service.AccountService, timeout time.Duration) *RequestHandler {
    return &RequestHandler{Tickets: tickets, Accounts: accounts, Timeout: timeout}
}

type seniorReq struct {
    NationalID string `json:"nationalId"`
}
type refundDecisionReq struct {
    RefundStatus string `json:"refundStatus"`
}
type seniorDecisionReq struct {
    SeniorStatus string `json:"seniorStatus"`
}

// RequestRefund: POST /api/v1/refund/:ticketId
func (h *RequestHandler) RequestRefund(c echo.Context) error {
    u, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    ticketID, err := parseID(c, "ticketId")
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    req, err := h.Tickets.RequestRefund(ctx, u, ticketID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, req)
}

// DecideRefund: PUT /api/v1/requests/refunds/:requestId
func (h *RequestHandler) DecideRefund(c echo.Context) error {
    id, err := parseID(c, "requestId")
    if err != nil {
        return writeError(c, err)
    }
    var body refundDecisionReq
    if err := bind(c, &body); err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    req, err := h.Tickets.DecideRefund(ctx, id, strings.ToLower(strings.TrimSpace(body.RefundStatus)))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, req)
}

// RequestSenior: POST /api/v1/senior/request
func (h *RequestHandler) RequestSenior(c echo.Context) error {
    u, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    var body seniorReq
    if err := bind(c, &body); err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    req, err := h.Accounts.RequestSenior(ctx, u, body.NationalID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, req)
}

// DecideSenior: PUT /api/v1/requests/senior/:requestId
func (h *RequestHandler) DecideSenior(c echo.Context) error {
    id, err := parseID(c, "requestId")
    if err != nil {
        return writeError(c, err)
    }
    var body seniorDecisionReq
    if err := bind(c, &body); err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    req, err := h.Accounts.DecideSenior(ctx, id, strings.ToLower(strings.TrimSpace(body.SeniorStatus)))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, req)
}

// UserRefunds: GET /api/v1/refundUser
func (h *RequestHandler) UserRefunds(c echo.Context) error {
    u, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    reqs, err := h.Tickets.ListRefunds(ctx, u.ID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, reqs)
}

// UserSeniorRequests: GET /api/v1/viewSenior (also /getSeniorReq)
func (h *RequestHandler) UserSeniorRequests(c echo.Context) error {
    u, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    reqs, err := h.Accounts.ListSeniorRequests(ctx, u.ID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, reqs)
}

// AllRefunds: GET /api/v1/refundRequests (admin)
func (h *RequestHandler) AllRefunds(c echo.Context) error {
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    reqs, err := h.Tickets.ListAllRefunds(ctx)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, reqs)
}

// AllSeniorRequests: GET /api/v1/seniorRequests (admin)
func (h *RequestHandler) AllSeniorRequests(c echo.Context) error {
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    reqs, err := h.Accounts.ListAllSeniorRequests(ctx)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, reqs)
}
