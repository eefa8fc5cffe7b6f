package handler

import (
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/metro-ticketing/internal/model"
    "github.com/iliyamo/metro-ticketing/internal/service"
    "github.com/iliyamo/metro-ticketing/internal/view"
)

// ViewHandler serves the HTML pages.  All pages sit behind the session
// middleware; the manage pages additionally need an admin.
type ViewHandler struct {
    Topology *service.TopologyService
    Tickets  *service.TicketService
    Accounts *service.AccountService
    Timeout  time.Duration
}

func NewViewHandler(topology *service.TopologyService, tickets *service.TicketService, accounts *service.AccountService, timeout time.Duration) *ViewHandler {
    return &ViewHandler{Topology: topology, Tickets: tickets, Accounts: accounts, Timeout: timeout}
}

type statusPage struct {
    Tickets []model.Ticket
    Refunds []model.RefundRequest
    Seniors []model.SeniorRequest
}

func (h *ViewHandler) render(c echo.Context, page, title string, data any, err error) error {
    u, _ := caller(c)
    if err != nil {
        status := statusFor(err)
        msg := err.Error()
        if status == http.StatusInternalServerError {
            c.Logger().Errorf("view %s: %v", page, err)
            msg = "internal error"
        }
        return c.Render(status, "error", view.Page{Title: "Error", User: u, Data: msg})
    }
    return c.Render(http.StatusOK, page, view.Page{Title: title, User: u, Data: data})
}

func (h *ViewHandler) Dashboard(c echo.Context) error {
    return h.render(c, "dashboard", "Dashboard", nil, nil)
}

func (h *ViewHandler) Stations(c echo.Context) error {
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()
    stations, err := h.Topology.ListStations(ctx)
    return h.render(c, "stations", "Stations", stations, err)
}

func (h *ViewHandler) Routes(c echo.Context) error {
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()
    routes, err := h.Topology.ListRoutes(ctx)
    return h.render(c, "routes", "Routes", routes, err)
}

func (h *ViewHandler) Zones(c echo.Context) error {
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()
    zones, err := h.Topology.ListZones(ctx)
    return h.render(c, "zones", "Zones", zones, err)
}

func (h *ViewHandler) Rides(c echo.Context) error {
    u, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()
    rides, err := h.Tickets.ListRides(ctx, u.ID)
    return h.render(c, "rides", "Rides", rides, err)
}

// Subscriptions shows an empty table instead of a 404 page.
func (h *ViewHandler) Subscriptions(c echo.Context) error {
    u, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()
    subs, err := h.Tickets.ListSubscriptions(ctx, u.ID)
    if errors.Is(err, model.ErrNotFound) {
        subs, err = nil, nil
    }
    return h.render(c, "subscriptions", "Subscriptions", subs, err)
}

// Status lists the caller's tickets and the state of their requests.
func (h *ViewHandler) Status(c echo.Context) error {
    u, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    var data statusPage
    if data.Tickets, err = h.Tickets.ListTickets(ctx, u.ID); err == nil {
        if data.Refunds, err = h.Tickets.ListRefunds(ctx, u.ID); err == nil {
            data.Seniors, err = h.Accounts.ListSeniorRequests(ctx, u.ID)
        }
    }
    return h.render(c, "status", "Status", data, err)
}

func (h *ViewHandler) ManageRefunds(c echo.Context) error {
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()
    reqs, err := h.Tickets.ListAllRefunds(ctx)
    return h.render(c, "manage_refunds", "Refund requests", reqs, err)
}

func (h *ViewHandler) ManageSeniors(c echo.Context) error {
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()
    reqs, err := h.Accounts.ListAllSeniorRequests(ctx)
    return h.render(c, "manage_seniors", "Senior requests", reqs, err)
}
