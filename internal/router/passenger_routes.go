package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/metro-ticketing/internal/auth"
	"github.com/iliyamo/metro-ticketing/internal/handler"
	"github.com/iliyamo/metro-ticketing/internal/middleware"
)

// RegisterPassenger registers endpoints open to any signed-in role.
// Purchases honour the Idempotency-Key header.
func RegisterPassenger(e *echo.Echo, t *handler.TicketHandler, r *handler.RequestHandler, session, limit, idem echo.MiddlewareFunc) {
	g := e.Group("/api/v1", session, limit)

	g.POST("/payment/ticket", t.PayTicket, middleware.RequireAction(auth.BuyTicket), idem)
	g.POST("/payment/subscription", t.PaySubscription, middleware.RequireAction(auth.BuySubscription), idem)
	g.POST("/tickets/purchase/subscription", t.DrawTicket, middleware.RequireAction(auth.BuyTicket), idem)
	g.PUT("/ride/simulate", t.SimulateRide, middleware.RequireAction(auth.ViewOwn))

	g.POST("/refund/:ticketId", r.RequestRefund, middleware.RequireAction(auth.RequestRefund))
	g.POST("/senior/request", r.RequestSenior, middleware.RequireAction(auth.RequestSenior))

	own := middleware.RequireAction(auth.ViewOwn)
	g.GET("/user_tickets", t.UserTickets, own)
	g.GET("/ridesUser", t.UserRides, own)
	g.GET("/viewSub", t.UserSubscriptions, own)
	g.GET("/refundUser", r.UserRefunds, own)
	g.GET("/viewSenior", r.UserSeniorRequests, own)
	g.GET("/getSeniorReq", r.UserSeniorRequests, own)
}
