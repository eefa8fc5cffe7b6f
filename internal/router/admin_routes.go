package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/metro-ticketing/internal/auth"
	"github.com/iliyamo/metro-ticketing/internal/handler"
	"github.com/iliyamo/metro-ticketing/internal/middleware"
)

// RegisterAdmin registers admin-only endpoints under /api/v1.  Topology
// and zone writes drop the listing cache once they succeed.
func RegisterAdmin(e *echo.Echo, t *handler.TopologyHandler, r *handler.RequestHandler, a *handler.AuthHandler, session, limit echo.MiddlewareFunc, cache *middleware.ResponseCache) {
	g := e.Group("/api/v1", session, limit)

	// ---- Topology ----
	topo := middleware.RequireAction(auth.ManageTopology)
	inv := cache.InvalidateOnWrite()
	g.POST("/station", t.CreateStation, topo, inv)
	g.PUT("/station/:stationId", t.UpdateStationName, topo, inv)
	g.DELETE("/station/:stationId", t.DeleteStation, topo, inv)
	g.POST("/route", t.AddRoute, topo, inv)
	g.PUT("/route/:routeId", t.UpdateRouteName, topo, inv)
	g.DELETE("/route/:routeId", t.DeleteRoute, topo, inv)

	// ---- Zones ----
	g.PUT("/zones/:zoneId", t.UpdateZonePrice, middleware.RequireAction(auth.ManageZones), inv)

	// ---- Requests ----
	g.PUT("/requests/refunds/:requestId", r.DecideRefund, middleware.RequireAction(auth.DecideRefund))
	g.PUT("/requests/senior/:requestId", r.DecideSenior, middleware.RequireAction(auth.DecideSenior))
	g.GET("/refundRequests", r.AllRefunds, middleware.RequireAction(auth.ListAllRequests))
	g.GET("/seniorRequests", r.AllSeniorRequests, middleware.RequireAction(auth.ListAllRequests))

	// ---- Users ----
	g.GET("/users", a.ListUsers, middleware.RequireAction(auth.ListUsers))
}
