package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/metro-ticketing/internal/auth"
	"github.com/iliyamo/metro-ticketing/internal/handler"
	"github.com/iliyamo/metro-ticketing/internal/middleware"
)

// RegisterViews registers the HTML pages.  They need a session like the
// API; the manage pages need an admin.  Middleware is attached per route
// because a root group would put unknown paths behind the session check.
func RegisterViews(e *echo.Echo, v *handler.ViewHandler, session echo.MiddlewareFunc) {
	e.GET("/dashboard", v.Dashboard, session)
	e.GET("/stations", v.Stations, session)
	e.GET("/routes", v.Routes, session)
	e.GET("/zones", v.Zones, session)
	e.GET("/rides", v.Rides, session)
	e.GET("/subscriptions", v.Subscriptions, session)
	e.GET("/status", v.Status, session)

	admin := middleware.RequireAction(auth.ListAllRequests)
	e.GET("/manage/requests/refund", v.ManageRefunds, session, admin)
	e.GET("/manage/requests/seniors", v.ManageSeniors, session, admin)
}
