package router // package router defines how HTTP routes are registered for the API

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/metro-ticketing/internal/config"
	"github.com/iliyamo/metro-ticketing/internal/handler"
	"github.com/iliyamo/metro-ticketing/internal/metrics"
	"github.com/iliyamo/metro-ticketing/internal/middleware"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Topology *handler.TopologyHandler
	Fare     *handler.FareHandler
	Ticket   *handler.TicketHandler
	Request  *handler.RequestHandler
	View     *handler.ViewHandler
}

// Options carries the cross-cutting middleware dependencies.  A nil Redis
// client disables rate limiting, caching and idempotency.
type Options struct {
	JWTSecret      string
	Resolver       middleware.IdentityResolver
	Redis          *redis.Client
	RateLimit      config.RateLimitConfig
	LoginRateLimit config.RateLimitConfig
	Cache          config.CacheConfig
	IdemEnabled    bool
	IdemTTL        time.Duration
	Ready          map[string]handler.Pinger
}

// Register mounts every route group on e.
func Register(e *echo.Echo, h Handlers, opts Options) {
	RegisterRoutes(e, opts.Ready)

	cache := middleware.NewResponseCache(opts.Cache, opts.Redis)
	limit := middleware.NewTokenBucket(opts.RateLimit, opts.Redis)
	session := middleware.Session(opts.Resolver, opts.JWTSecret)

	RegisterAuth(e, h.Auth, session, middleware.NewTokenBucket(opts.LoginRateLimit, opts.Redis))
	RegisterPublic(e, h.Topology, h.Fare, cache, limit)

	var idem echo.MiddlewareFunc = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if opts.IdemEnabled {
		idem = middleware.Idempotency(opts.Redis, opts.IdemTTL)
	}
	RegisterPassenger(e, h.Ticket, h.Request, session, limit, idem)
	RegisterAdmin(e, h.Topology, h.Request, h.Auth, session, limit, cache)
	if h.View != nil {
		RegisterViews(e, h.View, session)
	}
}

// RegisterRoutes registers the operational endpoints: liveness, readiness
// and Prometheus metrics.
func RegisterRoutes(e *echo.Echo, ready map[string]handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(ready))
	e.GET("/metrics", metrics.Handler())
}

// RegisterAuth registers account routes.  Register and login sit behind
// the stricter login bucket; the rest need a session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, session, loginLimit echo.MiddlewareFunc) {
	g := e.Group("/api/v1/users", loginLimit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	e.POST("/api/v1/users/logout", a.Logout, session)
	e.GET("/api/v1/getUser", a.GetUser, session)
	e.PUT("/api/v1/password/reset", a.ResetPassword, session)
}

// RegisterPublic registers the unauthenticated listings and the price
// check.  Listings are served through the response cache.
func RegisterPublic(e *echo.Echo, t *handler.TopologyHandler, f *handler.FareHandler, cache *middleware.ResponseCache, limit echo.MiddlewareFunc) {
	g := e.Group("/api/v1", limit)
	g.GET("/stations", t.ListStations, cache.Middleware())
	g.GET("/routes", t.ListRoutes, cache.Middleware())
	g.GET("/zones", t.ListZones, cache.Middleware())

	g.GET("/tickets/price/:originId/:destinationId", f.Price)
	g.GET("/tickets/price/:pair", f.PricePair) // originId&destinationId
}
