// Package metrics exposes Prometheus collectors for the HTTP layer and for
// domain events, plus the /metrics handler.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/metro-ticketing/internal/queue"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metro_http_requests_total",
		Help: "HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "metro_http_request_duration_seconds",
		Help:    "Time taken to serve HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"method", "route"})

	domainEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metro_domain_events_total",
		Help: "Domain events emitted by workflows (purchases, draws, decisions)",
	}, []string{"type"})

	eventFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metro_domain_event_publish_failures_total",
		Help: "Domain events that could not be handed to the broker",
	}, []string{"type"})
)

// Middleware records a request counter and latency per matched route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the default registry.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// EventPublisher is anything that can deliver a domain event.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// CountingPublisher counts every event by type before passing it on.  A
// nil next only counts.
type CountingPublisher struct {
	next EventPublisher
}

func NewCountingPublisher(next EventPublisher) *CountingPublisher {
	return &CountingPublisher{next: next}
}

func (p *CountingPublisher) Publish(ctx context.Context, ev queue.Event) error {
	domainEvents.WithLabelValues(ev.Type).Inc()
	if p.next == nil {
		return nil
	}
	if err := p.next.Publish(ctx, ev); err != nil {
		eventFailures.WithLabelValues(ev.Type).Inc()
		return err
	}
	return nil
}
