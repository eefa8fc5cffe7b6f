package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/metro-ticketing/internal/queue"
)

func value(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

type failing struct{}

func (failing) Publish(context.Context, queue.Event) error { return errors.New("broker down") }

func TestCountingPublisher(t *testing.T) {
	before := value(t, domainEvents.WithLabelValues(queue.TicketPurchased))
	require.NoError(t, NewCountingPublisher(nil).Publish(context.Background(), queue.NewEvent(queue.TicketPurchased, 1, 2)))
	require.Equal(t, before+1, value(t, domainEvents.WithLabelValues(queue.TicketPurchased)))

	failedBefore := value(t, eventFailures.WithLabelValues(queue.RefundDecided))
	err := NewCountingPublisher(failing{}).Publish(context.Background(), queue.NewEvent(queue.RefundDecided, 1, 2))
	require.Error(t, err)
	require.Equal(t, failedBefore+1, value(t, eventFailures.WithLabelValues(queue.RefundDecided)))
}

func TestMiddlewareAndHandler(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/api/v1/stations", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", Handler())

	before := value(t, httpRequests.WithLabelValues(http.MethodGet, "/api/v1/stations", "200"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stations", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, before+1, value(t, httpRequests.WithLabelValues(http.MethodGet, "/api/v1/stations", "200")))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "metro_http_requests_total"))
}
