package view

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/metro-ticketing/internal/model"
)

func TestNewParsesEveryPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	for _, name := range []string{"dashboard", "stations", "routes", "zones", "rides", "subscriptions", "status", "manage_refunds", "manage_seniors", "error"} {
		require.True(t, r.Has(name), name)
	}
	require.False(t, r.Has("layout"))
}

func TestRenderStationsEscapesNames(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(&buf, "stations", Page{
		Title: "Stations",
		User:  model.User{RoleID: model.RoleAdmin, IsAdmin: true},
		Data:  []model.Station{{ID: 1, Name: "<Central>", Type: "normal", Position: "start", Status: "old"}},
	}, nil)
	require.NoError(t, err)
	out := buf.String()
	require.Contains(t, out, "&lt;Central&gt;")
	require.Contains(t, out, "/manage/requests/refund")
}

func TestRenderStatusWithSubscriptionTicket(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	sub := uint64(7)
	data := struct {
		Tickets []model.Ticket
		Refunds []model.RefundRequest
		Seniors []model.SeniorRequest
	}{
		Tickets: []model.Ticket{{ID: 3, Origin: "A", Destination: "B", TripDate: time.Date(2025, 2, 1, 8, 30, 0, 0, time.UTC), SubID: &sub}},
	}
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "status", Page{Title: "Status", Data: data}, nil))
	require.Contains(t, buf.String(), "2025-02-01 08:30")
	require.Contains(t, buf.String(), "<td>7</td>")
	require.NotContains(t, buf.String(), "Refund requests</a>")
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	require.Error(t, r.Render(&bytes.Buffer{}, "missing", Page{}, nil))
}
