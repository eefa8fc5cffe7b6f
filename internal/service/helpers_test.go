package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/metro-ticketing/internal/model"
	"github.com/iliyamo/metro-ticketing/internal/queue"
	"github.com/iliyamo/metro-ticketing/internal/repository/memory"
)

var (
	testNow  = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	tripDate = time.Date(2025, 2, 1, 8, 30, 0, 0, time.UTC)
)

func fixedNow() time.Time { return testNow }

type recorder struct {
	mu     sync.Mutex
	events []queue.Event
}

func (r *recorder) Publish(_ context.Context, ev queue.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

// seedChain creates stations S1..Sn joined by routes Si->Si+1 and returns
// their ids in order.
func seedChain(t *testing.T, store *memory.Store, n int) []uint64 {
	t.Helper()
	ctx := context.Background()
	r := store.Repos()
	ids := make([]uint64, n)
	for i := 0; i < n; i++ {
		pos := model.PositionMiddle
		switch i {
		case 0:
			pos = model.PositionStart
		case n - 1:
			pos = model.PositionEnd
		}
		st := model.Station{Name: fmt.Sprintf("S%d", i+1), Type: model.StationNormal, Position: pos}
		require.NoError(t, r.Stations.Create(ctx, &st))
		ids[i] = st.ID
	}
	for i := 0; i+1 < n; i++ {
		rt := model.Route{Name: fmt.Sprintf("R%d", i+1), FromStationID: ids[i], ToStationID: ids[i+1]}
		require.NoError(t, r.Routes.Create(ctx, &rt))
	}
	return ids
}

func newUser(t *testing.T, store *memory.Store, email string, role model.Role) model.User {
	t.Helper()
	u := model.User{FirstName: "Test", LastName: "User", Email: email, PasswordHash: "x", RoleID: role}
	require.NoError(t, store.Repos().Users.Create(context.Background(), &u))
	return *u.WithRoleFlags()
}
