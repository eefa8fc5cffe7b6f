// Package memory is an in-process implementation of the service
// repositories.  It backs the test suites and the STORE_DRIVER=memory
// mode of the server.  Transactions are serialized: WithinTx works on a
// copy of the data and swaps it in only when fn succeeds.
package memory

import (
	"context"
	"sync"

	"github.com/iliyamo/metro-ticketing/internal/model"
	"github.com/iliyamo/metro-ticketing/internal/service"
)

// DefaultZones mirrors the rows seeded by the SQL schema.
var DefaultZones = []model.Zone{
	{ID: 1, ZoneType: "short", Price: 5},
	{ID: 2, ZoneType: "medium", Price: 15},
	{ID: 3, ZoneType: "long", Price: 20},
}

type state struct {
	seq map[string]uint64

	users          map[uint64]model.User
	sessions       map[string]model.Session
	stations       map[uint64]model.Station
	routes         map[uint64]model.Route
	stationRoutes  map[uint64]model.StationRoute
	zones          map[uint64]model.Zone
	tickets        map[uint64]model.Ticket
	rides          map[uint64]model.Ride
	transactions   map[uint64]model.Transaction
	subscriptions  map[uint64]model.Subscription
	seniorRequests map[uint64]model.SeniorRequest
	refundRequests map[uint64]model.RefundRequest
}

func newState() *state {
	return &state{
		seq:            map[string]uint64{},
		users:          map[uint64]model.User{},
		sessions:       map[string]model.Session{},
		stations:       map[uint64]model.Station{},
		routes:         map[uint64]model.Route{},
		stationRoutes:  map[uint64]model.StationRoute{},
		zones:          map[uint64]model.Zone{},
		tickets:        map[uint64]model.Ticket{},
		rides:          map[uint64]model.Ride{},
		transactions:   map[uint64]model.Transaction{},
		subscriptions:  map[uint64]model.Subscription{},
		seniorRequests: map[uint64]model.SeniorRequest{},
		refundRequests: map[uint64]model.RefundRequest{},
	}
}

func (s *state) next(table string) uint64 {
	s.seq[table]++
	return s.seq[table]
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	c := &state{
		seq:            cloneMap(s.seq),
		users:          cloneMap(s.users),
		sessions:       cloneMap(s.sessions),
		stations:       cloneMap(s.stations),
		routes:         cloneMap(s.routes),
		stationRoutes:  cloneMap(s.stationRoutes),
		zones:          cloneMap(s.zones),
		tickets:        cloneMap(s.tickets),
		rides:          cloneMap(s.rides),
		transactions:   cloneMap(s.transactions),
		subscriptions:  cloneMap(s.subscriptions),
		seniorRequests: cloneMap(s.seniorRequests),
		refundRequests: cloneMap(s.refundRequests),
	}
	// Ticket.SubID is a pointer; detach it from the live copy.
	for id, t := range c.tickets {
		if t.SubID != nil {
			v := *t.SubID
			t.SubID = &v
			c.tickets[id] = t
		}
	}
	return c
}

// Store implements service.Store in memory.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore returns an empty store seeded with DefaultZones.
func NewStore() *Store {
	st := newState()
	for _, z := range DefaultZones {
		st.zones[z.ID] = z
		if z.ID > st.seq["zones"] {
			st.seq["zones"] = z.ID
		}
	}
	return &Store{state: st}
}

// Repos returns repositories that lock the store on every call.
func (s *Store) Repos() service.Repos { return reposFor(conn{store: s}) }

// WithinTx holds the store for the whole of fn.  Repositories passed to fn
// must not be used after it returns.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r service.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.state.clone()
	if err := fn(ctx, reposFor(conn{tx: work})); err != nil {
		return err
	}
	s.state = work
	return nil
}

// conn is either the live store (locked per call) or a transaction copy.
type conn struct {
	store *Store
	tx    *state
}

func (c conn) do(fn func(st *state) error) error {
	if c.tx != nil {
		return fn(c.tx)
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return fn(c.store.state)
}

func reposFor(c conn) service.Repos {
	return service.Repos{
		Users:          userRepo{c},
		Sessions:       sessionRepo{c},
		Stations:       stationRepo{c},
		Routes:         routeRepo{c},
		StationRoutes:  stationRouteRepo{c},
		Zones:          zoneRepo{c},
		Tickets:        ticketRepo{c},
		Rides:          rideRepo{c},
		Transactions:   transactionRepo{c},
		Subscriptions:  subscriptionRepo{c},
		SeniorRequests: seniorRequestRepo{c},
		RefundRequests: refundRequestRepo{c},
	}
}
