package service

import (
	"context"
	"time"

	"github.com/iliyamo/metro-ticketing/internal/model"
	"github.com/iliyamo/metro-ticketing/internal/queue"
)

// The repository contracts below are what the workflows depend on.  Every
// method returns model.ErrNotFound when the requested row does not exist
// and model.ErrConflict when a unique key is violated.

type UserRepo interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	UpdateRole(ctx context.Context, id uint64, role model.Role) error
	// LockForUpdate locks the user row until the transaction ends.  It
	// serializes per-user check-then-insert workflows.
	LockForUpdate(ctx context.Context, id uint64) error
}

type SessionRepo interface {
	Create(ctx context.Context, s model.Session) error
	// UserByToken joins session -> user -> role for a session that has
	// not expired at now.
	UserByToken(ctx context.Context, token string, now time.Time) (model.User, error)
	Delete(ctx context.Context, token string) error
}

type StationRepo interface {
	Create(ctx context.Context, st *model.Station) error
	GetByID(ctx context.Context, id uint64) (model.Station, error)
	GetByName(ctx context.Context, name string) (model.Station, error)
	List(ctx context.Context) ([]model.Station, error)
	UpdatePosition(ctx context.Context, id uint64, position string) error
	UpdateName(ctx context.Context, id uint64, name string) error
	Delete(ctx context.Context, id uint64) error
}

type RouteRepo interface {
	Create(ctx context.Context, rt *model.Route) error
	GetByID(ctx context.Context, id uint64) (model.Route, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	// FirstFrom and FirstTo return the lowest-id edge leaving or entering
	// a station.
	FirstFrom(ctx context.Context, stationID uint64) (model.Route, error)
	FirstTo(ctx context.Context, stationID uint64) (model.Route, error)
	ListFrom(ctx context.Context, stationID uint64) ([]model.Route, error)
	CountEdges(ctx context.Context, stationID uint64) (in, out int, err error)
	List(ctx context.Context) ([]model.RouteView, error)
	UpdateName(ctx context.Context, id uint64, name string) error
	UpdateTarget(ctx context.Context, id, toStationID uint64) error
	Delete(ctx context.Context, id uint64) error
	// DeleteTouching removes every edge entering or leaving a station.
	DeleteTouching(ctx context.Context, stationID uint64) error
}

type StationRouteRepo interface {
	Create(ctx context.Context, sr *model.StationRoute) error
	// DeleteByStation removes the station's own rows and the rows of every
	// route touching the station.
	DeleteByStation(ctx context.Context, stationID uint64) error
	DeleteByRoute(ctx context.Context, routeID uint64) error
}

type ZoneRepo interface {
	GetByID(ctx context.Context, id uint64) (model.Zone, error)
	List(ctx context.Context) ([]model.Zone, error)
	UpdatePrice(ctx context.Context, id uint64, price int64) error
}

type TicketRepo interface {
	Create(ctx context.Context, t *model.Ticket) error
	GetByID(ctx context.Context, id uint64) (model.Ticket, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Ticket, error)
}

type RideRepo interface {
	Create(ctx context.Context, rd *model.Ride) error
	ListByUser(ctx context.Context, userID uint64) ([]model.Ride, error)
	FindUpcoming(ctx context.Context, userID uint64, origin, destination string, tripDate time.Time) (model.Ride, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
	DeleteByTicket(ctx context.Context, ticketID uint64) error
}

type TransactionRepo interface {
	Create(ctx context.Context, t *model.Transaction) error
	// FindForTicket returns the ledger entry of a ticket purchase
	// (purchase type ticket or SubTicket).
	FindForTicket(ctx context.Context, ticketID uint64) (model.Transaction, error)
	DeleteForTicket(ctx context.Context, ticketID uint64) error
}

type SubscriptionRepo interface {
	Create(ctx context.Context, s *model.Subscription) error
	GetByID(ctx context.Context, id uint64) (model.Subscription, error)
	// GetForUpdate reads the row and locks it until the transaction ends.
	GetForUpdate(ctx context.Context, id uint64) (model.Subscription, error)
	// ActiveByUser returns a subscription of the user with a positive balance.
	ActiveByUser(ctx context.Context, userID uint64) (model.Subscription, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Subscription, error)
	// AdjustTickets adds delta to the balance; it fails with ErrConflict
	// instead of letting the balance go negative.
	AdjustTickets(ctx context.Context, id uint64, delta int) error
}

type SeniorRequestRepo interface {
	Create(ctx context.Context, r *model.SeniorRequest) error
	GetForUpdate(ctx context.Context, id uint64) (model.SeniorRequest, error)
	// HasOpen reports whether the user has a pending or accepted request.
	HasOpen(ctx context.Context, userID uint64) (bool, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.SeniorRequest, error)
	List(ctx context.Context) ([]model.SeniorRequest, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
}

type RefundRequestRepo interface {
	Create(ctx context.Context, r *model.RefundRequest) error
	GetForUpdate(ctx context.Context, id uint64) (model.RefundRequest, error)
	ExistsForTicket(ctx context.Context, ticketID uint64) (bool, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.RefundRequest, error)
	List(ctx context.Context) ([]model.RefundRequest, error)
	Decide(ctx context.Context, id uint64, status string, amount float64) error
}

// Repos bundles the repositories bound to one connection or transaction.
type Repos struct {
	Users          UserRepo
	Sessions       SessionRepo
	Stations       StationRepo
	Routes         RouteRepo
	StationRoutes  StationRouteRepo
	Zones          ZoneRepo
	Tickets        TicketRepo
	Rides          RideRepo
	Transactions   TransactionRepo
	Subscriptions  SubscriptionRepo
	SeniorRequests SeniorRequestRepo
	RefundRequests RefundRequestRepo
}

// Store hands out repositories.  WithinTx runs fn against repositories
// bound to a single transaction which is committed when fn returns nil
// and rolled back otherwise.
type Store interface {
	Repos() Repos
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// EventPublisher delivers domain events after a workflow committed.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}
