package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/metro-ticketing/internal/service"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can
// run inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements service.Store on a MySQL connection pool.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store bound to db.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying pool for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// Repos returns repositories running directly on the pool.
func (s *Store) Repos() service.Repos { return reposFor(s.db) }

// WithinTx runs fn inside a single transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r service.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, reposFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func reposFor(db DBTX) service.Repos {
	return service.Repos{
		Users:          &UserRepo{db: db},
		Sessions:       &SessionRepo{db: db},
		Stations:       &StationRepo{db: db},
		Routes:         &RouteRepo{db: db},
		StationRoutes:  &StationRouteRepo{db: db},
		Zones:          &ZoneRepo{db: db},
		Tickets:        &TicketRepo{db: db},
		Rides:          &RideRepo{db: db},
		Transactions:   &TransactionRepo{db: db},
		Subscriptions:  &SubscriptionRepo{db: db},
		SeniorRequests: &SeniorRequestRepo{db: db},
		RefundRequests: &RefundRequestRepo{db: db},
	}
}
