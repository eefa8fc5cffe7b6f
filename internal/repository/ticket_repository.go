package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/metro-ticketing/internal/model"
)

// TicketRepo manages the tickets table.
type TicketRepo struct{ db DBTX }

const ticketSelect = `SELECT id, origin, destination, trip_date, user_id, sub_id FROM tickets`

func scanTicket(row rowScanner) (model.Ticket, error) {
	var (
		t     model.Ticket
		subID sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.Origin, &t.Destination, &t.TripDate, &t.UserID, &subID); err != nil {
		return t, err
	}
	if subID.Valid {
		id := uint64(subID.Int64)
		t.SubID = &id
	}
	return t, nil
}

func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	var subID any
	if t.SubID != nil {
		subID = *t.SubID
	}
	id, err := insertID(r.db.ExecContext(ctx,
		"INSERT INTO tickets (origin, destination, trip_date, user_id, sub_id) VALUES (?,?,?,?,?)",
		t.Origin, t.Destination, t.TripDate.UTC(), t.UserID, subID))
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (model.Ticket, error) {
	t, err := scanTicket(r.db.QueryRowContext(ctx, ticketSelect+" WHERE id=?", id))
	return t, translate(err)
}

func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, ticketSelect+" WHERE user_id=? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// RideRepo manages the rides table.
type RideRepo struct{ db DBTX }

const rideSelect = `SELECT id, status, origin, destination, user_id, ticket_id, trip_date FROM rides`

func scanRide(row rowScanner) (model.Ride, error) {
	var rd model.Ride
	err := row.Scan(&rd.ID, &rd.Status, &rd.Origin, &rd.Destination, &rd.UserID, &rd.TicketID, &rd.TripDate)
	return rd, err
}

func (r *RideRepo) Create(ctx context.Context, rd *model.Ride) error {
	if rd.Status == "" {
		rd.Status = model.RideUpcoming
	}
	id, err := insertID(r.db.ExecContext(ctx,
		"INSERT INTO rides (status, origin, destination, user_id, ticket_id, trip_date) VALUES (?,?,?,?,?,?)",
		rd.Status, rd.Origin, rd.Destination, rd.UserID, rd.TicketID, rd.TripDate.UTC()))
	if err != nil {
		return err
	}
	rd.ID = id
	return nil
}

func (r *RideRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Ride, error) {
	rows, err := r.db.QueryContext(ctx, rideSelect+" WHERE user_id=? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Ride
	for rows.Next() {
		rd, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

// FindUpcoming locks the first upcoming ride matching the trip.
func (r *RideRepo) FindUpcoming(ctx context.Context, userID uint64, origin, destination string, tripDate time.Time) (model.Ride, error) {
	rd, err := scanRide(r.db.QueryRowContext(ctx,
		rideSelect+" WHERE user_id=? AND origin=? AND destination=? AND trip_date=? AND status=? ORDER BY id LIMIT 1 FOR UPDATE",
		userID, origin, destination, tripDate.UTC(), model.RideUpcoming))
	return rd, translate(err)
}

func (r *RideRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE rides SET status=? WHERE id=?", status, id)
	return err
}

func (r *RideRepo) DeleteByTicket(ctx context.Context, ticketID uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM rides WHERE ticket_id=?", ticketID)
	return err
}

// TransactionRepo manages the transactions ledger.
type TransactionRepo struct{ db DBTX }

func (r *TransactionRepo) Create(ctx context.Context, t *model.Transaction) error {
	id, err := insertID(r.db.ExecContext(ctx,
		"INSERT INTO transactions (amount, user_id, purchased_id, purchase_type) VALUES (?,?,?,?)",
		t.Amount, t.UserID, t.PurchasedID, t.PurchaseType))
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func (r *TransactionRepo) FindForTicket(ctx context.Context, ticketID uint64) (model.Transaction, error) {
	var t model.Transaction
	err := r.db.QueryRowContext(ctx,
		`SELECT id, amount, user_id, purchased_id, purchase_type FROM transactions
WHERE purchased_id=? AND purchase_type IN (?, ?) ORDER BY id LIMIT 1`,
		ticketID, model.PurchaseTicket, model.PurchaseSubTicket).
		Scan(&t.ID, &t.Amount, &t.UserID, &t.PurchasedID, &t.PurchaseType)
	return t, translate(err)
}

func (r *TransactionRepo) DeleteForTicket(ctx context.Context, ticketID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE purchased_id=? AND purchase_type IN (?, ?)",
		ticketID, model.PurchaseTicket, model.PurchaseSubTicket)
	return err
}
