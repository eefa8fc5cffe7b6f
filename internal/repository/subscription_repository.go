package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/metro-ticketing/internal/model"
)

// SubscriptionRepo manages the subscription table and its ticket balance.
type SubscriptionRepo struct{ db DBTX }

const subscriptionSelect = `SELECT id, sub_type, zone_id, user_id, no_of_tickets FROM subscription`

func scanSubscription(row rowScanner) (model.Subscription, error) {
	var s model.Subscription
	err := row.Scan(&s.ID, &s.SubType, &s.ZoneID, &s.UserID, &s.NoOfTickets)
	return s, err
}

func (r *SubscriptionRepo) Create(ctx context.Context, s *model.Subscription) error {
	id, err := insertID(r.db.ExecContext(ctx,
		"INSERT INTO subscription (sub_type, zone_id, user_id, no_of_tickets) VALUES (?,?,?,?)",
		s.SubType, s.ZoneID, s.UserID, s.NoOfTickets))
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func (r *SubscriptionRepo) GetByID(ctx context.Context, id uint64) (model.Subscription, error) {
	s, err := scanSubscription(r.db.QueryRowContext(ctx, subscriptionSelect+" WHERE id=?", id))
	return s, translate(err)
}

// GetForUpdate must run inside a transaction for the lock to hold.
func (r *SubscriptionRepo) GetForUpdate(ctx context.Context, id uint64) (model.Subscription, error) {
	s, err := scanSubscription(r.db.QueryRowContext(ctx, subscriptionSelect+" WHERE id=? FOR UPDATE", id))
	return s, translate(err)
}

func (r *SubscriptionRepo) ActiveByUser(ctx context.Context, userID uint64) (model.Subscription, error) {
	s, err := scanSubscription(r.db.QueryRowContext(ctx,
		subscriptionSelect+" WHERE user_id=? AND no_of_tickets > 0 ORDER BY id LIMIT 1", userID))
	return s, translate(err)
}

func (r *SubscriptionRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, subscriptionSelect+" WHERE user_id=? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AdjustTickets applies delta only when the resulting balance stays
// non-negative; otherwise nothing is written and ErrConflict is returned.
func (r *SubscriptionRepo) AdjustTickets(ctx context.Context, id uint64, delta int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE subscription SET no_of_tickets = no_of_tickets + ? WHERE id = ? AND no_of_tickets + ? >= 0",
		delta, id, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: subscription %d has no tickets left", model.ErrConflict, id)
	}
	return nil
}
