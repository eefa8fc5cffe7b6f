package repository

import (
	"context"

	"github.com/iliyamo/metro-ticketing/internal/model"
)

// SeniorRequestRepo manages senior_requests.
type SeniorRequestRepo struct{ db DBTX }

const seniorSelect = `SELECT id, user_id, national_id, status FROM senior_requests`

func scanSenior(row rowScanner) (model.SeniorRequest, error) {
	var s model.SeniorRequest
	err := row.Scan(&s.ID, &s.UserID, &s.NationalID, &s.Status)
	return s, err
}

func (r *SeniorRequestRepo) Create(ctx context.Context, s *model.SeniorRequest) error {
	if s.Status == "" {
		s.Status = model.RequestPending
	}
	id, err := insertID(r.db.ExecContext(ctx,
		"INSERT INTO senior_requests (user_id, national_id, status) VALUES (?,?,?)",
		s.UserID, s.NationalID, s.Status))
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func (r *SeniorRequestRepo) GetForUpdate(ctx context.Context, id uint64) (model.SeniorRequest, error) {
	s, err := scanSenior(r.db.QueryRowContext(ctx, seniorSelect+" WHERE id=? FOR UPDATE", id))
	return s, translate(err)
}

func (r *SeniorRequestRepo) HasOpen(ctx context.Context, userID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM senior_requests WHERE user_id=? AND status IN (?, ?)",
		userID, model.RequestPending, model.RequestAccepted).Scan(&n)
	return n > 0, err
}

func (r *SeniorRequestRepo) ListByUser(ctx context.Context, userID uint64) ([]model.SeniorRequest, error) {
	return r.list(ctx, seniorSelect+" WHERE user_id=? ORDER BY id", userID)
}

func (r *SeniorRequestRepo) List(ctx context.Context) ([]model.SeniorRequest, error) {
	return r.list(ctx, seniorSelect+" ORDER BY id")
}

func (r *SeniorRequestRepo) list(ctx context.Context, q string, args ...any) ([]model.SeniorRequest, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.SeniorRequest
	for rows.Next() {
		s, err := scanSenior(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SeniorRequestRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE senior_requests SET status=? WHERE id=?", status, id)
	return err
}

// RefundRequestRepo manages refund_requests.  ticket_id is unique so a
// ticket can only ever be asked to be refunded once.
type RefundRequestRepo struct{ db DBTX }

const refundSelect = `SELECT id, ticket_id, user_id, status, refund_amount FROM refund_requests`

func scanRefund(row rowScanner) (model.RefundRequest, error) {
	var rr model.RefundRequest
	err := row.Scan(&rr.ID, &rr.TicketID, &rr.UserID, &rr.Status, &rr.RefundAmount)
	return rr, err
}

func (r *RefundRequestRepo) Create(ctx context.Context, rr *model.RefundRequest) error {
	if rr.Status == "" {
		rr.Status = model.RequestPending
	}
	id, err := insertID(r.db.ExecContext(ctx,
		"INSERT INTO refund_requests (ticket_id, user_id, status, refund_amount) VALUES (?,?,?,?)",
		rr.TicketID, rr.UserID, rr.Status, rr.RefundAmount))
	if err != nil {
		return err
	}
	rr.ID = id
	return nil
}

func (r *RefundRequestRepo) GetForUpdate(ctx context.Context, id uint64) (model.RefundRequest, error) {
	rr, err := scanRefund(r.db.QueryRowContext(ctx, refundSelect+" WHERE id=? FOR UPDATE", id))
	return rr, translate(err)
}

func (r *RefundRequestRepo) ExistsForTicket(ctx context.Context, ticketID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM refund_requests WHERE ticket_id=?", ticketID).Scan(&n)
	return n > 0, err
}

func (r *RefundRequestRepo) ListByUser(ctx context.Context, userID uint64) ([]model.RefundRequest, error) {
	return r.list(ctx, refundSelect+" WHERE user_id=? ORDER BY id", userID)
}

func (r *RefundRequestRepo) List(ctx context.Context) ([]model.RefundRequest, error) {
	return r.list(ctx, refundSelect+" ORDER BY id")
}

func (r *RefundRequestRepo) list(ctx context.Context, q string, args ...any) ([]model.RefundRequest, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.RefundRequest
	for rows.Next() {
		rr, err := scanRefund(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// Decide records the admin decision and the amount returned.
func (r *RefundRequestRepo) Decide(ctx context.Context, id uint64, status string, amount float64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE refund_requests SET status=?, refund_amount=? WHERE id=?", status, amount, id)
	return err
}
