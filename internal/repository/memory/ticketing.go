package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/metro-ticketing/internal/model"
)

type ticketRepo struct{ c conn }

func (r ticketRepo) Create(_ context.Context, t *model.Ticket) error {
	return r.c.do(func(st *state) error {
		if t.SubID != nil {
			if _, ok := st.subscriptions[*t.SubID]; !ok {
				return notFound("subscription", *t.SubID)
			}
		}
		t.ID = st.next("tickets")
		st.tickets[t.ID] = *t
		return nil
	})
}

func (r ticketRepo) GetByID(_ context.Context, id uint64) (t model.Ticket, err error) {
	err = r.c.do(func(st *state) error {
		var ok bool
		if t, ok = st.tickets[id]; !ok {
			return notFound("ticket", id)
		}
		return nil
	})
	return t, err
}

func (r ticketRepo) ListByUser(_ context.Context, userID uint64) (out []model.Ticket, err error) {
	err = r.c.do(func(st *state) error {
		out = ordered(st.tickets, func(t model.Ticket) bool { return t.UserID == userID })
		return nil
	})
	return out, err
}

type rideRepo struct{ c conn }

func (r rideRepo) Create(_ context.Context, rd *model.Ride) error {
	return r.c.do(func(st *state) error {
		if rd.Status == "" {
			rd.Status = model.RideUpcoming
		}
		rd.ID = st.next("rides")
		st.rides[rd.ID] = *rd
		return nil
	})
}

func (r rideRepo) ListByUser(_ context.Context, userID uint64) (out []model.Ride, err error) {
	err = r.c.do(func(st *state) error {
		out = ordered(st.rides, func(rd model.Ride) bool { return rd.UserID == userID })
		return nil
	})
	return out, err
}

func (r rideRepo) FindUpcoming(_ context.Context, userID uint64, origin, destination string, tripDate time.Time) (rd model.Ride, err error) {
	err = r.c.do(func(st *state) error {
		found := ordered(st.rides, func(x model.Ride) bool {
			return x.UserID == userID && x.Origin == origin && x.Destination == destination &&
				x.TripDate.Equal(tripDate) && x.Status == model.RideUpcoming
		})
		if len(found) == 0 {
			return notFound("ride", fmt.Sprintf("%s->%s", origin, destination))
		}
		rd = found[0]
		return nil
	})
	return rd, err
}

func (r rideRepo) UpdateStatus(_ context.Context, id uint64, status string) error {
	return r.c.do(func(st *state) error {
		rd, ok := st.rides[id]
		if !ok {
			return notFound("ride", id)
		}
		rd.Status = status
		st.rides[id] = rd
		return nil
	})
}

func (r rideRepo) DeleteByTicket(_ context.Context, ticketID uint64) error {
	return r.c.do(func(st *state) error {
		for id, rd := range st.rides {
			if rd.TicketID == ticketID {
				delete(st.rides, id)
			}
		}
		return nil
	})
}

type transactionRepo struct{ c conn }

func isTicketPurchase(t model.Transaction, ticketID uint64) bool {
	return t.PurchasedID == ticketID &&
		(t.PurchaseType == model.PurchaseTicket || t.PurchaseType == model.PurchaseSubTicket)
}

func (r transactionRepo) Create(_ context.Context, t *model.Transaction) error {
	return r.c.do(func(st *state) error {
		t.ID = st.next("transactions")
		st.transactions[t.ID] = *t
		return nil
	})
}

func (r transactionRepo) FindForTicket(_ context.Context, ticketID uint64) (t model.Transaction, err error) {
	err = r.c.do(func(st *state) error {
		found := ordered(st.transactions, func(x model.Transaction) bool { return isTicketPurchase(x, ticketID) })
		if len(found) == 0 {
			return notFound("transaction for ticket", ticketID)
		}
		t = found[0]
		return nil
	})
	return t, err
}

func (r transactionRepo) DeleteForTicket(_ context.Context, ticketID uint64) error {
	return r.c.do(func(st *state) error {
		for id, t := range st.transactions {
			if isTicketPurchase(t, ticketID) {
				delete(st.transactions, id)
			}
		}
		return nil
	})
}

// Transactions returns the ledger ordered by id.  Tests only.
func (s *Store) Transactions() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ordered(s.state.transactions, nil)
}

type subscriptionRepo struct{ c conn }

func (r subscriptionRepo) Create(_ context.Context, s *model.Subscription) error {
	return r.c.do(func(st *state) error {
		if _, ok := st.zones[s.ZoneID]; !ok {
			return notFound("zone", s.ZoneID)
		}
		s.ID = st.next("subscription")
		st.subscriptions[s.ID] = *s
		return nil
	})
}

func (r subscriptionRepo) GetByID(_ context.Context, id uint64) (s model.Subscription, err error) {
	err = r.c.do(func(st *state) error {
		var ok bool
		if s, ok = st.subscriptions[id]; !ok {
			return notFound("subscription", id)
		}
		return nil
	})
	return s, err
}

// GetForUpdate needs no lock of its own: transactions are serialized.
func (r subscriptionRepo) GetForUpdate(ctx context.Context, id uint64) (model.Subscription, error) {
	return r.GetByID(ctx, id)
}

func (r subscriptionRepo) ActiveByUser(_ context.Context, userID uint64) (s model.Subscription, err error) {
	err = r.c.do(func(st *state) error {
		found := ordered(st.subscriptions, func(x model.Subscription) bool {
			return x.UserID == userID && x.NoOfTickets > 0
		})
		if len(found) == 0 {
			return notFound("active subscription for user", userID)
		}
		s = found[0]
		return nil
	})
	return s, err
}

func (r subscriptionRepo) ListByUser(_ context.Context, userID uint64) (out []model.Subscription, err error) {
	err = r.c.do(func(st *state) error {
		out = ordered(st.subscriptions, func(x model.Subscription) bool { return x.UserID == userID })
		return nil
	})
	return out, err
}

func (r subscriptionRepo) AdjustTickets(_ context.Context, id uint64, delta int) error {
	return r.c.do(func(st *state) error {
		s, ok := st.subscriptions[id]
		if !ok {
			return notFound("subscription", id)
		}
		if s.NoOfTickets+delta < 0 {
			return fmt.Errorf("%w: subscription %d has no tickets left", model.ErrConflict, id)
		}
		s.NoOfTickets += delta
		st.subscriptions[id] = s
		return nil
	})
}

type seniorRequestRepo struct{ c conn }

func (r seniorRequestRepo) Create(_ context.Context, s *model.SeniorRequest) error {
	return r.c.do(func(st *state) error {
		if s.Status == "" {
			s.Status = model.RequestPending
		}
		s.ID = st.next("senior_requests")
		st.seniorRequests[s.ID] = *s
		return nil
	})
}

func (r seniorRequestRepo) GetForUpdate(_ context.Context, id uint64) (s model.SeniorRequest, err error) {
	err = r.c.do(func(st *state) error {
		var ok bool
		if s, ok = st.seniorRequests[id]; !ok {
			return notFound("senior request", id)
		}
		return nil
	})
	return s, err
}

func (r seniorRequestRepo) HasOpen(_ context.Context, userID uint64) (open bool, err error) {
	err = r.c.do(func(st *state) error {
		for _, s := range st.seniorRequests {
			if s.UserID == userID && (s.Status == model.RequestPending || s.Status == model.RequestAccepted) {
				open = true
				break
			}
		}
		return nil
	})
	return open, err
}

func (r seniorRequestRepo) ListByUser(_ context.Context, userID uint64) (out []model.SeniorRequest, err error) {
	err = r.c.do(func(st *state) error {
		out = ordered(st.seniorRequests, func(s model.SeniorRequest) bool { return s.UserID == userID })
		return nil
	})
	return out, err
}

func (r seniorRequestRepo) List(_ context.Context) (out []model.SeniorRequest, err error) {
	err = r.c.do(func(st *state) error {
		out = ordered(st.seniorRequests, nil)
		return nil
	})
	return out, err
}

func (r seniorRequestRepo) UpdateStatus(_ context.Context, id uint64, status string) error {
	return r.c.do(func(st *state) error {
		s, ok := st.seniorRequests[id]
		if !ok {
			return notFound("senior request", id)
		}
		s.Status = status
		st.seniorRequests[id] = s
		return nil
	})
}

type refundRequestRepo struct{ c conn }

func (r refundRequestRepo) Create(_ context.Context, rr *model.RefundRequest) error {
	return r.c.do(func(st *state) error {
		for _, other := range st.refundRequests {
			if other.TicketID == rr.TicketID {
				return model.ErrConflict
			}
		}
		if rr.Status == "" {
			rr.Status = model.RequestPending
		}
		rr.ID = st.next("refund_requests")
		st.refundRequests[rr.ID] = *rr
		return nil
	})
}

func (r refundRequestRepo) GetForUpdate(_ context.Context, id uint64) (rr model.RefundRequest, err error) {
	err = r.c.do(func(st *state) error {
		var ok bool
		if rr, ok = st.refundRequests[id]; !ok {
			return notFound("refund request", id)
		}
		return nil
	})
	return rr, err
}

func (r refundRequestRepo) ExistsForTicket(_ context.Context, ticketID uint64) (exists bool, err error) {
	err = r.c.do(func(st *state) error {
		for _, rr := range st.refundRequests {
			if rr.TicketID == ticketID {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r refundRequestRepo) ListByUser(_ context.Context, userID uint64) (out []model.RefundRequest, err error) {
	err = r.c.do(func(st *state) error {
		out = ordered(st.refundRequests, func(rr model.RefundRequest) bool { return rr.UserID == userID })
		return nil
	})
	return out, err
}

func (r refundRequestRepo) List(_ context.Context) (out []model.RefundRequest, err error) {
	err = r.c.do(func(st *state) error {
		out = ordered(st.refundRequests, nil)
		return nil
	})
	return out, err
}

func (r refundRequestRepo) Decide(_ context.Context, id uint64, status string, amount float64) error {
	return r.c.do(func(st *state) error {
		rr, ok := st.refundRequests[id]
		if !ok {
			return notFound("refund request", id)
		}
		rr.Status = status
		rr.RefundAmount = amount
		st.refundRequests[id] = rr
		return nil
	})
}

// Rides returns every ride ordered by id.  Tests only.
func (s *Store) Rides() []model.Ride {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ordered(s.state.rides, nil)
}
