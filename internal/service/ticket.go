package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/metro-ticketing/internal/model"
	"github.com/iliyamo/metro-ticketing/internal/queue"
)

// SeniorDiscountPercent is taken off the paid amount for senior buyers.
const SeniorDiscountPercent = 50

// TicketService implements purchases, subscription draws, rides and
// refunds for passengers.
type TicketService struct {
	store      Store
	fares      *FareService
	priceCheck bool
	events     EventPublisher
	now        func() time.Time
}

// TicketOptions configures a TicketService.
type TicketOptions struct {
	// PriceCheck makes direct purchases pay at least the walked fare
	// instead of a price of zero.
	PriceCheck bool
	Events     EventPublisher
	Now        func() time.Time
}

// NewTicketService returns a TicketService.  fares may be nil when
// PriceCheck is off.
func NewTicketService(store Store, fares *FareService, opts TicketOptions) *TicketService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{store: store, fares: fares, priceCheck: opts.PriceCheck, events: opts.Events, now: now}
}

// PurchaseTicketInput is the body of a direct ticket purchase.
type PurchaseTicketInput struct {
	CreditCardNumber string
	HolderName       string
	PayedAmount      float64
	Origin           string
	Destination      string
	TripDate         time.Time
}

// TicketPurchase is everything written by a purchase.
type TicketPurchase struct {
	Ticket      model.Ticket      `json:"ticket"`
	Transaction model.Transaction `json:"transaction"`
	Ride        model.Ride        `json:"ride"`
	Discount    string            `json:"discount"`
}

// PurchaseTicket buys a single ticket.  Seniors pay half of the paid
// amount.  Ticket, transaction and ride are written atomically.
func (s *TicketService) PurchaseTicket(ctx context.Context, user model.User, in PurchaseTicketInput) (TicketPurchase, error) {
	if err := validateTrip(in.Origin, in.Destination, in.TripDate); err != nil {
		return TicketPurchase{}, err
	}
	if in.PayedAmount < 0 {
		return TicketPurchase{}, fmt.Errorf("%w: payedAmount must not be negative", model.ErrValidation)
	}

	price := 0
	if s.priceCheck && s.fares != nil {
		fare, err := s.fares.PriceByName(ctx, in.Origin, in.Destination)
		if err != nil {
			return TicketPurchase{}, err
		}
		price = fare.Price
	}
	if in.PayedAmount < float64(price) {
		return TicketPurchase{}, fmt.Errorf("%w: payment is less than the ticket price %d", model.ErrValidation, price)
	}

	discount := 0
	if user.RoleID == model.RoleSenior {
		discount = SeniorDiscountPercent
	}
	amount := in.PayedAmount - in.PayedAmount*float64(discount)/100

	var out TicketPurchase
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		out.Ticket = model.Ticket{Origin: in.Origin, Destination: in.Destination, TripDate: in.TripDate, UserID: user.ID}
		if err := r.Tickets.Create(ctx, &out.Ticket); err != nil {
			return err
		}
		out.Transaction = model.Transaction{Amount: amount, UserID: user.ID, PurchasedID: out.Ticket.ID, PurchaseType: model.PurchaseTicket}
		if err := r.Transactions.Create(ctx, &out.Transaction); err != nil {
			return err
		}
		out.Ride = newRide(out.Ticket)
		return r.Rides.Create(ctx, &out.Ride)
	})
	if err != nil {
		return TicketPurchase{}, err
	}
	out.Discount = fmt.Sprintf("%d%%", discount)

	ev := queue.NewEvent(queue.TicketPurchased, user.ID, out.Ticket.ID)
	ev.Amount = amount
	s.publish(ctx, ev)
	return out, nil
}

// SubscriptionPlan is one row of the subscription price table.
type SubscriptionPlan struct {
	Price   int64
	Tickets int
}

var subscriptionPlans = map[bool]map[string]SubscriptionPlan{
	true: { // senior
		model.SubAnnual:    {Price: 50, Tickets: 100},
		model.SubQuarterly: {Price: 25, Tickets: 50},
		model.SubMonthly:   {Price: 10, Tickets: 10},
	},
	false: {
		model.SubAnnual:    {Price: 100, Tickets: 100},
		model.SubQuarterly: {Price: 50, Tickets: 50},
		model.SubMonthly:   {Price: 20, Tickets: 10},
	},
}

// PlanFor returns the plan for a role and subscription type.
func PlanFor(role model.Role, subType string) (SubscriptionPlan, bool) {
	p, ok := subscriptionPlans[role == model.RoleSenior][subType]
	return p, ok
}

// PurchaseSubscriptionInput is the body of a subscription purchase.
type PurchaseSubscriptionInput struct {
	CreditCardNumber string
	HolderName       string
	PayedAmount      float64
	SubType          string
	ZoneID           uint64
}

// SubscriptionPurchase is returned after a subscription purchase.
type SubscriptionPurchase struct {
	Subscription  model.Subscription `json:"subscription"`
	TransactionID uint64             `json:"transactionId"`
	Paid          float64            `json:"paid"`
}

// PurchaseSubscription validates the paid amount against the plan table
// and refuses a second subscription while one still has tickets left.
func (s *TicketService) PurchaseSubscription(ctx context.Context, user model.User, in PurchaseSubscriptionInput) (SubscriptionPurchase, error) {
	if in.PayedAmount <= 0 {
		return SubscriptionPurchase{}, fmt.Errorf("%w: payment amount is missing", model.ErrValidation)
	}
	plan, ok := PlanFor(user.RoleID, in.SubType)
	if !ok || in.PayedAmount != float64(plan.Price) {
		return SubscriptionPurchase{}, fmt.Errorf("%w: invalid payment for %s subscription", model.ErrValidation, in.SubType)
	}
	if in.ZoneID == 0 {
		return SubscriptionPurchase{}, fmt.Errorf("%w: zoneId is required", model.ErrValidation)
	}

	var out SubscriptionPurchase
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		if err := r.Users.LockForUpdate(ctx, user.ID); err != nil {
			return fmt.Errorf("user: %w", err)
		}
		if _, err := r.Zones.GetByID(ctx, in.ZoneID); err != nil {
			return fmt.Errorf("zone: %w", err)
		}
		if _, err := r.Subscriptions.ActiveByUser(ctx, user.ID); err == nil {
			return fmt.Errorf("%w: you have an active subscription with remaining tickets", model.ErrConflict)
		} else if !errors.Is(err, model.ErrNotFound) {
			return err
		}
		out.Subscription = model.Subscription{SubType: in.SubType, ZoneID: in.ZoneID, UserID: user.ID, NoOfTickets: plan.Tickets}
		if err := r.Subscriptions.Create(ctx, &out.Subscription); err != nil {
			return err
		}
		txn := model.Transaction{Amount: in.PayedAmount, UserID: user.ID, PurchasedID: out.Subscription.ID, PurchaseType: model.PurchaseSubscription}
		if err := r.Transactions.Create(ctx, &txn); err != nil {
			return err
		}
		out.TransactionID = txn.ID
		return nil
	})
	if err != nil {
		return SubscriptionPurchase{}, err
	}
	out.Paid = in.PayedAmount

	ev := queue.NewEvent(queue.SubscriptionPurchased, user.ID, out.Subscription.ID)
	ev.Amount = in.PayedAmount
	ev.Detail = in.SubType
	s.publish(ctx, ev)
	return out, nil
}

// DrawTicketInput is the body of a subscription ticket purchase.
type DrawTicketInput struct {
	SubID       uint64
	Origin      string
	Destination string
	TripDate    time.Time
}

// SubscriptionDraw is returned after a ticket is drawn from a subscription.
type SubscriptionDraw struct {
	Ticket           model.Ticket `json:"ticket"`
	Ride             model.Ride   `json:"ride"`
	RemainingTickets int          `json:"remainingTickets"`
}

// DrawTicket issues a ticket against the caller's subscription.  The
// subscription row is locked for the duration of the draw.
func (s *TicketService) DrawTicket(ctx context.Context, user model.User, in DrawTicketInput) (SubscriptionDraw, error) {
	if in.SubID == 0 {
		return SubscriptionDraw{}, fmt.Errorf("%w: subId is required", model.ErrValidation)
	}
	if err := validateTrip(in.Origin, in.Destination, in.TripDate); err != nil {
		return SubscriptionDraw{}, err
	}

	var out SubscriptionDraw
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		sub, err := r.Subscriptions.GetForUpdate(ctx, in.SubID)
		if err != nil {
			return fmt.Errorf("subscription: %w", err)
		}
		if sub.UserID != user.ID {
			return fmt.Errorf("subscription: %w", model.ErrNotFound)
		}
		if sub.NoOfTickets <= 0 {
			return fmt.Errorf("%w: no tickets in your subscription", model.ErrConflict)
		}

		subID := sub.ID
		out.Ticket = model.Ticket{Origin: in.Origin, Destination: in.Destination, TripDate: in.TripDate, UserID: user.ID, SubID: &subID}
		if err := r.Tickets.Create(ctx, &out.Ticket); err != nil {
			return err
		}
		txn := model.Transaction{Amount: 0, UserID: user.ID, PurchasedID: out.Ticket.ID, PurchaseType: model.PurchaseSubTicket}
		if err := r.Transactions.Create(ctx, &txn); err != nil {
			return err
		}
		out.Ride = newRide(out.Ticket)
		if err := r.Rides.Create(ctx, &out.Ride); err != nil {
			return err
		}
		if err := r.Subscriptions.AdjustTickets(ctx, sub.ID, -1); err != nil {
			return err
		}
		out.RemainingTickets = sub.NoOfTickets - 1
		return nil
	})
	if err != nil {
		return SubscriptionDraw{}, err
	}

	ev := queue.NewEvent(queue.SubscriptionDrawn, user.ID, out.Ticket.ID)
	ev.Detail = fmt.Sprintf("subscription=%d remaining=%d", in.SubID, out.RemainingTickets)
	s.publish(ctx, ev)
	return out, nil
}

// RequestRefund files a pending refund for one of the caller's tickets.
func (s *TicketService) RequestRefund(ctx context.Context, user model.User, ticketID uint64) (model.RefundRequest, error) {
	if ticketID == 0 {
		return model.RefundRequest{}, fmt.Errorf("%w: ticket id is required", model.ErrValidation)
	}
	var req model.RefundRequest
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		t, err := r.Tickets.GetByID(ctx, ticketID)
		if err != nil {
			return fmt.Errorf("ticket: %w", err)
		}
		if t.UserID != user.ID {
			return fmt.Errorf("ticket: %w", model.ErrNotFound)
		}
		exists, err := r.RefundRequests.ExistsForTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: refund request already exists for this ticket", model.ErrConflict)
		}
		if t.TripDate.Before(s.now()) {
			return fmt.Errorf("%w: cannot refund an expired ticket", model.ErrValidation)
		}
		req = model.RefundRequest{TicketID: ticketID, UserID: user.ID, Status: model.RequestPending}
		return r.RefundRequests.Create(ctx, &req)
	})
	return req, err
}

// DecideRefund accepts or rejects a pending refund request.  Accepting a
// paid ticket refunds its transaction amount; accepting a subscription
// ticket credits one ticket back and records an amount of 1.  Either way
// the ticket's ride and transaction are removed.
func (s *TicketService) DecideRefund(ctx context.Context, requestID uint64, status string) (model.RefundRequest, error) {
	if status != model.RequestAccepted && status != model.RequestRejected {
		return model.RefundRequest{}, fmt.Errorf("%w: invalid refund status %q", model.ErrValidation, status)
	}
	var req model.RefundRequest
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		var err error
		req, err = r.RefundRequests.GetForUpdate(ctx, requestID)
		if err != nil {
			return fmt.Errorf("refund request: %w", err)
		}
		if req.Status != model.RequestPending {
			return fmt.Errorf("%w: refund request is already %s", model.ErrConflict, req.Status)
		}
		if status == model.RequestRejected {
			req.Status, req.RefundAmount = model.RequestRejected, 0
			return r.RefundRequests.Decide(ctx, req.ID, req.Status, 0)
		}

		t, err := r.Tickets.GetByID(ctx, req.TicketID)
		if err != nil {
			return fmt.Errorf("ticket: %w", err)
		}
		var amount float64
		if t.SubID == nil {
			txn, err := r.Transactions.FindForTicket(ctx, t.ID)
			if err != nil {
				return fmt.Errorf("ticket transaction: %w", err)
			}
			amount = txn.Amount
		} else {
			if _, err := r.Subscriptions.GetForUpdate(ctx, *t.SubID); err != nil {
				return fmt.Errorf("subscription: %w", err)
			}
			if err := r.Subscriptions.AdjustTickets(ctx, *t.SubID, 1); err != nil {
				return err
			}
			amount = 1
		}
		req.Status, req.RefundAmount = model.RequestAccepted, amount
		if err := r.RefundRequests.Decide(ctx, req.ID, req.Status, amount); err != nil {
			return err
		}
		if err := r.Rides.DeleteByTicket(ctx, t.ID); err != nil {
			return err
		}
		return r.Transactions.DeleteForTicket(ctx, t.ID)
	})
	if err != nil {
		return model.RefundRequest{}, err
	}

	ev := queue.NewEvent(queue.RefundDecided, req.UserID, req.ID)
	ev.Amount = req.RefundAmount
	ev.Status = req.Status
	s.publish(ctx, ev)
	return req, nil
}

// SimulateRide completes the caller's matching upcoming ride.
func (s *TicketService) SimulateRide(ctx context.Context, user model.User, origin, destination string, tripDate time.Time) (model.Ride, error) {
	if err := validateTrip(origin, destination, tripDate); err != nil {
		return model.Ride{}, err
	}
	var ride model.Ride
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		var err error
		ride, err = r.Rides.FindUpcoming(ctx, user.ID, origin, destination, tripDate)
		if err != nil {
			return fmt.Errorf("upcoming ride: %w", err)
		}
		ride.Status = model.RideCompleted
		return r.Rides.UpdateStatus(ctx, ride.ID, model.RideCompleted)
	})
	return ride, err
}

func (s *TicketService) ListTickets(ctx context.Context, userID uint64) ([]model.Ticket, error) {
	return s.store.Repos().Tickets.ListByUser(ctx, userID)
}

func (s *TicketService) ListRides(ctx context.Context, userID uint64) ([]model.Ride, error) {
	return s.store.Repos().Rides.ListByUser(ctx, userID)
}

// ListSubscriptions returns ErrNotFound when the user has none.
func (s *TicketService) ListSubscriptions(ctx context.Context, userID uint64) ([]model.Subscription, error) {
	subs, err := s.store.Repos().Subscriptions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, fmt.Errorf("%w: no subscription found for the user", model.ErrNotFound)
	}
	return subs, nil
}

func (s *TicketService) ListRefunds(ctx context.Context, userID uint64) ([]model.RefundRequest, error) {
	return s.store.Repos().RefundRequests.ListByUser(ctx, userID)
}

func (s *TicketService) ListAllRefunds(ctx context.Context) ([]model.RefundRequest, error) {
	return s.store.Repos().RefundRequests.List(ctx)
}

func (s *TicketService) publish(ctx context.Context, ev queue.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Printf("ticket-service: publish %s: %v", ev.Type, err)
	}
}

func newRide(t model.Ticket) model.Ride {
	return model.Ride{
		Status:      model.RideUpcoming,
		Origin:      t.Origin,
		Destination: t.Destination,
		UserID:      t.UserID,
		TicketID:    t.ID,
		TripDate:    t.TripDate,
	}
}

func validateTrip(origin, destination string, tripDate time.Time) error {
	if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
		return fmt.Errorf("%w: origin and destination are required", model.ErrValidation)
	}
	if tripDate.IsZero() {
		return fmt.Errorf("%w: tripDate is required", model.ErrValidation)
	}
	return nil
}
