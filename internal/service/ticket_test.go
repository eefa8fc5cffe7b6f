package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/metro-ticketing/internal/model"
	"github.com/iliyamo/metro-ticketing/internal/queue"
	"github.com/iliyamo/metro-ticketing/internal/repository/memory"
	"github.com/iliyamo/metro-ticketing/internal/service"
)

func newTicketService(store *memory.Store, events service.EventPublisher) *service.TicketService {
	return service.NewTicketService(store, service.NewFareService(store, ""), service.TicketOptions{Events: events, Now: fixedNow})
}

func buy(t *testing.T, svc *service.TicketService, u model.User, paid float64) service.TicketPurchase {
	t.Helper()
	out, err := svc.PurchaseTicket(context.Background(), u, service.PurchaseTicketInput{
		CreditCardNumber: "4111", HolderName: "T", PayedAmount: paid,
		Origin: "S1", Destination: "S3", TripDate: tripDate,
	})
	require.NoError(t, err)
	return out
}

func TestSeniorPaysHalf(t *testing.T) {
	store := memory.NewStore()
	events := &recorder{}
	svc := newTicketService(store, events)
	senior := newUser(t, store, "old@metro.io", model.RoleSenior)

	out := buy(t, svc, senior, 10)
	require.Equal(t, 5.0, out.Transaction.Amount)
	require.Equal(t, "50%", out.Discount)
	require.Equal(t, model.PurchaseTicket, out.Transaction.PurchaseType)
	require.Equal(t, out.Ticket.ID, out.Transaction.PurchasedID)
	require.Equal(t, model.RideUpcoming, out.Ride.Status)
	require.Equal(t, out.Ticket.ID, out.Ride.TicketID)
	require.Equal(t, []string{queue.TicketPurchased}, events.types())

	normal := newUser(t, store, "young@metro.io", model.RoleNormal)
	out = buy(t, svc, normal, 10)
	require.Equal(t, 10.0, out.Transaction.Amount)
	require.Equal(t, "0%", out.Discount)
}

func TestPurchaseTicketValidation(t *testing.T) {
	store := memory.NewStore()
	svc := newTicketService(store, nil)
	u := newUser(t, store, "a@metro.io", model.RoleNormal)
	ctx := context.Background()

	_, err := svc.PurchaseTicket(ctx, u, service.PurchaseTicketInput{PayedAmount: 5, Origin: "S1", TripDate: tripDate})
	require.ErrorIs(t, err, model.ErrValidation)
	_, err = svc.PurchaseTicket(ctx, u, service.PurchaseTicketInput{PayedAmount: -1, Origin: "S1", Destination: "S2", TripDate: tripDate})
	require.ErrorIs(t, err, model.ErrValidation)
	_, err = svc.PurchaseTicket(ctx, u, service.PurchaseTicketInput{PayedAmount: 5, Origin: "S1", Destination: "S2"})
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestPurchaseTicketPriceCheck(t *testing.T) {
	store := memory.NewStore()
	seedChain(t, store, 12)
	svc := service.NewTicketService(store, service.NewFareService(store, ""), service.TicketOptions{PriceCheck: true, Now: fixedNow})
	u := newUser(t, store, "a@metro.io", model.RoleNormal)
	ctx := context.Background()

	in := service.PurchaseTicketInput{PayedAmount: 10, Origin: "S1", Destination: "S11", TripDate: tripDate}
	_, err := svc.PurchaseTicket(ctx, u, in)
	require.ErrorIs(t, err, model.ErrValidation)

	in.PayedAmount = 15
	_, err = svc.PurchaseTicket(ctx, u, in)
	require.NoError(t, err)

	in.Destination = "nowhere"
	_, err = svc.PurchaseTicket(ctx, u, in)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestMonthlySubscriptionThenSecondRejected(t *testing.T) {
	store := memory.NewStore()
	svc := newTicketService(store, nil)
	u := newUser(t, store, "a@metro.io", model.RoleNormal)
	ctx := context.Background()

	in := service.PurchaseSubscriptionInput{PayedAmount: 20, SubType: model.SubMonthly, ZoneID: 1}
	out, err := svc.PurchaseSubscription(ctx, u, in)
	require.NoError(t, err)
	require.Equal(t, 10, out.Subscription.NoOfTickets)
	require.NotZero(t, out.TransactionID)

	_, err = svc.PurchaseSubscription(ctx, u, in)
	require.ErrorIs(t, err, model.ErrConflict)
}

func TestSubscriptionPaymentMustMatchPlan(t *testing.T) {
	store := memory.NewStore()
	svc := newTicketService(store, nil)
	ctx := context.Background()
	normal := newUser(t, store, "n@metro.io", model.RoleNormal)
	senior := newUser(t, store, "s@metro.io", model.RoleSenior)

	_, err := svc.PurchaseSubscription(ctx, normal, service.PurchaseSubscriptionInput{PayedAmount: 50, SubType: model.SubAnnual, ZoneID: 1})
	require.ErrorIs(t, err, model.ErrValidation)
	_, err = svc.PurchaseSubscription(ctx, normal, service.PurchaseSubscriptionInput{PayedAmount: 20, SubType: "weekly", ZoneID: 1})
	require.ErrorIs(t, err, model.ErrValidation)
	_, err = svc.PurchaseSubscription(ctx, normal, service.PurchaseSubscriptionInput{SubType: model.SubMonthly, ZoneID: 1})
	require.ErrorIs(t, err, model.ErrValidation)
	_, err = svc.PurchaseSubscription(ctx, normal, service.PurchaseSubscriptionInput{PayedAmount: 20.99, SubType: model.SubMonthly, ZoneID: 1})
	require.ErrorIs(t, err, model.ErrValidation)
	_, err = svc.PurchaseSubscription(ctx, normal, service.PurchaseSubscriptionInput{PayedAmount: 20, SubType: model.SubMonthly, ZoneID: 77})
	require.ErrorIs(t, err, model.ErrNotFound)

	out, err := svc.PurchaseSubscription(ctx, senior, service.PurchaseSubscriptionInput{PayedAmount: 50, SubType: model.SubAnnual, ZoneID: 3})
	require.NoError(t, err)
	require.Equal(t, 100, out.Subscription.NoOfTickets)

	plan, ok := service.PlanFor(model.RoleNormal, model.SubQuarterly)
	require.True(t, ok)
	require.Equal(t, service.SubscriptionPlan{Price: 50, Tickets: 50}, plan)
}

func TestDrawTicketMovesBalance(t *testing.T) {
	store := memory.NewStore()
	events := &recorder{}
	svc := newTicketService(store, events)
	u := newUser(t, store, "a@metro.io", model.RoleNormal)
	other := newUser(t, store, "b@metro.io", model.RoleNormal)
	ctx := context.Background()

	sub, err := svc.PurchaseSubscription(ctx, u, service.PurchaseSubscriptionInput{PayedAmount: 20, SubType: model.SubMonthly, ZoneID: 1})
	require.NoError(t, err)
	in := service.DrawTicketInput{SubID: sub.Subscription.ID, Origin: "S1", Destination: "S2", TripDate: tripDate}

	_, err = svc.DrawTicket(ctx, other, in)
	require.ErrorIs(t, err, model.ErrNotFound)

	for want := 9; want >= 0; want-- {
		out, err := svc.DrawTicket(ctx, u, in)
		require.NoError(t, err)
		require.Equal(t, want, out.RemainingTickets)
		require.Equal(t, sub.Subscription.ID, *out.Ticket.SubID)
	}
	_, err = svc.DrawTicket(ctx, u, in)
	require.ErrorIs(t, err, model.ErrConflict)

	got, err := store.Repos().Subscriptions.GetByID(ctx, sub.Subscription.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.NoOfTickets)
	require.Len(t, store.Rides(), 10)
	require.Contains(t, events.types(), queue.SubscriptionDrawn)

	// an exhausted subscription no longer blocks a new one
	_, err = svc.PurchaseSubscription(ctx, u, service.PurchaseSubscriptionInput{PayedAmount: 20, SubType: model.SubMonthly, ZoneID: 1})
	require.NoError(t, err)
}

func TestRefundPaidTicket(t *testing.T) {
	store := memory.NewStore()
	events := &recorder{}
	svc := newTicketService(store, events)
	u := newUser(t, store, "a@metro.io", model.RoleNormal)
	ctx := context.Background()

	bought := buy(t, svc, u, 20)
	req, err := svc.RequestRefund(ctx, u, bought.Ticket.ID)
	require.NoError(t, err)
	require.Equal(t, model.RequestPending, req.Status)

	_, err = svc.RequestRefund(ctx, u, bought.Ticket.ID)
	require.ErrorIs(t, err, model.ErrConflict)

	decided, err := svc.DecideRefund(ctx, req.ID, model.RequestAccepted)
	require.NoError(t, err)
	require.Equal(t, model.RequestAccepted, decided.Status)
	require.Equal(t, 20.0, decided.RefundAmount)
	require.Empty(t, store.Rides())
	require.Empty(t, store.Transactions())

	// the ticket row itself is kept
	tickets, err := svc.ListTickets(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 1)

	_, err = svc.DecideRefund(ctx, req.ID, model.RequestRejected)
	require.ErrorIs(t, err, model.ErrConflict)
	require.Contains(t, events.types(), queue.RefundDecided)
}

func TestRefundSubscriptionTicketCreditsBalance(t *testing.T) {
	store := memory.NewStore()
	svc := newTicketService(store, nil)
	u := newUser(t, store, "a@metro.io", model.RoleNormal)
	ctx := context.Background()

	sub, err := svc.PurchaseSubscription(ctx, u, service.PurchaseSubscriptionInput{PayedAmount: 20, SubType: model.SubMonthly, ZoneID: 1})
	require.NoError(t, err)
	draw, err := svc.DrawTicket(ctx, u, service.DrawTicketInput{SubID: sub.Subscription.ID, Origin: "S1", Destination: "S2", TripDate: tripDate})
	require.NoError(t, err)

	req, err := svc.RequestRefund(ctx, u, draw.Ticket.ID)
	require.NoError(t, err)
	decided, err := svc.DecideRefund(ctx, req.ID, model.RequestAccepted)
	require.NoError(t, err)
	require.Equal(t, 1.0, decided.RefundAmount)

	got, err := store.Repos().Subscriptions.GetByID(ctx, sub.Subscription.ID)
	require.NoError(t, err)
	require.Equal(t, 10, got.NoOfTickets)
	// only the subscription purchase is left in the ledger
	require.Len(t, store.Transactions(), 1)
	require.Equal(t, model.PurchaseSubscription, store.Transactions()[0].PurchaseType)
}

func TestRefundRejections(t *testing.T) {
	store := memory.NewStore()
	svc := newTicketService(store, nil)
	u := newUser(t, store, "a@metro.io", model.RoleNormal)
	other := newUser(t, store, "b@metro.io", model.RoleNormal)
	ctx := context.Background()

	_, err := svc.RequestRefund(ctx, u, 404)
	require.ErrorIs(t, err, model.ErrNotFound)

	bought := buy(t, svc, u, 20)
	_, err = svc.RequestRefund(ctx, other, bought.Ticket.ID)
	require.ErrorIs(t, err, model.ErrNotFound)

	expired, err := svc.PurchaseTicket(ctx, u, service.PurchaseTicketInput{
		PayedAmount: 5, Origin: "S1", Destination: "S2", TripDate: testNow.AddDate(0, 0, -1),
	})
	require.NoError(t, err)
	_, err = svc.RequestRefund(ctx, u, expired.Ticket.ID)
	require.ErrorIs(t, err, model.ErrValidation)

	req, err := svc.RequestRefund(ctx, u, bought.Ticket.ID)
	require.NoError(t, err)
	_, err = svc.DecideRefund(ctx, req.ID, "maybe")
	require.ErrorIs(t, err, model.ErrValidation)
	rejected, err := svc.DecideRefund(ctx, req.ID, model.RequestRejected)
	require.NoError(t, err)
	require.Zero(t, rejected.RefundAmount)
	require.Len(t, store.Rides(), 2)

	_, err = svc.DecideRefund(ctx, 999, model.RequestAccepted)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestSimulateRide(t *testing.T) {
	store := memory.NewStore()
	svc := newTicketService(store, nil)
	u := newUser(t, store, "a@metro.io", model.RoleNormal)
	ctx := context.Background()
	buy(t, svc, u, 5)

	ride, err := svc.SimulateRide(ctx, u, "S1", "S3", tripDate)
	require.NoError(t, err)
	require.Equal(t, model.RideCompleted, ride.Status)

	_, err = svc.SimulateRide(ctx, u, "S1", "S3", tripDate)
	require.ErrorIs(t, err, model.ErrNotFound)

	rides, err := svc.ListRides(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, model.RideCompleted, rides[0].Status)
}

func TestListSubscriptionsEmptyIsNotFound(t *testing.T) {
	store := memory.NewStore()
	svc := newTicketService(store, nil)
	_, err := svc.ListSubscriptions(context.Background(), 1)
	require.ErrorIs(t, err, model.ErrNotFound)
}
