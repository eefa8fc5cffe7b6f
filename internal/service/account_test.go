package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/metro-ticketing/internal/model"
	"github.com/iliyamo/metro-ticketing/internal/queue"
	"github.com/iliyamo/metro-ticketing/internal/repository/memory"
	"github.com/iliyamo/metro-ticketing/internal/service"
)

func newAccountService(store *memory.Store, events service.EventPublisher) *service.AccountService {
	return service.NewAccountService(store, service.AccountOptions{BcryptCost: 4, SessionTTL: time.Hour, Events: events, Now: fixedNow})
}

func register(t *testing.T, svc *service.AccountService, email string) model.User {
	t.Helper()
	u, err := svc.Register(context.Background(), service.RegisterInput{FirstName: "Nour", LastName: "Adel", Email: email, Password: "secret"})
	require.NoError(t, err)
	return u
}

func TestRegisterAndLogin(t *testing.T) {
	store := memory.NewStore()
	svc := newAccountService(store, nil)
	ctx := context.Background()

	u := register(t, svc, "Nour@Metro.io")
	require.Equal(t, "nour@metro.io", u.Email)
	require.Equal(t, model.RoleNormal, u.RoleID)
	require.True(t, u.IsNormal)
	require.NotEqual(t, "secret", u.PasswordHash)

	_, err := svc.Register(ctx, service.RegisterInput{Email: "nour@metro.io", Password: "x"})
	require.ErrorIs(t, err, model.ErrConflict)
	_, err = svc.Register(ctx, service.RegisterInput{Email: "not-an-email", Password: "x"})
	require.ErrorIs(t, err, model.ErrValidation)

	_, _, err = svc.Login(ctx, "nour@metro.io", "wrong")
	require.ErrorIs(t, err, model.ErrUnauthenticated)
	_, _, err = svc.Login(ctx, "ghost@metro.io", "secret")
	require.ErrorIs(t, err, model.ErrUnauthenticated)

	sess, who, err := svc.Login(ctx, " NOUR@metro.io", "secret")
	require.NoError(t, err)
	require.Equal(t, u.ID, who.ID)
	require.Len(t, sess.Token, 36)
	require.Equal(t, testNow.Add(time.Hour), sess.ExpiresAt)

	got, err := store.Repos().Sessions.UserByToken(ctx, sess.Token, testNow)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	_, err = store.Repos().Sessions.UserByToken(ctx, sess.Token, testNow.Add(2*time.Hour))
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, svc.Logout(ctx, sess.Token))
	_, err = store.Repos().Sessions.UserByToken(ctx, sess.Token, testNow)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestResetPassword(t *testing.T) {
	store := memory.NewStore()
	svc := newAccountService(store, nil)
	ctx := context.Background()
	u := register(t, svc, "a@metro.io")

	require.ErrorIs(t, svc.ResetPassword(ctx, u, " "), model.ErrValidation)
	require.NoError(t, svc.ResetPassword(ctx, u, "fresh"))

	_, _, err := svc.Login(ctx, "a@metro.io", "secret")
	require.ErrorIs(t, err, model.ErrUnauthenticated)
	_, _, err = svc.Login(ctx, "a@metro.io", "fresh")
	require.NoError(t, err)
}

func TestSeniorRequestLifecycle(t *testing.T) {
	store := memory.NewStore()
	events := &recorder{}
	svc := newAccountService(store, events)
	ctx := context.Background()
	u := register(t, svc, "a@metro.io")

	_, err := svc.RequestSenior(ctx, u, "")
	require.ErrorIs(t, err, model.ErrValidation)

	req, err := svc.RequestSenior(ctx, u, "29901011234567")
	require.NoError(t, err)
	require.Equal(t, model.RequestPending, req.Status)

	_, err = svc.RequestSenior(ctx, u, "29901011234567")
	require.ErrorIs(t, err, model.ErrConflict)

	decided, err := svc.DecideSenior(ctx, req.ID, model.RequestAccepted)
	require.NoError(t, err)
	require.Equal(t, model.RequestAccepted, decided.Status)

	profile, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, profile.IsSenior)
	require.Equal(t, "senior", profile.RoleName)

	_, err = svc.DecideSenior(ctx, req.ID, model.RequestRejected)
	require.ErrorIs(t, err, model.ErrConflict)
	_, err = svc.RequestSenior(ctx, u, "29901011234567")
	require.ErrorIs(t, err, model.ErrConflict)
	require.Equal(t, []string{queue.SeniorDecided}, events.types())
}

func TestRejectedSeniorMayRequestAgain(t *testing.T) {
	store := memory.NewStore()
	svc := newAccountService(store, nil)
	ctx := context.Background()
	u := register(t, svc, "a@metro.io")

	req, err := svc.RequestSenior(ctx, u, "1")
	require.NoError(t, err)
	_, err = svc.DecideSenior(ctx, req.ID, model.RequestRejected)
	require.NoError(t, err)

	profile, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, profile.IsNormal)

	_, err = svc.RequestSenior(ctx, u, "1")
	require.NoError(t, err)

	mine, err := svc.ListSeniorRequests(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	all, err := svc.ListAllSeniorRequests(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = svc.DecideSenior(ctx, 77, model.RequestAccepted)
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = svc.DecideSenior(ctx, req.ID, "pending")
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestOnlyNormalUsersRequestSenior(t *testing.T) {
	store := memory.NewStore()
	svc := newAccountService(store, nil)
	ctx := context.Background()

	for _, role := range []model.Role{model.RoleAdmin, model.RoleSenior} {
		u := newUser(t, store, role.String()+"@metro.io", role)
		_, err := svc.RequestSenior(ctx, u, "29901011234567")
		require.ErrorIs(t, err, model.ErrConflict, role.String())
	}
	all, err := svc.ListAllSeniorRequests(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestListUsersSetsFlags(t *testing.T) {
	store := memory.NewStore()
	svc := newAccountService(store, nil)
	register(t, svc, "a@metro.io")
	newUser(t, store, "admin@metro.io", model.RoleAdmin)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.True(t, users[0].IsNormal)
	require.True(t, users[1].IsAdmin)
}
