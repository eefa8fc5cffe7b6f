package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/metro-ticketing/internal/model"
)

type fakeSessions map[string]model.User

func (f fakeSessions) UserByToken(_ context.Context, token string, _ time.Time) (model.User, error) {
	if token == "boom" {
		return model.User{}, errors.New("db down")
	}
	u, ok := f[token]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func TestResolveSetsRoleFlags(t *testing.T) {
	r := NewResolver(fakeSessions{
		"a": {ID: 1, RoleID: model.RoleAdmin},
		"s": {ID: 2, RoleID: model.RoleSenior},
	})

	u, err := r.Resolve(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, u.IsAdmin)
	require.False(t, u.IsNormal)
	require.False(t, u.IsSenior)

	u, err = r.Resolve(context.Background(), "s")
	require.NoError(t, err)
	require.True(t, u.IsSenior)
	require.Equal(t, "senior", u.RoleName)
}

func TestResolveUnauthenticated(t *testing.T) {
	r := NewResolver(fakeSessions{"bad-role": {ID: 3, RoleID: 9}})

	for _, token := range []string{"", "   ", "unknown", "bad-role"} {
		_, err := r.Resolve(context.Background(), token)
		require.ErrorIs(t, err, model.ErrUnauthenticated, "token %q", token)
	}
}

func TestResolveStorageErrorIsNotUnauthenticated(t *testing.T) {
	r := NewResolver(fakeSessions{})
	_, err := r.Resolve(context.Background(), "boom")
	require.Error(t, err)
	require.False(t, errors.Is(err, model.ErrUnauthenticated))
}

func TestCan(t *testing.T) {
	require.True(t, Can(model.RoleAdmin, ManageTopology))
	require.False(t, Can(model.RoleNormal, ManageTopology))
	require.False(t, Can(model.RoleSenior, DecideRefund))
	require.True(t, Can(model.RoleSenior, BuyTicket))
	require.True(t, Can(model.RoleNormal, RequestSenior))
	require.False(t, Can(model.Role(0), BuyTicket))
	require.False(t, Can(model.RoleAdmin, Action(999)))
}
