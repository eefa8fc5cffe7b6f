// Package auth resolves session tokens to users and decides which roles
// may perform which actions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/metro-ticketing/internal/model"
)

// SessionLookup is the part of the session repository the resolver needs.
type SessionLookup interface {
	UserByToken(ctx context.Context, token string, now time.Time) (model.User, error)
}

// Resolver maps a session token to the user it belongs to.
type Resolver struct {
	sessions SessionLookup
	now      func() time.Time
}

// NewResolver returns a Resolver backed by sessions.
func NewResolver(sessions SessionLookup) *Resolver {
	return &Resolver{sessions: sessions, now: time.Now}
}

// Resolve returns the session's user with its role flags set.  Any failure
// to find a live session is reported as model.ErrUnauthenticated; other
// errors are storage failures.
func (r *Resolver) Resolve(ctx context.Context, token string) (*model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: missing session token", model.ErrUnauthenticated)
	}
	u, err := r.sessions.UserByToken(ctx, token, r.now().UTC())
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid or expired session", model.ErrUnauthenticated)
		}
		return nil, err
	}
	if !u.RoleID.Valid() {
		return nil, fmt.Errorf("%w: unknown role %d", model.ErrUnauthenticated, u.RoleID)
	}
	return u.WithRoleFlags(), nil
}
