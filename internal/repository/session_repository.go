package repository

import (
	"context"
	"time"

	"github.com/iliyamo/metro-ticketing/internal/model"
)

// SessionRepo persists opaque session tokens.
type SessionRepo struct{ db DBTX }

func (r *SessionRepo) Create(ctx context.Context, s model.Session) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?,?,?,?)",
		s.Token, s.UserID, s.ExpiresAt, s.CreatedAt)
	return translate(err)
}

// UserByToken returns the owner of a session that is still valid at now.
func (r *SessionRepo) UserByToken(ctx context.Context, token string, now time.Time) (model.User, error) {
	const q = `SELECT ` + userColumns + `
FROM sessions s
JOIN users u ON u.id = s.user_id
JOIN roles r ON r.id = u.role_id
WHERE s.token = ? AND s.expires_at > ?
LIMIT 1`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, token, now))
	return u, translate(err)
}

// Delete removes a session.  Missing tokens are not an error.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE token=?", token)
	return err
}
