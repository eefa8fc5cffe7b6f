package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/metro-ticketing/internal/model"
)

// UserRepo reads and writes the users table joined with roles.
type UserRepo struct{ db DBTX }

const userColumns = `u.id, u.first_name, u.last_name, u.email, u.password, u.role_id, r.name, u.created_at`

const userSelect = `SELECT ` + userColumns + ` FROM users u JOIN roles r ON r.id = u.role_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.RoleID, &u.RoleName, &u.CreatedAt)
	return u, err
}

// Create inserts u and sets its ID.  A duplicate email yields model.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.RoleID == 0 {
		u.RoleID = model.RoleNormal
	}
	id, err := insertID(r.db.ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, email, password, role_id) VALUES (?,?,?,?,?)",
		u.FirstName, u.LastName, u.Email, u.PasswordHash, u.RoleID))
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, userSelect+" WHERE u.id=? LIMIT 1", id))
	return u, translate(err)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.db.QueryRowContext(ctx, userSelect+" WHERE u.email=? LIMIT 1", email))
	return u, translate(err)
}

func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, userSelect+" ORDER BY u.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET password=? WHERE id=?", hash, id)
	return translate(err)
}

func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role model.Role) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET role_id=? WHERE id=?", role, id)
	return translate(err)
}

// LockForUpdate must run inside a transaction for the lock to hold.
func (r *UserRepo) LockForUpdate(ctx context.Context, id uint64) error {
	var got uint64
	err := r.db.QueryRowContext(ctx, "SELECT id FROM users WHERE id=? FOR UPDATE", id).Scan(&got)
	return translate(err)
}
