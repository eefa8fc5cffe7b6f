package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/metro-ticketing/internal/model"
	"github.com/iliyamo/metro-ticketing/internal/queue"
	"github.com/iliyamo/metro-ticketing/internal/utils"
)

// AccountService handles registration, sessions, passwords and senior
// status requests.
type AccountService struct {
	store      Store
	bcryptCost int
	sessionTTL time.Duration
	events     EventPublisher
	now        func() time.Time
}

// AccountOptions configures an AccountService.
type AccountOptions struct {
	BcryptCost int
	SessionTTL time.Duration
	Events     EventPublisher
	Now        func() time.Time
}

func NewAccountService(store Store, opts AccountOptions) *AccountService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AccountService{
		store:      store,
		bcryptCost: opts.BcryptCost,
		sessionTTL: opts.SessionTTL,
		events:     opts.Events,
		now:        opts.Now,
	}
}

// RegisterInput is the body of a registration.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register creates a normal-role user.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return model.User{}, fmt.Errorf("%w: email/password required", model.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.User{}, fmt.Errorf("%w: invalid email", model.ErrValidation)
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		RoleID:       model.RoleNormal,
	}
	if err := s.store.Repos().Users.Create(ctx, &u); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.User{}, fmt.Errorf("%w: email already exists", model.ErrConflict)
		}
		return model.User{}, err
	}
	return *u.WithRoleFlags(), nil
}

// Login verifies credentials and opens a session.
func (s *AccountService) Login(ctx context.Context, email, password string) (model.Session, model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return model.Session{}, model.User{}, fmt.Errorf("%w: email/password required", model.ErrValidation)
	}
	repos := s.store.Repos()
	u, err := repos.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Session{}, model.User{}, fmt.Errorf("%w: invalid credentials", model.ErrUnauthenticated)
		}
		return model.Session{}, model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.Session{}, model.User{}, fmt.Errorf("%w: invalid credentials", model.ErrUnauthenticated)
	}
	now := s.now().UTC()
	sess := model.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := repos.Sessions.Create(ctx, sess); err != nil {
		return model.Session{}, model.User{}, err
	}
	return sess, *u.WithRoleFlags(), nil
}

// Logout ends a session.  Unknown tokens are ignored.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.Repos().Sessions.Delete(ctx, token)
}

// ResetPassword replaces the caller's password.
func (s *AccountService) ResetPassword(ctx context.Context, user model.User, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("%w: newPassword is required", model.ErrValidation)
	}
	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.store.Repos().Users.UpdatePassword(ctx, user.ID, hash)
}

func (s *AccountService) Profile(ctx context.Context, userID uint64) (model.User, error) {
	u, err := s.store.Repos().Users.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("user: %w", err)
	}
	return *u.WithRoleFlags(), nil
}

func (s *AccountService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.store.Repos().Users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].WithRoleFlags()
	}
	return users, nil
}

// RequestSenior files a senior-status request.  Only normal users may
// file one, and not while a pending or accepted request exists.
func (s *AccountService) RequestSenior(ctx context.Context, user model.User, nationalID string) (model.SeniorRequest, error) {
	nationalID = strings.TrimSpace(nationalID)
	if nationalID == "" {
		return model.SeniorRequest{}, fmt.Errorf("%w: nationalId is required", model.ErrValidation)
	}
	if user.RoleID != model.RoleNormal {
		return model.SeniorRequest{}, fmt.Errorf("%w: only normal users can request senior status", model.ErrConflict)
	}
	var req model.SeniorRequest
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		if err := r.Users.LockForUpdate(ctx, user.ID); err != nil {
			return fmt.Errorf("user: %w", err)
		}
		open, err := r.SeniorRequests.HasOpen(ctx, user.ID)
		if err != nil {
			return err
		}
		if open {
			return fmt.Errorf("%w: senior request already exists for the user", model.ErrConflict)
		}
		req = model.SeniorRequest{UserID: user.ID, NationalID: nationalID, Status: model.RequestPending}
		return r.SeniorRequests.Create(ctx, &req)
	})
	return req, err
}

// DecideSenior accepts or rejects a pending senior request.  Acceptance
// promotes the requester to the senior role.
func (s *AccountService) DecideSenior(ctx context.Context, requestID uint64, status string) (model.SeniorRequest, error) {
	if status != model.RequestAccepted && status != model.RequestRejected {
		return model.SeniorRequest{}, fmt.Errorf("%w: invalid senior status %q", model.ErrValidation, status)
	}
	var req model.SeniorRequest
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		var err error
		req, err = r.SeniorRequests.GetForUpdate(ctx, requestID)
		if err != nil {
			return fmt.Errorf("senior request: %w", err)
		}
		if req.Status != model.RequestPending {
			return fmt.Errorf("%w: senior request is already %s", model.ErrConflict, req.Status)
		}
		if err := r.SeniorRequests.UpdateStatus(ctx, req.ID, status); err != nil {
			return err
		}
		req.Status = status
		if status == model.RequestAccepted {
			return r.Users.UpdateRole(ctx, req.UserID, model.RoleSenior)
		}
		return nil
	})
	if err != nil {
		return model.SeniorRequest{}, err
	}
	if s.events != nil {
		ev := queue.NewEvent(queue.SeniorDecided, req.UserID, req.ID)
		ev.Status = req.Status
		if err := s.events.Publish(ctx, ev); err != nil {
			log.Printf("account-service: publish %s: %v", ev.Type, err)
		}
	}
	return req, nil
}

func (s *AccountService) ListSeniorRequests(ctx context.Context, userID uint64) ([]model.SeniorRequest, error) {
	return s.store.Repos().SeniorRequests.ListByUser(ctx, userID)
}

func (s *AccountService) ListAllSeniorRequests(ctx context.Context) ([]model.SeniorRequest, error) {
	return s.store.Repos().SeniorRequests.List(ctx)
}
