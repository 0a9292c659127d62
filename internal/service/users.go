// Package service implements the user-management operations consumed by
// the admin and users HTTP surfaces: CRUD over accounts, activation
// state, and dashboard statistics, with the self-protection rules
// applied before any mutation.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/iliyamo/user-management/internal/audit"
	"github.com/iliyamo/user-management/internal/auth"
	"github.com/iliyamo/user-management/internal/model"
	"github.com/iliyamo/user-management/internal/repository"
)

// UserStore is the persistence contract for user management. It is a
// superset of the auth core's store, satisfied by the same
// repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	FindByID(ctx context.Context, id uint64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context, q model.UserQuery) ([]model.User, int, error)
	Update(ctx context.Context, id uint64, p model.UserPatch) (model.User, error)
	SetActive(ctx context.Context, id uint64, active bool) error
	Delete(ctx context.Context, id uint64) error
	Stats(ctx context.Context) (model.DashboardStats, error)
}

// CreateUserInput is the admin-create payload. Role defaults to USER
// and Active to true when absent.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      model.Role
	Active    *bool
}

// Users orchestrates user management over its injected collaborators.
type Users struct {
	store  UserStore
	hasher auth.Hasher
	sink   audit.Sink
}

func NewUsers(store UserStore, hasher auth.Hasher, sink audit.Sink) *Users {
	return &Users{store: store, hasher: hasher, sink: sink}
}

// Create adds an account on behalf of an admin. Unlike register, the
// role and active flag may be chosen, and no tokens are issued.
func (s *Users) Create(ctx context.Context, actorID uint64, in CreateUserInput) (model.User, error) {
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		return model.User{}, ErrInvalidRole
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, err
	}
	u, err := s.store.Create(ctx, model.User{
		Email:        auth.NormalizeEmail(in.Email),
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         role,
		IsActive:     active,
	})
	if err != nil {
		return model.User{}, err
	}
	s.sink.Log(ctx, model.AuditEntry{
		ActorUserID: actorID,
		Action:      model.AuditCreateUser,
		Resource:    formatID(u.ID),
		Details:     map[string]string{"email": u.Email},
	})
	return u, nil
}

// Get fetches one user.
func (s *Users) Get(ctx context.Context, id uint64) (model.User, error) {
	return s.store.FindByID(ctx, id)
}

// GetByEmail fetches one user by normalized email.
func (s *Users) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return s.store.FindByEmail(ctx, auth.NormalizeEmail(email))
}

// List returns one page of users matching the query.
func (s *Users) List(ctx context.Context, q model.UserQuery) ([]model.User, model.PageMeta, error) {
	users, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, model.PageMeta{}, err
	}
	return users, model.NewPageMeta(total, q.Page, q.Limit), nil
}

// Update patches a user. Non-admin actors may update only their own
// profile and never the role or active flag; those rules come before
// any write so a rejected patch leaves the row untouched.
func (s *Users) Update(ctx context.Context, actorID uint64, actorRole model.Role, targetID uint64, p model.UserPatch) (model.User, error) {
	if _, err := s.store.FindByID(ctx, targetID); err != nil {
		return model.User{}, err
	}
	if actorRole != model.RoleAdmin {
		if targetID != actorID {
			return model.User{}, fmt.Errorf("update another user's profile: %w", ErrForbidden)
		}
		if p.Role != nil || p.IsActive != nil {
			return model.User{}, fmt.Errorf("change role or active flag: %w", ErrForbidden)
		}
	}
	if p.Role != nil && !model.ValidRole(*p.Role) {
		return model.User{}, ErrInvalidRole
	}
	if p.IsActive != nil && !*p.IsActive {
		if err := ForbidSelfDeactivate(actorID, targetID); err != nil {
			return model.User{}, err
		}
	}
	if p.Email != nil {
		e := auth.NormalizeEmail(*p.Email)
		p.Email = &e
	}
	if p.Password != nil {
		hash, err := s.hasher.Hash(*p.Password)
		if err != nil {
			return model.User{}, err
		}
		p.Password = &hash
	}
	u, err := s.store.Update(ctx, targetID, p)
	if err != nil {
		return model.User{}, err
	}
	s.sink.Log(ctx, model.AuditEntry{
		ActorUserID: actorID,
		Action:      model.AuditUpdateUser,
		Resource:    formatID(targetID),
	})
	return u, nil
}

// Delete removes a user permanently. An actor can never delete their
// own account.
func (s *Users) Delete(ctx context.Context, actorID, targetID uint64) error {
	if err := ForbidSelfDelete(actorID, targetID); err != nil {
		return err
	}
	u, err := s.store.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, targetID); err != nil {
		return err
	}
	s.sink.Log(ctx, model.AuditEntry{
		ActorUserID: actorID,
		Action:      model.AuditDeleteUser,
		Resource:    formatID(targetID),
		Details:     map[string]string{"email": u.Email},
	})
	return nil
}

// Activate turns a user's active flag on. Activating an already active
// user (or yourself) is allowed.
func (s *Users) Activate(ctx context.Context, actorID, targetID uint64) (string, error) {
	u, err := s.store.FindByID(ctx, targetID)
	if err != nil {
		return "", err
	}
	if u.IsActive {
		return "user is already active", nil
	}
	if err := s.store.SetActive(ctx, targetID, true); err != nil {
		return "", err
	}
	s.sink.Log(ctx, model.AuditEntry{
		ActorUserID: actorID,
		Action:      model.AuditActivateUser,
		Resource:    formatID(targetID),
	})
	return "user activated successfully", nil
}

// Deactivate turns a user's active flag off. The stored refresh token
// is left alone: existing access tokens keep working until expiry, and
// the next refresh attempt fails on the inactive account.
func (s *Users) Deactivate(ctx context.Context, actorID, targetID uint64) (string, error) {
	if err := ForbidSelfDeactivate(actorID, targetID); err != nil {
		return "", err
	}
	u, err := s.store.FindByID(ctx, targetID)
	if err != nil {
		return "", err
	}
	if !u.IsActive {
		return "user is already inactive", nil
	}
	if err := s.store.SetActive(ctx, targetID, false); err != nil {
		return "", err
	}
	s.sink.Log(ctx, model.AuditEntry{
		ActorUserID: actorID,
		Action:      model.AuditDeactivateUser,
		Resource:    formatID(targetID),
	})
	return "user deactivated successfully", nil
}

// Stats returns the dashboard aggregate.
func (s *Users) Stats(ctx context.Context) (model.DashboardStats, error) {
	return s.store.Stats(ctx)
}

// IsNotFound reports whether err means a missing user.
func IsNotFound(err error) bool { return errors.Is(err, repository.ErrNotFound) }

func formatID(id uint64) string { return strconv.FormatUint(id, 10) }
