package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/user-management/internal/audit"
	"github.com/iliyamo/user-management/internal/model"
	"github.com/iliyamo/user-management/internal/repository"
)

// AuthResult is returned by Register and Login: the freshly issued
// token pair plus the public view of the account.
type AuthResult struct {
	Tokens TokenPair        `json:"tokens"`
	User   model.PublicUser `json:"user"`
}

// Service orchestrates the session lifecycle over its injected
// collaborators. It holds no mutable state of its own; all coordination
// is delegated to the store's per-row atomicity.
type Service struct {
	users  UserStore
	hasher Hasher
	issuer *TokenIssuer
	sink   audit.Sink
}

// NewService wires the auth service. Pass audit.NopSink{} when no
// audit trail is wanted.
func NewService(users UserStore, hasher Hasher, issuer *TokenIssuer, sink audit.Sink) *Service {
	return &Service{users: users, hasher: hasher, issuer: issuer, sink: sink}
}

// Register creates an account with the default USER role, issues a
// token pair and persists the refresh-token hash. Fails with
// ErrConflict when the email is already taken.
func (s *Service) Register(ctx context.Context, email, password, firstName, lastName string) (AuthResult, error) {
	email = NormalizeEmail(email)

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, err
	}
	u, err := s.users.Create(ctx, model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Role:         model.RoleUser,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return AuthResult{}, ErrConflict
		}
		return AuthResult{}, err
	}

	pair, err := s.issueAndStore(ctx, u)
	if err != nil {
		return AuthResult{}, err
	}
	s.sink.Log(ctx, model.AuditEntry{
		ActorUserID: u.ID,
		Action:      model.AuditRegister,
		Details:     map[string]string{"email": u.Email},
	})
	return AuthResult{Tokens: pair, User: u.Public()}, nil
}

// Login verifies credentials and starts a new session, superseding any
// previously stored refresh token. Unknown email and wrong password
// are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return AuthResult{}, ErrAccountDeactivated
	}

	pair, err := s.issueAndStore(ctx, u)
	if err != nil {
		return AuthResult{}, err
	}
	s.sink.Log(ctx, model.AuditEntry{ActorUserID: u.ID, Action: model.AuditLogin})
	return AuthResult{Tokens: pair, User: u.Public()}, nil
}

// Refresh exchanges a valid refresh token for a new pair. The
// presented token must hash to exactly the stored value; that single
// comparison is the sole server-side revocation mechanism, so the old
// token becomes permanently unusable once the new pair is stored.
func (s *Service) Refresh(ctx context.Context, userID uint64, presented string) (TokenPair, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, err
	}
	if !u.IsActive {
		return TokenPair{}, ErrUnauthorized
	}
	if !u.RefreshTokenHash.Valid || u.RefreshTokenHash.String != HashRefreshToken(presented) {
		return TokenPair{}, ErrUnauthorized
	}
	return s.issueAndStore(ctx, u)
}

// Logout clears the stored refresh token. It is idempotent: logging
// out twice, or with no active session, is not an error.
func (s *Service) Logout(ctx context.Context, userID uint64) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	s.sink.Log(ctx, model.AuditEntry{ActorUserID: userID, Action: model.AuditLogout})
	return nil
}

func (s *Service) issueAndStore(ctx context.Context, u model.User) (TokenPair, error) {
	pair, err := s.issuer.Issue(u)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.users.SetRefreshToken(ctx, u.ID, HashRefreshToken(pair.RefreshToken)); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// NormalizeEmail lowercases and trims an email address. Uniqueness is
// case-insensitive: addresses differing only in case conflict.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
