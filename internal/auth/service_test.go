package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/iliyamo/user-management/internal/audit"
	"github.com/iliyamo/user-management/internal/model"
	"github.com/iliyamo/user-management/internal/repository"
)

// memStore is an in-memory UserStore for exercising the service
// without a database.
type memStore struct {
	mu   sync.Mutex
	seq  uint64
	rows map[uint64]model.User
}

func newMemStore() *memStore { return &memStore{rows: map[uint64]model.User{}} }

func (m *memStore) Create(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Email == u.Email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	m.seq++
	u.ID = m.seq
	m.rows[u.ID] = u
	return u, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Email == email {
			return row, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memStore) FindByID(_ context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return row, nil
}

func (m *memStore) SetRefreshToken(_ context.Context, id uint64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.RefreshTokenHash.String = hash
	row.RefreshTokenHash.Valid = true
	m.rows[id] = row
	return nil
}

func (m *memStore) ClearRefreshToken(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.RefreshTokenHash.String = ""
	row.RefreshTokenHash.Valid = false
	m.rows[id] = row
	return nil
}

func (m *memStore) setActive(id uint64, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.rows[id]
	row.IsActive = active
	m.rows[id] = row
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	svc := NewService(store, NewHasher(4), testIssuer(), audit.NopSink{})
	return svc, store
}

func TestRegister(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice@x.com", "password123", "Alice", "Smith")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.User.Role != model.RoleUser {
		t.Errorf("role = %q, want USER", res.User.Role)
	}
	if !res.User.IsActive {
		t.Error("new user is not active")
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Fatal("missing tokens")
	}

	// The stored value must be the hash of the issued refresh token.
	row, err := store.FindByID(ctx, res.User.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !row.RefreshTokenHash.Valid || row.RefreshTokenHash.String != HashRefreshToken(res.Tokens.RefreshToken) {
		t.Error("stored refresh hash does not match issued token")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@x.com", "password123", "Alice", "Smith"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, "alice@x.com", "different", "Other", "Person"); !errors.Is(err, ErrConflict) {
		t.Errorf("second register = %v, want ErrConflict", err)
	}
	// Uniqueness is case-insensitive: only the case differs.
	if _, err := svc.Register(ctx, "Alice@X.com", "different", "Other", "Person"); !errors.Is(err, ErrConflict) {
		t.Errorf("case-variant register = %v, want ErrConflict", err)
	}
}

func TestLogin(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice@x.com", "password123", "Alice", "Smith")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := svc.Login(ctx, "alice@x.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.User.ID != reg.User.ID {
		t.Errorf("login returned user %d, want %d", res.User.ID, reg.User.ID)
	}

	// Login supersedes the registration session.
	row, _ := store.FindByID(ctx, reg.User.ID)
	if row.RefreshTokenHash.String != HashRefreshToken(res.Tokens.RefreshToken) {
		t.Error("login did not overwrite the stored refresh token")
	}

	if _, err := svc.Login(ctx, "alice@x.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody@x.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginDeactivated(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, "bob@x.com", "password123", "Bob", "Jones")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	store.setActive(reg.User.ID, false)

	before, _ := store.FindByID(ctx, reg.User.ID)
	if _, err := svc.Login(ctx, "bob@x.com", "password123"); !errors.Is(err, ErrAccountDeactivated) {
		t.Fatalf("Login = %v, want ErrAccountDeactivated", err)
	}
	// No tokens issued: the stored refresh token is untouched.
	after, _ := store.FindByID(ctx, reg.User.ID)
	if after.RefreshTokenHash != before.RefreshTokenHash {
		t.Error("failed login mutated the stored refresh token")
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice@x.com", "password123", "Alice", "Smith")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	tokenA := reg.Tokens.RefreshToken

	pairB, err := svc.Refresh(ctx, reg.User.ID, tokenA)
	if err != nil {
		t.Fatalf("first Refresh: %v", err)
	}
	if pairB.RefreshToken == tokenA {
		t.Fatal("refresh did not rotate the token")
	}

	// The superseded token is permanently invalid.
	if _, err := svc.Refresh(ctx, reg.User.ID, tokenA); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("refresh with superseded token = %v, want ErrUnauthorized", err)
	}
	// The new one works.
	if _, err := svc.Refresh(ctx, reg.User.ID, pairB.RefreshToken); err != nil {
		t.Errorf("refresh with current token: %v", err)
	}
}

func TestRefreshRejections(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice@x.com", "password123", "Alice", "Smith")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Refresh(ctx, 9999, reg.Tokens.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("unknown user = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.Refresh(ctx, reg.User.ID, "not-the-stored-token"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("mismatched token = %v, want ErrUnauthorized", err)
	}

	// Deactivation leaves the stored token in place but blocks refresh.
	store.setActive(reg.User.ID, false)
	row, _ := store.FindByID(ctx, reg.User.ID)
	if !row.RefreshTokenHash.Valid {
		t.Fatal("deactivation cleared the stored refresh token")
	}
	if _, err := svc.Refresh(ctx, reg.User.ID, reg.Tokens.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("inactive user refresh = %v, want ErrUnauthorized", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice@x.com", "password123", "Alice", "Smith")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.Logout(ctx, reg.User.ID); err != nil {
		t.Fatalf("first Logout: %v", err)
	}
	row, _ := store.FindByID(ctx, reg.User.ID)
	if row.RefreshTokenHash.Valid {
		t.Error("logout did not clear the stored refresh token")
	}
	if err := svc.Logout(ctx, reg.User.ID); err != nil {
		t.Errorf("second Logout: %v", err)
	}
	// A logged-out session cannot refresh.
	if _, err := svc.Refresh(ctx, reg.User.ID, reg.Tokens.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("refresh after logout = %v, want ErrUnauthorized", err)
	}
	// Logging out a user that never existed is also not an error.
	if err := svc.Logout(ctx, 9999); err != nil {
		t.Errorf("logout of unknown user: %v", err)
	}
}
