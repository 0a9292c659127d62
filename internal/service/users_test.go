package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/iliyamo/user-management/internal/audit"
	"github.com/iliyamo/user-management/internal/auth"
	"github.com/iliyamo/user-management/internal/model"
	"github.com/iliyamo/user-management/internal/repository"
)

// fakeStore is an in-memory UserStore.
type fakeStore struct {
	seq  uint64
	rows map[uint64]model.User
}

func newFakeStore() *fakeStore { return &fakeStore{rows: map[uint64]model.User{}} }

func (f *fakeStore) Create(_ context.Context, u model.User) (model.User, error) {
	for _, row := range f.rows {
		if row.Email == u.Email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	f.seq++
	u.ID = f.seq
	f.rows[u.ID] = u
	return u, nil
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	for _, row := range f.rows {
		if row.Email == email {
			return row, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeStore) FindByID(_ context.Context, id uint64) (model.User, error) {
	row, ok := f.rows[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return row, nil
}

func (f *fakeStore) List(_ context.Context, q model.UserQuery) ([]model.User, int, error) {
	var out []model.User
	for _, row := range f.rows {
		if q.Role != "" && row.Role != q.Role {
			continue
		}
		if q.IsActive != nil && row.IsActive != *q.IsActive {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeStore) Update(_ context.Context, id uint64, p model.UserPatch) (model.User, error) {
	row, ok := f.rows[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	if p.Email != nil {
		for other, r := range f.rows {
			if other != id && r.Email == *p.Email {
				return model.User{}, repository.ErrEmailExists
			}
		}
		row.Email = *p.Email
	}
	if p.Password != nil {
		row.PasswordHash = *p.Password
	}
	if p.FirstName != nil {
		row.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		row.LastName = *p.LastName
	}
	if p.Role != nil {
		row.Role = *p.Role
	}
	if p.IsActive != nil {
		row.IsActive = *p.IsActive
	}
	f.rows[id] = row
	return row, nil
}

func (f *fakeStore) SetActive(_ context.Context, id uint64, active bool) error {
	row, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.IsActive = active
	f.rows[id] = row
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id uint64) error {
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeStore) Stats(context.Context) (model.DashboardStats, error) {
	var st model.DashboardStats
	for _, row := range f.rows {
		st.Users.Total++
		if row.IsActive {
			st.Users.Active++
		}
		switch row.Role {
		case model.RoleAdmin:
			st.Users.Admins++
		case model.RoleUser:
			st.Users.Users++
		case model.RoleViewer:
			st.Users.Viewers++
		}
	}
	st.Users.Inactive = st.Users.Total - st.Users.Active
	return st, nil
}

func newTestUsers(t *testing.T) (*Users, *fakeStore, uint64, uint64) {
	t.Helper()
	store := newFakeStore()
	svc := NewUsers(store, auth.NewHasher(4), audit.NopSink{})
	ctx := context.Background()

	admin, err := svc.Create(ctx, 0, CreateUserInput{
		Email: "admin@x.com", Password: "password123", Role: model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	user, err := svc.Create(ctx, admin.ID, CreateUserInput{
		Email: "user@x.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return svc, store, admin.ID, user.ID
}

func TestCreateDefaults(t *testing.T) {
	svc, _, _, userID := newTestUsers(t)
	u, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.Role != model.RoleUser {
		t.Errorf("default role = %q, want USER", u.Role)
	}
	if !u.IsActive {
		t.Error("default active = false, want true")
	}
	if u.PasswordHash == "password123" {
		t.Error("password stored in plaintext")
	}

	// Lookup by email normalizes before matching.
	byEmail, err := svc.GetByEmail(context.Background(), "  USER@X.com ")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != userID {
		t.Errorf("GetByEmail id = %d, want %d", byEmail.ID, userID)
	}
}

func TestCreateInvalidRole(t *testing.T) {
	svc, _, adminID, _ := newTestUsers(t)
	_, err := svc.Create(context.Background(), adminID, CreateUserInput{
		Email: "x@x.com", Password: "password123", Role: model.Role("SUPERUSER"),
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("Create = %v, want ErrInvalidRole", err)
	}
}

func TestDeleteSelfProtection(t *testing.T) {
	svc, store, adminID, userID := newTestUsers(t)
	ctx := context.Background()

	if err := svc.Delete(ctx, adminID, adminID); !errors.Is(err, ErrSelfDelete) {
		t.Errorf("self delete = %v, want ErrSelfDelete", err)
	}
	if _, ok := store.rows[adminID]; !ok {
		t.Fatal("self delete removed the row")
	}

	if err := svc.Delete(ctx, adminID, userID); err != nil {
		t.Errorf("delete other user: %v", err)
	}
	if _, ok := store.rows[userID]; ok {
		t.Error("delete left the row in place")
	}

	if err := svc.Delete(ctx, adminID, 9999); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("delete missing user = %v, want ErrNotFound", err)
	}
}

func TestDeactivateSelfProtection(t *testing.T) {
	svc, store, adminID, userID := newTestUsers(t)
	ctx := context.Background()

	if _, err := svc.Deactivate(ctx, adminID, adminID); !errors.Is(err, ErrSelfDeactivate) {
		t.Errorf("self deactivate = %v, want ErrSelfDeactivate", err)
	}

	msg, err := svc.Deactivate(ctx, adminID, userID)
	if err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if msg == "" {
		t.Error("empty confirmation message")
	}
	if store.rows[userID].IsActive {
		t.Error("user still active after deactivate")
	}

	// Repeating is not an error, just a different message.
	if _, err := svc.Deactivate(ctx, adminID, userID); err != nil {
		t.Errorf("second Deactivate: %v", err)
	}

	// Self-activation is permitted.
	store.rows[adminID] = setInactive(store.rows[adminID])
	if _, err := svc.Activate(ctx, adminID, adminID); err != nil {
		t.Errorf("self activate: %v", err)
	}
	if !store.rows[adminID].IsActive {
		t.Error("self activate did not flip the flag")
	}
}

func setInactive(u model.User) model.User {
	u.IsActive = false
	return u
}

func TestUpdatePermissions(t *testing.T) {
	svc, _, adminID, userID := newTestUsers(t)
	ctx := context.Background()
	name := "Updated"
	adminRole := model.RoleAdmin

	// A non-admin cannot touch another user's profile.
	_, err := svc.Update(ctx, userID, model.RoleUser, adminID, model.UserPatch{FirstName: &name})
	if !IsForbidden(err) {
		t.Errorf("non-admin updating other = %v, want forbidden", err)
	}
	// A non-admin cannot change their own role or active flag.
	_, err = svc.Update(ctx, userID, model.RoleUser, userID, model.UserPatch{Role: &adminRole})
	if !IsForbidden(err) {
		t.Errorf("non-admin role change = %v, want forbidden", err)
	}
	// But may update their own profile fields.
	u, err := svc.Update(ctx, userID, model.RoleUser, userID, model.UserPatch{FirstName: &name})
	if err != nil {
		t.Fatalf("self update: %v", err)
	}
	if u.FirstName != "Updated" {
		t.Errorf("first name = %q", u.FirstName)
	}
	// An admin may change another user's role.
	u, err = svc.Update(ctx, adminID, model.RoleAdmin, userID, model.UserPatch{Role: &adminRole})
	if err != nil {
		t.Fatalf("admin role change: %v", err)
	}
	if u.Role != model.RoleAdmin {
		t.Errorf("role = %q, want ADMIN", u.Role)
	}
}

func TestUpdatePatchSemantics(t *testing.T) {
	svc, store, adminID, userID := newTestUsers(t)
	ctx := context.Background()

	before := store.rows[userID]
	last := "OnlyLast"
	u, err := svc.Update(ctx, adminID, model.RoleAdmin, userID, model.UserPatch{LastName: &last})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	// Absent fields stay untouched.
	if u.Email != before.Email || u.FirstName != before.FirstName || u.Role != before.Role {
		t.Errorf("patch overwrote absent fields: %+v", u)
	}
	if u.LastName != "OnlyLast" {
		t.Errorf("last name = %q", u.LastName)
	}

	// A patched password is hashed, never stored verbatim.
	pw := "newpassword"
	u, err = svc.Update(ctx, adminID, model.RoleAdmin, userID, model.UserPatch{Password: &pw})
	if err != nil {
		t.Fatalf("Update password: %v", err)
	}
	if u.PasswordHash == pw || u.PasswordHash == before.PasswordHash {
		t.Error("password not hashed on update")
	}

	// Admin deactivating themselves via patch is still forbidden.
	inactive := false
	_, err = svc.Update(ctx, adminID, model.RoleAdmin, adminID, model.UserPatch{IsActive: &inactive})
	if !errors.Is(err, ErrSelfDeactivate) {
		t.Errorf("self deactivate via patch = %v, want ErrSelfDeactivate", err)
	}

	// An email collision surfaces as ErrEmailExists.
	email := "admin@x.com"
	_, err = svc.Update(ctx, adminID, model.RoleAdmin, userID, model.UserPatch{Email: &email})
	if !errors.Is(err, repository.ErrEmailExists) {
		t.Errorf("email collision = %v, want ErrEmailExists", err)
	}
}

func TestStats(t *testing.T) {
	svc, _, _, _ := newTestUsers(t)
	st, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Users.Total != 2 || st.Users.Admins != 1 || st.Users.Users != 1 {
		t.Errorf("stats = %+v", st.Users)
	}
}
