package model

import "testing"

func TestRoleRank(t *testing.T) {
	tests := []struct {
		role Role
		want int
	}{
		{RoleViewer, 0},
		{RoleUser, 1},
		{RoleAdmin, 2},
		{Role("OWNER"), -1},
		{Role(""), -1},
		{Role("admin"), -1}, // roles are case-sensitive
	}
	for _, tt := range tests {
		if got := RoleRank(tt.role); got != tt.want {
			t.Errorf("RoleRank(%q) = %d, want %d", tt.role, got, tt.want)
		}
	}
}

func TestHasMinimumRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		required Role
		want     bool
	}{
		{"admin meets admin", RoleAdmin, RoleAdmin, true},
		{"admin meets viewer", RoleAdmin, RoleViewer, true},
		{"user meets viewer", RoleUser, RoleViewer, true},
		{"user fails admin", RoleUser, RoleAdmin, false},
		{"viewer fails user", RoleViewer, RoleUser, false},
		{"viewer meets viewer", RoleViewer, RoleViewer, true},
		{"unknown fails everything", Role("GUEST"), RoleViewer, false},
		{"nothing meets unknown", RoleAdmin, Role("GUEST"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasMinimumRole(tt.role, tt.required); got != tt.want {
				t.Errorf("HasMinimumRole(%q, %q) = %v, want %v", tt.role, tt.required, got, tt.want)
			}
		})
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []Role{RoleViewer, RoleUser, RoleAdmin} {
		if !ValidRole(r) {
			t.Errorf("ValidRole(%q) = false", r)
		}
	}
	if ValidRole(Role("SUPERUSER")) {
		t.Error("ValidRole accepted an unknown role")
	}
}

func TestPublicViewOmitsSecrets(t *testing.T) {
	u := User{ID: 7, Email: "a@b.c", PasswordHash: "hash", Role: RoleUser, IsActive: true}
	p := u.Public()
	if p.ID != 7 || p.Email != "a@b.c" || p.Role != RoleUser || !p.IsActive {
		t.Errorf("Public() lost fields: %+v", p)
	}
}
