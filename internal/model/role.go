package model

// Role is an authorisation tier. The three roles form a fixed total
// order by privilege: VIEWER < USER < ADMIN. The order is used only
// for "at least" checks, never for arithmetic.
type Role string

const (
	RoleViewer Role = "VIEWER" // read-only access
	RoleUser   Role = "USER"   // default role for self-registered accounts
	RoleAdmin  Role = "ADMIN"  // full user-management surface
)

// roleOrder lists roles from least to most privileged. Higher index
// means more permissions.
var roleOrder = []Role{RoleViewer, RoleUser, RoleAdmin}

// RoleRank returns the position of a role in the privilege order, or
// -1 for an unknown role. Unknown roles rank below every valid role.
func RoleRank(r Role) int {
	for i, v := range roleOrder {
		if v == r {
			return i
		}
	}
	return -1
}

// ValidRole reports whether r is one of the three defined roles.
func ValidRole(r Role) bool { return RoleRank(r) >= 0 }

// HasMinimumRole reports whether role meets or exceeds the required
// privilege level. An unknown role never satisfies any requirement.
func HasMinimumRole(role, required Role) bool {
	ur, rr := RoleRank(role), RoleRank(required)
	return ur >= 0 && rr >= 0 && ur >= rr
}
