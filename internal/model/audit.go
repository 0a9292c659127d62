package model

import "time"

// AuditAction names an administrative action recorded in the audit trail.
type AuditAction string

const (
	AuditLogin          AuditAction = "LOGIN"
	AuditLogout         AuditAction = "LOGOUT"
	AuditRegister       AuditAction = "REGISTER"
	AuditCreateUser     AuditAction = "CREATE_USER"
	AuditUpdateUser     AuditAction = "UPDATE_USER"
	AuditDeleteUser     AuditAction = "DELETE_USER"
	AuditActivateUser   AuditAction = "ACTIVATE_USER"
	AuditDeactivateUser AuditAction = "DEACTIVATE_USER"
)

// AuditEntry is one append-only record of who did what. Resource is
// the target of the action (a user id for user-management actions) and
// Details carries free-form context such as the affected email.
// Writing an entry must never abort the operation that produced it.
type AuditEntry struct {
	ID          uint64            `json:"id,omitempty"`
	ActorUserID uint64            `json:"actor_user_id"`
	Action      AuditAction       `json:"action"`
	Resource    string            `json:"resource,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
