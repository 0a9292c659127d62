package service

import "errors"

// Typed failures for the user-management surface. Handlers map all
// forbidden-class errors to HTTP 403 via IsForbidden.
var (
	ErrForbidden      = errors.New("you do not have permission to perform this action")
	ErrSelfDelete     = errors.New("you cannot delete your own account")
	ErrSelfDeactivate = errors.New("you cannot deactivate your own account")
	ErrInvalidRole    = errors.New("invalid role")
)

// ForbidSelfDelete rejects a delete aimed at the actor's own account.
// Pure check, no side effects.
func ForbidSelfDelete(actorID, targetID uint64) error {
	if actorID == targetID {
		return ErrSelfDelete
	}
	return nil
}

// ForbidSelfDeactivate rejects a deactivation aimed at the actor's own
// account. Self-activation and self-update of other fields are allowed.
func ForbidSelfDeactivate(actorID, targetID uint64) error {
	if actorID == targetID {
		return ErrSelfDeactivate
	}
	return nil
}

// IsForbidden reports whether err is any of the forbidden-class
// failures.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrSelfDelete) ||
		errors.Is(err, ErrSelfDeactivate)
}
