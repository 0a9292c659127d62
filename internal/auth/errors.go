// Package auth implements the authentication core: password hashing,
// token issuance and verification, and the register/login/refresh/logout
// session lifecycle. It owns no transport and no storage; both are
// injected through small interfaces.
package auth

import "errors"

// Typed failures returned by the auth core. Handlers map these onto
// HTTP statuses; the core never panics on bad input.
var (
	// ErrInvalidCredentials covers both unknown email and wrong
	// password, deliberately indistinguishable to avoid user
	// enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountDeactivated is returned when credentials are valid but
	// the account's is_active flag is off. Deactivated users obtain no
	// new tokens.
	ErrAccountDeactivated = errors.New("user account is deactivated")

	// ErrConflict is returned on registration with an email that
	// already exists.
	ErrConflict = errors.New("user with this email already exists")

	// ErrUnauthorized covers a missing user, an inactive account, or a
	// refresh token that does not match the stored one during refresh.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken is returned by token verification on signature
	// mismatch, malformed structure, or expiry.
	ErrInvalidToken = errors.New("invalid or expired token")
)
