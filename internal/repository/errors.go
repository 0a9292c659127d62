// Package repository persists users and audit entries in MySQL. The
// sentinel errors below let higher layers distinguish failure causes
// without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("record not found")

// ErrEmailExists is returned when an insert or update would violate
// the unique email constraint.
var ErrEmailExists = errors.New("email already exists")
