package model

import (
	"database/sql"
	"time"
)

// User mirrors a row of the `users` table. Email is stored lowercase
// and is globally unique. RefreshTokenHash holds the SHA-256 digest of
// the single currently valid refresh token; NULL means no active
// session. The plain refresh token is never stored.
type User struct {
	ID               uint64
	Email            string
	PasswordHash     string
	FirstName        string
	LastName         string
	Role             Role
	IsActive         bool
	RefreshTokenHash sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PublicUser is the JSON view of a user returned to clients. It never
// carries the password hash or the stored refresh token.
type PublicUser struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public converts a row into its client-facing view.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
