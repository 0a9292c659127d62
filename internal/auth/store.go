package auth

import (
	"context"

	"github.com/iliyamo/user-management/internal/model"
)

// UserStore is the persistence contract consumed by the auth core. All
// operations are atomic single-row statements. Missing rows surface as
// repository.ErrNotFound and duplicate emails as
// repository.ErrEmailExists.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id uint64) (model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)

	// SetRefreshToken overwrites the user's stored refresh-token hash.
	// Issuing a new token invalidates every previously issued one,
	// because validation always compares against this single value.
	SetRefreshToken(ctx context.Context, userID uint64, tokenHash string) error

	// ClearRefreshToken nulls the stored hash. Clearing an already
	// empty field is not an error.
	ClearRefreshToken(ctx context.Context, userID uint64) error
}
