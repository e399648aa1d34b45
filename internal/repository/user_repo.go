// internal/repository/user_repo.go
package repository

import (
	"context"

	"papertrade/internal/domain"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// CreateUser inserts a user. A duplicate username yields util.ErrUsernameTaken.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUserByID retrieves a user by their ID.
	GetUserByID(ctx context.Context, q DBExecutor, id int64) (*domain.User, error)
	// GetUserByUsername retrieves a user by their username.
	GetUserByUsername(ctx context.Context, q DBExecutor, username string) (*domain.User, error)
	// LockUserByID retrieves a user and holds a row lock until q's transaction ends.
	LockUserByID(ctx context.Context, q DBExecutor, id int64) (*domain.User, error)
	// AdjustCash adds delta (which may be negative) to the user's cash balance.
	AdjustCash(ctx context.Context, q DBExecutor, userID int64, delta decimal.Decimal) error
}
