// internal/domain/user.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a registered trader.
type User struct {
	ID           int64           `db:"id" json:"id"`             // Primary key, BIGSERIAL in DB
	Username     string          `db:"username" json:"username"` // Unique, immutable after creation
	PasswordHash string          `db:"hash" json:"-"`            // bcrypt hash
	Cash         decimal.Decimal `db:"cash" json:"cash"`         // NUMERIC(20, 4) in DB, never negative
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// NewUser creates a new User instance holding the starting cash.
func NewUser(username, passwordHash string, startingCash decimal.Decimal) *User {
	now := time.Now().UTC()
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Cash:         startingCash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
