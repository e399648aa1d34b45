// internal/domain/deposit.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashDeposit records virtual cash added to a user's account. Rows are append-only.
type CashDeposit struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"` // always positive, NUMERIC(20, 4) in DB
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// NewCashDeposit creates a new CashDeposit instance.
func NewCashDeposit(userID int64, amount decimal.Decimal) *CashDeposit {
	return &CashDeposit{
		UserID:    userID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
}
