// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide tells a buy from a sell. It is derived from the sign of Shares and never stored.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// Transaction is one executed trade. Rows are append-only.
type Transaction struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Symbol    string          `db:"symbol" json:"symbol"` // canonical, uppercased
	Shares    int64           `db:"shares" json:"shares"` // positive = buy, negative = sell
	Price     decimal.Decimal `db:"price" json:"price"`   // per share at execution, NUMERIC(20, 4)
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// NewBuy creates the ledger row for buying shares at price.
func NewBuy(userID int64, symbol string, shares int64, price decimal.Decimal) *Transaction {
	return newTransaction(userID, symbol, shares, price)
}

// NewSell creates the ledger row for selling shares at price; the stored share count is negative.
func NewSell(userID int64, symbol string, shares int64, price decimal.Decimal) *Transaction {
	return newTransaction(userID, symbol, -shares, price)
}

func newTransaction(userID int64, symbol string, shares int64, price decimal.Decimal) *Transaction {
	return &Transaction{
		UserID:    userID,
		Symbol:    symbol,
		Shares:    shares,
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}
}

// Side reports whether the row is a buy or a sell.
func (t Transaction) Side() TradeSide {
	if t.Shares < 0 {
		return TradeSideSell
	}
	return TradeSideBuy
}

// Total is the signed cash value of the trade (shares × price).
func (t Transaction) Total() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Shares))
}
