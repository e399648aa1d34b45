// internal/domain/quote.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a symbol/price pair returned by the price source at a point in time.
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name,omitempty"`
	Price  decimal.Decimal `json:"price"`
	AsOf   time.Time       `json:"as_of"`
}
