// internal/util/money.go
package util

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the only currency the ledger deals in.
const Currency = money.USD

// FormatUSD renders an amount as a currency string, e.g. "$9,740.00".
// Amounts are rounded half away from zero to the currency's minor unit.
func FormatUSD(amount decimal.Decimal) string {
	cur := money.New(0, Currency).Currency()
	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction)).IntPart()
	return money.New(minor, Currency).Display()
}
