// internal/domain/portfolio.go
package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Holding is the derived position of one symbol.
type Holding struct {
	Symbol    string
	Shares    int64
	LastPrice decimal.Decimal // price of the most recent trade in this symbol
	Value     decimal.Decimal // Shares × LastPrice
}

// Portfolio is a user's holdings valued at their last traded prices, plus cash.
type Portfolio struct {
	Holdings   []Holding
	Cash       decimal.Decimal
	TotalValue decimal.Decimal
}

// History is the unaggregated ledger of a user.
type History struct {
	Trades   []Transaction
	Deposits []CashDeposit
}

// AggregateHoldings reduces trades, given in chronological order, into current
// holdings sorted by symbol. Symbols whose shares sum to zero are omitted.
func AggregateHoldings(trades []Transaction) []Holding {
	bySymbol := make(map[string]*Holding)
	for _, t := range trades {
		h, ok := bySymbol[t.Symbol]
		if !ok {
			h = &Holding{Symbol: t.Symbol}
			bySymbol[t.Symbol] = h
		}
		h.Shares += t.Shares
		h.LastPrice = t.Price
	}

	holdings := make([]Holding, 0, len(bySymbol))
	for _, h := range bySymbol {
		if h.Shares == 0 {
			continue
		}
		h.Value = h.LastPrice.Mul(decimal.NewFromInt(h.Shares))
		holdings = append(holdings, *h)
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })
	return holdings
}

// NewPortfolio values holdings and adds cash to the total.
func NewPortfolio(holdings []Holding, cash decimal.Decimal) *Portfolio {
	total := cash
	for _, h := range holdings {
		total = total.Add(h.Value)
	}
	return &Portfolio{Holdings: holdings, Cash: cash, TotalValue: total}
}
