// internal/quote/static.go
package quote

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"papertrade/internal/domain"
	"papertrade/internal/util"

	"github.com/shopspring/decimal"
)

// StaticSource serves prices from a fixed table. It backs local development and tests.
type StaticSource struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

// NewStaticSource creates a StaticSource from symbol → price.
func NewStaticSource(prices map[string]decimal.Decimal) *StaticSource {
	s := &StaticSource{prices: make(map[string]decimal.Decimal, len(prices))}
	for sym, p := range prices {
		s.Set(sym, p)
	}
	return s
}

// ParseStaticPrices parses "AAA=50.00,BBB=12.5" into a price table.
func ParseStaticPrices(table string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(table, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		sym, price, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("static price %q: want SYMBOL=PRICE", pair)
		}
		symbol, valid := NormalizeSymbol(sym)
		if !valid {
			return nil, fmt.Errorf("static price %q: bad symbol", pair)
		}
		p, err := decimal.NewFromString(strings.TrimSpace(price))
		if err != nil || !p.IsPositive() {
			return nil, fmt.Errorf("static price %q: price must be a positive number", pair)
		}
		prices[symbol] = p
	}
	return prices, nil
}

// Set changes the price of a symbol.
func (s *StaticSource) Set(symbol string, price decimal.Decimal) {
	s.mu.Lock()
	s.prices[strings.ToUpper(strings.TrimSpace(symbol))] = price
	s.mu.Unlock()
}

// Lookup returns the table price of symbol.
func (s *StaticSource) Lookup(ctx context.Context, symbol string) (domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return domain.Quote{}, fmt.Errorf("quote: %w", util.ErrServiceUnavailable)
	}
	symbol, ok := NormalizeSymbol(symbol)
	if !ok {
		return domain.Quote{}, util.ErrUnknownSymbol
	}
	s.mu.RLock()
	price, found := s.prices[symbol]
	s.mu.RUnlock()
	if !found {
		return domain.Quote{}, util.ErrUnknownSymbol
	}
	return domain.Quote{Symbol: symbol, Price: price, AsOf: time.Now().UTC()}, nil
}
