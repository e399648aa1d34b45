// internal/quote/source.go
package quote

import (
	"context"
	"regexp"
	"strings"

	"papertrade/internal/domain"
)

// Source resolves a ticker symbol to its current price.
//
// Lookup is case-insensitive. It returns util.ErrUnknownSymbol when the symbol
// does not exist or the upstream answer lacks a price or symbol, and
// util.ErrServiceUnavailable when the upstream cannot be reached in time.
type Source interface {
	Lookup(ctx context.Context, symbol string) (domain.Quote, error)
}

var symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-=^]{0,15}$`)

// NormalizeSymbol upper-cases and trims a symbol, reporting whether it is well formed.
func NormalizeSymbol(symbol string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return s, symbolPattern.MatchString(s)
}
