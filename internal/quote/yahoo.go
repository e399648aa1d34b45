// internal/quote/yahoo.go
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"papertrade/internal/domain"
	"papertrade/internal/util"

	"github.com/shopspring/decimal"
)

// DefaultYahooBaseURL is the Yahoo Finance chart API host.
const DefaultYahooBaseURL = "https://query2.finance.yahoo.com"

// YahooSource looks up prices with the Yahoo Finance v8 chart endpoint.
// Successful answers are cached per symbol for ttl; a zero ttl disables the cache.
type YahooSource struct {
	baseURL string
	cli     *http.Client
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedQuote
}

type cachedQuote struct {
	quote   domain.Quote
	fetched time.Time
}

// NewYahooSource creates a YahooSource. An empty baseURL selects DefaultYahooBaseURL.
func NewYahooSource(baseURL string, timeout, ttl time.Duration, logger *slog.Logger) *YahooSource {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &YahooSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		cli:     &http.Client{Timeout: timeout},
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		cache:   make(map[string]cachedQuote),
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string          `json:"symbol"`
				LongName           string          `json:"longName"`
				ShortName          string          `json:"shortName"`
				RegularMarketPrice decimal.Decimal `json:"regularMarketPrice"`
				RegularMarketTime  int64           `json:"regularMarketTime"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Lookup fetches the current price of symbol.
func (s *YahooSource) Lookup(ctx context.Context, symbol string) (domain.Quote, error) {
	symbol, ok := NormalizeSymbol(symbol)
	if !ok {
		return domain.Quote{}, util.ErrUnknownSymbol
	}

	if q, ok := s.cached(symbol); ok {
		return q, nil
	}

	addr := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", s.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("quote: build request: %w", err)
	}
	req.Header.Set("User-Agent", "papertrade/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := s.cli.Do(req)
	if err != nil {
		s.logger.Warn("Quote lookup failed", "symbol", symbol, "error", err)
		return domain.Quote{}, fmt.Errorf("quote %s: %w", symbol, util.ErrServiceUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.Quote{}, util.ErrUnknownSymbol
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		s.logger.Warn("Quote service error", "symbol", symbol, "status", resp.StatusCode)
		return domain.Quote{}, fmt.Errorf("quote %s: http %d: %w", symbol, resp.StatusCode, util.ErrServiceUnavailable)
	case resp.StatusCode != http.StatusOK:
		return domain.Quote{}, fmt.Errorf("quote %s: http %d: %w", symbol, resp.StatusCode, util.ErrUnknownSymbol)
	}

	var raw chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return domain.Quote{}, fmt.Errorf("quote %s: %w", symbol, util.ErrServiceUnavailable)
		}
		return domain.Quote{}, fmt.Errorf("quote %s: malformed response: %w", symbol, util.ErrUnknownSymbol)
	}
	if raw.Chart.Error != nil || len(raw.Chart.Result) == 0 {
		return domain.Quote{}, util.ErrUnknownSymbol
	}

	meta := raw.Chart.Result[0].Meta
	if meta.Symbol == "" || !meta.RegularMarketPrice.IsPositive() {
		return domain.Quote{}, util.ErrUnknownSymbol
	}

	q := domain.Quote{
		Symbol: strings.ToUpper(meta.Symbol),
		Name:   meta.LongName,
		Price:  meta.RegularMarketPrice,
		AsOf:   s.now().UTC(),
	}
	if q.Name == "" {
		q.Name = meta.ShortName
	}
	if meta.RegularMarketTime > 0 {
		q.AsOf = time.Unix(meta.RegularMarketTime, 0).UTC()
	}

	s.store(symbol, q)
	return q, nil
}

func (s *YahooSource) cached(symbol string) (domain.Quote, bool) {
	if s.ttl <= 0 {
		return domain.Quote{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cache[symbol]
	if !ok || s.now().Sub(c.fetched) >= s.ttl {
		return domain.Quote{}, false
	}
	return c.quote, true
}

func (s *YahooSource) store(symbol string, q domain.Quote) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	s.cache[symbol] = cachedQuote{quote: q, fetched: s.now()}
	s.mu.Unlock()
}
