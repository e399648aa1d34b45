// internal/api/router_test.go
package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"papertrade/internal/api/handler"
	"papertrade/internal/domain"
	"papertrade/internal/service"
	"papertrade/internal/session"
	"papertrade/internal/util"
)

// MockAccountService is a mock implementation of service.AccountService.
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, username, password, confirmation string) (*domain.User, error) {
	args := m.Called(ctx, username, password, confirmation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAccountService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockLedgerService is a mock implementation of service.LedgerService.
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) ExecuteBuy(ctx context.Context, userID int64, symbol string, shares int64) (*service.TradeResult, error) {
	args := m.Called(ctx, userID, symbol, shares)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TradeResult), args.Error(1)
}

func (m *MockLedgerService) ExecuteSell(ctx context.Context, userID int64, symbol string, shares int64) (*service.TradeResult, error) {
	args := m.Called(ctx, userID, symbol, shares)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TradeResult), args.Error(1)
}

func (m *MockLedgerService) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*service.DepositResult, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DepositResult), args.Error(1)
}

func (m *MockLedgerService) HeldSymbols(ctx context.Context, userID int64) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockPortfolioService is a mock implementation of service.PortfolioService.
type MockPortfolioService struct {
	mock.Mock
}

func (m *MockPortfolioService) BuildPortfolio(ctx context.Context, userID int64) (*domain.Portfolio, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Portfolio), args.Error(1)
}

func (m *MockPortfolioService) BuildHistory(ctx context.Context, userID int64) (*domain.History, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.History), args.Error(1)
}

func (m *MockPortfolioService) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(domain.Quote), args.Error(1)
}

type routerFixture struct {
	accounts  *MockAccountService
	ledger    *MockLedgerService
	portfolio *MockPortfolioService
	sessions  *session.Manager
	handler   http.Handler
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions, err := session.NewManager("router-test-secret-0123456789", time.Hour)
	require.NoError(t, err)

	f := &routerFixture{
		accounts:  new(MockAccountService),
		ledger:    new(MockLedgerService),
		portfolio: new(MockPortfolioService),
		sessions:  sessions,
	}
	f.handler = NewRouter(Handlers{
		Auth:      handler.NewAuthHandler(f.accounts, sessions, logger),
		Trade:     handler.NewTradeHandler(f.ledger, logger),
		Portfolio: handler.NewPortfolioHandler(f.portfolio, logger),
	}, logger)
	return f
}

// do sends a form-encoded request, authenticated as userID when it is non-zero.
func (f *routerFixture) do(t *testing.T, method, path string, form url.Values, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if userID != 0 {
		token, err := f.sessions.Issue(userID)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestHealth(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/health", nil, 0)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestNoCacheHeaders(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/health", nil, 0)

	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "0", rec.Header().Get("Expires"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
}

func TestPrivateRoutesRequireSession(t *testing.T) {
	f := newRouterFixture(t)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodGet, "/quote?symbol=AAA"},
		{http.MethodGet, "/history"},
		{http.MethodPost, "/buy"},
		{http.MethodGet, "/sell"},
		{http.MethodPost, "/sell"},
		{http.MethodPost, "/add"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := f.do(t, rt.method, rt.path, url.Values{}, 0)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, util.ErrUnauthenticated.Error(), decodeBody(t, rec)["error"])
		})
	}
}

func TestForgedSessionIsRejected(t *testing.T) {
	f := newRouterFixture(t)
	other, err := session.NewManager("some-other-secret-0123456789", time.Hour)
	require.NoError(t, err)
	token, err := other.Issue(1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	f.portfolio.AssertNotCalled(t, "BuildPortfolio", mock.Anything, mock.Anything)
}

func TestBearerTokenIsAccepted(t *testing.T) {
	f := newRouterFixture(t)
	token, err := f.sessions.Issue(4)
	require.NoError(t, err)
	f.portfolio.On("BuildPortfolio", mock.Anything, int64(4)).Return(domain.NewPortfolio(nil, dec("10000")), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.portfolio.AssertExpectations(t)
}

func TestRegister(t *testing.T) {
	t.Run("SetsSessionCookie", func(t *testing.T) {
		f := newRouterFixture(t)
		f.accounts.On("Register", mock.Anything, "alice", "pw", "pw").
			Return(&domain.User{ID: 9, Username: "alice", Cash: dec("10000")}, nil).Once()

		rec := f.do(t, http.MethodPost, "/register", url.Values{
			"username": {"alice"}, "password": {"pw"}, "confirmation": {"pw"},
		}, 0)

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Registered!", body["message"])
		assert.Equal(t, "$10,000.00", body["data"].(map[string]interface{})["cash"])

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, session.CookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		userID, err := f.sessions.Parse(cookies[0].Value)
		require.NoError(t, err)
		assert.Equal(t, int64(9), userID)
	})

	t.Run("UsernameTaken", func(t *testing.T) {
		f := newRouterFixture(t)
		f.accounts.On("Register", mock.Anything, "alice", "pw", "pw").Return(nil, util.ErrUsernameTaken).Once()

		rec := f.do(t, http.MethodPost, "/register", url.Values{
			"username": {"alice"}, "password": {"pw"}, "confirmation": {"pw"},
		}, 0)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})
}

func TestLogin(t *testing.T) {
	t.Run("WrongPassword", func(t *testing.T) {
		f := newRouterFixture(t)
		f.accounts.On("Authenticate", mock.Anything, "alice", "nope").Return(nil, util.ErrInvalidCredentials).Once()

		rec := f.do(t, http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"nope"}}, 0)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, util.ErrInvalidCredentials.Error(), decodeBody(t, rec)["error"])
	})

	t.Run("Success", func(t *testing.T) {
		f := newRouterFixture(t)
		f.accounts.On("Authenticate", mock.Anything, "alice", "pw").Return(&domain.User{ID: 3, Username: "alice"}, nil).Once()

		rec := f.do(t, http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"pw"}}, 0)

		assert.Equal(t, http.StatusOK, rec.Code)
		var issued *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Value != "" {
				issued = c
			}
		}
		require.NotNil(t, issued)
		userID, err := f.sessions.Parse(issued.Value)
		require.NoError(t, err)
		assert.Equal(t, int64(3), userID)
	})
}

func TestLogoutClearsCookie(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/logout", nil, 7)

	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestBuy(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newRouterFixture(t)
		trade := domain.NewBuy(1, "AAA", 10, dec("50"))
		f.ledger.On("ExecuteBuy", mock.Anything, int64(1), "aaa", int64(10)).
			Return(&service.TradeResult{Trade: trade, Cash: dec("9500")}, nil).Once()

		rec := f.do(t, http.MethodPost, "/buy", url.Values{"symbol": {"aaa"}, "shares": {"10"}}, 1)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Bought!", body["message"])
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "$9,500.00", data["cash"])
		assert.Equal(t, "$500.00", data["trade"].(map[string]interface{})["total"])
		f.ledger.AssertExpectations(t)
	})

	t.Run("BadShares", func(t *testing.T) {
		for _, shares := range []string{"", "0", "-1", "+5", "1.5", "1e3", "ten"} {
			f := newRouterFixture(t)

			rec := f.do(t, http.MethodPost, "/buy", url.Values{"symbol": {"AAA"}, "shares": {shares}}, 1)

			assert.Equal(t, http.StatusBadRequest, rec.Code, "shares=%q", shares)
			f.ledger.AssertNotCalled(t, "ExecuteBuy", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("MissingSymbol", func(t *testing.T) {
		f := newRouterFixture(t)

		rec := f.do(t, http.MethodPost, "/buy", url.Values{"shares": {"1"}}, 1)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ErrorMapping", func(t *testing.T) {
		cases := map[error]int{
			util.ErrInsufficientFunds:  http.StatusPaymentRequired,
			util.ErrUnknownSymbol:      http.StatusNotFound,
			util.ErrServiceUnavailable: http.StatusServiceUnavailable,
		}
		for svcErr, code := range cases {
			f := newRouterFixture(t)
			f.ledger.On("ExecuteBuy", mock.Anything, int64(1), "AAA", int64(1)).Return(nil, svcErr).Once()

			rec := f.do(t, http.MethodPost, "/buy", url.Values{"symbol": {"AAA"}, "shares": {"1"}}, 1)

			assert.Equal(t, code, rec.Code, svcErr.Error())
		}
	})
}

func TestSell(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newRouterFixture(t)
		trade := domain.NewSell(1, "AAA", 4, dec("60"))
		f.ledger.On("ExecuteSell", mock.Anything, int64(1), "AAA", int64(4)).
			Return(&service.TradeResult{Trade: trade, Cash: dec("9740")}, nil).Once()

		rec := f.do(t, http.MethodPost, "/sell", url.Values{"symbol": {"AAA"}, "shares": {"4"}}, 1)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Sold!", body["message"])
		assert.Equal(t, "$9,740.00", body["data"].(map[string]interface{})["cash"])
	})

	t.Run("InsufficientHoldings", func(t *testing.T) {
		f := newRouterFixture(t)
		f.ledger.On("ExecuteSell", mock.Anything, int64(1), "AAA", int64(4)).Return(nil, util.ErrInsufficientHoldings).Once()

		rec := f.do(t, http.MethodPost, "/sell", url.Values{"symbol": {"AAA"}, "shares": {"4"}}, 1)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("FormListsHeldSymbols", func(t *testing.T) {
		f := newRouterFixture(t)
		f.ledger.On("HeldSymbols", mock.Anything, int64(1)).Return(nil, nil).Once()

		rec := f.do(t, http.MethodGet, "/sell", nil, 1)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data":{"symbols":[]}}`, rec.Body.String())
	})
}

func TestAddCash(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newRouterFixture(t)
		dep := domain.NewCashDeposit(1, dec("250.5"))
		f.ledger.On("Deposit", mock.Anything, int64(1), mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(dec("250.50"))
		})).Return(&service.DepositResult{Deposit: dep, Cash: dec("10250.5")}, nil).Once()

		rec := f.do(t, http.MethodPost, "/add", url.Values{"new_cash": {"250.50"}}, 1)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Cash added!", body["message"])
		assert.Equal(t, "$10,250.50", body["data"].(map[string]interface{})["cash"])
	})

	t.Run("NotAPlainAmount", func(t *testing.T) {
		for _, amount := range []string{"lots", "", "1e10000000", "1e-10000000", "+5", "1.005", "12345678901"} {
			f := newRouterFixture(t)

			rec := f.do(t, http.MethodPost, "/add", url.Values{"new_cash": {amount}}, 1)

			assert.Equal(t, http.StatusBadRequest, rec.Code, "new_cash=%q", amount)
			f.ledger.AssertNotCalled(t, "Deposit", mock.Anything, mock.Anything, mock.Anything)
		}
	})
}

func TestIndex(t *testing.T) {
	f := newRouterFixture(t)
	p := domain.NewPortfolio(domain.AggregateHoldings([]domain.Transaction{
		{Symbol: "AAA", Shares: 10, Price: dec("50")},
		{Symbol: "AAA", Shares: -4, Price: dec("60")},
	}), dec("9740"))
	f.portfolio.On("BuildPortfolio", mock.Anything, int64(1)).Return(p, nil).Once()

	rec := f.do(t, http.MethodGet, "/", nil, 1)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{
		"holdings":[{"symbol":"AAA","shares":6,"price":"$60.00","total":"$360.00"}],
		"cash":"$9,740.00",
		"total":"$10,100.00"}}`, rec.Body.String())
}

func TestHistory(t *testing.T) {
	f := newRouterFixture(t)
	f.portfolio.On("BuildHistory", mock.Anything, int64(1)).Return(&domain.History{
		Trades: []domain.Transaction{{ID: 1, Symbol: "AAA", Shares: 10, Price: dec("50")}},
	}, nil).Once()

	rec := f.do(t, http.MethodGet, "/history", nil, 1)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	trades := data["trades"].([]interface{})
	require.Len(t, trades, 1)
	assert.Equal(t, "BUY", trades[0].(map[string]interface{})["side"])
	assert.Empty(t, data["deposits"])
}

func TestQuote(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		f := newRouterFixture(t)
		f.portfolio.On("Quote", mock.Anything, "aaa").Return(domain.Quote{Symbol: "AAA", Name: "Triple A", Price: dec("50")}, nil).Once()

		rec := f.do(t, http.MethodGet, "/quote?symbol=aaa", nil, 1)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data":{"symbol":"AAA","name":"Triple A","price":"$50.00"}}`, rec.Body.String())
	})

	t.Run("Unknown", func(t *testing.T) {
		f := newRouterFixture(t)
		f.portfolio.On("Quote", mock.Anything, "ZZZZ").Return(domain.Quote{}, util.ErrUnknownSymbol).Once()

		rec := f.do(t, http.MethodGet, "/quote?symbol=ZZZZ", nil, 1)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
