// internal/api/handler/trade.go
package handler

import (
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"papertrade/internal/api/types"
	"papertrade/internal/service"
	"papertrade/internal/session"
	"papertrade/internal/util"
)

// TradeHandler handles HTTP requests that change a user's ledger.
type TradeHandler struct {
	responder
	ledger service.LedgerService
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(ledger service.LedgerService, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{
		responder: responder{logger: logger},
		ledger:    ledger,
	}
}

var (
	sharesPattern = regexp.MustCompile(`^[0-9]{1,18}$`)
	amountPattern = regexp.MustCompile(`^[0-9]{1,10}(\.[0-9]{1,2})?$`)
)

// orderForm parses the symbol and share count shared by buy and sell.
func orderForm(r *http.Request) (string, int64, error) {
	symbol := strings.TrimSpace(r.FormValue("symbol"))
	if symbol == "" {
		return "", 0, util.InvalidInput("must provide symbol")
	}
	raw := strings.TrimSpace(r.FormValue("shares"))
	if !sharesPattern.MatchString(raw) {
		return "", 0, util.InvalidInput("shares must be a positive integer")
	}
	shares, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || shares <= 0 {
		return "", 0, util.InvalidInput("shares must be a positive integer")
	}
	return symbol, shares, nil
}

// Buy handles the buy request.
// POST /buy
func (h *TradeHandler) Buy(w http.ResponseWriter, r *http.Request) {
	userID, err := session.UserIDFrom(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	symbol, shares, err := orderForm(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	res, err := h.ledger.ExecuteBuy(r.Context(), userID, symbol, shares)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithData(h.responder, w, http.StatusOK, "Bought!", types.TradeResultView{
		Trade: types.NewTradeView(*res.Trade),
		Cash:  util.FormatUSD(res.Cash),
	})
}

// SellForm lists the symbols the user currently holds.
// GET /sell
func (h *TradeHandler) SellForm(w http.ResponseWriter, r *http.Request) {
	userID, err := session.UserIDFrom(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	symbols, err := h.ledger.HeldSymbols(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	respondWithData(h.responder, w, http.StatusOK, "", types.SellFormView{Symbols: symbols})
}

// Sell handles the sell request.
// POST /sell
func (h *TradeHandler) Sell(w http.ResponseWriter, r *http.Request) {
	userID, err := session.UserIDFrom(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	symbol, shares, err := orderForm(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	res, err := h.ledger.ExecuteSell(r.Context(), userID, symbol, shares)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithData(h.responder, w, http.StatusOK, "Sold!", types.TradeResultView{
		Trade: types.NewTradeView(*res.Trade),
		Cash:  util.FormatUSD(res.Cash),
	})
}

// AddCash handles the deposit request.
// POST /add
func (h *TradeHandler) AddCash(w http.ResponseWriter, r *http.Request) {
	userID, err := session.UserIDFrom(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	raw := strings.TrimSpace(r.FormValue("new_cash"))
	if !amountPattern.MatchString(raw) {
		h.respondWithError(w, util.InvalidInput("new_cash must be an amount"))
		return
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		h.respondWithError(w, util.InvalidInput("new_cash must be an amount"))
		return
	}

	res, err := h.ledger.Deposit(r.Context(), userID, amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithData(h.responder, w, http.StatusOK, "Cash added!", types.DepositResultView{
		Deposit: types.NewDepositView(*res.Deposit),
		Cash:    util.FormatUSD(res.Cash),
	})
}
