// internal/api/handler/portfolio.go
package handler

import (
	"log/slog"
	"net/http"

	"papertrade/internal/api/types"
	"papertrade/internal/service"
	"papertrade/internal/session"
)

// PortfolioHandler serves the read-only views.
type PortfolioHandler struct {
	responder
	portfolio service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolio service.PortfolioService, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		responder: responder{logger: logger},
		portfolio: portfolio,
	}
}

// Index shows the user's holdings valued at their last traded prices.
// GET /
func (h *PortfolioHandler) Index(w http.ResponseWriter, r *http.Request) {
	userID, err := session.UserIDFrom(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	p, err := h.portfolio.BuildPortfolio(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithData(h.responder, w, http.StatusOK, "", types.NewPortfolioView(p))
}

// History lists every trade and deposit.
// GET /history
func (h *PortfolioHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := session.UserIDFrom(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	hist, err := h.portfolio.BuildHistory(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithData(h.responder, w, http.StatusOK, "", types.NewHistoryView(hist))
}

// Quote looks up a symbol.
// GET /quote?symbol=
func (h *PortfolioHandler) Quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.portfolio.Quote(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithData(h.responder, w, http.StatusOK, "", types.NewQuoteView(q))
}
