// internal/api/types/response.go
package types

import (
	"time"

	"papertrade/internal/domain"
	"papertrade/internal/util"
)

// Response defines the envelope of every successful API response.
// T represents the type of data carried alongside the flash message.
type Response[T any] struct {
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UserView is the public part of a user.
type UserView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Cash     string `json:"cash"`
}

// HoldingView is one portfolio row with money already formatted.
type HoldingView struct {
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
	Price  string `json:"price"`
	Total  string `json:"total"`
}

// PortfolioView is the index page.
type PortfolioView struct {
	Holdings []HoldingView `json:"holdings"`
	Cash     string        `json:"cash"`
	Total    string        `json:"total"`
}

// TradeView is one history row.
type TradeView struct {
	ID         int64     `json:"id"`
	Symbol     string    `json:"symbol"`
	Side       string    `json:"side"`
	Shares     int64     `json:"shares"`
	Price      string    `json:"price"`
	Total      string    `json:"total"`
	Transacted time.Time `json:"transacted"`
}

// DepositView is one deposit row.
type DepositView struct {
	ID        int64     `json:"id"`
	Amount    string    `json:"amount"`
	Deposited time.Time `json:"deposited"`
}

// HistoryView is the history page.
type HistoryView struct {
	Trades   []TradeView   `json:"trades"`
	Deposits []DepositView `json:"deposits"`
}

// QuoteView is the quoted page.
type QuoteView struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
	Price  string `json:"price"`
}

// TradeResultView answers /buy and /sell.
type TradeResultView struct {
	Trade TradeView `json:"trade"`
	Cash  string    `json:"cash"`
}

// DepositResultView answers /add.
type DepositResultView struct {
	Deposit DepositView `json:"deposit"`
	Cash    string      `json:"cash"`
}

// SellFormView lists what the user can sell.
type SellFormView struct {
	Symbols []string `json:"symbols"`
}

func NewUserView(u *domain.User) UserView {
	return UserView{ID: u.ID, Username: u.Username, Cash: util.FormatUSD(u.Cash)}
}

func NewPortfolioView(p *domain.Portfolio) PortfolioView {
	holdings := make([]HoldingView, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		holdings = append(holdings, HoldingView{
			Symbol: h.Symbol,
			Shares: h.Shares,
			Price:  util.FormatUSD(h.LastPrice),
			Total:  util.FormatUSD(h.Value),
		})
	}
	return PortfolioView{
		Holdings: holdings,
		Cash:     util.FormatUSD(p.Cash),
		Total:    util.FormatUSD(p.TotalValue),
	}
}

func NewTradeView(t domain.Transaction) TradeView {
	return TradeView{
		ID:         t.ID,
		Symbol:     t.Symbol,
		Side:       string(t.Side()),
		Shares:     t.Shares,
		Price:      util.FormatUSD(t.Price),
		Total:      util.FormatUSD(t.Total()),
		Transacted: t.CreatedAt,
	}
}

func NewDepositView(d domain.CashDeposit) DepositView {
	return DepositView{ID: d.ID, Amount: util.FormatUSD(d.Amount), Deposited: d.CreatedAt}
}

func NewHistoryView(h *domain.History) HistoryView {
	view := HistoryView{
		Trades:   make([]TradeView, 0, len(h.Trades)),
		Deposits: make([]DepositView, 0, len(h.Deposits)),
	}
	for _, t := range h.Trades {
		view.Trades = append(view.Trades, NewTradeView(t))
	}
	for _, d := range h.Deposits {
		view.Deposits = append(view.Deposits, NewDepositView(d))
	}
	return view
}

func NewQuoteView(q domain.Quote) QuoteView {
	return QuoteView{Symbol: q.Symbol, Name: q.Name, Price: util.FormatUSD(q.Price)}
}
