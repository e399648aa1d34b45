// internal/events/events.go
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

// Type names an event kind.
type Type string

const (
	TypeTradeExecuted Type = "trade_executed"
	TypeCashDeposited Type = "cash_deposited"
)

// Event is the envelope published after a ledger mutation commits.
type Event struct {
	ID         string           `json:"id"`
	Type       Type             `json:"type"`
	UserID     int64            `json:"user_id"`
	OccurredAt time.Time        `json:"occurred_at"`
	Symbol     string           `json:"symbol,omitempty"`
	Shares     int64            `json:"shares,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	CashAfter  decimal.Decimal  `json:"cash_after"`
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// TradeExecuted builds the event for a committed trade.
func TradeExecuted(trade *domain.Transaction, cashAfter decimal.Decimal) Event {
	price := trade.Price
	return Event{
		ID:         uuid.NewString(),
		Type:       TypeTradeExecuted,
		UserID:     trade.UserID,
		OccurredAt: trade.CreatedAt,
		Symbol:     trade.Symbol,
		Shares:     trade.Shares,
		Price:      &price,
		CashAfter:  cashAfter,
	}
}

// CashDeposited builds the event for a committed deposit.
func CashDeposited(deposit *domain.CashDeposit, cashAfter decimal.Decimal) Event {
	amount := deposit.Amount
	return Event{
		ID:         uuid.NewString(),
		Type:       TypeCashDeposited,
		UserID:     deposit.UserID,
		OccurredAt: deposit.CreatedAt,
		Amount:     &amount,
		CashAfter:  cashAfter,
	}
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
