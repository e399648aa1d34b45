// internal/service/ledger_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"papertrade/internal/domain"
	"papertrade/internal/events"
	"papertrade/internal/quote"
	"papertrade/internal/repository"
	"papertrade/internal/util"
	"papertrade/pkg/db"

	"github.com/shopspring/decimal"
)

// MaxDeposit bounds a single cash deposit.
var MaxDeposit = decimal.NewFromInt(1_000_000_000)

// PriceScale is the number of decimal places a trade price is stored with.
const PriceScale = 4

// Deposits whose coefficient or exponent fall outside these bounds are refused
// before any arithmetic, since rescaling them is unbounded work.
const (
	maxAmountDigits   = 18
	minAmountExponent = -18
	maxAmountExponent = 9
)

const publishTimeout = 5 * time.Second

// LedgerService applies trades and deposits to a user's account.
type LedgerService interface {
	ExecuteBuy(ctx context.Context, userID int64, symbol string, shares int64) (*TradeResult, error)
	ExecuteSell(ctx context.Context, userID int64, symbol string, shares int64) (*TradeResult, error)
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*DepositResult, error)
	HeldSymbols(ctx context.Context, userID int64) ([]string, error)
}

// TradeResult is a committed trade and the cash balance it left behind.
type TradeResult struct {
	Trade *domain.Transaction
	Cash  decimal.Decimal
}

// DepositResult is a committed deposit and the resulting cash balance.
type DepositResult struct {
	Deposit *domain.CashDeposit
	Cash    decimal.Decimal
}

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	dbBeginner  db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor  repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	userRepo    repository.UserRepository
	tradeRepo   repository.TransactionRepository
	depositRepo repository.DepositRepository
	quotes      quote.Source
	publisher   events.Publisher
	logger      *slog.Logger
	beginTx     db.BeginTxFunc
	commitTx    db.CommitTxFunc
	rollbackTx  db.RollbackTxFunc
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	tradeRepo repository.TransactionRepository,
	depositRepo repository.DepositRepository,
	quotes quote.Source,
	publisher events.Publisher,
	logger *slog.Logger,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) LedgerService {
	return &ledgerService{
		dbBeginner:  dbBeginner,
		dbExecutor:  dbExecutor,
		userRepo:    userRepo,
		tradeRepo:   tradeRepo,
		depositRepo: depositRepo,
		quotes:      quotes,
		publisher:   publisher,
		logger:      logger,
		beginTx:     beginTx,
		commitTx:    commitTx,
		rollbackTx:  rollbackTx,
	}
}

func validateOrder(symbol string, shares int64) error {
	if strings.TrimSpace(symbol) == "" {
		return util.InvalidInput("missing symbol")
	}
	if shares <= 0 {
		return util.InvalidInput("shares must be a positive integer")
	}
	return nil
}

// tradePrice looks up symbol and rounds its price to the stored scale, so cash
// moves by exactly shares times the price recorded on the trade.
func (s *ledgerService) tradePrice(ctx context.Context, symbol string) (domain.Quote, error) {
	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return domain.Quote{}, err
	}
	q.Price = q.Price.Round(PriceScale)
	if !q.Price.IsPositive() {
		return domain.Quote{}, util.ErrUnknownSymbol
	}
	return q, nil
}

// ExecuteBuy buys shares at the current quote if the user can pay for them.
func (s *ledgerService) ExecuteBuy(ctx context.Context, userID int64, symbol string, shares int64) (*TradeResult, error) {
	if err := validateOrder(symbol, shares); err != nil {
		return nil, err
	}

	// The lookup happens before the transaction so no row lock is held across the network call.
	q, err := s.tradePrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("buy: %w", err)
	}
	cost := q.Price.Mul(decimal.NewFromInt(shares))

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("buy: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("buy: transaction controller does not implement DBExecutor")
	}

	user, err := s.userRepo.LockUserByID(ctx, txExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("buy: failed to get user %d: %w", userID, err)
	}
	if user.Cash.LessThan(cost) {
		return nil, util.ErrInsufficientFunds
	}

	if err := s.userRepo.AdjustCash(ctx, txExecutor, userID, cost.Neg()); err != nil {
		return nil, fmt.Errorf("buy: failed to update cash: %w", err)
	}

	trade := domain.NewBuy(userID, q.Symbol, shares, q.Price)
	if err := s.tradeRepo.CreateTransaction(ctx, txExecutor, trade); err != nil {
		return nil, fmt.Errorf("buy: failed to create transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("buy: failed to commit transaction: %w", err)
	}

	cash := user.Cash.Sub(cost)
	s.logger.Info("Trade executed", "user_id", userID, "symbol", trade.Symbol, "shares", trade.Shares, "price", trade.Price)
	s.publish(ctx, events.TradeExecuted(trade, cash))
	return &TradeResult{Trade: trade, Cash: cash}, nil
}

// ExecuteSell sells shares at the current quote if the user holds enough of them.
func (s *ledgerService) ExecuteSell(ctx context.Context, userID int64, symbol string, shares int64) (*TradeResult, error) {
	if err := validateOrder(symbol, shares); err != nil {
		return nil, err
	}

	q, err := s.tradePrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("sell: %w", err)
	}
	proceeds := q.Price.Mul(decimal.NewFromInt(shares))

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("sell: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("sell: transaction controller does not implement DBExecutor")
	}

	// Holdings are summed only after the user row is locked, so concurrent sells see each other.
	user, err := s.userRepo.LockUserByID(ctx, txExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("sell: failed to get user %d: %w", userID, err)
	}
	held, err := s.tradeRepo.SumShares(ctx, txExecutor, userID, q.Symbol)
	if err != nil {
		return nil, fmt.Errorf("sell: %w", err)
	}
	if shares > held {
		return nil, util.ErrInsufficientHoldings
	}

	if err := s.userRepo.AdjustCash(ctx, txExecutor, userID, proceeds); err != nil {
		return nil, fmt.Errorf("sell: failed to update cash: %w", err)
	}

	trade := domain.NewSell(userID, q.Symbol, shares, q.Price)
	if err := s.tradeRepo.CreateTransaction(ctx, txExecutor, trade); err != nil {
		return nil, fmt.Errorf("sell: failed to create transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("sell: failed to commit transaction: %w", err)
	}

	cash := user.Cash.Add(proceeds)
	s.logger.Info("Trade executed", "user_id", userID, "symbol", trade.Symbol, "shares", trade.Shares, "price", trade.Price)
	s.publish(ctx, events.TradeExecuted(trade, cash))
	return &TradeResult{Trade: trade, Cash: cash}, nil
}

// Deposit adds virtual cash to a user's account and records it.
func (s *ledgerService) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*DepositResult, error) {
	switch {
	case amount.Exponent() < minAmountExponent,
		amount.Exponent() > maxAmountExponent,
		amount.NumDigits() > maxAmountDigits:
		return nil, util.InvalidInput("amount out of range")
	case !amount.IsPositive():
		return nil, util.InvalidInput("amount must be positive")
	case !amount.Equal(amount.Round(2)):
		return nil, util.InvalidInput("amount must have at most 2 decimal places")
	case amount.GreaterThan(MaxDeposit):
		return nil, util.InvalidInput("amount too large")
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("deposit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("deposit: transaction controller does not implement DBExecutor")
	}

	user, err := s.userRepo.LockUserByID(ctx, txExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("deposit: failed to get user %d: %w", userID, err)
	}

	if err := s.userRepo.AdjustCash(ctx, txExecutor, userID, amount); err != nil {
		return nil, fmt.Errorf("deposit: failed to update cash: %w", err)
	}

	deposit := domain.NewCashDeposit(userID, amount)
	if err := s.depositRepo.CreateDeposit(ctx, txExecutor, deposit); err != nil {
		return nil, fmt.Errorf("deposit: failed to record deposit: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("deposit: failed to commit transaction: %w", err)
	}

	cash := user.Cash.Add(amount)
	s.logger.Info("Cash deposited", "user_id", userID, "amount", amount)
	s.publish(ctx, events.CashDeposited(deposit, cash))
	return &DepositResult{Deposit: deposit, Cash: cash}, nil
}

// HeldSymbols lists the symbols the user can sell.
func (s *ledgerService) HeldSymbols(ctx context.Context, userID int64) ([]string, error) {
	symbols, err := s.tradeRepo.GetHeldSymbols(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("held symbols: %w", err)
	}
	return symbols, nil
}

// publish runs after commit; a failure is logged and never reported to the caller.
func (s *ledgerService) publish(ctx context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish ledger event", "event_id", event.ID, "type", event.Type, "error", err)
	}
}
