// internal/service/portfolio_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"papertrade/internal/domain"
	"papertrade/internal/quote"
	"papertrade/internal/repository"
	"papertrade/internal/util"
)

// PortfolioService is the read side: valuation, history and quotes.
type PortfolioService interface {
	BuildPortfolio(ctx context.Context, userID int64) (*domain.Portfolio, error)
	BuildHistory(ctx context.Context, userID int64) (*domain.History, error)
	Quote(ctx context.Context, symbol string) (domain.Quote, error)
}

type portfolioService struct {
	dbExecutor  repository.DBExecutor
	userRepo    repository.UserRepository
	tradeRepo   repository.TransactionRepository
	depositRepo repository.DepositRepository
	quotes      quote.Source
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	tradeRepo repository.TransactionRepository,
	depositRepo repository.DepositRepository,
	quotes quote.Source,
) PortfolioService {
	return &portfolioService{
		dbExecutor:  dbExecutor,
		userRepo:    userRepo,
		tradeRepo:   tradeRepo,
		depositRepo: depositRepo,
		quotes:      quotes,
	}
}

// BuildPortfolio values the user's holdings at their last traded prices.
// The quote source is deliberately not consulted here.
func (s *portfolioService) BuildPortfolio(ctx context.Context, userID int64) (*domain.Portfolio, error) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("portfolio: failed to get user %d: %w", userID, err)
	}
	trades, err := s.tradeRepo.GetTransactionsByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("portfolio: %w", err)
	}
	return domain.NewPortfolio(domain.AggregateHoldings(trades), user.Cash), nil
}

// BuildHistory returns every trade and deposit of the user, oldest first.
func (s *portfolioService) BuildHistory(ctx context.Context, userID int64) (*domain.History, error) {
	trades, err := s.tradeRepo.GetTransactionsByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	deposits, err := s.depositRepo.GetDepositsByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return &domain.History{Trades: trades, Deposits: deposits}, nil
}

// Quote looks up the current price of a symbol.
func (s *portfolioService) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	if strings.TrimSpace(symbol) == "" {
		return domain.Quote{}, util.InvalidInput("please provide a symbol")
	}
	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("quote: %w", err)
	}
	return q, nil
}
