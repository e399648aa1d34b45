// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"papertrade/internal/domain"
)

// TransactionRepository defines the interface for trade ledger operations.
type TransactionRepository interface {
	// CreateTransaction appends a trade row.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionsByUserID returns all trades of a user, oldest first.
	GetTransactionsByUserID(ctx context.Context, q DBExecutor, userID int64) ([]domain.Transaction, error)
	// SumShares returns the signed share total of a user in one symbol, 0 when there are no trades.
	SumShares(ctx context.Context, q DBExecutor, userID int64, symbol string) (int64, error)
	// GetHeldSymbols returns the symbols with a positive share total, sorted.
	GetHeldSymbols(ctx context.Context, q DBExecutor, userID int64) ([]string, error)
}
