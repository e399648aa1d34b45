// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"fmt"

	"papertrade/internal/domain"
	"papertrade/internal/repository"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction appends a trade row.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (user_id, symbol, shares, price, created_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.UserID,
		transaction.Symbol,
		transaction.Shares,
		transaction.Price,
		transaction.CreatedAt,
	).Scan(&transaction.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactionsByUserID returns every trade of a user in execution order.
func (r *TransactionRepository) GetTransactionsByUserID(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `
		SELECT id, user_id, symbol, shares, price, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at, id`
	if err := q.SelectContext(ctx, &transactions, query, userID); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for user %d: %w", userID, err)
	}
	return transactions, nil
}

// SumShares returns the current holding of a user in one symbol.
func (r *TransactionRepository) SumShares(ctx context.Context, q repository.DBExecutor, userID int64, symbol string) (int64, error) {
	var held int64
	query := `SELECT COALESCE(SUM(shares), 0)::BIGINT FROM transactions WHERE user_id = $1 AND symbol = $2`
	if err := q.GetContext(ctx, &held, query, userID, symbol); err != nil {
		return 0, fmt.Errorf("failed to sum shares of %s for user %d: %w", symbol, userID, err)
	}
	return held, nil
}

// GetHeldSymbols lists the symbols a user can currently sell.
func (r *TransactionRepository) GetHeldSymbols(ctx context.Context, q repository.DBExecutor, userID int64) ([]string, error) {
	symbols := []string{}
	query := `
		SELECT symbol
		FROM transactions
		WHERE user_id = $1
		GROUP BY symbol
		HAVING SUM(shares) > 0
		ORDER BY symbol`
	if err := q.SelectContext(ctx, &symbols, query, userID); err != nil {
		return nil, fmt.Errorf("failed to fetch held symbols for user %d: %w", userID, err)
	}
	return symbols, nil
}
