// internal/repository/postgres/deposit_pg.go
package postgres

import (
	"context"
	"fmt"

	"papertrade/internal/domain"
	"papertrade/internal/repository"
)

// DepositRepository implements repository.DepositRepository for PostgreSQL.
type DepositRepository struct{}

// NewDepositRepository creates a new DepositRepository.
func NewDepositRepository() repository.DepositRepository {
	return &DepositRepository{}
}

// CreateDeposit appends a deposit row.
func (r *DepositRepository) CreateDeposit(ctx context.Context, q repository.DBExecutor, deposit *domain.CashDeposit) error {
	query := `INSERT INTO cash_deposits (user_id, amount, created_at)
              VALUES ($1, $2, $3) RETURNING id`
	err := q.QueryRowContext(ctx, query, deposit.UserID, deposit.Amount, deposit.CreatedAt).Scan(&deposit.ID)
	if err != nil {
		return fmt.Errorf("failed to create deposit: %w", err)
	}
	return nil
}

// GetDepositsByUserID returns the deposits of a user, oldest first.
func (r *DepositRepository) GetDepositsByUserID(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.CashDeposit, error) {
	deposits := []domain.CashDeposit{}
	query := `
		SELECT id, user_id, amount, created_at
		FROM cash_deposits
		WHERE user_id = $1
		ORDER BY created_at, id`
	if err := q.SelectContext(ctx, &deposits, query, userID); err != nil {
		return nil, fmt.Errorf("failed to fetch deposits for user %d: %w", userID, err)
	}
	return deposits, nil
}
