// internal/repository/deposit_repo.go
package repository

import (
	"context"

	"papertrade/internal/domain"
)

// DepositRepository defines the interface for cash deposit records.
type DepositRepository interface {
	// CreateDeposit appends a deposit row.
	CreateDeposit(ctx context.Context, q DBExecutor, deposit *domain.CashDeposit) error
	// GetDepositsByUserID returns all deposits of a user, oldest first.
	GetDepositsByUserID(ctx context.Context, q DBExecutor, userID int64) ([]domain.CashDeposit, error)
}
