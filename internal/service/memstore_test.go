// internal/service/memstore_test.go
package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"papertrade/internal/domain"
	"papertrade/internal/repository"
	"papertrade/internal/util"
	"papertrade/pkg/db"

	"github.com/shopspring/decimal"
)

// numericScale mirrors the NUMERIC(20, 4) money columns.
const numericScale = 4

// memStore is an in-memory stand-in for the three repositories. Transactions
// are serialized by txMu, which plays the part of the user row lock, and
// writes made through a memTx are undone on rollback.
type memStore struct {
	txMu sync.Mutex

	mu            sync.Mutex
	nextID        int64
	users         map[int64]*domain.User
	trades        []domain.Transaction
	deposits      []domain.CashDeposit
	failNextTrade error
}

func newMemStore() *memStore {
	return &memStore{users: make(map[int64]*domain.User)}
}

// memTx satisfies db.TxController and repository.DBExecutor.
type memTx struct {
	MockDBExecutor
	store *memStore
	undo  []func()
	done  bool
}

func (t *memTx) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.store.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.store.mu.Unlock()
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func (s *memStore) beginTx(ctx context.Context, _ db.DBTxBeginner) (db.TxController, error) {
	s.txMu.Lock()
	return &memTx{store: s}, nil
}

func (s *memStore) onRollback(q repository.DBExecutor, fn func()) {
	if tx, ok := q.(*memTx); ok {
		tx.undo = append(tx.undo, fn)
	}
}

func (s *memStore) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return util.ErrUsernameTaken
		}
	}
	s.nextID++
	user.ID = s.nextID
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *memStore) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, util.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) GetUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, util.ErrUserNotFound
}

func (s *memStore) LockUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	return s.GetUserByID(ctx, q, id)
}

func (s *memStore) AdjustCash(ctx context.Context, q repository.DBExecutor, userID int64, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return util.ErrUserNotFound
	}
	next := u.Cash.Add(delta).Round(numericScale)
	if next.IsNegative() {
		return errors.New("cash check constraint violated")
	}
	prev := u.Cash
	u.Cash = next
	s.onRollback(q, func() { u.Cash = prev })
	return nil
}

func (s *memStore) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failNextTrade; err != nil {
		s.failNextTrade = nil
		return err
	}
	s.nextID++
	transaction.ID = s.nextID
	transaction.CreatedAt = time.Now().UTC()
	row := *transaction
	row.Price = row.Price.Round(numericScale)
	s.trades = append(s.trades, row)
	n := len(s.trades) - 1
	s.onRollback(q, func() { s.trades = s.trades[:n] })
	return nil
}

func (s *memStore) GetTransactionsByUserID(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, t := range s.trades {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) SumShares(ctx context.Context, q repository.DBExecutor, userID int64, symbol string) (int64, error) {
	trades, _ := s.GetTransactionsByUserID(ctx, q, userID)
	var sum int64
	for _, t := range trades {
		if t.Symbol == symbol {
			sum += t.Shares
		}
	}
	return sum, nil
}

func (s *memStore) GetHeldSymbols(ctx context.Context, q repository.DBExecutor, userID int64) ([]string, error) {
	trades, _ := s.GetTransactionsByUserID(ctx, q, userID)
	sums := make(map[string]int64)
	for _, t := range trades {
		sums[t.Symbol] += t.Shares
	}
	var symbols []string
	for sym, n := range sums {
		if n > 0 {
			symbols = append(symbols, sym)
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (s *memStore) CreateDeposit(ctx context.Context, q repository.DBExecutor, deposit *domain.CashDeposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	deposit.ID = s.nextID
	s.deposits = append(s.deposits, *deposit)
	n := len(s.deposits) - 1
	s.onRollback(q, func() { s.deposits = s.deposits[:n] })
	return nil
}

func (s *memStore) GetDepositsByUserID(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.CashDeposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.CashDeposit
	for _, d := range s.deposits {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *memStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}
