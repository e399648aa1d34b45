// internal/service/account_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"papertrade/internal/domain"
	"papertrade/internal/repository"
	"papertrade/internal/util"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores everything past 72 bytes, so longer passwords are refused.
const maxPasswordBytes = 72

// AccountService registers and authenticates users.
type AccountService interface {
	Register(ctx context.Context, username, password, confirmation string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

type accountService struct {
	dbExecutor   repository.DBExecutor
	userRepo     repository.UserRepository
	startingCash decimal.Decimal
	bcryptCost   int
}

// NewAccountService creates a new AccountService. New users receive startingCash.
func NewAccountService(dbExecutor repository.DBExecutor, userRepo repository.UserRepository, startingCash decimal.Decimal, bcryptCost int) AccountService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &accountService{
		dbExecutor:   dbExecutor,
		userRepo:     userRepo,
		startingCash: startingCash,
		bcryptCost:   bcryptCost,
	}
}

// Register creates a user. Uniqueness of the username is left to the store's
// unique index, so two racing registrations cannot both succeed.
func (s *accountService) Register(ctx context.Context, username, password, confirmation string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return nil, util.InvalidInput("must provide username")
	case password == "":
		return nil, util.InvalidInput("must provide password")
	case confirmation == "":
		return nil, util.InvalidInput("must confirm password")
	case password != confirmation:
		return nil, util.InvalidInput("passwords do not match")
	case len(password) > maxPasswordBytes:
		return nil, util.InvalidInput("password too long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register: failed to hash password: %w", err)
	}

	user := domain.NewUser(username, string(hash), s.startingCash)
	if err := s.userRepo.CreateUser(ctx, s.dbExecutor, user); err != nil {
		if errors.Is(err, util.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords produce the same error.
func (s *accountService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, util.InvalidInput("must provide username")
	}
	if password == "" {
		return nil, util.InvalidInput("must provide password")
	}

	user, err := s.userRepo.GetUserByUsername(ctx, s.dbExecutor, username)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}
	return user, nil
}
