// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input provided")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrUnknownSymbol        = errors.New("unknown symbol")
	ErrServiceUnavailable   = errors.New("quote service unavailable")
	ErrUserNotFound         = errors.New("user not found")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrInvalidCredentials   = errors.New("invalid username and/or password")
)

// IsError reports whether any error in err's chain matches target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// InvalidInput wraps ErrInvalidInput with a user-facing reason.
func InvalidInput(reason string) error {
	return &inputError{reason: reason}
}

type inputError struct {
	reason string
}

func (e *inputError) Error() string { return ErrInvalidInput.Error() + ": " + e.reason }

func (e *inputError) Unwrap() error { return ErrInvalidInput }
