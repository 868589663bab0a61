package core

import (
	"errors"
	"fmt"
)

// Validation errors are caller-correctable and reported before any mutation.
var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidTitle       = errors.New("invalid title")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidTransfer    = errors.New("invalid transfer")
	ErrInvalidType        = errors.New("invalid type")
	ErrInvalidAccountKind = errors.New("invalid account kind")
	ErrDebtNotActive      = errors.New("debt is not active")
	ErrDebtNotCompleted   = errors.New("debt is not completed")
)

// NotFoundError indicates a referenced entity does not exist, usually stale
// caller state.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InsufficientFundsError rejects a debit that would overdraw an account.
// It carries the structured fields callers need for display instead of
// requiring them to be parsed back out of the message.
type InsufficientFundsError struct {
	AccountName string
	Balance     Money
	Attempted   Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in %q: balance %s, attempted %s",
		e.AccountName, e.Balance, e.Attempted)
}

// StorageError wraps any lower-level storage failure after the enclosing
// atomic unit has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInsufficientFunds reports whether err is an InsufficientFundsError.
func IsInsufficientFunds(err error) bool {
	var ife *InsufficientFundsError
	return errors.As(err, &ife)
}

// IsValidation reports whether err is one of the caller-correctable
// validation sentinels.
func IsValidation(err error) bool {
	for _, sentinel := range []error{
		ErrInvalidAmount, ErrInvalidTitle, ErrInvalidCategory,
		ErrInvalidTransfer, ErrInvalidType, ErrInvalidAccountKind,
		ErrDebtNotActive, ErrDebtNotCompleted,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
