package core

import (
	"strings"
	"time"
)

type (
	AccountKind       string
	TransactionType   string
	TransactionStatus string
	CategoryType      string
	DebtDirection     string
	DebtStatus        string
)

const (
	AccountCash AccountKind = "cash"
	AccountCard AccountKind = "card"

	TxIncome      TransactionType = "income"
	TxExpense     TransactionType = "expense"
	TxTransfer    TransactionType = "transfer"
	TxDebtPayment TransactionType = "debt_payment"
	TxBorrowed    TransactionType = "borrowed"
	TxLent        TransactionType = "lent"

	TxSuccess TransactionStatus = "success"
	TxFailed  TransactionStatus = "failed"

	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"

	// DebtGot is money the user borrowed (owes out);
	// DebtGave is money the user lent (is owed).
	DebtGot  DebtDirection = "got"
	DebtGave DebtDirection = "gave"

	DebtActive    DebtStatus = "active"
	DebtCompleted DebtStatus = "completed"
)

func (k AccountKind) Valid() bool {
	return k == AccountCash || k == AccountCard
}

func (t TransactionType) Valid() bool {
	switch t {
	case TxIncome, TxExpense, TxTransfer, TxDebtPayment, TxBorrowed, TxLent:
		return true
	}
	return false
}

// Debit reports whether the type takes money out of the source account.
func (t TransactionType) Debit() bool {
	switch t {
	case TxExpense, TxDebtPayment, TxTransfer, TxLent:
		return true
	}
	return false
}

func (c CategoryType) Valid() bool {
	return c == CategoryIncome || c == CategoryExpense
}

func (d DebtDirection) Valid() bool {
	return d == DebtGot || d == DebtGave
}

// Account is a named store of money. Its balance is mutated only by the
// ledger service, never written directly by callers.
type Account struct {
	ID             int64
	Name           string
	Balance        Money
	Kind           AccountKind
	CardColor      string
	CardLastDigits string
	Emoji          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrInvalidTitle
	}
	if !a.Kind.Valid() {
		return ErrInvalidAccountKind
	}
	return nil
}

// Category labels income or expense transactions.
type Category struct {
	ID        int64
	Name      string
	Type      CategoryType
	Icon      string
	Color     string
	CreatedAt time.Time
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidTitle
	}
	if !c.Type.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// Transaction is an immutable ledger entry. Rows are validated against
// current balances at write time and never re-validated afterwards.
type Transaction struct {
	ID          int64
	Type        TransactionType
	Amount      Money
	Title       string
	Description string
	CategoryID  *int64
	AccountID   int64
	ToAccountID *int64
	Date        time.Time
	Status      TransactionStatus
	CreatedAt   time.Time
}

// Debt records money borrowed from or lent to a named person. Establishing
// or settling a debt always produces exactly one linked transaction.
type Debt struct {
	ID            int64
	Direction     DebtDirection
	PersonName    string
	Amount        Money
	Description   string
	AccountID     int64
	Date          time.Time
	DueDate       *time.Time
	Status        DebtStatus
	TransactionID *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Setting is a flat key/value preference entry.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
