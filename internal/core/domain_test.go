package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionTypeValid(t *testing.T) {
	for _, tt := range []TransactionType{TxIncome, TxExpense, TxTransfer, TxDebtPayment, TxBorrowed, TxLent} {
		assert.True(t, tt.Valid(), "type %q should be valid", tt)
	}
	assert.False(t, TransactionType("refund").Valid())
	assert.False(t, TransactionType("").Valid())
}

func TestTransactionTypeDebit(t *testing.T) {
	assert.True(t, TxExpense.Debit())
	assert.True(t, TxDebtPayment.Debit())
	assert.True(t, TxTransfer.Debit())
	assert.True(t, TxLent.Debit())
	assert.False(t, TxIncome.Debit())
	assert.False(t, TxBorrowed.Debit())
}

func TestAccountValidate(t *testing.T) {
	valid := Account{Name: "Cash", Kind: AccountCash}
	assert.NoError(t, valid.Validate())

	assert.ErrorIs(t, Account{Name: "  ", Kind: AccountCash}.Validate(), ErrInvalidTitle)
	assert.ErrorIs(t, Account{Name: "Card", Kind: "crypto"}.Validate(), ErrInvalidAccountKind)
}

func TestCategoryValidate(t *testing.T) {
	assert.NoError(t, Category{Name: "Food", Type: CategoryExpense}.Validate())
	assert.ErrorIs(t, Category{Name: "", Type: CategoryExpense}.Validate(), ErrInvalidTitle)
	assert.ErrorIs(t, Category{Name: "Food", Type: "misc"}.Validate(), ErrInvalidCategory)
}

func TestErrorHelpers(t *testing.T) {
	nf := &NotFoundError{Entity: "account", ID: 7}
	assert.True(t, IsNotFound(nf))
	assert.Contains(t, nf.Error(), "account 7")

	ife := &InsufficientFundsError{AccountName: "Cash", Balance: Money{Cents: 5000}, Attempted: Money{Cents: 10000}}
	assert.True(t, IsInsufficientFunds(ife))
	assert.Contains(t, ife.Error(), "Cash")
	assert.Contains(t, ife.Error(), "50.00")
	assert.Contains(t, ife.Error(), "100.00")

	assert.True(t, IsValidation(ErrInvalidAmount))
	assert.True(t, IsValidation(ErrDebtNotActive))
	assert.True(t, IsValidation(ErrDebtNotCompleted))
	assert.False(t, IsValidation(nf))
}
