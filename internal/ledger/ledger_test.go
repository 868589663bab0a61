package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
	"finledger/internal/storage"
)

// recordingPublisher captures event kinds for assertions.
type recordingPublisher struct {
	kinds []string
}

func (p *recordingPublisher) Publish(_ context.Context, kind string, _ any) error {
	p.kinds = append(p.kinds, kind)
	return nil
}

func newTestService(t *testing.T) (*Service, *recordingPublisher) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	pub := &recordingPublisher{}
	return New(store, pub), pub
}

func mustAccount(t *testing.T, s *Service, name string, openingCents int64) core.Account {
	t.Helper()
	a, err := s.CreateAccount(context.Background(), CreateAccountParams{
		Name: name, Kind: core.AccountCash, OpeningBalance: core.Money{Cents: openingCents},
	})
	require.NoError(t, err)
	return a
}

func mustCategory(t *testing.T, s *Service, name string, typ core.CategoryType) core.Category {
	t.Helper()
	c, err := s.CreateCategory(context.Background(), storage.CreateCategoryParams{Name: name, Type: typ})
	require.NoError(t, err)
	return c
}

func balance(t *testing.T, s *Service, id int64) int64 {
	t.Helper()
	a, err := s.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return a.Balance.Cents
}

func TestRecordTransaction_IncomeThenOverdraw(t *testing.T) {
	s, pub := newTestService(t)
	ctx := context.Background()
	acct := mustAccount(t, s, "Wallet", 0)
	salary := mustCategory(t, s, "Pay", core.CategoryIncome)
	food := mustCategory(t, s, "Groceries", core.CategoryExpense)

	_, err := s.RecordTransaction(ctx, RecordTransactionParams{
		Type: core.TxIncome, Amount: core.Money{Cents: 50000}, Title: "Salary",
		CategoryID: &salary.ID, AccountID: acct.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50000), balance(t, s, acct.ID))

	// Overdraw attempt: rejected, balance untouched, no row written.
	_, err = s.RecordTransaction(ctx, RecordTransactionParams{
		Type: core.TxExpense, Amount: core.Money{Cents: 60000}, Title: "Rent",
		CategoryID: &food.ID, AccountID: acct.ID,
	})
	var ife *core.InsufficientFundsError
	require.ErrorAs(t, err, &ife)
	assert.Equal(t, "Wallet", ife.AccountName)
	assert.Equal(t, int64(50000), ife.Balance.Cents)
	assert.Equal(t, int64(60000), ife.Attempted.Cents)
	assert.Equal(t, int64(50000), balance(t, s, acct.ID))

	txns, err := s.ListTransactions(ctx, storage.ListTransactionsParams{})
	require.NoError(t, err)
	assert.Len(t, txns, 1)

	_, err = s.RecordTransaction(ctx, RecordTransactionParams{
		Type: core.TxExpense, Amount: core.Money{Cents: 20000}, Title: "Groceries",
		CategoryID: &food.ID, AccountID: acct.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30000), balance(t, s, acct.ID))

	assert.Equal(t, []string{
		EventAccountCreated, EventTransactionRecorded, EventTransactionRecorded,
	}, pub.kinds, "failed writes publish nothing")
}

func TestRecordTransaction_ValidationOrder(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	acct := mustAccount(t, s, "Wallet", 1000)
	cat := mustCategory(t, s, "Misc", core.CategoryExpense)

	_, err := s.RecordTransaction(ctx, RecordTransactionParams{Type: "bogus", Amount: core.Money{Cents: 1}, Title: "x", AccountID: acct.ID})
	assert.ErrorIs(t, err, core.ErrInvalidType)

	_, err = s.RecordTransaction(ctx, RecordTransactionParams{Type: core.TxExpense, Title: "x", AccountID: acct.ID, CategoryID: &cat.ID})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = s.RecordTransaction(ctx, RecordTransactionParams{Type: core.TxExpense, Amount: core.Money{Cents: 1}, Title: "   ", AccountID: acct.ID, CategoryID: &cat.ID})
	assert.ErrorIs(t, err, core.ErrInvalidTitle)

	_, err = s.RecordTransaction(ctx, RecordTransactionParams{Type: core.TxExpense, Amount: core.Money{Cents: 1}, Title: "x", AccountID: 999, CategoryID: &cat.ID})
	assert.True(t, core.IsNotFound(err))

	_, err = s.RecordTransaction(ctx, RecordTransactionParams{Type: core.TxExpense, Amount: core.Money{Cents: 1}, Title: "x", AccountID: acct.ID})
	assert.ErrorIs(t, err, core.ErrInvalidCategory)

	missing := int64(999)
	_, err = s.RecordTransaction(ctx, RecordTransactionParams{Type: core.TxExpense, Amount: core.Money{Cents: 1}, Title: "x", AccountID: acct.ID, CategoryID: &missing})
	assert.True(t, core.IsNotFound(err))
}

func TestTransferConservation(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	src := mustAccount(t, s, "Checking", 10000)
	dst := mustAccount(t, s, "Savings", 500)

	_, err := s.RecordTransaction(ctx, RecordTransactionParams{
		Type: core.TxTransfer, Amount: core.Money{Cents: 4000}, Title: "Move",
		AccountID: src.ID, ToAccountID: &dst.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6000), balance(t, s, src.ID))
	assert.Equal(t, int64(4500), balance(t, s, dst.ID))

	total, err := s.TotalBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10500), total.Cents, "transfers conserve the total")

	// Missing destination: nothing changes.
	missing := int64(999)
	_, err = s.RecordTransaction(ctx, RecordTransactionParams{
		Type: core.TxTransfer, Amount: core.Money{Cents: 1000}, Title: "Move",
		AccountID: src.ID, ToAccountID: &missing,
	})
	var nf *core.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "destination account", nf.Entity)
	assert.Equal(t, int64(6000), balance(t, s, src.ID))

	txns, err := s.ListTransactions(ctx, storage.ListTransactionsParams{})
	require.NoError(t, err)
	assert.Len(t, txns, 1, "the failed transfer left no row")
}

func TestTransferToSelfRejected(t *testing.T) {
	s, _ := newTestService(t)
	src := mustAccount(t, s, "Checking", 10000)

	_, err := s.RecordTransaction(context.Background(), RecordTransactionParams{
		Type: core.TxTransfer, Amount: core.Money{Cents: 1000}, Title: "Move",
		AccountID: src.ID, ToAccountID: &src.ID,
	})
	assert.ErrorIs(t, err, core.ErrInvalidTransfer)

	_, err = s.RecordTransaction(context.Background(), RecordTransactionParams{
		Type: core.TxTransfer, Amount: core.Money{Cents: 1000}, Title: "Move",
		AccountID: src.ID,
	})
	assert.ErrorIs(t, err, core.ErrInvalidTransfer, "transfer without destination")
}

func TestDebtRoundTrip_Borrowed(t *testing.T) {
	s, pub := newTestService(t)
	ctx := context.Background()
	acct := mustAccount(t, s, "Wallet", 1000)

	debt, err := s.CreateDebt(ctx, CreateDebtParams{
		Direction: core.DebtGot, PersonName: "Alice", Amount: core.Money{Cents: 5000}, AccountID: acct.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, core.DebtActive, debt.Status)
	require.NotNil(t, debt.TransactionID)
	assert.Equal(t, int64(6000), balance(t, s, acct.ID), "borrowed money arrives")

	linked, err := s.store.Queries().GetTransaction(ctx, *debt.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, core.TxBorrowed, linked.Type)
	assert.Equal(t, "Borrowed from Alice", linked.Title)

	settled, err := s.RepayDebt(ctx, debt.ID, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, core.DebtCompleted, settled.Status)
	assert.Equal(t, int64(1000), balance(t, s, acct.ID), "repayment returns the principal")

	_, err = s.RepayDebt(ctx, debt.ID, acct.ID)
	assert.ErrorIs(t, err, core.ErrDebtNotActive)

	assert.Contains(t, pub.kinds, EventDebtCreated)
	assert.Contains(t, pub.kinds, EventDebtSettled)
}

func TestDebtRoundTrip_Lent(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	acct := mustAccount(t, s, "Wallet", 3000)

	// Lending more than the balance is rejected with no debt row.
	_, err := s.CreateDebt(ctx, CreateDebtParams{
		Direction: core.DebtGave, PersonName: "Bob", Amount: core.Money{Cents: 5000}, AccountID: acct.ID,
	})
	assert.True(t, core.IsInsufficientFunds(err))
	debts, err := s.ListDebts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, debts)
	assert.Equal(t, int64(3000), balance(t, s, acct.ID))

	debt, err := s.CreateDebt(ctx, CreateDebtParams{
		Direction: core.DebtGave, PersonName: "Bob", Amount: core.Money{Cents: 2000}, AccountID: acct.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance(t, s, acct.ID), "lent money leaves")

	// Collection always succeeds regardless of balance.
	settled, err := s.RepayDebt(ctx, debt.ID, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, core.DebtCompleted, settled.Status)
	assert.Equal(t, int64(3000), balance(t, s, acct.ID))

	txns, err := s.ListTransactions(ctx, storage.ListTransactionsParams{})
	require.NoError(t, err)
	assert.Equal(t, core.TxIncome, txns[0].Type)
	assert.Equal(t, "Debt collected from Bob", txns[0].Title)
}

func TestDeleteDebtRequiresCompletion(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	acct := mustAccount(t, s, "Wallet", 0)

	debt, err := s.CreateDebt(ctx, CreateDebtParams{
		Direction: core.DebtGot, PersonName: "Alice", Amount: core.Money{Cents: 5000}, AccountID: acct.ID,
	})
	require.NoError(t, err)
	txnID := *debt.TransactionID

	// Active debts cannot be deleted; they must be settled first.
	err = s.DeleteDebt(ctx, debt.ID)
	assert.ErrorIs(t, err, core.ErrDebtNotCompleted)

	debts, err := s.ListDebts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, debts, 1, "rejected deletion leaves the debt in place")
	_, err = s.store.Queries().GetTransaction(ctx, txnID)
	require.NoError(t, err, "rejected deletion leaves the linked transaction in place")

	_, err = s.RepayDebt(ctx, debt.ID, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance(t, s, acct.ID))

	require.NoError(t, s.DeleteDebt(ctx, debt.ID))

	debts, err = s.ListDebts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, debts)

	_, err = s.store.Queries().GetTransaction(ctx, txnID)
	assert.True(t, core.IsNotFound(err), "linked transaction is removed with the debt")

	assert.Equal(t, int64(0), balance(t, s, acct.ID), "deletion does not move any money")

	txns, err := s.ListTransactions(ctx, storage.ListTransactionsParams{})
	require.NoError(t, err)
	require.Len(t, txns, 1, "the settlement transaction survives as history")
	assert.Equal(t, core.TxDebtPayment, txns[0].Type)

	err = s.DeleteDebt(ctx, debt.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestDeleteAccountKeepsHistory(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	acct := mustAccount(t, s, "Wallet", 0)
	salary := mustCategory(t, s, "Pay", core.CategoryIncome)

	txn, err := s.RecordTransaction(ctx, RecordTransactionParams{
		Type: core.TxIncome, Amount: core.Money{Cents: 100}, Title: "Salary",
		CategoryID: &salary.ID, AccountID: acct.ID,
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteAccount(ctx, acct.ID))

	got, err := s.store.Queries().GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.AccountID, "the log keeps rows for deleted accounts")
}

func TestPublisherIsOptional(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	s := New(store, nil)

	_, err = s.CreateAccount(context.Background(), CreateAccountParams{Name: "Wallet", Kind: core.AccountCash})
	require.NoError(t, err, "a nil publisher must not fail writes")
}
