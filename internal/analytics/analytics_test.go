package analytics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
	"finledger/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store), store
}

// monthAnchor is the first of the current calendar month in UTC, the same
// anchor MonthlyData uses.
func monthAnchor() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func seedTransaction(t *testing.T, store *storage.Store, typ core.TransactionType, cents int64, catID *int64, date time.Time) {
	t.Helper()
	ctx := context.Background()
	q := store.Queries()
	accounts, err := q.ListAccounts(ctx)
	require.NoError(t, err)
	if len(accounts) == 0 {
		a, err := q.CreateAccount(ctx, storage.CreateAccountParams{Name: "Seed", Kind: core.AccountCash})
		require.NoError(t, err)
		accounts = append(accounts, a)
	}
	_, err = q.CreateTransaction(ctx, storage.CreateTransactionParams{
		Type: typ, AmountCents: cents, Title: "seed", CategoryID: catID,
		AccountID: accounts[0].ID, Date: date, Status: core.TxSuccess,
	})
	require.NoError(t, err)
}

func TestMonthlyDataZeroFills(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	anchor := monthAnchor()

	seedTransaction(t, store, core.TxIncome, 50000, nil, anchor.Add(12*time.Hour))
	seedTransaction(t, store, core.TxExpense, 20000, nil, anchor.AddDate(0, -1, 0).Add(12*time.Hour))

	data := svc.MonthlyData(ctx, 3)
	require.Len(t, data, 3)

	assert.Equal(t, anchor.AddDate(0, -2, 0).Format("2006-01"), data[0].Month)
	assert.Zero(t, data[0].Income.Cents, "empty months are zero-filled")
	assert.Zero(t, data[0].Expense.Cents)

	assert.Equal(t, int64(20000), data[1].Expense.Cents)
	assert.Equal(t, int64(-20000), data[1].Net.Cents)

	assert.Equal(t, anchor.Format("2006-01"), data[2].Month)
	assert.Equal(t, int64(50000), data[2].Income.Cents)
	assert.Equal(t, int64(50000), data[2].Net.Cents)
}

func TestCurrentMonthData(t *testing.T) {
	svc, store := newTestService(t)
	anchor := monthAnchor()
	seedTransaction(t, store, core.TxIncome, 1234, nil, anchor.Add(time.Hour))

	m := svc.CurrentMonthData(context.Background())
	assert.Equal(t, anchor.Format("2006-01"), m.Month)
	assert.Equal(t, int64(1234), m.Income.Cents)
}

func TestSavingsRate(t *testing.T) {
	tests := []struct {
		name    string
		income  int64
		expense int64
		want    float64
	}{
		{"no income", 0, 10000, 0},
		{"break even", 10000, 10000, 0},
		{"saving", 100000, 80000, 20},
		{"overspending goes negative", 100000, 120000, -20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, savingsRate(tt.income, tt.expense), 0.0001)
		})
	}
}

func TestCategorySpendingShares(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	q := store.Queries()
	anchor := monthAnchor()

	catA, err := q.CreateCategory(ctx, storage.CreateCategoryParams{Name: "A Test", Type: core.CategoryExpense})
	require.NoError(t, err)
	catB, err := q.CreateCategory(ctx, storage.CreateCategoryParams{Name: "B Test", Type: core.CategoryExpense})
	require.NoError(t, err)
	catC, err := q.CreateCategory(ctx, storage.CreateCategoryParams{Name: "C Test", Type: core.CategoryExpense})
	require.NoError(t, err)

	seedTransaction(t, store, core.TxExpense, 5000, &catA.ID, anchor.Add(time.Hour))
	seedTransaction(t, store, core.TxExpense, 3000, &catB.ID, anchor.Add(2*time.Hour))
	seedTransaction(t, store, core.TxExpense, 2000, &catC.ID, anchor.Add(3*time.Hour))

	out := svc.CategorySpending(ctx, 1)
	require.Len(t, out, 3)
	assert.Equal(t, catA.ID, out[0].CategoryID)
	assert.InDelta(t, 50.0, out[0].Percent, 0.0001)
	assert.InDelta(t, 30.0, out[1].Percent, 0.0001)
	assert.InDelta(t, 20.0, out[2].Percent, 0.0001)
}

func TestDailyChartBalanceReconstruction(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := store.Queries().CreateAccount(ctx, storage.CreateAccountParams{
		Name: "Main", BalanceCents: 10000, Kind: core.AccountCash,
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC)
	seedTransaction(t, store, core.TxIncome, 2000, nil, today.AddDate(0, 0, -1))
	seedTransaction(t, store, core.TxExpense, 500, nil, today)

	series := svc.DailyChartData(ctx, 3)
	require.Len(t, series.Days, 3)

	assert.Equal(t, int64(2000), series.MaxDayAmount.Cents)

	// Walk back from the current total: today ends at 10000, yesterday at
	// 10500 (before today's -500), the day before at 8500 (before the
	// +2000 income).
	assert.Equal(t, int64(10000), series.Days[2].EndBalance.Cents)
	assert.Equal(t, int64(10500), series.Days[1].EndBalance.Cents)
	assert.Equal(t, int64(8500), series.Days[0].EndBalance.Cents)

	last := series.Days[2]
	assert.Equal(t, int64(2000), last.CumulativeIncome.Cents)
	assert.Equal(t, int64(500), last.CumulativeExpense.Cents)
	assert.InDelta(t, 75.0, last.CumulativeSavingsRate, 0.0001)
}
