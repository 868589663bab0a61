package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
	"finledger/internal/storage"
)

func TestHealthBreakdown(t *testing.T) {
	money := func(cents int64) core.Money { return core.Money{Cents: cents} }

	tests := []struct {
		name         string
		rate         float64
		net          core.Money
		accelerating bool
		balance      core.Money
		want         HealthBreakdown
	}{
		{
			name: "best case", rate: 25, net: money(1), accelerating: true, balance: money(1_500_000),
			want: HealthBreakdown{SavingsRatePoints: 40, NetSavingsPoints: 30, TrendPoints: 20, BalancePoints: 10},
		},
		{
			name: "worst case", rate: 0, net: money(-1), accelerating: false, balance: money(0),
			want: HealthBreakdown{SavingsRatePoints: 0, NetSavingsPoints: 0, TrendPoints: 10, BalancePoints: 0},
		},
		{
			name: "middle bands", rate: 12, net: money(0), accelerating: false, balance: money(200_000),
			want: HealthBreakdown{SavingsRatePoints: 20, NetSavingsPoints: 15, TrendPoints: 10, BalancePoints: 5},
		},
		{
			name: "rate boundary at 5", rate: 5, net: money(1), accelerating: false, balance: money(50),
			want: HealthBreakdown{SavingsRatePoints: 10, NetSavingsPoints: 30, TrendPoints: 10, BalancePoints: 2},
		},
		{
			name: "just under 5", rate: 4.99, net: money(1), accelerating: false, balance: money(50),
			want: HealthBreakdown{SavingsRatePoints: 0, NetSavingsPoints: 30, TrendPoints: 10, BalancePoints: 2},
		},
		{
			name: "balance exactly 10000 stays in lower tier", rate: 15, net: money(1), accelerating: true, balance: money(1_000_000),
			want: HealthBreakdown{SavingsRatePoints: 30, NetSavingsPoints: 30, TrendPoints: 20, BalancePoints: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := healthBreakdown(tt.rate, tt.net, tt.accelerating, tt.balance)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpenseStability(t *testing.T) {
	month := func(expenseCents int64) MonthlySummary {
		return MonthlySummary{Expense: core.Money{Cents: expenseCents}}
	}

	t.Run("too few data points", func(t *testing.T) {
		assert.Zero(t, expenseStability([]MonthlySummary{month(1000)}))
		assert.Zero(t, expenseStability([]MonthlySummary{month(0), month(0)}))
	})

	t.Run("constant spending scores 100", func(t *testing.T) {
		assert.InDelta(t, 100.0, expenseStability([]MonthlySummary{month(5000), month(5000), month(5000)}), 0.0001)
	})

	t.Run("erratic spending scores lower", func(t *testing.T) {
		steady := expenseStability([]MonthlySummary{month(5000), month(5200), month(4800)})
		erratic := expenseStability([]MonthlySummary{month(1000), month(9000), month(500)})
		assert.Greater(t, steady, erratic)
		assert.GreaterOrEqual(t, erratic, 0.0)
	})
}

func TestNetWorthRate(t *testing.T) {
	money := func(cents int64) core.Money { return core.Money{Cents: cents} }

	assert.Zero(t, netWorthRate(money(100), money(50), money(0)), "no income means no rate")
	assert.InDelta(t, 5.0, netWorthRate(money(1000), money(50), money(1000)), 0.0001)
	assert.Zero(t, netWorthRate(money(100), money(-50), money(1000)), "negative rates clamp to zero")
}

func TestAdvancedAnalytics(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := store.Queries().CreateAccount(ctx, storage.CreateAccountParams{
		Name: "Main", BalanceCents: 2_000_000, Kind: core.AccountCash,
	})
	require.NoError(t, err)

	anchor := monthAnchor()
	seedTransaction(t, store, core.TxIncome, 100000, nil, anchor.Add(time.Hour))
	seedTransaction(t, store, core.TxExpense, 50000, nil, anchor.Add(2*time.Hour))

	out := svc.AdvancedAnalytics(ctx)

	require.Len(t, out.Periods, 3)
	assert.Equal(t, 3, out.Periods[0].Months)
	assert.Equal(t, 12, out.Periods[2].Months)
	for _, p := range out.Periods {
		assert.Equal(t, int64(100000), p.Income.Cents, "all activity sits inside every window")
		assert.Equal(t, int64(50000), p.Expense.Cents)
		assert.InDelta(t, 50.0, p.CashFlowRate, 0.0001)
	}

	assert.InDelta(t, 50.0, out.CashFlowSavingsRate, 0.0001)
	assert.False(t, out.TrendAccelerating, "identical window rates are not acceleration")
	assert.Equal(t, int64(2_000_000), out.CurrentBalance.Cents)

	// 40 (rate >= 20) + 30 (positive net) + 10 (flat trend) + 10 (balance
	// over 10000).
	assert.Equal(t, 90, out.HealthScore)
	assert.Equal(t, out.HealthScore,
		out.HealthBreakdown.SavingsRatePoints+out.HealthBreakdown.NetSavingsPoints+
			out.HealthBreakdown.TrendPoints+out.HealthBreakdown.BalancePoints)
}
