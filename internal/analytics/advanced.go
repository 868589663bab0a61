package analytics

import (
	"context"
	"log/slog"
	"math"

	"finledger/internal/core"
)

// PeriodComparison summarizes one trailing window for the multi-period
// (3/6/12 month) comparison view.
type PeriodComparison struct {
	Months       int        `json:"months"`
	Income       core.Money `json:"income"`
	Expense      core.Money `json:"expense"`
	Net          core.Money `json:"net"`
	CashFlowRate float64    `json:"cash_flow_rate"`
}

// HealthBreakdown shows where the composite score's points came from.
type HealthBreakdown struct {
	SavingsRatePoints int `json:"savings_rate_points"`
	NetSavingsPoints  int `json:"net_savings_points"`
	TrendPoints       int `json:"trend_points"`
	BalancePoints     int `json:"balance_points"`
}

// AdvancedAnalytics is the full diagnostic view: both savings-rate
// formulas, period comparisons, expense stability and the health score.
type AdvancedAnalytics struct {
	CurrentBalance core.Money         `json:"current_balance"`
	Periods        []PeriodComparison `json:"periods"`

	// CashFlowSavingsRate is (income - expense) / income over the 12-month
	// window, unclamped; it can go negative and is kept for diagnostics.
	CashFlowSavingsRate float64 `json:"cash_flow_savings_rate"`
	// NetWorthSavingsRate divides the change in total balance across the
	// window by the window's income. The window-start total is
	// reconstructed by subtracting the window's net cash flow from the
	// current total. Clamped to >= 0 for display.
	NetWorthSavingsRate float64 `json:"net_worth_savings_rate"`

	// ExpenseStability is 100 minus the coefficient of variation of
	// monthly expenses (in percent), floored at 0. Steady spending scores
	// high, erratic spending low.
	ExpenseStability float64 `json:"expense_stability"`

	// TrendAccelerating is true when the 3-month savings rate beats the
	// 12-month rate.
	TrendAccelerating bool `json:"trend_accelerating"`

	HealthScore     int             `json:"health_score"`
	HealthBreakdown HealthBreakdown `json:"health_breakdown"`
}

var comparisonWindows = []int{3, 6, 12}

// AdvancedAnalytics computes the composite dashboard view over 3/6/12
// month windows. On storage failure it returns the zero value.
func (s *Service) AdvancedAnalytics(ctx context.Context) AdvancedAnalytics {
	currentTotal, err := s.store.Queries().TotalBalance(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Advanced analytics failed", "error", err)
		return AdvancedAnalytics{}
	}

	monthly := s.MonthlyData(ctx, 12)

	out := AdvancedAnalytics{CurrentBalance: currentTotal}
	for _, months := range comparisonWindows {
		window := monthly[len(monthly)-months:]
		var income, expense int64
		for _, m := range window {
			income += m.Income.Cents
			expense += m.Expense.Cents
		}
		out.Periods = append(out.Periods, PeriodComparison{
			Months:       months,
			Income:       core.Money{Cents: income},
			Expense:      core.Money{Cents: expense},
			Net:          core.Money{Cents: income - expense},
			CashFlowRate: savingsRate(income, expense),
		})
	}

	long := out.Periods[len(out.Periods)-1] // 12 months
	short := out.Periods[0]                 // 3 months

	out.CashFlowSavingsRate = long.CashFlowRate
	out.NetWorthSavingsRate = netWorthRate(currentTotal, long.Net, long.Income)
	out.ExpenseStability = expenseStability(monthly)
	out.TrendAccelerating = short.CashFlowRate > long.CashFlowRate

	out.HealthBreakdown = healthBreakdown(out.CashFlowSavingsRate, long.Net, out.TrendAccelerating, currentTotal)
	out.HealthScore = out.HealthBreakdown.SavingsRatePoints +
		out.HealthBreakdown.NetSavingsPoints +
		out.HealthBreakdown.TrendPoints +
		out.HealthBreakdown.BalancePoints

	return out
}

// netWorthRate reconstructs the window-start balance by removing the
// window's net cash flow from the current total, then reports the balance
// change relative to the window's income, clamped to >= 0 for display.
func netWorthRate(currentTotal, windowNet, windowIncome core.Money) float64 {
	if windowIncome.Cents <= 0 {
		return 0
	}
	startTotal := currentTotal.Sub(windowNet)
	rate := float64(currentTotal.Cents-startTotal.Cents) / float64(windowIncome.Cents) * 100
	if rate < 0 {
		return 0
	}
	return rate
}

// expenseStability turns the month-to-month variance of expenses into a
// 0-100 score: 100 - coefficient of variation in percent, floored at 0.
func expenseStability(monthly []MonthlySummary) float64 {
	var sum float64
	var n int
	for _, m := range monthly {
		if m.Expense.Cents > 0 {
			sum += m.Expense.Float()
			n++
		}
	}
	if n < 2 {
		return 0
	}
	mean := sum / float64(n)
	var variance float64
	for _, m := range monthly {
		if m.Expense.Cents > 0 {
			d := m.Expense.Float() - mean
			variance += d * d
		}
	}
	variance /= float64(n)
	cv := math.Sqrt(variance) / mean * 100
	if cv >= 100 {
		return 0
	}
	return 100 - cv
}

// healthBreakdown applies the fixed scoring rubric. The thresholds are a
// product judgment call, not derived statistics; changing them changes
// every stored comparison users have seen, so they stay put.
func healthBreakdown(rate float64, net core.Money, accelerating bool, balance core.Money) HealthBreakdown {
	var b HealthBreakdown

	switch {
	case rate >= 20:
		b.SavingsRatePoints = 40
	case rate >= 15:
		b.SavingsRatePoints = 30
	case rate >= 10:
		b.SavingsRatePoints = 20
	case rate >= 5:
		b.SavingsRatePoints = 10
	}

	switch {
	case net.Cents > 0:
		b.NetSavingsPoints = 30
	case net.Cents == 0:
		b.NetSavingsPoints = 15
	}

	if accelerating {
		b.TrendPoints = 20
	} else {
		b.TrendPoints = 10
	}

	switch v := balance.Float(); {
	case v > 10000:
		b.BalancePoints = 10
	case v > 5000:
		b.BalancePoints = 7
	case v > 1000:
		b.BalancePoints = 5
	case v > 0:
		b.BalancePoints = 2
	}

	return b
}
