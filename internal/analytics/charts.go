package analytics

import (
	"context"
	"log/slog"
	"time"

	"finledger/internal/core"
	"finledger/internal/storage"
)

// DailyPoint is one day of the charting series. EndBalance is the
// reconstructed total balance at the end of that day; the cumulative
// fields run from the start of the window.
type DailyPoint struct {
	Date              string     `json:"date"` // "2006-01-02"
	Income            core.Money `json:"income"`
	Expense           core.Money `json:"expense"`
	Net               core.Money `json:"net"`
	EndBalance        core.Money `json:"end_balance"`
	CumulativeIncome  core.Money `json:"cumulative_income"`
	CumulativeExpense core.Money `json:"cumulative_expense"`
	// CumulativeSavingsRate is (cumulative income - cumulative expense) /
	// cumulative income, in percent; 0 while no income has arrived.
	CumulativeSavingsRate float64 `json:"cumulative_savings_rate"`
}

// DailySeries is the dense day-by-day window plus the maximum single-day
// amplitude, which display code uses to scale chart heights.
type DailySeries struct {
	Days         []DailyPoint `json:"days"`
	MaxDayAmount core.Money   `json:"max_day_amount"`
}

const dayLayout = "2006-01-02"

// DailyChartData builds per-day income/expense sums over a trailing window
// of days, ending today. The end-of-day balance series is reconstructed
// backward from the current total balance: today's end balance is the
// current total, and each previous day's is obtained by subtracting the
// following day's net.
func (s *Service) DailyChartData(ctx context.Context, days int) DailySeries {
	if days < 1 {
		days = 1
	}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(days - 1))

	totals, err := s.store.Queries().DailyTotals(ctx, since)
	if err != nil {
		slog.ErrorContext(ctx, "Daily aggregation failed", "error", err, "days", days)
		totals = nil
	}
	currentTotal, err := s.store.Queries().TotalBalance(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Total balance read failed", "error", err)
		currentTotal = core.Money{}
	}

	byDay := make(map[string]storage.PeriodTotals, len(totals))
	for _, t := range totals {
		byDay[t.Period] = t
	}

	points := make([]DailyPoint, days)
	var maxDay int64
	for i := 0; i < days; i++ {
		label := since.AddDate(0, 0, i).Format(dayLayout)
		t := byDay[label]
		points[i] = DailyPoint{
			Date:    label,
			Income:  core.Money{Cents: t.IncomeCents},
			Expense: core.Money{Cents: t.ExpenseCents},
			Net:     core.Money{Cents: t.IncomeCents - t.ExpenseCents},
		}
		if t.IncomeCents > maxDay {
			maxDay = t.IncomeCents
		}
		if t.ExpenseCents > maxDay {
			maxDay = t.ExpenseCents
		}
	}

	// Walk backward from the current total to reconstruct end-of-day
	// balances.
	balance := currentTotal.Cents
	for i := days - 1; i >= 0; i-- {
		points[i].EndBalance = core.Money{Cents: balance}
		balance -= points[i].Net.Cents
	}

	// Cumulative series run forward.
	var cumIncome, cumExpense int64
	for i := range points {
		cumIncome += points[i].Income.Cents
		cumExpense += points[i].Expense.Cents
		points[i].CumulativeIncome = core.Money{Cents: cumIncome}
		points[i].CumulativeExpense = core.Money{Cents: cumExpense}
		points[i].CumulativeSavingsRate = savingsRate(cumIncome, cumExpense)
	}

	return DailySeries{Days: points, MaxDayAmount: core.Money{Cents: maxDay}}
}

// savingsRate is the cash-flow savings rate in percent: (income - expense)
// / income * 100, reported as 0 when there is no income.
func savingsRate(incomeCents, expenseCents int64) float64 {
	if incomeCents <= 0 {
		return 0
	}
	return float64(incomeCents-expenseCents) / float64(incomeCents) * 100
}
