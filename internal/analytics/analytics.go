// Package analytics derives read-only views from the transaction log:
// monthly and daily aggregates, savings rates, category rankings and the
// composite financial health score. It never mutates data, and it absorbs
// storage errors into zeroed results so dashboards degrade instead of
// crashing.
package analytics

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"finledger/internal/core"
	"finledger/internal/storage"
)

// Service reads from the entity store; it holds no state of its own.
type Service struct {
	store *storage.Store
}

func New(store *storage.Store) *Service {
	return &Service{store: store}
}

// MonthlySummary is one calendar month of income/expense totals.
type MonthlySummary struct {
	Month   string     `json:"month"` // "2006-01"
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Net     core.Money `json:"net"`
}

const monthLayout = "2006-01"

// MonthlyData aggregates successful transactions per calendar month over a
// trailing window, oldest first. Months without transactions appear zeroed
// so chart consumers get a dense series.
func (s *Service) MonthlyData(ctx context.Context, months int) []MonthlySummary {
	if months < 1 {
		months = 1
	}
	now := time.Now().UTC()
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	since := anchor.AddDate(0, -(months - 1), 0)

	totals, err := s.store.Queries().MonthlyTotals(ctx, since)
	if err != nil {
		slog.ErrorContext(ctx, "Monthly aggregation failed", "error", err, "months", months)
		totals = nil
	}

	byMonth := make(map[string]storage.PeriodTotals, len(totals))
	for _, t := range totals {
		byMonth[t.Period] = t
	}

	out := make([]MonthlySummary, 0, months)
	for i := months - 1; i >= 0; i-- {
		label := anchor.AddDate(0, -i, 0).Format(monthLayout)
		t := byMonth[label]
		out = append(out, MonthlySummary{
			Month:   label,
			Income:  core.Money{Cents: t.IncomeCents},
			Expense: core.Money{Cents: t.ExpenseCents},
			Net:     core.Money{Cents: t.IncomeCents - t.ExpenseCents},
		})
	}
	return out
}

// CurrentMonthData returns this calendar month's totals.
func (s *Service) CurrentMonthData(ctx context.Context) MonthlySummary {
	data := s.MonthlyData(ctx, 1)
	return data[len(data)-1]
}

// CategorySpending is one category's share of expenses over a window.
type CategorySpending struct {
	CategoryID int64      `json:"category_id"`
	Name       string     `json:"name"`
	Icon       string     `json:"icon,omitempty"`
	Color      string     `json:"color,omitempty"`
	Amount     core.Money `json:"amount"`
	Percent    float64    `json:"percent"`
}

// CategorySpending ranks expense categories over a trailing window of
// months, largest first. Percentages are shares of the window's total
// expense; ties keep category creation order.
func (s *Service) CategorySpending(ctx context.Context, months int) []CategorySpending {
	if months < 1 {
		months = 1
	}
	now := time.Now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	totals, err := s.store.Queries().CategoryExpenseTotals(ctx, since)
	if err != nil {
		slog.ErrorContext(ctx, "Category ranking failed", "error", err, "months", months)
		return nil
	}

	var totalCents int64
	for _, t := range totals {
		totalCents += t.TotalCents
	}

	out := make([]CategorySpending, 0, len(totals))
	for _, t := range totals {
		percent := 0.0
		if totalCents > 0 {
			percent = float64(t.TotalCents) / float64(totalCents) * 100
		}
		out = append(out, CategorySpending{
			CategoryID: t.CategoryID,
			Name:       t.Name,
			Icon:       t.Icon,
			Color:      t.Color,
			Amount:     core.Money{Cents: t.TotalCents},
			Percent:    percent,
		})
	}
	// Store already orders by amount; keep a stable sort as the contract.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	return out
}
