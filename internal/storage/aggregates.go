package storage

import (
	"context"
	"fmt"
	"time"
)

// Aggregate queries backing the analytics layer. Only successful rows count;
// income is the income type, expense covers expense and debt_payment (debt
// settlements spend money the same way expenses do). Transfers and debt
// principal movements (borrowed/lent) are neutral and excluded.

const (
	incomeSumExpr  = `COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0)`
	expenseSumExpr = `COALESCE(SUM(CASE WHEN type IN ('expense', 'debt_payment') THEN amount_cents ELSE 0 END), 0)`
)

// PeriodTotals holds income/expense sums for one bucket (month or day),
// keyed by the bucket label ("2026-08" or "2026-08-30").
type PeriodTotals struct {
	Period       string
	IncomeCents  int64
	ExpenseCents int64
}

// MonthlyTotals returns per-calendar-month sums for successful transactions
// dated on or after since, oldest month first.
func (q *Queries) MonthlyTotals(ctx context.Context, since time.Time) ([]PeriodTotals, error) {
	return q.periodTotals(ctx, `%Y-%m`, since)
}

// DailyTotals returns per-day sums for successful transactions dated on or
// after since, oldest day first.
func (q *Queries) DailyTotals(ctx context.Context, since time.Time) ([]PeriodTotals, error) {
	return q.periodTotals(ctx, `%Y-%m-%d`, since)
}

func (q *Queries) periodTotals(ctx context.Context, bucket string, since time.Time) ([]PeriodTotals, error) {
	rows, err := q.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT strftime('%s', date) AS period, %s, %s
		FROM transactions
		WHERE status = 'success' AND date >= ?
		GROUP BY period
		ORDER BY period ASC`, bucket, incomeSumExpr, expenseSumExpr),
		formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("query period totals: %w", err)
	}
	defer rows.Close()

	var out []PeriodTotals
	for rows.Next() {
		var p PeriodTotals
		if err := rows.Scan(&p.Period, &p.IncomeCents, &p.ExpenseCents); err != nil {
			return nil, fmt.Errorf("scan period totals: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// WindowTotals returns income/expense sums over a single trailing window.
func (q *Queries) WindowTotals(ctx context.Context, since time.Time) (incomeCents, expenseCents int64, err error) {
	err = q.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s, %s FROM transactions WHERE status = 'success' AND date >= ?`,
		incomeSumExpr, expenseSumExpr), formatTime(since)).
		Scan(&incomeCents, &expenseCents)
	if err != nil {
		return 0, 0, fmt.Errorf("query window totals: %w", err)
	}
	return incomeCents, expenseCents, nil
}

// CategoryExpenseTotal is one category's expense sum over a window.
type CategoryExpenseTotal struct {
	CategoryID int64
	Name       string
	Icon       string
	Color      string
	TotalCents int64
}

// CategoryExpenseTotals sums expense transactions per category over a
// trailing window, largest first. Ties keep category creation order, which
// makes the ranking deterministic.
func (q *Queries) CategoryExpenseTotals(ctx context.Context, since time.Time) ([]CategoryExpenseTotal, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.icon, c.color, SUM(t.amount_cents) AS total
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.type = 'expense' AND t.status = 'success' AND t.date >= ?
		GROUP BY c.id, c.name, c.icon, c.color
		ORDER BY total DESC, c.id ASC`,
		formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("query category totals: %w", err)
	}
	defer rows.Close()

	var out []CategoryExpenseTotal
	for rows.Next() {
		var c CategoryExpenseTotal
		if err := rows.Scan(&c.CategoryID, &c.Name, &c.Icon, &c.Color, &c.TotalCents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
