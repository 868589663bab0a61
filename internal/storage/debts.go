package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finledger/internal/core"
)

type CreateDebtParams struct {
	Direction     core.DebtDirection
	PersonName    string
	AmountCents   int64
	Description   string
	AccountID     int64
	Date          time.Time
	DueDate       *time.Time
	TransactionID *int64
}

func (q *Queries) CreateDebt(ctx context.Context, p CreateDebtParams) (core.Debt, error) {
	now := time.Now()
	var dueDate sql.NullString
	if p.DueDate != nil {
		dueDate = sql.NullString{String: formatTime(*p.DueDate), Valid: true}
	}
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO debts (direction, person_name, amount_cents, description, account_id, date, due_date, status, transaction_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(p.Direction), p.PersonName, p.AmountCents, p.Description, p.AccountID,
		formatTime(p.Date), dueDate, string(core.DebtActive), nullInt(p.TransactionID),
		formatTime(now), formatTime(now))
	if err != nil {
		return core.Debt{}, fmt.Errorf("insert debt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Debt{}, fmt.Errorf("debt insert id: %w", err)
	}
	return q.GetDebt(ctx, id)
}

func (q *Queries) GetDebt(ctx context.Context, id int64) (core.Debt, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, direction, person_name, amount_cents, description, account_id, date, due_date, status, transaction_id, created_at, updated_at
		FROM debts WHERE id = ?`, id)
	d, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Debt{}, &core.NotFoundError{Entity: "debt", ID: id}
	}
	return d, err
}

// ListDebts returns debts newest first, optionally filtered by direction
// (pass empty string for all).
func (q *Queries) ListDebts(ctx context.Context, direction core.DebtDirection) ([]core.Debt, error) {
	query := `
		SELECT id, direction, person_name, amount_cents, description, account_id, date, due_date, status, transaction_id, created_at, updated_at
		FROM debts`
	args := []any{}
	if direction != "" {
		query += ` WHERE direction = ?`
		args = append(args, string(direction))
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query debts: %w", err)
	}
	defer rows.Close()

	var out []core.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CompleteDebt marks an active debt completed. Returns NotFoundError if the
// debt does not exist or is not active, so settlement is race-free even
// with concurrent repayments.
func (q *Queries) CompleteDebt(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE debts SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(core.DebtCompleted), formatTime(time.Now()), id, string(core.DebtActive))
	if err != nil {
		return fmt.Errorf("complete debt: %w", err)
	}
	return requireRow(res, "debt", id)
}

func (q *Queries) DeleteDebt(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM debts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	return requireRow(res, "debt", id)
}

func scanDebt(r rowScanner) (core.Debt, error) {
	var (
		d             core.Debt
		direction     string
		status        string
		dueDate       sql.NullString
		transactionID sql.NullInt64
		date          string
		createdAt     string
		updatedAt     string
	)
	err := r.Scan(&d.ID, &direction, &d.PersonName, &d.Amount.Cents, &d.Description,
		&d.AccountID, &date, &dueDate, &status, &transactionID, &createdAt, &updatedAt)
	if err != nil {
		return core.Debt{}, fmt.Errorf("scan debt: %w", err)
	}
	d.Direction = core.DebtDirection(direction)
	d.Status = core.DebtStatus(status)
	d.TransactionID = intPtr(transactionID)
	d.Date, _ = parseTime(date)
	d.CreatedAt, _ = parseTime(createdAt)
	d.UpdatedAt, _ = parseTime(updatedAt)
	if dueDate.Valid {
		t, err := parseTime(dueDate.String)
		if err == nil {
			d.DueDate = &t
		}
	}
	return d, nil
}
