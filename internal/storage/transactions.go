package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finledger/internal/core"
)

type CreateTransactionParams struct {
	Type        core.TransactionType
	AmountCents int64
	Title       string
	Description string
	CategoryID  *int64
	AccountID   int64
	ToAccountID *int64
	Date        time.Time
	Status      core.TransactionStatus
}

func (q *Queries) CreateTransaction(ctx context.Context, p CreateTransactionParams) (core.Transaction, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO transactions (type, amount_cents, title, description, category_id, account_id, to_account_id, date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(p.Type), p.AmountCents, p.Title, p.Description,
		nullInt(p.CategoryID), p.AccountID, nullInt(p.ToAccountID),
		formatTime(p.Date), string(p.Status), formatTime(time.Now()))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	return q.GetTransaction(ctx, id)
}

func (q *Queries) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, type, amount_cents, title, description, category_id, account_id, to_account_id, date, status, created_at
		FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, &core.NotFoundError{Entity: "transaction", ID: id}
	}
	return t, err
}

type ListTransactionsParams struct {
	Limit     int    // 0 means no limit
	AccountID *int64 // matches either side of a transfer
}

// ListTransactions returns transactions newest first (date, then id).
func (q *Queries) ListTransactions(ctx context.Context, p ListTransactionsParams) ([]core.Transaction, error) {
	query := `
		SELECT id, type, amount_cents, title, description, category_id, account_id, to_account_id, date, status, created_at
		FROM transactions`
	args := []any{}
	if p.AccountID != nil {
		query += ` WHERE account_id = ? OR to_account_id = ?`
		args = append(args, *p.AccountID, *p.AccountID)
	}
	query += ` ORDER BY date DESC, id DESC`
	if p.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, p.Limit)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res, "transaction", id)
}

func scanTransaction(r rowScanner) (core.Transaction, error) {
	var (
		t          core.Transaction
		typ        string
		status     string
		categoryID sql.NullInt64
		toAccount  sql.NullInt64
		date       string
		createdAt  string
	)
	err := r.Scan(&t.ID, &typ, &t.Amount.Cents, &t.Title, &t.Description,
		&categoryID, &t.AccountID, &toAccount, &date, &status, &createdAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = core.TransactionType(typ)
	t.Status = core.TransactionStatus(status)
	t.CategoryID = intPtr(categoryID)
	t.ToAccountID = intPtr(toAccount)
	t.Date, _ = parseTime(date)
	t.CreatedAt, _ = parseTime(createdAt)
	return t, nil
}
