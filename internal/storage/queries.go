package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finledger/internal/core"
)

// DBTX is the subset of database/sql methods the queries need, satisfied by
// both *sql.DB and *sql.Tx so the same query set runs inside and outside a
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries bundles all row-level operations against the schema.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Timestamps are stored as UTC RFC3339 text, which SQLite's date functions
// understand natively.
const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// --- accounts ---

type CreateAccountParams struct {
	Name           string
	BalanceCents   int64
	Kind           core.AccountKind
	CardColor      string
	CardLastDigits string
	Emoji          string
}

func (q *Queries) CreateAccount(ctx context.Context, p CreateAccountParams) (core.Account, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO accounts (name, balance_cents, kind, card_color, card_last_digits, emoji, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.BalanceCents, string(p.Kind), p.CardColor, p.CardLastDigits, p.Emoji,
		formatTime(now), formatTime(now))
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account insert id: %w", err)
	}
	return q.GetAccount(ctx, id)
}

func (q *Queries) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, name, balance_cents, kind, card_color, card_last_digits, emoji, created_at, updated_at
		FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, &core.NotFoundError{Entity: "account", ID: id}
	}
	return a, err
}

// ListAccounts returns accounts in creation order.
func (q *Queries) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, balance_cents, kind, card_color, card_last_digits, emoji, created_at, updated_at
		FROM accounts ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type UpdateAccountParams struct {
	ID             int64
	Name           string
	CardColor      string
	CardLastDigits string
	Emoji          string
}

// UpdateAccount changes display metadata only. Balance is deliberately not
// updatable here; only AdjustAccountBalance touches it.
func (q *Queries) UpdateAccount(ctx context.Context, p UpdateAccountParams) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE accounts SET name = ?, card_color = ?, card_last_digits = ?, emoji = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.CardColor, p.CardLastDigits, p.Emoji, formatTime(time.Now()), p.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(res, "account", p.ID)
}

// AdjustAccountBalance applies a signed delta to the stored balance.
func (q *Queries) AdjustAccountBalance(ctx context.Context, id, deltaCents int64) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + ?, updated_at = ? WHERE id = ?`,
		deltaCents, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("adjust account balance: %w", err)
	}
	return requireRow(res, "account", id)
}

func (q *Queries) DeleteAccount(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireRow(res, "account", id)
}

// TotalBalance sums all account balances.
func (q *Queries) TotalBalance(ctx context.Context) (core.Money, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(balance_cents), 0) FROM accounts`).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum account balances: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// --- categories ---

type CreateCategoryParams struct {
	Name  string
	Type  core.CategoryType
	Icon  string
	Color string
}

func (q *Queries) CreateCategory(ctx context.Context, p CreateCategoryParams) (core.Category, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO categories (name, type, icon, color, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.Name, string(p.Type), p.Icon, p.Color, formatTime(time.Now()))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	return q.GetCategory(ctx, id)
}

func (q *Queries) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var (
		c         core.Category
		typ       string
		createdAt string
	)
	err := q.db.QueryRowContext(ctx, `
		SELECT id, name, type, icon, color, created_at FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &typ, &c.Icon, &c.Color, &createdAt)
	if err == sql.ErrNoRows {
		return core.Category{}, &core.NotFoundError{Entity: "category", ID: id}
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.Type = core.CategoryType(typ)
	c.CreatedAt, _ = parseTime(createdAt)
	return c, nil
}

// ListCategories returns categories in creation order, optionally filtered
// by type (pass empty string for all).
func (q *Queries) ListCategories(ctx context.Context, typ core.CategoryType) ([]core.Category, error) {
	query := `SELECT id, name, type, icon, color, created_at FROM categories`
	args := []any{}
	if typ != "" {
		query += ` WHERE type = ?`
		args = append(args, string(typ))
	}
	query += ` ORDER BY id ASC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c         core.Category
			t         string
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.Name, &t, &c.Icon, &c.Color, &createdAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.CategoryType(t)
		c.CreatedAt, _ = parseTime(createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res, "category", id)
}

// --- settings ---

func (q *Queries) GetSetting(ctx context.Context, key string) (core.Setting, error) {
	var (
		s         core.Setting
		updatedAt string
	)
	err := q.db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM settings WHERE key = ?`, key).
		Scan(&s.Key, &s.Value, &updatedAt)
	if err == sql.ErrNoRows {
		return core.Setting{}, &core.NotFoundError{Entity: "setting"}
	}
	if err != nil {
		return core.Setting{}, fmt.Errorf("get setting: %w", err)
	}
	s.UpdatedAt, _ = parseTime(updatedAt)
	return s, nil
}

func (q *Queries) SetSetting(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(r rowScanner) (core.Account, error) {
	var (
		a         core.Account
		kind      string
		createdAt string
		updatedAt string
	)
	err := r.Scan(&a.ID, &a.Name, &a.Balance.Cents, &kind, &a.CardColor, &a.CardLastDigits, &a.Emoji, &createdAt, &updatedAt)
	if err != nil {
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}
	a.Kind = core.AccountKind(kind)
	a.CreatedAt, _ = parseTime(createdAt)
	a.UpdatedAt, _ = parseTime(updatedAt)
	return a, nil
}

func requireRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return &core.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}
