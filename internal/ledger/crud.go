package ledger

import (
	"context"
	"log/slog"
	"strings"

	"finledger/internal/core"
	"finledger/internal/storage"
)

// Plain CRUD for accounts, categories and settings. These go through the
// ledger service so the storage handle stays an implementation detail of
// the write side, but they carry no balance logic beyond the opening
// balance at account creation.

type CreateAccountParams struct {
	Name           string
	Kind           core.AccountKind
	OpeningBalance core.Money
	CardColor      string
	CardLastDigits string
	Emoji          string
}

func (s *Service) CreateAccount(ctx context.Context, p CreateAccountParams) (core.Account, error) {
	a := core.Account{Name: strings.TrimSpace(p.Name), Kind: p.Kind}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if p.OpeningBalance.Cents < 0 {
		return core.Account{}, core.ErrInvalidAmount
	}

	account, err := s.store.Queries().CreateAccount(ctx, storage.CreateAccountParams{
		Name:           a.Name,
		BalanceCents:   p.OpeningBalance.Cents,
		Kind:           p.Kind,
		CardColor:      p.CardColor,
		CardLastDigits: p.CardLastDigits,
		Emoji:          p.Emoji,
	})
	if err != nil {
		return core.Account{}, wrapStorage("create account", err)
	}

	slog.InfoContext(ctx, "Account created", "id", account.ID, "name", account.Name, "kind", string(account.Kind))
	s.publish(ctx, EventAccountCreated, AccountEvent{AccountID: account.ID, Name: account.Name})
	return account, nil
}

type UpdateAccountParams struct {
	ID             int64
	Name           string
	CardColor      string
	CardLastDigits string
	Emoji          string
}

// UpdateAccount changes display metadata only; balances move exclusively
// through ledger operations.
func (s *Service) UpdateAccount(ctx context.Context, p UpdateAccountParams) (core.Account, error) {
	if strings.TrimSpace(p.Name) == "" {
		return core.Account{}, core.ErrInvalidTitle
	}
	err := s.store.Queries().UpdateAccount(ctx, storage.UpdateAccountParams{
		ID:             p.ID,
		Name:           strings.TrimSpace(p.Name),
		CardColor:      p.CardColor,
		CardLastDigits: p.CardLastDigits,
		Emoji:          p.Emoji,
	})
	if err != nil {
		return core.Account{}, wrapStorage("update account", err)
	}
	account, err := s.store.Queries().GetAccount(ctx, p.ID)
	if err != nil {
		return core.Account{}, wrapStorage("update account", err)
	}
	return account, nil
}

// DeleteAccount removes the account row. Transactions referencing it are
// kept: the transaction log is append-only history.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	account, err := s.store.Queries().GetAccount(ctx, id)
	if err != nil {
		return wrapStorage("delete account", err)
	}
	if err := s.store.Queries().DeleteAccount(ctx, id); err != nil {
		return wrapStorage("delete account", err)
	}
	slog.InfoContext(ctx, "Account deleted", "id", id, "name", account.Name)
	s.publish(ctx, EventAccountDeleted, AccountEvent{AccountID: id, Name: account.Name})
	return nil
}

func (s *Service) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	a, err := s.store.Queries().GetAccount(ctx, id)
	return a, wrapStorage("get account", err)
}

func (s *Service) ListAccounts(ctx context.Context) ([]core.Account, error) {
	accounts, err := s.store.Queries().ListAccounts(ctx)
	return accounts, wrapStorage("list accounts", err)
}

// TotalBalance returns the sum over all account balances.
func (s *Service) TotalBalance(ctx context.Context) (core.Money, error) {
	total, err := s.store.Queries().TotalBalance(ctx)
	return total, wrapStorage("total balance", err)
}

func (s *Service) CreateCategory(ctx context.Context, p storage.CreateCategoryParams) (core.Category, error) {
	c := core.Category{Name: strings.TrimSpace(p.Name), Type: p.Type}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	p.Name = c.Name
	category, err := s.store.Queries().CreateCategory(ctx, p)
	return category, wrapStorage("create category", err)
}

func (s *Service) ListCategories(ctx context.Context, typ core.CategoryType) ([]core.Category, error) {
	categories, err := s.store.Queries().ListCategories(ctx, typ)
	return categories, wrapStorage("list categories", err)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return wrapStorage("delete category", s.store.Queries().DeleteCategory(ctx, id))
}

func (s *Service) ListTransactions(ctx context.Context, p storage.ListTransactionsParams) ([]core.Transaction, error) {
	txns, err := s.store.Queries().ListTransactions(ctx, p)
	return txns, wrapStorage("list transactions", err)
}

func (s *Service) ListDebts(ctx context.Context, direction core.DebtDirection) ([]core.Debt, error) {
	debts, err := s.store.Queries().ListDebts(ctx, direction)
	return debts, wrapStorage("list debts", err)
}

func (s *Service) GetSetting(ctx context.Context, key string) (core.Setting, error) {
	setting, err := s.store.Queries().GetSetting(ctx, key)
	return setting, wrapStorage("get setting", err)
}

func (s *Service) SetSetting(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return core.ErrInvalidTitle
	}
	return wrapStorage("set setting", s.store.Queries().SetSetting(ctx, key, value))
}
