// Package ledger is the write side of the system: the only code path
// permitted to change account balances. Every multi-row mutation runs in a
// single database transaction so a partially applied transfer or debt
// settlement is never observable.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finledger/internal/core"
	"finledger/internal/storage"
)

// Publisher broadcasts ledger events to external collaborators
// (notification scheduler, exporters). Publishing is best-effort and never
// fails a ledger operation.
type Publisher interface {
	Publish(ctx context.Context, kind string, payload any) error
}

// Service wires the entity store with an optional event publisher.
type Service struct {
	store  *storage.Store
	events Publisher
}

func New(store *storage.Store, events Publisher) *Service {
	return &Service{store: store, events: events}
}

type RecordTransactionParams struct {
	Type        core.TransactionType
	Amount      core.Money
	Title       string
	Description string
	CategoryID  *int64
	AccountID   int64
	ToAccountID *int64
	Date        time.Time
}

// RecordTransaction validates and records one money movement, adjusting the
// affected balances in the same atomic unit as the inserted row.
//
// Preconditions are checked in a fixed order and the first failure wins:
// amount, title, source account, category, sufficiency (and for transfers,
// the destination account). Once the row is written the only failure mode
// is a full rollback.
func (s *Service) RecordTransaction(ctx context.Context, p RecordTransactionParams) (core.Transaction, error) {
	if !p.Type.Valid() {
		return core.Transaction{}, core.ErrInvalidType
	}
	if err := p.Amount.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if strings.TrimSpace(p.Title) == "" {
		return core.Transaction{}, core.ErrInvalidTitle
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}

	var txn core.Transaction
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		account, err := q.GetAccount(ctx, p.AccountID)
		if err != nil {
			return err
		}

		if p.Type != core.TxTransfer {
			if p.CategoryID == nil {
				return core.ErrInvalidCategory
			}
			if _, err := q.GetCategory(ctx, *p.CategoryID); err != nil {
				return err
			}
		}

		var destination *core.Account
		switch p.Type {
		case core.TxExpense, core.TxDebtPayment:
			if account.Balance.Cents < p.Amount.Cents {
				return &core.InsufficientFundsError{
					AccountName: account.Name,
					Balance:     account.Balance,
					Attempted:   p.Amount,
				}
			}
		case core.TxTransfer:
			if p.ToAccountID == nil || *p.ToAccountID == p.AccountID {
				return core.ErrInvalidTransfer
			}
			dest, err := q.GetAccount(ctx, *p.ToAccountID)
			if err != nil {
				if core.IsNotFound(err) {
					return &core.NotFoundError{Entity: "destination account", ID: *p.ToAccountID}
				}
				return err
			}
			destination = &dest
			if account.Balance.Cents < p.Amount.Cents {
				return &core.InsufficientFundsError{
					AccountName: account.Name,
					Balance:     account.Balance,
					Attempted:   p.Amount,
				}
			}
		}

		txn, err = q.CreateTransaction(ctx, storage.CreateTransactionParams{
			Type:        p.Type,
			AmountCents: p.Amount.Cents,
			Title:       strings.TrimSpace(p.Title),
			Description: p.Description,
			CategoryID:  p.CategoryID,
			AccountID:   p.AccountID,
			ToAccountID: p.ToAccountID,
			Date:        p.Date,
			Status:      core.TxSuccess,
		})
		if err != nil {
			return err
		}

		delta := p.Amount.Cents
		if p.Type.Debit() {
			delta = -delta
		}
		if err := q.AdjustAccountBalance(ctx, p.AccountID, delta); err != nil {
			return err
		}
		if destination != nil {
			if err := q.AdjustAccountBalance(ctx, destination.ID, p.Amount.Cents); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, wrapStorage("record transaction", err)
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"id", txn.ID,
		"type", string(txn.Type),
		"amount_cents", txn.Amount.Cents,
		"account_id", txn.AccountID)

	s.publish(ctx, EventTransactionRecorded, TransactionEvent{
		TransactionID: txn.ID,
		Type:          string(txn.Type),
		AmountCents:   txn.Amount.Cents,
		AccountID:     txn.AccountID,
	})

	return txn, nil
}

type CreateDebtParams struct {
	Direction   core.DebtDirection
	PersonName  string
	Amount      core.Money
	AccountID   int64
	Description string
	DueDate     *time.Time
}

// CreateDebt atomically records the cash movement of establishing a debt
// (borrowed money arrives, lent money leaves) together with the debt row
// linking back to that transaction.
func (s *Service) CreateDebt(ctx context.Context, p CreateDebtParams) (core.Debt, error) {
	if !p.Direction.Valid() {
		return core.Debt{}, core.ErrInvalidType
	}
	if err := p.Amount.Validate(); err != nil {
		return core.Debt{}, err
	}
	if strings.TrimSpace(p.PersonName) == "" {
		return core.Debt{}, core.ErrInvalidTitle
	}

	var debt core.Debt
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		account, err := q.GetAccount(ctx, p.AccountID)
		if err != nil {
			return err
		}

		txType := core.TxBorrowed
		title := fmt.Sprintf("Borrowed from %s", p.PersonName)
		delta := p.Amount.Cents
		if p.Direction == core.DebtGave {
			txType = core.TxLent
			title = fmt.Sprintf("Lent to %s", p.PersonName)
			delta = -delta
			if account.Balance.Cents < p.Amount.Cents {
				return &core.InsufficientFundsError{
					AccountName: account.Name,
					Balance:     account.Balance,
					Attempted:   p.Amount,
				}
			}
		}

		now := time.Now()
		txn, err := q.CreateTransaction(ctx, storage.CreateTransactionParams{
			Type:        txType,
			AmountCents: p.Amount.Cents,
			Title:       title,
			Description: p.Description,
			AccountID:   p.AccountID,
			Date:        now,
			Status:      core.TxSuccess,
		})
		if err != nil {
			return err
		}
		if err := q.AdjustAccountBalance(ctx, p.AccountID, delta); err != nil {
			return err
		}

		debt, err = q.CreateDebt(ctx, storage.CreateDebtParams{
			Direction:     p.Direction,
			PersonName:    strings.TrimSpace(p.PersonName),
			AmountCents:   p.Amount.Cents,
			Description:   p.Description,
			AccountID:     p.AccountID,
			Date:          now,
			DueDate:       p.DueDate,
			TransactionID: &txn.ID,
		})
		return err
	})
	if err != nil {
		return core.Debt{}, wrapStorage("create debt", err)
	}

	slog.InfoContext(ctx, "Debt created",
		"id", debt.ID,
		"direction", string(debt.Direction),
		"person", debt.PersonName,
		"amount_cents", debt.Amount.Cents)

	s.publish(ctx, EventDebtCreated, DebtEvent{
		DebtID:      debt.ID,
		Direction:   string(debt.Direction),
		PersonName:  debt.PersonName,
		AmountCents: debt.Amount.Cents,
	})

	return debt, nil
}

// RepayDebt settles an active debt against a payment account. Borrowed
// money is paid back (sufficiency enforced); lent money is collected
// (collection always succeeds). Failure leaves the debt active and the
// balances untouched.
func (s *Service) RepayDebt(ctx context.Context, debtID, paymentAccountID int64) (core.Debt, error) {
	var debt core.Debt
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		d, err := q.GetDebt(ctx, debtID)
		if err != nil {
			return err
		}
		if d.Status != core.DebtActive {
			return core.ErrDebtNotActive
		}
		account, err := q.GetAccount(ctx, paymentAccountID)
		if err != nil {
			return err
		}

		txType := core.TxIncome
		title := fmt.Sprintf("Debt collected from %s", d.PersonName)
		delta := d.Amount.Cents
		if d.Direction == core.DebtGot {
			if account.Balance.Cents < d.Amount.Cents {
				return &core.InsufficientFundsError{
					AccountName: account.Name,
					Balance:     account.Balance,
					Attempted:   d.Amount,
				}
			}
			txType = core.TxDebtPayment
			title = fmt.Sprintf("Debt repaid to %s", d.PersonName)
			delta = -delta
		}

		if _, err := q.CreateTransaction(ctx, storage.CreateTransactionParams{
			Type:        txType,
			AmountCents: d.Amount.Cents,
			Title:       title,
			AccountID:   paymentAccountID,
			Date:        time.Now(),
			Status:      core.TxSuccess,
		}); err != nil {
			return err
		}
		if err := q.AdjustAccountBalance(ctx, paymentAccountID, delta); err != nil {
			return err
		}
		if err := q.CompleteDebt(ctx, d.ID); err != nil {
			return err
		}

		debt, err = q.GetDebt(ctx, d.ID)
		return err
	})
	if err != nil {
		return core.Debt{}, wrapStorage("repay debt", err)
	}

	slog.InfoContext(ctx, "Debt settled",
		"id", debt.ID,
		"direction", string(debt.Direction),
		"payment_account_id", paymentAccountID)

	s.publish(ctx, EventDebtSettled, DebtEvent{
		DebtID:      debt.ID,
		Direction:   string(debt.Direction),
		PersonName:  debt.PersonName,
		AmountCents: debt.Amount.Cents,
	})

	return debt, nil
}

// DeleteDebt removes a completed debt and its linked transaction. Active
// debts cannot be deleted; they must be settled first. The balance effect
// the transaction originally caused stays in place: deletion removes the
// record, it does not undo the cash movement.
func (s *Service) DeleteDebt(ctx context.Context, debtID int64) error {
	var removed core.Debt
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		d, err := q.GetDebt(ctx, debtID)
		if err != nil {
			return err
		}
		if d.Status != core.DebtCompleted {
			return core.ErrDebtNotCompleted
		}
		removed = d
		if err := q.DeleteDebt(ctx, d.ID); err != nil {
			return err
		}
		if d.TransactionID != nil {
			if err := q.DeleteTransaction(ctx, *d.TransactionID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrapStorage("delete debt", err)
	}

	slog.WarnContext(ctx, "Debt deleted; original balance effect kept",
		"id", removed.ID,
		"direction", string(removed.Direction),
		"amount_cents", removed.Amount.Cents)

	s.publish(ctx, EventDebtDeleted, DebtEvent{
		DebtID:      removed.ID,
		Direction:   string(removed.Direction),
		PersonName:  removed.PersonName,
		AmountCents: removed.Amount.Cents,
	})

	return nil
}

func (s *Service) publish(ctx context.Context, kind string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, kind, payload); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", kind, "error", err)
	}
}

// wrapStorage leaves domain errors alone and wraps anything else as a
// storage failure after rollback.
func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if core.IsValidation(err) || core.IsNotFound(err) || core.IsInsufficientFunds(err) {
		return err
	}
	return &core.StorageError{Op: op, Err: err}
}
