package ledger

// Event kinds published after a successful commit. Out-of-scope
// collaborators (notification scheduler, exporters) consume these; the
// ledger itself never reads them back.
const (
	EventTransactionRecorded = "transaction.recorded"
	EventDebtCreated         = "debt.created"
	EventDebtSettled         = "debt.settled"
	EventDebtDeleted         = "debt.deleted"
	EventAccountCreated      = "account.created"
	EventAccountDeleted      = "account.deleted"
)

// TransactionEvent is the payload for transaction.recorded.
type TransactionEvent struct {
	TransactionID int64  `json:"transaction_id"`
	Type          string `json:"type"`
	AmountCents   int64  `json:"amount_cents"`
	AccountID     int64  `json:"account_id"`
}

// DebtEvent is the payload for debt.* events.
type DebtEvent struct {
	DebtID      int64  `json:"debt_id"`
	Direction   string `json:"direction"`
	PersonName  string `json:"person_name"`
	AmountCents int64  `json:"amount_cents"`
}

// AccountEvent is the payload for account.* events.
type AccountEvent struct {
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
}
