package http

import (
	"net/http"
	"time"

	"finledger/internal/core"
	"finledger/internal/ledger"
	"finledger/internal/storage"
)

type categoryResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Type: string(c.Type), Icon: c.Icon, Color: c.Color}
}

type createCategoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	category, err := s.ledger.CreateCategory(r.Context(), storage.CreateCategoryParams{
		Name:  req.Name,
		Type:  core.CategoryType(req.Type),
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.ledger.ListCategories(r.Context(), core.CategoryType(r.URL.Query().Get("type")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.ledger.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CategoryID  *int64 `json:"category_id,omitempty"`
	AccountID   int64  `json:"account_id"`
	ToAccountID *int64 `json:"to_account_id,omitempty"`
	Date        string `json:"date"`
	Status      string `json:"status"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Amount:      t.Amount.String(),
		Title:       t.Title,
		Description: t.Description,
		CategoryID:  t.CategoryID,
		AccountID:   t.AccountID,
		ToAccountID: t.ToAccountID,
		Date:        t.Date.UTC().Format(time.RFC3339),
		Status:      string(t.Status),
	}
}

type recordTransactionRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CategoryID  *int64 `json:"category_id,omitempty"`
	AccountID   int64  `json:"account_id"`
	ToAccountID *int64 `json:"to_account_id,omitempty"`
	Date        string `json:"date,omitempty"` // RFC3339, defaults to now
}

func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req recordTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var date time.Time
	if req.Date != "" {
		date, err = time.Parse(time.RFC3339, req.Date)
		if err != nil {
			badRequest(w, "invalid date: expected RFC3339")
			return
		}
	}

	txn, err := s.ledger.RecordTransaction(r.Context(), ledger.RecordTransactionParams{
		Type:        core.TransactionType(req.Type),
		Amount:      amount,
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
		ToAccountID: req.ToAccountID,
		Date:        date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateAnalytics()
	writeJSON(w, http.StatusCreated, toTransactionResponse(txn))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, err := optionalID(r.URL.Query().Get("account_id"))
	if err != nil {
		badRequest(w, "invalid account_id")
		return
	}
	txns, err := s.ledger.ListTransactions(r.Context(), storage.ListTransactionsParams{
		Limit:     queryInt(r, "limit", 0, 1, 1000),
		AccountID: accountID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

type debtResponse struct {
	ID            int64  `json:"id"`
	Direction     string `json:"direction"`
	PersonName    string `json:"person_name"`
	Amount        string `json:"amount"`
	Description   string `json:"description,omitempty"`
	AccountID     int64  `json:"account_id"`
	Date          string `json:"date"`
	DueDate       string `json:"due_date,omitempty"`
	Status        string `json:"status"`
	TransactionID *int64 `json:"transaction_id,omitempty"`
}

func toDebtResponse(d core.Debt) debtResponse {
	resp := debtResponse{
		ID:            d.ID,
		Direction:     string(d.Direction),
		PersonName:    d.PersonName,
		Amount:        d.Amount.String(),
		Description:   d.Description,
		AccountID:     d.AccountID,
		Date:          d.Date.UTC().Format(time.RFC3339),
		Status:        string(d.Status),
		TransactionID: d.TransactionID,
	}
	if d.DueDate != nil {
		resp.DueDate = d.DueDate.UTC().Format(time.RFC3339)
	}
	return resp
}

type createDebtRequest struct {
	Direction   string `json:"direction"`
	PersonName  string `json:"person_name"`
	Amount      string `json:"amount"`
	AccountID   int64  `json:"account_id"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date,omitempty"` // RFC3339
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var req createDebtRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		t, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			badRequest(w, "invalid due_date: expected RFC3339")
			return
		}
		dueDate = &t
	}

	debt, err := s.ledger.CreateDebt(r.Context(), ledger.CreateDebtParams{
		Direction:   core.DebtDirection(req.Direction),
		PersonName:  req.PersonName,
		Amount:      amount,
		AccountID:   req.AccountID,
		Description: req.Description,
		DueDate:     dueDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateAnalytics()
	writeJSON(w, http.StatusCreated, toDebtResponse(debt))
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	direction := core.DebtDirection(r.URL.Query().Get("direction"))
	if direction != "" && !direction.Valid() {
		badRequest(w, "invalid direction: expected 'got' or 'gave'")
		return
	}
	debts, err := s.ledger.ListDebts(r.Context(), direction)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]debtResponse, 0, len(debts))
	for _, d := range debts {
		out = append(out, toDebtResponse(d))
	}
	writeJSON(w, http.StatusOK, out)
}

type repayDebtRequest struct {
	PaymentAccountID int64 `json:"payment_account_id"`
}

func (s *Server) handleRepayDebt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req repayDebtRequest
	if !decodeBody(w, r, &req) {
		return
	}
	debt, err := s.ledger.RepayDebt(r.Context(), id, req.PaymentAccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateAnalytics()
	writeJSON(w, http.StatusOK, toDebtResponse(debt))
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.ledger.DeleteDebt(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateAnalytics()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	setting, err := s.ledger.GetSetting(r.Context(), r.PathValue("key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": setting.Key, "value": setting.Value})
}

type putSettingRequest struct {
	Value string `json:"value"`
}

func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	var req putSettingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	key := r.PathValue("key")
	if err := s.ledger.SetSetting(r.Context(), key, req.Value); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}
