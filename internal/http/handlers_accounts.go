package http

import (
	"net/http"
	"time"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

type accountResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Balance        string `json:"balance"`
	Kind           string `json:"kind"`
	CardColor      string `json:"card_color,omitempty"`
	CardLastDigits string `json:"card_last_digits,omitempty"`
	Emoji          string `json:"emoji,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Balance:        a.Balance.String(),
		Kind:           string(a.Kind),
		CardColor:      a.CardColor,
		CardLastDigits: a.CardLastDigits,
		Emoji:          a.Emoji,
		CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type createAccountRequest struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	OpeningBalance string `json:"opening_balance,omitempty"`
	CardColor      string `json:"card_color,omitempty"`
	CardLastDigits string `json:"card_last_digits,omitempty"`
	Emoji          string `json:"emoji,omitempty"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	opening := core.Money{}
	if req.OpeningBalance != "" {
		m, err := core.ParseAmount(req.OpeningBalance)
		if err != nil {
			writeError(w, r, err)
			return
		}
		opening = m
	}

	account, err := s.ledger.CreateAccount(r.Context(), ledger.CreateAccountParams{
		Name:           req.Name,
		Kind:           core.AccountKind(req.Kind),
		OpeningBalance: opening,
		CardColor:      req.CardColor,
		CardLastDigits: req.CardLastDigits,
		Emoji:          req.Emoji,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateAnalytics()
	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.ledger.ListAccounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	account, err := s.ledger.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

type updateAccountRequest struct {
	Name           string `json:"name"`
	CardColor      string `json:"card_color,omitempty"`
	CardLastDigits string `json:"card_last_digits,omitempty"`
	Emoji          string `json:"emoji,omitempty"`
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	account, err := s.ledger.UpdateAccount(r.Context(), ledger.UpdateAccountParams{
		ID:             id,
		Name:           req.Name,
		CardColor:      req.CardColor,
		CardLastDigits: req.CardLastDigits,
		Emoji:          req.Emoji,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.ledger.DeleteAccount(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateAnalytics()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTotalBalance(w http.ResponseWriter, r *http.Request) {
	total, err := s.ledger.TotalBalance(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"total_balance": total.String()})
}
