package http

import (
	"errors"
	"log/slog"
	"net/http"

	"nexo/internal/core"
	"nexo/internal/ledger"
)

type accountRequest struct {
	Name         string `json:"name"`
	BalanceCents int64  `json:"balance_cents"`
	Color        string `json:"color,omitempty"`
}

type balanceRequest struct {
	BalanceCents int64 `json:"balance_cents"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Accounts())
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := s.tracker.AddAccount(r.Context(),
		sanitizeInput(req.Name),
		core.Money{Cents: req.BalanceCents},
		sanitizeInput(req.Color))
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Account creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, account)
}

// handleSetAccountBalance rebases an account to an explicit balance. This is
// the manual adjustment flow and deliberately bypasses the transaction
// history.
func (s *Server) handleSetAccountBalance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req balanceRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := s.tracker.SetAccountBalance(r.Context(), id, core.Money{Cents: req.BalanceCents})
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Balance update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, account)
}
