package http

import (
	"errors"
	"net/http"

	"nexo/internal/payment"
)

type paymentStartRequest struct {
	Plan string `json:"plan"`
}

type paymentStatusResponse struct {
	Status payment.Status `json:"status"`
	Plan   payment.Plan   `json:"plan,omitempty"`
}

func (s *Server) handlePaymentStart(w http.ResponseWriter, r *http.Request) {
	var req paymentStartRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// A finished attempt resets implicitly so the user can retry.
	if status, _ := s.simulator.Status(); status == payment.StatusFailed || status == payment.StatusSucceeded {
		_ = s.simulator.Reset()
	}

	if err := s.simulator.Start(r.Context(), payment.Plan(req.Plan)); err != nil {
		switch {
		case errors.Is(err, payment.ErrUnknownPlan):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, payment.ErrPaymentInProgress):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	status, plan := s.simulator.Status()
	writeJSON(w, http.StatusAccepted, paymentStatusResponse{Status: status, Plan: plan})
}

func (s *Server) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	status, plan := s.simulator.Status()
	writeJSON(w, http.StatusOK, paymentStatusResponse{Status: status, Plan: plan})
}

func (s *Server) handlePaymentCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.simulator.Cancel(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	status, plan := s.simulator.Status()
	writeJSON(w, http.StatusOK, paymentStatusResponse{Status: status, Plan: plan})
}
