package http

import (
	"log/slog"
	"net/http"

	"nexo/internal/core"
)

type profileRequest struct {
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Password   string           `json:"password,omitempty"`
	Phone      string           `json:"phone,omitempty"`
	Onboarding *core.Onboarding `json:"onboarding,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// publicProfile strips the password before the profile goes over the wire.
func publicProfile(p core.Profile) core.Profile {
	p.Password = ""
	return p
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p := core.Profile{
		Name:       sanitizeInput(req.Name),
		Email:      sanitizeInput(req.Email),
		Password:   req.Password,
		Phone:      sanitizeInput(req.Phone),
		Onboarding: req.Onboarding,
	}
	if err := s.tracker.SetProfile(r.Context(), p); err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, publicProfile(p))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, ok := s.tracker.Login(sanitizeInput(req.Email), req.Password)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, publicProfile(p))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := s.tracker.Profile()
	if !ok {
		writeError(w, http.StatusNotFound, "no profile registered")
		return
	}
	writeJSON(w, http.StatusOK, publicProfile(p))
}

// handleUpdateProfile replaces profile fields while keeping the subscription
// state the payment flow stamped.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	current, ok := s.tracker.Profile()
	if !ok {
		writeError(w, http.StatusNotFound, "no profile registered")
		return
	}

	var req profileRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Optional fields keep their stored value when omitted.
	updated := current
	updated.Name = sanitizeInput(req.Name)
	updated.Email = sanitizeInput(req.Email)
	if req.Password != "" {
		updated.Password = req.Password
	}
	if req.Phone != "" {
		updated.Phone = sanitizeInput(req.Phone)
	}
	if req.Onboarding != nil {
		updated.Onboarding = req.Onboarding
	}

	if err := s.tracker.SetProfile(r.Context(), updated); err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Profile update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, publicProfile(updated))
}
