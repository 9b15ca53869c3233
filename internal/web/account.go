package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/careervani/careervani/internal/auth"
	"github.com/careervani/careervani/internal/observe"
	"github.com/careervani/careervani/internal/report"
	"github.com/careervani/careervani/pkg/store"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	u, err := s.deps.Auth.Signup(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		writeError(w, http.StatusConflict, "Email already exists.")
		return
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Please enter a valid email and a password of at least 6 characters.")
		return
	case err != nil:
		observe.Logger(r.Context()).Error("signup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Signup failed. Try again.")
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Message string      `json:"message"`
		User    *store.User `json:"user"`
	}{"Account created!", u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	tok, u, err := s.deps.Auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Login failed.")
		return
	}
	if err != nil {
		observe.Logger(r.Context()).Error("login failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Login failed.")
		return
	}

	auth.SetCookie(w, tok, s.secureCookies)
	writeJSON(w, http.StatusOK, struct {
		Token     string      `json:"token"`
		ExpiresAt time.Time   `json:"expires_at"`
		User      *store.User `json:"user"`
	}{tok.Value, tok.ExpiresAt, u})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearCookie(w, s.secureCookies)
	writeJSON(w, http.StatusOK, messageBody{Message: "Logged out."})
}

// ─── dashboard ───

type dashboardBody struct {
	Email    string           `json:"email"`
	Feedback []store.Feedback `json:"feedback"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())

	list, err := s.deps.Feedback.ListFeedback(r.Context(), id.UserID)
	if err != nil {
		observe.Logger(r.Context()).Error("list feedback failed", "user_id", id.UserID, "err", err)
		writeError(w, http.StatusInternalServerError, "Could not load your feedback.")
		return
	}
	writeJSON(w, http.StatusOK, dashboardBody{Email: id.Email, Feedback: list})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	log := observe.Logger(r.Context())

	fid, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || fid <= 0 {
		writeError(w, http.StatusNotFound, "Report file not found.")
		return
	}

	fb, err := s.deps.Feedback.GetFeedback(r.Context(), id.UserID, fid)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Report file not found.")
		return
	}
	if err != nil {
		log.Error("get feedback failed", "feedback_id", fid, "err", err)
		writeError(w, http.StatusInternalServerError, "Could not load the report.")
		return
	}

	rep := report.FromFeedback(fb)
	pdf, err := rep.PDF()
	if err != nil {
		log.Error("render feedback pdf failed", "feedback_id", fid, "err", err)
		writeError(w, http.StatusInternalServerError, "Could not render the report.")
		return
	}
	writeAttachment(w, "application/pdf", "feedback-"+strconv.FormatInt(fid, 10)+".pdf", pdf)
}
