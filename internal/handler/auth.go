package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ecodispensa/dispensa/internal/remote"
)

type AuthHandler struct {
	remote *remote.Client
	logger *slog.Logger
}

func NewAuthHandler(client *remote.Client, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{remote: client, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r credentialsRequest) validate() string {
	if strings.TrimSpace(r.Email) == "" {
		return "email is required"
	}
	if r.Password == "" {
		return "password is required"
	}
	return ""
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
}

func (h *AuthHandler) sessionJSON() sessionResponse {
	session := h.remote.Session()
	if session == nil {
		return sessionResponse{}
	}
	return sessionResponse{
		Authenticated: true,
		UserID:        session.UserID,
		Email:         session.Email,
	}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.remote.SignUp(r.Context(), req.Email, req.Password); err != nil {
		h.logger.Warn("sign up failed", "error", err)
		writeError(w, http.StatusUnauthorized, "registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, h.sessionJSON())
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.remote.SignIn(r.Context(), req.Email, req.Password); err != nil {
		h.logger.Warn("sign in failed", "error", err)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, h.sessionJSON())
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.remote.SignOut(r.Context()); err != nil {
		// Local session is cleared regardless; the remote revocation
		// failing is not the caller's problem.
		h.logger.Warn("remote sign out failed", "error", err)
	}
	writeJSON(w, http.StatusOK, h.sessionJSON())
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessionJSON())
}
