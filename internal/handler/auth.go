package handler

import (
	"errors"
	"net/http"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/service"
)

// AuthHandler handles signup and login.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// HandleSignup registers a user and returns a session token.
// POST /signup
// Request:  {"username":"...","email":"...","password":"..."}
// Response: {"success":true,"token":"..."}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, _, err := h.auth.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			writeFailure(w, http.StatusBadRequest, detail(err, domain.ErrConflict))
			return
		}
		writeError(w, "signup", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

// HandleLogin verifies credentials and returns a session token.
// POST /login
// Request:  {"email":"...","password":"..."}
// Response: {"success":true,"token":"..."} or 401 {"success":false,"errors":"Wrong Password"}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}
