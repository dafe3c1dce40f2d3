package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/todo-api/internal/domain"
	"github.com/msomdec/todo-api/internal/service"
)

// AuthHandler handles account and session HTTP requests.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an account and logs it in.
// POST /users
// Request:  {"email":"...","password":"..."}
// Response: {"_id":"...","email":"..."} with the x-auth header set
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, token, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, "An account with that email already exists.")
		case errors.Is(err, domain.ErrInvalidInput):
			writeInputError(w, err, "Invalid email or password.")
		default:
			slog.Error("register user", "error", err)
			writeError(w, http.StatusBadRequest, "Could not create account.")
		}
		return
	}

	w.Header().Set(AuthHeader, token)
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// HandleLogin opens a new session for valid credentials.
// POST /users/login
// Request:  {"email":"...","password":"..."}
// Response: {"_id":"...","email":"..."} with the x-auth header set
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) {
			slog.Error("login user", "error", err)
		}
		writeError(w, http.StatusBadRequest, "Invalid email or password.")
		return
	}

	w.Header().Set(AuthHeader, token)
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// HandleMe returns the currently authenticated user.
// GET /users/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// HandleLogout revokes the token the request was made with.
// DELETE /users/me/token
// Response: 200 with an empty body
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.auth.Logout(r.Context(), user.ID, TokenFromContext(r.Context())); err != nil {
		slog.Error("logout user", "error", err)
		writeError(w, http.StatusBadRequest, "Could not log out.")
		return
	}
	w.WriteHeader(http.StatusOK)
}
