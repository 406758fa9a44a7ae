package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hjin-me/libraryms/internal/account"
	"github.com/hjin-me/libraryms/internal/identity"
)

type Handler struct {
	directory identity.Directory
	sessions  *identity.SessionManager
	accounts  *account.Service
}

func NewHandler(directory identity.Directory, sessions *identity.SessionManager, accounts *account.Service) *Handler {
	return &Handler{directory: directory, sessions: sessions, accounts: accounts}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.login)
	r.Get("/me", h.me)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	profile, err := h.directory.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrBadCredentials) {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}

		http.Error(w, "directory unavailable", http.StatusServiceUnavailable)

		return
	}

	acct, err := h.accounts.Provision(r.Context(), profile)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	token, err := h.sessions.Issue(acct.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	resp := loginResponse{
		Token:       token,
		UserID:      acct.ID,
		DisplayName: acct.DisplayName,
		Role:        string(acct.Role),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type meResponse struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if actor == nil {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	resp := meResponse{UserID: actor.ID, DisplayName: actor.Name, Role: string(actor.Role)}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
