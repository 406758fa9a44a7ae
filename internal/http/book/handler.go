package book

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hjin-me/libraryms/internal/book"
	"github.com/hjin-me/libraryms/internal/http/auth"
	"github.com/hjin-me/libraryms/internal/identity"
)

type Handler struct {
	svc *book.Service
}

func NewHandler(svc *book.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.acquire)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/logs", h.history)
	r.Post("/{id}/borrow", h.transition(h.svc.Lend))
	r.Post("/{id}/return", h.transition(h.svc.Return))
	r.Post("/{id}/confirm", h.transition(h.svc.ConfirmReturn))
	r.Post("/{id}/lost", h.transition(h.svc.MarkLost))
	r.Post("/{id}/reset", h.transition(h.svc.Reset))
	r.Delete("/{id}", h.transition(h.svc.Remove))
}

// transitionFunc is the shared shape of every lifecycle operation.
type transitionFunc func(ctx context.Context, id uuid.UUID, actor *identity.Actor) error

// writeError maps service errors onto HTTP statuses. Anything outside the
// sentinel taxonomy is a storage failure worth retrying.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, book.ErrNotFound):
		http.Error(w, "book not found", http.StatusNotFound)
	case errors.Is(err, book.ErrConflict):
		http.Error(w, "book is no longer in the expected state", http.StatusConflict)
	case errors.Is(err, book.ErrUnauthorized):
		http.Error(w, "you are not allowed to do this", http.StatusForbidden)
	case errors.Is(err, book.ErrUpstreamUnavailable):
		http.Error(w, "metadata lookup unavailable, try again later", http.StatusBadGateway)
	default:
		slog.Error("book operation failed", "error", err)
		http.Error(w, "temporary failure, try again later", http.StatusServiceUnavailable)
	}
}

type acquireRequest struct {
	ISBN string `json:"isbn"`
}

func (h *Handler) acquire(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	if actor == nil {
		http.Error(w, "login required", http.StatusUnauthorized)
		return
	}

	var req acquireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.ISBN == "" {
		http.Error(w, "isbn is required", http.StatusBadRequest)
		return
	}

	b, err := h.svc.Acquire(r.Context(), req.ISBN, actor)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(b, actor)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := book.ListFilter{Query: r.URL.Query().Get("q")}

	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Limit = n
		}
	}

	if s := r.URL.Query().Get("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Offset = n
		}
	}

	books, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(books, auth.ActorFrom(r.Context()))); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(b, auth.ActorFrom(r.Context()))); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	logs, err := h.svc.History(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toChangeLogList(logs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) transition(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := auth.ActorFrom(r.Context())
		if actor == nil {
			http.Error(w, "login required", http.StatusUnauthorized)
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		if err := fn(r.Context(), id, actor); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
