package book

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hjin-me/libraryms/internal/identity"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=book
type Repository interface {
	// CreateBook inserts the book, its "first acquisition" change-log
	// entry and the pointer to it in one transaction, filling in ID,
	// LogID and CreatedAt.
	CreateBook(ctx context.Context, b *Book, narrative string) error

	// Transition appends one change-log entry and advances the book
	// snapshot atomically, guarded by the params' preconditions. Returns
	// ErrNotFound for missing/removed books and ErrConflict when the
	// guard matches zero live rows.
	Transition(ctx context.Context, p TransitionParams) error

	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	ListBooks(ctx context.Context, filter ListFilter) ([]*Book, error)
	ListChangeLogs(ctx context.Context, bookID uuid.UUID) ([]*ChangeLog, error)
}

// MetadataLookup resolves an ISBN to descriptive metadata. Acquire calls it
// before opening any transaction; its failures abort the acquisition with
// nothing written.
type MetadataLookup interface {
	Lookup(ctx context.Context, isbn string) (*Metadata, error)
}

// TransitionParams describes one guarded state transition. FromStates is the
// compare-and-set precondition: the UPDATE only matches rows whose current
// state is in the set (empty means any live state). HolderMustBe additionally
// pins the current holder, for Return.
type TransitionParams struct {
	BookID       uuid.UUID
	Actor        string
	FromStates   []State
	To           State
	Narrative    string
	HolderMustBe *string

	SetHolder   string
	ClearHolder bool
	SoftDelete  bool
}

// Service is the lifecycle engine. Role preconditions are checked here,
// state preconditions inside the repository's atomic update, so two racing
// transitions on the same book resolve to one success and one ErrConflict.
type Service struct {
	repo   Repository
	lookup MetadataLookup
}

func NewService(repo Repository, lookup MetadataLookup) *Service {
	return &Service{repo: repo, lookup: lookup}
}

type ListFilter struct {
	Limit  int
	Offset int
	// Query matches title or ISBN, case-insensitive substring.
	Query string
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Acquire looks the ISBN up in the catalog service and stores a new copy in
// the available state. The lookup completes before anything is written.
func (s *Service) Acquire(ctx context.Context, isbn string, actor *identity.Actor) (*Book, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}

	meta, err := s.lookup.Lookup(ctx, isbn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	b := &Book{
		ISBN:      meta.ISBN,
		Title:     meta.Title,
		Authors:   meta.Authors,
		Publisher: meta.Publisher,
		Thumbnail: meta.Thumbnail,
		State:     StateAvailable,
		Operator:  actor.ID,
	}

	if err := s.repo.CreateBook(ctx, b, "first acquisition"); err != nil {
		return nil, fmt.Errorf("storing acquired book: %w", err)
	}

	return b, nil
}

// Lend moves an available book to borrowed and records the actor as holder.
func (s *Service) Lend(ctx context.Context, id uuid.UUID, actor *identity.Actor) error {
	if actor == nil {
		return ErrUnauthorized
	}

	return s.repo.Transition(ctx, TransitionParams{
		BookID:     id,
		Actor:      actor.ID,
		FromStates: []State{StateAvailable},
		To:         StateBorrowed,
		Narrative:  fmt.Sprintf("%s borrowed the book", actor.ID),
		SetHolder:  actor.ID,
	})
}

// Return hands a borrowed book back. Only the current holder may return it;
// the holder guard rides in the same atomic update as the state guard.
func (s *Service) Return(ctx context.Context, id uuid.UUID, actor *identity.Actor) error {
	if actor == nil {
		return ErrUnauthorized
	}

	holder := actor.ID

	return s.repo.Transition(ctx, TransitionParams{
		BookID:       id,
		Actor:        actor.ID,
		FromStates:   []State{StateBorrowed},
		To:           StateReturned,
		Narrative:    fmt.Sprintf("%s returned the book", actor.ID),
		HolderMustBe: &holder,
		ClearHolder:  true,
	})
}

// ConfirmReturn is the admin acknowledgement that puts a returned book back
// into circulation.
func (s *Service) ConfirmReturn(ctx context.Context, id uuid.UUID, actor *identity.Actor) error {
	if !actor.IsAdmin() {
		return ErrUnauthorized
	}

	return s.repo.Transition(ctx, TransitionParams{
		BookID:      id,
		Actor:       actor.ID,
		FromStates:  []State{StateReturned},
		To:          StateAvailable,
		Narrative:   fmt.Sprintf("%s confirmed the return", actor.ID),
		ClearHolder: true,
	})
}

// MarkLost flags a book as lost from any live state. The holder is kept so
// the record shows who had the book when it went missing.
func (s *Service) MarkLost(ctx context.Context, id uuid.UUID, actor *identity.Actor) error {
	if !actor.IsAdmin() {
		return ErrUnauthorized
	}

	return s.repo.Transition(ctx, TransitionParams{
		BookID:    id,
		Actor:     actor.ID,
		To:        StateLost,
		Narrative: "book marked as lost",
	})
}

// Reset recovers a lost or state-corrupted book back to available.
func (s *Service) Reset(ctx context.Context, id uuid.UUID, actor *identity.Actor) error {
	if !actor.IsAdmin() {
		return ErrUnauthorized
	}

	return s.repo.Transition(ctx, TransitionParams{
		BookID:      id,
		Actor:       actor.ID,
		FromStates:  []State{StateLost, StateUnknown},
		To:          StateAvailable,
		Narrative:   "book state reset",
		ClearHolder: true,
	})
}

// Remove soft-deletes a book. The row and its change log stay for audit;
// once removed a book never transitions again and no query returns it.
func (s *Service) Remove(ctx context.Context, id uuid.UUID, actor *identity.Actor) error {
	if !actor.IsAdmin() {
		return ErrUnauthorized
	}

	return s.repo.Transition(ctx, TransitionParams{
		BookID:     id,
		Actor:      actor.ID,
		To:         StateDeleted,
		Narrative:  "book removed",
		SoftDelete: true,
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Book, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}

	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return s.repo.ListBooks(ctx, filter)
}

// History returns the full audit trail for a book, newest first.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]*ChangeLog, error) {
	return s.repo.ListChangeLogs(ctx, id)
}
