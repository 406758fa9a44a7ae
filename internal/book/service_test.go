package book_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hjin-me/libraryms/internal/book"
	"github.com/hjin-me/libraryms/internal/identity"
)

var (
	admin = &identity.Actor{ID: "root", Name: "Root", Role: identity.RoleAdmin}
	alice = &identity.Actor{ID: "alice", Name: "Alice", Role: identity.RoleUser}
	bob   = &identity.Actor{ID: "bob", Name: "Bob", Role: identity.RoleUser}
)

func newService(t *testing.T) (*book.Service, *book.MockRepository, *book.MockMetadataLookup) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := book.NewMockRepository(ctrl)
	lookup := book.NewMockMetadataLookup(ctrl)

	return book.NewService(repo, lookup), repo, lookup
}

func TestService_Acquire(t *testing.T) {
	meta := &book.Metadata{
		ISBN:      "9780000000001",
		Title:     "The Go Programming Language",
		Authors:   []string{"Alan A. A. Donovan", "Brian W. Kernighan"},
		Publisher: "Addison-Wesley",
		Thumbnail: "https://covers.example/gopl.jpg",
	}

	t.Run("Success", func(t *testing.T) {
		svc, repo, lookup := newService(t)

		lookup.EXPECT().Lookup(gomock.Any(), "9780000000001").Return(meta, nil)
		repo.EXPECT().
			CreateBook(gomock.Any(), gomock.Any(), "first acquisition").
			DoAndReturn(func(_ context.Context, b *book.Book, _ string) error {
				b.ID = uuid.New()
				b.LogID = 1
				b.CreatedAt = time.Now()
				return nil
			})

		b, err := svc.Acquire(context.Background(), "9780000000001", admin)
		require.NoError(t, err)
		assert.Equal(t, book.StateAvailable, b.State)
		assert.Equal(t, "The Go Programming Language", b.Title)
		assert.Equal(t, meta.Authors, b.Authors)
		assert.Equal(t, admin.ID, b.Operator)
		assert.NotEmpty(t, b.ID)
	})

	t.Run("NotAdmin", func(t *testing.T) {
		svc, _, _ := newService(t)

		b, err := svc.Acquire(context.Background(), "9780000000001", alice)
		assert.ErrorIs(t, err, book.ErrUnauthorized)
		assert.Nil(t, b)
	})

	t.Run("Anonymous", func(t *testing.T) {
		svc, _, _ := newService(t)

		_, err := svc.Acquire(context.Background(), "9780000000001", nil)
		assert.ErrorIs(t, err, book.ErrUnauthorized)
	})

	t.Run("LookupFails", func(t *testing.T) {
		svc, _, lookup := newService(t)

		lookup.EXPECT().
			Lookup(gomock.Any(), "9780000000001").
			Return(nil, errors.New("connection refused"))

		b, err := svc.Acquire(context.Background(), "9780000000001", admin)
		assert.ErrorIs(t, err, book.ErrUpstreamUnavailable)
		assert.Nil(t, b)
	})

	t.Run("StoreFails", func(t *testing.T) {
		svc, repo, lookup := newService(t)

		lookup.EXPECT().Lookup(gomock.Any(), "9780000000001").Return(meta, nil)
		repo.EXPECT().
			CreateBook(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("db down"))

		_, err := svc.Acquire(context.Background(), "9780000000001", admin)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, book.ErrUpstreamUnavailable)
	})
}

func TestService_Transitions(t *testing.T) {
	id := uuid.New()
	holder := "bob"

	type testCase struct {
		name       string
		call       func(svc *book.Service) error
		wantParams *book.TransitionParams
		wantErr    error
	}

	tests := []testCase{
		{
			name: "LendSetsHolder",
			call: func(svc *book.Service) error {
				return svc.Lend(context.Background(), id, bob)
			},
			wantParams: &book.TransitionParams{
				BookID:     id,
				Actor:      "bob",
				FromStates: []book.State{book.StateAvailable},
				To:         book.StateBorrowed,
				Narrative:  "bob borrowed the book",
				SetHolder:  "bob",
			},
		},
		{
			name: "LendAnonymous",
			call: func(svc *book.Service) error {
				return svc.Lend(context.Background(), id, nil)
			},
			wantErr: book.ErrUnauthorized,
		},
		{
			name: "ReturnGuardsHolder",
			call: func(svc *book.Service) error {
				return svc.Return(context.Background(), id, bob)
			},
			wantParams: &book.TransitionParams{
				BookID:       id,
				Actor:        "bob",
				FromStates:   []book.State{book.StateBorrowed},
				To:           book.StateReturned,
				Narrative:    "bob returned the book",
				HolderMustBe: &holder,
				ClearHolder:  true,
			},
		},
		{
			name: "ConfirmReturnAdminOnly",
			call: func(svc *book.Service) error {
				return svc.ConfirmReturn(context.Background(), id, bob)
			},
			wantErr: book.ErrUnauthorized,
		},
		{
			name: "ConfirmReturn",
			call: func(svc *book.Service) error {
				return svc.ConfirmReturn(context.Background(), id, admin)
			},
			wantParams: &book.TransitionParams{
				BookID:      id,
				Actor:       "root",
				FromStates:  []book.State{book.StateReturned},
				To:          book.StateAvailable,
				Narrative:   "root confirmed the return",
				ClearHolder: true,
			},
		},
		{
			name: "MarkLostFromAnyLiveState",
			call: func(svc *book.Service) error {
				return svc.MarkLost(context.Background(), id, admin)
			},
			wantParams: &book.TransitionParams{
				BookID:    id,
				Actor:     "root",
				To:        book.StateLost,
				Narrative: "book marked as lost",
			},
		},
		{
			name: "MarkLostNotAdmin",
			call: func(svc *book.Service) error {
				return svc.MarkLost(context.Background(), id, alice)
			},
			wantErr: book.ErrUnauthorized,
		},
		{
			name: "ResetFromLostOrUnknown",
			call: func(svc *book.Service) error {
				return svc.Reset(context.Background(), id, admin)
			},
			wantParams: &book.TransitionParams{
				BookID:      id,
				Actor:       "root",
				FromStates:  []book.State{book.StateLost, book.StateUnknown},
				To:          book.StateAvailable,
				Narrative:   "book state reset",
				ClearHolder: true,
			},
		},
		{
			name: "ResetNotAdmin",
			call: func(svc *book.Service) error {
				return svc.Reset(context.Background(), id, alice)
			},
			wantErr: book.ErrUnauthorized,
		},
		{
			name: "RemoveSoftDeletes",
			call: func(svc *book.Service) error {
				return svc.Remove(context.Background(), id, admin)
			},
			wantParams: &book.TransitionParams{
				BookID:     id,
				Actor:      "root",
				To:         book.StateDeleted,
				Narrative:  "book removed",
				SoftDelete: true,
			},
		},
		{
			name: "RemoveNotAdmin",
			call: func(svc *book.Service) error {
				return svc.Remove(context.Background(), id, bob)
			},
			wantErr: book.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService(t)

			if tt.wantParams != nil {
				repo.EXPECT().Transition(gomock.Any(), *tt.wantParams).Return(nil)
			}

			err := tt.call(svc)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_TransitionConflict(t *testing.T) {
	svc, repo, _ := newService(t)
	id := uuid.New()

	repo.EXPECT().
		Transition(gomock.Any(), gomock.Any()).
		Return(book.ErrConflict)

	err := svc.Lend(context.Background(), id, alice)
	assert.ErrorIs(t, err, book.ErrConflict)
}

func TestService_TransitionOnRemovedBook(t *testing.T) {
	svc, repo, _ := newService(t)
	id := uuid.New()

	repo.EXPECT().
		Transition(gomock.Any(), gomock.Any()).
		Return(book.ErrNotFound)

	err := svc.Lend(context.Background(), id, alice)
	assert.ErrorIs(t, err, book.ErrNotFound)
}

func TestService_ListClampsPagination(t *testing.T) {
	type testCase struct {
		name string
		in   book.ListFilter
		want book.ListFilter
	}

	tests := []testCase{
		{
			name: "Defaults",
			in:   book.ListFilter{},
			want: book.ListFilter{Limit: 20},
		},
		{
			name: "CapsLimit",
			in:   book.ListFilter{Limit: 1000, Offset: 40},
			want: book.ListFilter{Limit: 100, Offset: 40},
		},
		{
			name: "FloorsNegativeOffset",
			in:   book.ListFilter{Limit: 10, Offset: -5, Query: "go"},
			want: book.ListFilter{Limit: 10, Query: "go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService(t)

			repo.EXPECT().
				ListBooks(gomock.Any(), tt.want).
				Return([]*book.Book{}, nil)

			_, err := svc.List(context.Background(), tt.in)
			assert.NoError(t, err)
		})
	}
}

func TestService_Get(t *testing.T) {
	svc, repo, _ := newService(t)
	id := uuid.New()

	repo.EXPECT().GetBook(gomock.Any(), id).Return(nil, book.ErrNotFound)

	_, err := svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, book.ErrNotFound)
}

func TestService_History(t *testing.T) {
	svc, repo, _ := newService(t)
	id := uuid.New()

	logs := []*book.ChangeLog{
		{ID: 2, Operator: "bob", Action: "bob borrowed the book", State: book.StateBorrowed},
		{ID: 1, Operator: "root", Action: "first acquisition", State: book.StateAvailable},
	}
	repo.EXPECT().ListChangeLogs(gomock.Any(), id).Return(logs, nil)

	got, err := svc.History(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, logs, got)
}
