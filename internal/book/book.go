package book

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a book copy. It is a cached projection of
// the latest change-log entry, never authoritative on its own.
type State string

const (
	StateAvailable State = "available"
	StateBorrowed  State = "borrowed"
	StateReturned  State = "returned"
	StateLost      State = "lost"
	StateDeleted   State = "deleted"
	StateUnknown   State = "unknown"
)

// ParseState maps a stored value to a State, falling back to StateUnknown
// for anything unrecognized.
func ParseState(s string) State {
	switch State(s) {
	case StateAvailable, StateBorrowed, StateReturned, StateLost, StateDeleted:
		return State(s)
	default:
		return StateUnknown
	}
}

// Book is one physical copy. Metadata fields are written once at acquisition;
// State, LogID and HolderID are mutated only by lifecycle transitions, always
// together with a new change-log entry.
type Book struct {
	ID        uuid.UUID
	ISBN      string
	Title     string
	Authors   []string
	Publisher string
	Thumbnail string
	State     State

	// HolderID is the member currently holding a borrowed copy. Set by
	// Lend, cleared by Return, ConfirmReturn and Reset. Distinct from
	// Operator: an admin marking a borrowed copy lost becomes the
	// operator but never the holder.
	HolderID string

	// Operator is the actor of the latest change-log entry, OperatorName
	// its display name resolved from the accounts table.
	Operator     string
	OperatorName string
	OperatedAt   time.Time
	LogID        int64

	CreatedAt time.Time
	DeletedAt *time.Time
}

// ChangeLog is one immutable audit entry: operator did action on source,
// leaving it in state, at operate_at. Entries are never updated or deleted.
type ChangeLog struct {
	ID         int64
	Operator   string
	SourceID   uuid.UUID
	SourceType string
	Action     string
	State      State
	OperatedAt time.Time
}

// SourceTypeBook is the only change-log subject type today; the column
// exists so other entities can share the log later.
const SourceTypeBook = "book"

// Metadata is what the catalog lookup service returns for an ISBN.
type Metadata struct {
	ISBN      string
	Title     string
	Authors   []string
	Publisher string
	Thumbnail string
}
