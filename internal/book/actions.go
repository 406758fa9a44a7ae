package book

import "github.com/hjin-me/libraryms/internal/identity"

// Action is an operation a viewer may currently perform on a book.
type Action string

const (
	ActionBorrow  Action = "borrow"
	ActionReturn  Action = "return"
	ActionConfirm Action = "confirm"
	ActionLost    Action = "lost"
	ActionReset   Action = "reset"
	ActionDelete  Action = "delete"
)

// DeriveActions computes the actions the viewer may take on the book. Pure:
// every presentation surface calls this instead of repeating the rules. A nil
// viewer is anonymous and gets nothing. The rules are independent; the result
// is their union, in no particular order of priority.
func DeriveActions(b *Book, viewer *identity.Actor) []Action {
	var actions []Action

	if b.State == StateAvailable && viewer != nil {
		actions = append(actions, ActionBorrow)
	}

	if b.State == StateBorrowed && viewer != nil && viewer.ID == b.HolderID {
		actions = append(actions, ActionReturn)
	}

	if b.State == StateReturned && viewer.IsAdmin() {
		actions = append(actions, ActionConfirm)
	}

	if b.State == StateLost && viewer.IsAdmin() {
		actions = append(actions, ActionReset)
	}

	if viewer.IsAdmin() && b.State != StateDeleted {
		actions = append(actions, ActionLost, ActionDelete)
	}

	return actions
}
