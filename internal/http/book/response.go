package book

import (
	"time"

	"github.com/hjin-me/libraryms/internal/book"
	"github.com/hjin-me/libraryms/internal/identity"
)

type bookResponse struct {
	ID           string    `json:"id"`
	ISBN         string    `json:"isbn"`
	Title        string    `json:"title"`
	Authors      []string  `json:"authors"`
	Publisher    string    `json:"publisher"`
	Thumbnail    string    `json:"thumbnail"`
	State        string    `json:"state"`
	Operator     string    `json:"operator"`
	OperatorName string    `json:"operator_name"`
	OperatedAt   time.Time `json:"operated_at"`
	CreatedAt    time.Time `json:"created_at"`
	Actions      []string  `json:"actions"`
}

func toResponse(b *book.Book, viewer *identity.Actor) bookResponse {
	actions := book.DeriveActions(b, viewer)

	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}

	return bookResponse{
		ID:           b.ID.String(),
		ISBN:         b.ISBN,
		Title:        b.Title,
		Authors:      b.Authors,
		Publisher:    b.Publisher,
		Thumbnail:    b.Thumbnail,
		State:        string(b.State),
		Operator:     b.Operator,
		OperatorName: b.OperatorName,
		OperatedAt:   b.OperatedAt,
		CreatedAt:    b.CreatedAt,
		Actions:      names,
	}
}

func toResponseList(books []*book.Book, viewer *identity.Actor) []bookResponse {
	out := make([]bookResponse, len(books))
	for i, b := range books {
		out[i] = toResponse(b, viewer)
	}

	return out
}

type changeLogResponse struct {
	ID         int64     `json:"id"`
	Operator   string    `json:"operator"`
	Action     string    `json:"action"`
	State      string    `json:"state"`
	OperatedAt time.Time `json:"operated_at"`
}

func toChangeLogList(logs []*book.ChangeLog) []changeLogResponse {
	out := make([]changeLogResponse, len(logs))
	for i, cl := range logs {
		out[i] = changeLogResponse{
			ID:         cl.ID,
			Operator:   cl.Operator,
			Action:     cl.Action,
			State:      string(cl.State),
			OperatedAt: cl.OperatedAt,
		}
	}

	return out
}
