package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/hjin-me/libraryms/internal/account"
	"github.com/hjin-me/libraryms/internal/identity"
)

type contextKey struct{}

var actorKey contextKey

// ActorFrom returns the authenticated actor on the request context, or nil
// for anonymous requests.
func ActorFrom(ctx context.Context) *identity.Actor {
	actor, _ := ctx.Value(actorKey).(*identity.Actor)
	return actor
}

// Middleware resolves a Bearer session token to an Actor and stores it on
// the context. Requests without a valid token pass through anonymously;
// handlers and the book service decide what anonymity is allowed to do.
func Middleware(sessions *identity.SessionManager, accounts *account.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			uid, err := sessions.Verify(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			acct, err := accounts.Get(r.Context(), uid)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			actor := &identity.Actor{ID: acct.ID, Name: acct.DisplayName, Role: acct.Role}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
		})
	}
}
