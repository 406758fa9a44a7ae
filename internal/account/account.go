package account

import (
	"context"
	"errors"
	"time"

	"github.com/hjin-me/libraryms/internal/identity"
)

// ErrNotFound is returned when no account exists for the given id.
var ErrNotFound = errors.New("account not found")

// Account is a known user of the system. The directory authenticates
// credentials; this table owns display names and roles.
type Account struct {
	ID          string
	DisplayName string
	Role        identity.Role
	CreatedAt   time.Time
}

//go:generate mockgen -source=account.go -destination=repository_mock.go -package=account
type Repository interface {
	// Upsert creates the account or refreshes its display name. Role is
	// only written on first insert so an operator-assigned role survives
	// later logins.
	Upsert(ctx context.Context, a *Account) error
	Get(ctx context.Context, id string) (*Account, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Provision ensures an account exists for a freshly authenticated profile.
// First-time users get the user role.
func (s *Service) Provision(ctx context.Context, profile *identity.Profile) (*Account, error) {
	a := &Account{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
		Role:        identity.RoleUser,
	}

	if err := s.repo.Upsert(ctx, a); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, a.ID)
}

func (s *Service) Get(ctx context.Context, id string) (*Account, error) {
	return s.repo.Get(ctx, id)
}
