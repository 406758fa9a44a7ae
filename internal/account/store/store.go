package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hjin-me/libraryms/internal/account"
	"github.com/hjin-me/libraryms/internal/identity"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Upsert(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (id, display_name, role, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name
		RETURNING created_at
	`

	if err := s.db.QueryRowContext(ctx, query, a.ID, a.DisplayName, string(a.Role)).Scan(&a.CreatedAt); err != nil {
		return fmt.Errorf("upserting account: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*account.Account, error) {
	query := `SELECT id, display_name, role, created_at FROM accounts WHERE id = $1`

	var (
		a    account.Account
		role string
	)

	if err := s.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.DisplayName, &role, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	parsed, err := identity.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", id, err)
	}

	a.Role = parsed

	return &a, nil
}
