package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrBadCredentials is returned when the directory rejects a login attempt.
var ErrBadCredentials = errors.New("bad credentials")

// Profile is what a directory knows about a user. Roles are not directory
// data; they live in the accounts table.
type Profile struct {
	ID          string
	DisplayName string
}

// Directory verifies credentials against an external user directory
// (an LDAP server in a typical deployment).
type Directory interface {
	Authenticate(ctx context.Context, username, password string) (*Profile, error)
}

type staticUser struct {
	password    string
	displayName string
}

// StaticDirectory is an env-seeded Directory for development and small
// installs that have no LDAP.
type StaticDirectory struct {
	users map[string]staticUser
}

// NewStaticDirectory parses "uid:password:Display Name" entries.
func NewStaticDirectory(entries []string) (*StaticDirectory, error) {
	users := make(map[string]staticUser, len(entries))

	for _, e := range entries {
		parts := strings.SplitN(e, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid directory entry %q, want uid:password:name", e)
		}

		users[parts[0]] = staticUser{password: parts[1], displayName: parts[2]}
	}

	return &StaticDirectory{users: users}, nil
}

func (d *StaticDirectory) Authenticate(_ context.Context, username, password string) (*Profile, error) {
	u, ok := d.users[username]
	if !ok || u.password != password {
		return nil, ErrBadCredentials
	}

	return &Profile{ID: username, DisplayName: u.displayName}, nil
}
