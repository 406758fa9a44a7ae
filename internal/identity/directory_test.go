package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticDirectory(t *testing.T) {
	dir, err := NewStaticDirectory([]string{
		"alice:s3cret:Alice Zhang",
		"bob:hunter2:Bob Li",
	})
	require.NoError(t, err)

	t.Run("Authenticates", func(t *testing.T) {
		p, err := dir.Authenticate(context.Background(), "alice", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "alice", p.ID)
		assert.Equal(t, "Alice Zhang", p.DisplayName)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := dir.Authenticate(context.Background(), "alice", "wrong")
		assert.ErrorIs(t, err, ErrBadCredentials)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := dir.Authenticate(context.Background(), "mallory", "s3cret")
		assert.ErrorIs(t, err, ErrBadCredentials)
	})
}

func TestNewStaticDirectory_Invalid(t *testing.T) {
	_, err := NewStaticDirectory([]string{"missing-fields"})
	assert.Error(t, err)

	_, err = NewStaticDirectory([]string{":nopassword:Name"})
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("superuser")
	assert.Error(t, err)
}
