package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUserService_Profile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	u := env.signup(t, "alice")

	p, err := env.Users.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.User.Username)
	assert.Empty(t, p.Roles)

	_, err = env.Users.Profile(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_Patch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	u := env.signup(t, "alice")
	env.signup(t, "bob")

	updated, err := env.Users.Patch(ctx, u.ID, UserPatch{FullName: strPtr("Alice L"), Username: strPtr("alice")})
	require.NoError(t, err)
	assert.Equal(t, "Alice L", updated.FullName)

	_, err = env.Users.Patch(ctx, u.ID, UserPatch{Email: strPtr("bob@example.com")})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = env.Users.Patch(ctx, u.ID, UserPatch{Username: strPtr("bob")})
	require.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = env.Users.Patch(ctx, u.ID, UserPatch{Username: strPtr(" ")})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Users.Patch(ctx, u.ID, UserPatch{Password: strPtr("NewSecret1")})
	require.NoError(t, err)

	_, err = env.Auth.Login(ctx, "alice@example.com", "Secret123", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.Auth.Login(ctx, "alice@example.com", "NewSecret1", "")
	require.NoError(t, err)
}
