// Copyright (c) 2026 Gatekeep. All rights reserved.

package auth_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuminh-lab/gatekeep/internal/auth"
	"github.com/vuminh-lab/gatekeep/internal/platform/sec"
)

/*
TestSeed verifies the bootstrap roles and accounts are created with the
expected grants and credentials.
*/
func TestSeed(t *testing.T) {
	users := newMemoryUserRepository()
	roles := newMemoryRoleRepository()

	require.NoError(t, auth.Seed(context.Background(), users, roles, slog.Default()))

	_, err := roles.FindByName(context.Background(), "admin")
	require.NoError(t, err)
	_, err = roles.FindByName(context.Background(), "user")
	require.NoError(t, err)

	admin, err := users.FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.True(t, admin.Enabled)
	assert.ElementsMatch(t, []string{"admin", "user"}, admin.Roles)
	assert.True(t, sec.CheckPasswordHash("admin123", admin.PasswordHash))

	user, err := users.FindByUsername(context.Background(), "user")
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, user.Roles)
	assert.True(t, sec.CheckPasswordHash("user123", user.PasswordHash))
}

/*
TestSeed_Idempotent verifies a second run leaves existing accounts untouched.
*/
func TestSeed_Idempotent(t *testing.T) {
	users := newMemoryUserRepository()
	roles := newMemoryRoleRepository()

	require.NoError(t, auth.Seed(context.Background(), users, roles, slog.Default()))

	admin, err := users.FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	originalHash := admin.PasswordHash

	require.NoError(t, auth.Seed(context.Background(), users, roles, slog.Default()))

	again, err := users.FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, originalHash, again.PasswordHash)
	assert.Len(t, users.users, 2)
}
