// Copyright (c) 2026 Gatekeep. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vuminh-lab/gatekeep/internal/platform/apperr"
	"github.com/vuminh-lab/gatekeep/internal/platform/constants"
	"github.com/vuminh-lab/gatekeep/internal/platform/sec"
	"github.com/vuminh-lab/gatekeep/pkg/uuidv7"
)

// bootstrapAccount describes one well-known account created on first boot.
type bootstrapAccount struct {
	username string
	email    string
	password string
	roles    []string
}

// bootstrapAccounts are the development/demo credentials. Seeding is opt-in
// via config and must stay off in production.
var bootstrapAccounts = []bootstrapAccount{
	{
		username: "admin",
		email:    "admin@gatekeep.local",
		password: "admin123",
		roles:    []string{constants.RoleAdmin, constants.RoleUser},
	},
	{
		username: "user",
		email:    "user@gatekeep.local",
		password: "user123",
		roles:    []string{constants.RoleUser},
	},
}

// Seed ensures the well-known roles exist and creates the bootstrap accounts
// that are missing. It is idempotent: accounts that already exist are left
// untouched, so a password change in the database survives restarts.
func Seed(ctx context.Context, users UserRepository, roles RoleRepository, logger *slog.Logger) error {
	for _, name := range []string{constants.RoleAdmin, constants.RoleUser} {
		if _, err := roles.Ensure(ctx, name); err != nil {
			return fmt.Errorf("seed_ensure_role_failed: %w", err)
		}
	}

	for _, account := range bootstrapAccounts {
		_, err := users.FindByUsername(ctx, account.username)
		if err == nil {
			continue
		}
		if !apperr.IsNotFound(err) {
			return fmt.Errorf("seed_lookup_failed: %w", err)
		}

		passwordHash, err := sec.HashPassword(account.password)
		if err != nil {
			return fmt.Errorf("seed_hash_failed: %w", err)
		}

		user := &User{
			ID:           uuidv7.New(),
			Username:     account.username,
			Email:        account.email,
			PasswordHash: passwordHash,
			Enabled:      true,
			Roles:        account.roles,
		}

		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("seed_create_failed: %w", err)
		}

		logger.Info("bootstrap account created",
			slog.String("username", account.username),
			slog.Any("roles", account.roles),
		)
	}

	return nil
}
