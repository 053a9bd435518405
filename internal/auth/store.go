// Copyright (c) 2026 Gatekeep. All rights reserved.

package auth

import "context"

// UserRepository defines the data access contract for user accounts.
//
// # Implementations
//
// The canonical implementation is PostgreSQL (store_postgres.go). Tests use
// in-memory fakes.
type UserRepository interface {
	// FindByID returns the account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByUsername returns the account with the given (normalized) username.
	//
	// Returns [apperr.NotFound] if the username is available.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByEmail returns the account with the given (normalized) email.
	//
	// Returns [apperr.NotFound] if no user is registered with this email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create persists a brand-new user account together with its role grants.
	//
	// Returns a wrapped error if a unique constraint (email/username) fails.
	Create(ctx context.Context, user *User) error

	// SetEnabled flips the account's enable flag. The authentication gate
	// observes the change on the next uncached subject resolution.
	SetEnabled(ctx context.Context, id string, enabled bool) error

	// SoftDelete marks the account as deleted without removing the row,
	// preserving relational integrity for anything the account owns.
	SoftDelete(ctx context.Context, id string) error
}

// RoleRepository defines the data access contract for roles.
type RoleRepository interface {
	// FindByName returns the role with the given name.
	//
	// Returns [apperr.NotFound] if the role does not exist.
	FindByName(ctx context.Context, name string) (*Role, error)

	// Ensure returns the role with the given name, creating it first if it
	// does not exist. Used by seeding and registration defaults.
	Ensure(ctx context.Context, name string) (*Role, error)
}
