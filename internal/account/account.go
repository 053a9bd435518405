// Copyright (c) 2026 Gatekeep. All rights reserved.

/*
Package account implements administrative user management.

It provides the admin-only surface for operating on accounts at scale:
paginated listing, search, enable/disable toggling, soft deletion, and
aggregate statistics.

# Architecture

  - Domain: depends on the auth package for the User entity and its
    by-ID repository operations.
  - Security: every route requires the admin role; enforcement lives in
    the HTTP layer via middleware.
*/
package account

import (
	"context"

	"github.com/vuminh-lab/gatekeep/internal/auth"
)

// Stats aggregates account counts for the admin dashboard.
type Stats struct {
	// Total counts every non-deleted account.
	Total int64 `json:"total"`

	// Enabled counts accounts that can currently authenticate.
	Enabled int64 `json:"enabled"`

	// Disabled counts accounts locked out by an administrator.
	Disabled int64 `json:"disabled"`

	// Admins counts accounts holding the admin role.
	Admins int64 `json:"admins"`
}

// # Repository Contracts

// Repository defines the read-model contract for administrative queries.
//
// Single-account mutations (toggle, delete) go through
// [auth.UserRepository]; this interface covers the set-oriented queries
// only the admin surface needs.
type Repository interface {
	// List returns one page of non-deleted accounts ordered by creation
	// time (newest first), together with the total count for pagination.
	List(ctx context.Context, limit, offset int) ([]auth.User, int64, error)

	// Search returns accounts whose username or email contains the term,
	// case-insensitively, with the total match count.
	Search(ctx context.Context, term string, limit, offset int) ([]auth.User, int64, error)

	// Stats returns aggregate account counts.
	Stats(ctx context.Context) (Stats, error)
}
