// Copyright (c) 2026 Gatekeep. All rights reserved.

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vuminh-lab/gatekeep/internal/auth"
	"github.com/vuminh-lab/gatekeep/internal/platform/apperr"
)

// CacheInvalidator evicts a subject's cached gate resolution after an admin
// mutation, so enable/disable takes effect immediately instead of after the
// cache TTL.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, subject string)
}

// Service orchestrates administrative account operations.
//
// Read models come from [Repository]; single-account mutations reuse the
// auth package's [auth.UserRepository] so there is exactly one write path to
// the account table.
type Service struct {
	accounts Repository
	users    auth.UserRepository
	cache    CacheInvalidator
	logger   *slog.Logger
}

// NewService constructs a [Service]. cache may be nil when no subject cache
// is deployed.
func NewService(accounts Repository, users auth.UserRepository, cache CacheInvalidator, logger *slog.Logger) *Service {
	return &Service{
		accounts: accounts,
		users:    users,
		cache:    cache,
		logger:   logger,
	}
}

// List returns one page of accounts with the total count.
func (service *Service) List(ctx context.Context, limit, offset int) ([]auth.User, int64, error) {
	users, total, err := service.accounts.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}
	return users, total, nil
}

// Get returns a single account by ID.
func (service *Service) Get(ctx context.Context, id string) (*auth.User, error) {
	user, err := service.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Search returns accounts matching the term on username or email.
//
// An empty or whitespace-only term is a validation error rather than a full
// table scan.
func (service *Service) Search(ctx context.Context, term string, limit, offset int) ([]auth.User, int64, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, 0, apperr.ValidationError("Search term is required")
	}

	users, total, err := service.accounts.Search(ctx, term, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_search_failed: %w", err)
	}
	return users, total, nil
}

// ToggleEnabled flips an account's enable flag and returns the updated
// account.
//
// The subject cache entry is evicted so the authentication gate observes the
// new state on the very next request.
func (service *Service) ToggleEnabled(ctx context.Context, id string) (*auth.User, error) {
	user, err := service.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := service.users.SetEnabled(ctx, id, !user.Enabled); err != nil {
		return nil, fmt.Errorf("account_service_toggle_failed: %w", err)
	}
	user.Enabled = !user.Enabled

	if service.cache != nil {
		service.cache.Invalidate(ctx, user.Username)
	}

	service.logger.Info("account_status_toggled",
		slog.String("user_id", id),
		slog.Bool("enabled", user.Enabled),
	)

	return user, nil
}

// Delete soft-deletes an account and evicts its cached gate resolution.
func (service *Service) Delete(ctx context.Context, id string) error {
	user, err := service.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := service.users.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	if service.cache != nil {
		service.cache.Invalidate(ctx, user.Username)
	}

	service.logger.Warn("account_deleted", slog.String("user_id", id))

	return nil
}

// Stats returns aggregate account counts for the admin dashboard.
func (service *Service) Stats(ctx context.Context) (Stats, error) {
	stats, err := service.accounts.Stats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("account_service_stats_failed: %w", err)
	}
	return stats, nil
}
