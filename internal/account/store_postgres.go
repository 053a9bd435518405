// Copyright (c) 2026 Gatekeep. All rights reserved.

package account

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vuminh-lab/gatekeep/internal/auth"
	"github.com/vuminh-lab/gatekeep/internal/platform/constants"
)

// listUserColumns mirrors the auth package's projection so admin listings
// carry the same role aggregation.
const listUserColumns = `
	SELECT a.id, a.username, a.email, a.passwordhash, a.enabled, a.createdat, a.updatedat,
	       COALESCE(array_agg(r.name) FILTER (WHERE r.name IS NOT NULL), '{}') AS roles
	FROM users.account a
	LEFT JOIN users.account_role ar ON ar.accountid = a.id
	LEFT JOIN users.role r ON r.id = ar.roleid`

const listUserGroupOrder = `
	GROUP BY a.id, a.username, a.email, a.passwordhash, a.enabled, a.createdat, a.updatedat
	ORDER BY a.createdat DESC
	LIMIT $%d OFFSET $%d`

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the PostgreSQL implementation of [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// collectUsers drains rows of the shared projection into a slice.
func collectUsers(rows pgx.Rows) ([]auth.User, error) {
	defer rows.Close()

	var users []auth.User
	for rows.Next() {
		var user auth.User
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.Enabled,
			&user.CreatedAt,
			&user.UpdatedAt,
			&user.Roles,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// List implements [Repository].
func (repository *PostgresRepository) List(ctx context.Context, limit, offset int) ([]auth.User, int64, error) {
	query := listUserColumns + `
	WHERE a.deletedat IS NULL` + fmt.Sprintf(listUserGroupOrder, 1, 2)

	rows, err := repository.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_list_failed: %w", err)
	}

	users, err := collectUsers(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_list_scan_failed: %w", err)
	}

	const countQuery = "SELECT count(*) FROM users.account WHERE deletedat IS NULL"

	var total int64
	if err := repository.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_count_failed: %w", err)
	}

	return users, total, nil
}

// Search implements [Repository] with a case-insensitive substring match on
// username and email.
func (repository *PostgresRepository) Search(ctx context.Context, term string, limit, offset int) ([]auth.User, int64, error) {
	pattern := "%" + term + "%"

	query := listUserColumns + `
	WHERE a.deletedat IS NULL AND (a.username ILIKE $1 OR a.email ILIKE $1)` +
		fmt.Sprintf(listUserGroupOrder, 2, 3)

	rows, err := repository.pool.Query(ctx, query, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_search_failed: %w", err)
	}

	users, err := collectUsers(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_search_scan_failed: %w", err)
	}

	const countQuery = `
		SELECT count(*) FROM users.account
		WHERE deletedat IS NULL AND (username ILIKE $1 OR email ILIKE $1)`

	var total int64
	if err := repository.pool.QueryRow(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_search_count_failed: %w", err)
	}

	return users, total, nil
}

// Stats implements [Repository] with a single aggregate pass over the
// account table plus one join for the admin count.
func (repository *PostgresRepository) Stats(ctx context.Context) (Stats, error) {
	const query = `
		SELECT
			count(*) AS total,
			count(*) FILTER (WHERE enabled) AS enabled,
			count(*) FILTER (WHERE NOT enabled) AS disabled,
			(
				SELECT count(DISTINCT ar.accountid)
				FROM users.account_role ar
				JOIN users.role r ON r.id = ar.roleid
				JOIN users.account aa ON aa.id = ar.accountid
				WHERE r.name = $1 AND aa.deletedat IS NULL
			) AS admins
		FROM users.account
		WHERE deletedat IS NULL`

	var stats Stats
	err := repository.pool.QueryRow(ctx, query, constants.RoleAdmin).Scan(
		&stats.Total,
		&stats.Enabled,
		&stats.Disabled,
		&stats.Admins,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("postgres_account_repo_stats_failed: %w", err)
	}

	return stats, nil
}
