// Copyright (c) 2026 Gatekeep. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vuminh-lab/gatekeep/internal/platform/apperr"
	"github.com/vuminh-lab/gatekeep/pkg/uuidv7"
)

// selectUserColumns is the shared projection for user queries, aggregating
// role names into a text[] that pgx scans straight into []string.
const selectUserColumns = `
	SELECT a.id, a.username, a.email, a.passwordhash, a.enabled, a.createdat, a.updatedat,
	       COALESCE(array_agg(r.name) FILTER (WHERE r.name IS NOT NULL), '{}') AS roles
	FROM users.account a
	LEFT JOIN users.account_role ar ON ar.accountid = a.id
	LEFT JOIN users.role r ON r.id = ar.roleid`

const groupUserColumns = `
	GROUP BY a.id, a.username, a.email, a.passwordhash, a.enabled, a.createdat, a.updatedat`

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates the PostgreSQL implementation of [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// scanUser scans one row of the shared projection.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
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
	return user, nil
}

// FindByID retrieves a user record by its unique ID.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := selectUserColumns + `
	WHERE a.id = $1 AND a.deletedat IS NULL` + groupUserColumns

	user, err := scanUser(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

// FindByUsername retrieves a user record by its unique username.
func (repository *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := selectUserColumns + `
	WHERE a.username = $1 AND a.deletedat IS NULL` + groupUserColumns

	user, err := scanUser(repository.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_username_failed: %w", err)
	}

	return user, nil
}

// FindByEmail retrieves a user record by its unique email address.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := selectUserColumns + `
	WHERE a.email = $1 AND a.deletedat IS NULL` + groupUserColumns

	user, err := scanUser(repository.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

// Create persists a new account and its role grants in one transaction.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const insertAccount = `
		INSERT INTO users.account (id, username, email, passwordhash, enabled, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	const grantRole = `
		INSERT INTO users.account_role (accountid, roleid)
		SELECT $1, id FROM users.role WHERE name = $2`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_create_begin_failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, insertAccount,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Enabled,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	for _, role := range user.Roles {
		if _, err := tx.Exec(ctx, grantRole, user.ID, role); err != nil {
			return fmt.Errorf("postgres_user_repo_grant_role_failed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_user_repo_create_commit_failed: %w", err)
	}

	return nil
}

// SetEnabled flips the account's enable flag.
func (repository *PostgresUserRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	const query = `
		UPDATE users.account
		SET enabled = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	tag, err := repository.pool.Exec(ctx, query, id, enabled, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_set_enabled_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// SoftDelete marks a user account as deleted.
func (repository *PostgresUserRepository) SoftDelete(ctx context.Context, id string) error {
	const query = "UPDATE users.account SET deletedat = $2 WHERE id = $1 AND deletedat IS NULL"

	tag, err := repository.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_soft_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// ── Role Repository ──────────────────────────────────────────────────────────

// PostgresRoleRepository implements [RoleRepository].
type PostgresRoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates the PostgreSQL implementation of [RoleRepository].
func NewRoleRepository(pool *pgxpool.Pool) *PostgresRoleRepository {
	return &PostgresRoleRepository{pool: pool}
}

// FindByName retrieves a role by its unique name.
func (repository *PostgresRoleRepository) FindByName(ctx context.Context, name string) (*Role, error) {
	const query = "SELECT id, name FROM users.role WHERE name = $1"

	role := &Role{}
	err := repository.pool.QueryRow(ctx, query, name).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Role")
		}
		return nil, fmt.Errorf("postgres_role_repo_find_by_name_failed: %w", err)
	}

	return role, nil
}

// Ensure returns the named role, creating it first if it does not exist.
func (repository *PostgresRoleRepository) Ensure(ctx context.Context, name string) (*Role, error) {
	const query = `
		INSERT INTO users.role (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`

	role := &Role{}
	err := repository.pool.QueryRow(ctx, query, uuidv7.New(), name).Scan(&role.ID, &role.Name)
	if err != nil {
		return nil, fmt.Errorf("postgres_role_repo_ensure_failed: %w", err)
	}

	return role, nil
}
