// Copyright (c) 2026 Gatekeep. All rights reserved.

package auth

import (
	"context"
	"fmt"

	"github.com/vuminh-lab/gatekeep/internal/platform/apperr"
	"github.com/vuminh-lab/gatekeep/internal/platform/constants"
	"github.com/vuminh-lab/gatekeep/internal/platform/sec"
	"github.com/vuminh-lab/gatekeep/pkg/normalize"
	"github.com/vuminh-lab/gatekeep/pkg/uuidv7"
)

// TokenIssuer defines the contract for minting access tokens.
//
// # Why an interface?
//
// It decouples the service from [sec.TokenService] so login tests run with a
// deterministic fake instead of real signing.
type TokenIssuer interface {
	// Issue creates a signed token for the subject with extra claims merged
	// into the payload.
	Issue(subject string, extra map[string]any) (string, error)
}

// Service implements the authentication use cases: registration, login, and
// profile lookup.
//
// # Review Process
//
// This service is critical for security. Any change to hashing, registration,
// or login logic needs a security review.
type Service struct {
	users  UserRepository
	roles  RoleRepository
	tokens TokenIssuer
}

// NewService constructs a [Service] with its dependencies.
func NewService(users UserRepository, roles RoleRepository, tokens TokenIssuer) *Service {
	return &Service{
		users:  users,
		roles:  roles,
		tokens: tokens,
	}
}

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register validates, hashes, and persists a brand-new user account.
//
// # Business rules
//   - Usernames and emails are normalized before the uniqueness checks, so
//     confusable spellings cannot bypass them.
//   - The default role is always "user".
//   - New accounts start enabled.
//
// Returns [apperr.Conflict] if the username or email is already registered.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	username := normalize.Username(input.Username)
	email := normalize.Email(input.Email)

	// ── 1. Uniqueness checks ──────────────────────────────────────────────

	if _, err := service.users.FindByUsername(ctx, username); err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	if _, err := service.users.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// ── 2. Security ───────────────────────────────────────────────────────

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 3. Entity construction ────────────────────────────────────────────

	// The default role must exist before the grant row can reference it.
	if _, err := service.roles.Ensure(ctx, constants.RoleUser); err != nil {
		return nil, fmt.Errorf("auth_service_ensure_role_failed: %w", err)
	}

	user := &User{
		ID:           uuidv7.New(), // Time-sortable ID to prevent PG index fragmentation.
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Enabled:      true,
		Roles:        []string{constants.RoleUser},
	}

	// ── 4. Persistence ────────────────────────────────────────────────────

	if err := service.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return user, nil
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult is a successfully issued access token with its account.
type LoginResult struct {
	AccessToken string
	User        *User
	Authorities []string
}

// Login verifies credentials and issues an access token.
//
// # Security
//
// Unknown username, wrong password, and disabled account all collapse into
// the same generic [apperr.Unauthorized] so responses never reveal whether a
// username exists.
//
// The issued token embeds the account's authority strings as an
// "authorities" claim; the authentication gate still re-resolves live state
// on every request, so the claim is informational for clients.
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	genericReject := apperr.Unauthorized("Invalid username or password")

	// ── 1. Fetch account ──────────────────────────────────────────────────

	user, err := service.users.FindByUsername(ctx, normalize.Username(input.Username))
	if err != nil {
		return nil, genericReject
	}

	// ── 2. Verify credentials ─────────────────────────────────────────────

	// bcrypt comparison is constant time.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, genericReject
	}

	// Disabled accounts always fail authentication, with the same generic
	// message as a bad password.
	if !user.Enabled {
		return nil, genericReject
	}

	// ── 3. Token issuance ─────────────────────────────────────────────────

	authorities := sec.NewPrincipal(user.Username, user.Roles).Authorities

	accessToken, err := service.tokens.Issue(user.Username, map[string]any{
		"authorities": authorities,
	})
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_issue_failed: %w", err)
	}

	return &LoginResult{
		AccessToken: accessToken,
		User:        user,
		Authorities: authorities,
	}, nil
}

// Profile returns the account behind an authenticated subject.
func (service *Service) Profile(ctx context.Context, subject string) (*User, error) {
	user, err := service.users.FindByUsername(ctx, subject)
	if err != nil {
		return nil, err
	}
	return user, nil
}
