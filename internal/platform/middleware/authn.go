// Copyright (c) 2026 Gatekeep. All rights reserved.

// Package middleware provides the HTTP middleware chain for the Gatekeep API.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers: logging, AuthN/AuthZ, rate limiting,
// and CORS.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vuminh-lab/gatekeep/internal/platform/apperr"
	"github.com/vuminh-lab/gatekeep/internal/platform/constants"
	"github.com/vuminh-lab/gatekeep/internal/platform/ctxutil"
	"github.com/vuminh-lab/gatekeep/internal/platform/respond"
	"github.com/vuminh-lab/gatekeep/internal/platform/sec"
)

// TokenVerifier is the slice of the token service the gate depends on.
//
// # Why an interface?
//
// Defining it here decouples the middleware from [sec.TokenService], so unit
// tests can inject fakes that fail in precise ways.
type TokenVerifier interface {
	// Subject extracts the verified subject of a token. Failures follow the
	// sec error taxonomy (malformed/expired/signature).
	Subject(tokenString string) (string, error)

	// Validate reports whether the token is authentic, current, and issued
	// for expectedSubject.
	Validate(tokenString, expectedSubject string) (bool, error)
}

// SubjectRecord is the live account state behind a token subject.
type SubjectRecord struct {
	// Roles are the account's current role names ("admin", "user").
	Roles []string

	// Enabled is the account's live enable flag. Disabled accounts never
	// authenticate, no matter how fresh their token is.
	Enabled bool
}

// SubjectResolver resolves a token subject to its current account state.
//
// Implementations return an error for unknown subjects; the gate treats that
// identically to a disabled account and continues unauthenticated.
type SubjectResolver interface {
	ResolveSubject(ctx context.Context, subject string) (SubjectRecord, error)
}

// Authenticate is the per-request authentication gate.
//
// # Flow
//
//  1. Read the Authorization header. Absent or non-Bearer → anonymous
//     pass-through; that is not an error.
//  2. Strip the "Bearer " prefix and extract the verified subject.
//  3. If an earlier stage already attached a principal, keep its decision.
//  4. Resolve the subject to live roles + enabled state.
//  5. Validate the token against the resolved subject; on success attach a
//     fresh [sec.Principal] to the request context.
//
// # Failure mapping
//
// Expired tokens → 401 TOKEN_EXPIRED. Invalid signatures → 401
// TOKEN_SIGNATURE_INVALID. Malformed tokens (including a bare "Bearer"
// header) → 400 TOKEN_MALFORMED. Every other failure — unknown subject,
// disabled account, unexpected parse error — continues unauthenticated and
// lets downstream authorization reject the request as anonymous. The gate
// fails open to anonymous, never to authenticated.
func Authenticate(tokens TokenVerifier, resolver SubjectResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			header := request.Header.Get(constants.HeaderAuthorization)

			// ── 1. Anonymous access ───────────────────────────────────────
			if header == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// A bare "Bearer" (or "Bearer " with nothing after it) is a
			// malformed credential, not a missing one.
			rawToken, present := strings.CutPrefix(header, constants.BearerScheme)
			if header == strings.TrimSuffix(constants.BearerScheme, " ") || (present && rawToken == "") {
				respond.Error(writer, request, errTokenMalformed())
				return
			}

			// Any other scheme is simply not ours; defer to downstream
			// authorization.
			if !present {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Subject extraction ─────────────────────────────────────
			subject, err := tokens.Subject(rawToken)
			if err != nil {
				if failure := tokenFailure(request, err); failure != nil {
					respond.Error(writer, request, failure)
					return
				}
				// Outside the taxonomy: swallow and continue anonymously so
				// the gate can never crash the pipeline on unexpected input.
				// Fail open to anonymous, never to authenticated.
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Idempotence ────────────────────────────────────────────
			// Never override a decision made by an earlier chain stage.
			if ctxutil.GetPrincipal(request.Context()) != nil {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 4. Live account lookup ────────────────────────────────────
			record, err := resolver.ResolveSubject(request.Context(), subject)
			if err != nil || !record.Enabled {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 5. Validation + context injection ─────────────────────────
			valid, err := tokens.Validate(rawToken, subject)
			if err != nil || !valid {
				next.ServeHTTP(writer, request)
				return
			}

			principal := sec.NewPrincipal(subject, record.Roles)
			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// tokenFailure maps the sec error taxonomy onto short-circuiting responses.
//
// Expired and malformed are deliberately distinguishable: a client holding an
// aged-out token must re-authenticate (401), while structurally broken input
// is a client bug (400). A nil return means the error is outside the taxonomy
// and the request should proceed unauthenticated.
func tokenFailure(request *http.Request, err error) *apperr.AppError {
	logger := ctxutil.GetLogger(request.Context())

	switch {
	case errors.Is(err, sec.ErrTokenExpired):
		logger.InfoContext(request.Context(), "token_expired")
		return apperr.New(http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired")

	case errors.Is(err, sec.ErrSignatureInvalid):
		// Logged at warn so signature anomalies stand out from routine expiry.
		logger.WarnContext(request.Context(), "token_signature_invalid")
		return apperr.New(http.StatusUnauthorized, "TOKEN_SIGNATURE_INVALID", "Token signature is invalid")

	case errors.Is(err, sec.ErrTokenMalformed):
		logger.InfoContext(request.Context(), "token_malformed")
		return errTokenMalformed()

	default:
		logger.WarnContext(request.Context(), "token_parse_unexpected_error", slog.Any("error", err))
		return nil
	}
}

func errTokenMalformed() *apperr.AppError {
	return apperr.New(http.StatusBadRequest, "TOKEN_MALFORMED", "Token is malformed")
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetPrincipal(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireAuthority blocks requests whose principal lacks the exact authority
// string (e.g. "ROLE_ADMIN"). It implies [RequireAuth].
func RequireAuthority(authority string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())

			if principal == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !principal.HasAuthority(authority) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequireRole is [RequireAuthority] for a role name: RequireRole("admin")
// checks the "ROLE_ADMIN" authority.
func RequireRole(role string) func(http.Handler) http.Handler {
	return RequireAuthority(sec.RoleAuthority(role))
}
