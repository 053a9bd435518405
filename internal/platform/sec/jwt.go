// Copyright (c) 2026 Gatekeep. All rights reserved.

// Package sec provides the cryptographic core of Gatekeep: token issuance,
// token validation, and password hashing.
//
// # Architecture
//
// This package isolates security-sensitive code from the domain logic. It is
// injected into the application layer through small interfaces (TokenIssuer,
// TokenVerifier) so that every caller can be tested with fakes.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum accepted length of the HS256 signing secret.
//
// HS256 uses the secret directly as the HMAC key; anything shorter than the
// hash output materially weakens the signature. The service refuses to start
// with a shorter secret rather than issue weak tokens.
const MinSecretLength = 32

// Token error taxonomy.
//
// These sentinels are the contract between the TokenService and the
// authentication middleware: each maps to a distinct HTTP outcome, so they
// must stay distinguishable via [errors.Is].
var (
	// ErrWeakSecret is returned at construction time when the signing secret
	// is missing or below [MinSecretLength]. Fatal; never recoverable.
	ErrWeakSecret = errors.New("sec: signing secret missing or too short")

	// ErrTokenMalformed marks input that is not even a structurally valid
	// JWT (wrong segment count, undecodable segments).
	ErrTokenMalformed = errors.New("sec: token malformed")

	// ErrTokenExpired marks a well-formed, correctly signed token whose
	// expiry instant has passed. A routine condition: the client must
	// re-authenticate.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrSignatureInvalid marks a well-formed token whose signature does not
	// verify against the configured secret. Security-relevant; logged
	// separately from expiry for anomaly detection.
	ErrSignatureInvalid = errors.New("sec: token signature invalid")
)

// Claim names owned by the registered JWT claim set. Extra claims passed to
// [TokenService.Issue] may not shadow these.
var reservedClaims = map[string]bool{
	"sub": true,
	"iss": true,
	"iat": true,
	"exp": true,
}

// TokenService issues and verifies HS256-signed JWTs.
//
// # Concurrency
//
// The service is immutable after construction (secret, issuer, and TTL are
// fixed at startup) and therefore safe for concurrent use by any number of
// request-handling goroutines without locking.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService creates a TokenService from the configured secret and
// token lifetime.
//
// # Returns
//   - [ErrWeakSecret] if the secret is shorter than [MinSecretLength].
//   - An error if ttl is not strictly positive.
//
// Callers must treat any error as fatal: a process that cannot construct a
// TokenService must refuse to start instead of serving insecure tokens.
func NewTokenService(secret, issuer string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrWeakSecret, MinSecretLength, len(secret))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("sec: token ttl must be positive, got %s", ttl)
	}

	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// Issue creates a signed token for the given subject.
//
// The payload always carries sub, iss, iat, and exp (exp is an absolute
// instant, so validation never depends on the issuer's clock offset). Entries
// of extra are merged into the payload; reserved claim names are silently
// skipped so callers cannot forge the subject or extend the lifetime.
func (service *TokenService) Issue(subject string, extra map[string]any) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("sec: token subject must not be empty")
	}

	now := time.Now()
	claims := jwt.MapClaims{}
	for name, value := range extra {
		if reservedClaims[name] {
			continue
		}
		claims[name] = value
	}
	claims["sub"] = subject
	claims["iss"] = service.issuer
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(service.ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signed, nil
}

// Parse verifies the signature and expiry of a token string and returns its
// claims.
//
// # Returns
//   - [ErrTokenMalformed] for structurally broken input.
//   - [ErrTokenExpired] for aged-out tokens.
//   - [ErrSignatureInvalid] when the signature does not verify.
//
// The HMAC comparison inside golang-jwt uses hmac.Equal, which is constant
// time; the taxonomy above never reveals which byte of a signature differed.
func (service *TokenService) Parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
			}
			return service.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: unexpected claims shape", ErrTokenMalformed)
	}

	return claims, nil
}

// Validate reports whether the token is authentic and current.
//
// If expectedSubject is non-empty, the token's subject must match it exactly;
// a mismatch yields (false, nil) — a plain rejection, not an error, because
// the token itself is sound.
//
// Malformed, expired, and badly signed tokens yield false together with the
// corresponding sentinel error so callers can map them to distinct responses.
func (service *TokenService) Validate(tokenString, expectedSubject string) (bool, error) {
	claims, err := service.Parse(tokenString)
	if err != nil {
		return false, err
	}

	if expectedSubject != "" {
		subject, err := claims.GetSubject()
		if err != nil || subject != expectedSubject {
			return false, nil
		}
	}

	return true, nil
}

// Subject extracts the subject claim after full verification.
// It shares the malformed/expired/signature taxonomy of [TokenService.Parse].
func (service *TokenService) Subject(tokenString string) (string, error) {
	claims, err := service.Parse(tokenString)
	if err != nil {
		return "", err
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("%w: missing subject claim", ErrTokenMalformed)
	}

	return subject, nil
}

// Claim returns a named custom claim from a verified token.
//
// The result is nil when the claim is absent; callers must type-assert the
// value themselves (JSON numbers decode as float64, string lists as []any).
func (service *TokenService) Claim(tokenString, name string) (any, error) {
	claims, err := service.Parse(tokenString)
	if err != nil {
		return nil, err
	}

	return claims[name], nil
}

// classifyTokenError maps golang-jwt parse failures onto the package's
// sentinel taxonomy. Anything unrecognized is wrapped generically; the
// middleware treats those as "no authentication" rather than a hard failure.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	default:
		return fmt.Errorf("sec: token parse failed: %w", err)
	}
}
