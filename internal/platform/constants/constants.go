// Copyright (c) 2026 Gatekeep. All rights reserved.

/*
Package constants provides centralized, immutable values for the platform.

It defines default timeouts, rate limits, and cross-cutting keys that are
shared between layers of the system.

Categories:

  - Server timing: read/write/idle timeouts for the HTTP server.
  - Rate limiting: burst capacities and IP tracking TTLs.
  - Security: bearer scheme, authority names, cache taxonomy.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "gatekeep-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// BearerScheme is the exact Authorization header prefix, including the
	// single trailing space required by the bearer convention.
	BearerScheme = "Bearer "

	// RoleAdmin and RoleUser are the role names known to the seeded schema.
	RoleAdmin = "admin"
	RoleUser  = "user"

	// SubjectCacheTTL bounds how stale a cached subject resolution may be.
	// A disabled account is locked out at most this long after the flag flips.
	SubjectCacheTTL = 30 * time.Second
)

// # Header Names

const (
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldError = "error"
	FieldCode  = "code"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixSubject = "auth:subject:"
)
