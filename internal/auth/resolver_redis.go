// Copyright (c) 2026 Gatekeep. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vuminh-lab/gatekeep/internal/platform/constants"
	"github.com/vuminh-lab/gatekeep/internal/platform/ctxutil"
	"github.com/vuminh-lab/gatekeep/internal/platform/middleware"
)

// CachedResolver decorates a [middleware.SubjectResolver] with a short-TTL
// Redis cache. The gate resolves every authenticated request, so without the
// cache each API call costs one database round trip.
//
// # Staleness
//
// Only successful resolutions are cached, for [constants.SubjectCacheTTL].
// Disabling an account therefore takes effect within that window; unknown
// subjects are never cached, so a freshly registered account authenticates
// immediately.
//
// Cache writes are best effort. A Redis outage degrades to direct database
// lookups and never blocks authentication.
type CachedResolver struct {
	inner  middleware.SubjectResolver
	client *redis.Client
	ttl    time.Duration
}

// NewCachedResolver wraps inner with the Redis subject cache.
func NewCachedResolver(inner middleware.SubjectResolver, client *redis.Client) *CachedResolver {
	return &CachedResolver{
		inner:  inner,
		client: client,
		ttl:    constants.SubjectCacheTTL,
	}
}

// cachedSubjectRecord is the Redis wire shape of a subject resolution.
type cachedSubjectRecord struct {
	Roles   []string `json:"roles"`
	Enabled bool     `json:"enabled"`
}

// ResolveSubject implements [middleware.SubjectResolver] with read-through
// caching.
func (resolver *CachedResolver) ResolveSubject(ctx context.Context, subject string) (middleware.SubjectRecord, error) {
	key := constants.RedisPrefixSubject + subject

	// ── 1. Cache lookup ───────────────────────────────────────────────────
	payload, err := resolver.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached cachedSubjectRecord
		if unmarshalErr := json.Unmarshal(payload, &cached); unmarshalErr == nil {
			return middleware.SubjectRecord{Roles: cached.Roles, Enabled: cached.Enabled}, nil
		}
		// Corrupt entry: drop it and fall through to the store.
		resolver.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "subject_cache_read_failed",
			slog.String("subject", subject),
			slog.Any("error", err),
		)
	}

	// ── 2. Authoritative lookup ───────────────────────────────────────────
	record, err := resolver.inner.ResolveSubject(ctx, subject)
	if err != nil {
		return middleware.SubjectRecord{}, err
	}

	// ── 3. Cache fill (best effort) ───────────────────────────────────────
	payload, err = json.Marshal(cachedSubjectRecord{Roles: record.Roles, Enabled: record.Enabled})
	if err == nil {
		if setErr := resolver.client.Set(ctx, key, payload, resolver.ttl).Err(); setErr != nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "subject_cache_write_failed",
				slog.String("subject", subject),
				slog.Any("error", setErr),
			)
		}
	}

	return record, nil
}

// Invalidate removes a subject's cached resolution, used after admin actions
// that change an account's roles or enable flag so the gate observes the new
// state without waiting out the TTL.
func (resolver *CachedResolver) Invalidate(ctx context.Context, subject string) {
	if err := resolver.client.Del(ctx, constants.RedisPrefixSubject+subject).Err(); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "subject_cache_invalidate_failed",
			slog.String("subject", subject),
			slog.Any("error", err),
		)
	}
}
