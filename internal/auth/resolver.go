// Copyright (c) 2026 Gatekeep. All rights reserved.

package auth

import (
	"context"

	"github.com/vuminh-lab/gatekeep/internal/platform/middleware"
)

// StoreResolver resolves token subjects against the user store, giving the
// authentication gate the live enable flag and role set. Token claims alone
// are never trusted for authorization: a disabled account loses access even
// while its token is still fresh.
type StoreResolver struct {
	users UserRepository
}

// NewStoreResolver constructs a [StoreResolver].
func NewStoreResolver(users UserRepository) *StoreResolver {
	return &StoreResolver{users: users}
}

// ResolveSubject implements [middleware.SubjectResolver].
//
// Subjects come out of verified tokens, which are issued with the stored
// (already normalized) username, so no re-normalization happens here.
func (resolver *StoreResolver) ResolveSubject(ctx context.Context, subject string) (middleware.SubjectRecord, error) {
	user, err := resolver.users.FindByUsername(ctx, subject)
	if err != nil {
		return middleware.SubjectRecord{}, err
	}

	return middleware.SubjectRecord{
		Roles:   user.Roles,
		Enabled: user.Enabled,
	}, nil
}
