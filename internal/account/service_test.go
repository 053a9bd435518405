// Copyright (c) 2026 Gatekeep. All rights reserved.

package account_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuminh-lab/gatekeep/internal/account"
	"github.com/vuminh-lab/gatekeep/internal/auth"
	"github.com/vuminh-lab/gatekeep/internal/platform/apperr"
)

// fakeUserRepository covers the by-ID operations the account service uses.
type fakeUserRepository struct {
	users map[string]*auth.User
}

func (f *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, _ string) (*auth.User, error) {
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) SetEnabled(_ context.Context, id string, enabled bool) error {
	user, ok := f.users[id]
	if !ok {
		return apperr.NotFound("User")
	}
	user.Enabled = enabled
	return nil
}

func (f *fakeUserRepository) SoftDelete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(f.users, id)
	return nil
}

// fakeAccountRepository scripts the set-oriented read model.
type fakeAccountRepository struct {
	listed []auth.User
	stats  account.Stats
}

func (f *fakeAccountRepository) List(_ context.Context, limit, offset int) ([]auth.User, int64, error) {
	return f.listed, int64(len(f.listed)), nil
}

func (f *fakeAccountRepository) Search(_ context.Context, term string, _, _ int) ([]auth.User, int64, error) {
	var matched []auth.User
	for _, user := range f.listed {
		if user.Username == term {
			matched = append(matched, user)
		}
	}
	return matched, int64(len(matched)), nil
}

func (f *fakeAccountRepository) Stats(_ context.Context) (account.Stats, error) {
	return f.stats, nil
}

// fakeInvalidator records evicted subjects.
type fakeInvalidator struct {
	evicted []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, subject string) {
	f.evicted = append(f.evicted, subject)
}

func newFixture() (*account.Service, *fakeUserRepository, *fakeInvalidator) {
	users := &fakeUserRepository{users: map[string]*auth.User{
		"id-1": {ID: "id-1", Username: "alice", Enabled: true, Roles: []string{"admin"}},
		"id-2": {ID: "id-2", Username: "bob", Enabled: true, Roles: []string{"user"}},
	}}
	accounts := &fakeAccountRepository{
		listed: []auth.User{*users.users["id-1"], *users.users["id-2"]},
		stats:  account.Stats{Total: 2, Enabled: 2, Admins: 1},
	}
	cache := &fakeInvalidator{}
	return account.NewService(accounts, users, cache, slog.Default()), users, cache
}

/*
TestService_ToggleEnabled verifies the flag flips, the response reflects the
new state, and the subject cache entry is evicted.
*/
func TestService_ToggleEnabled(t *testing.T) {
	service, users, cache := newFixture()

	user, err := service.ToggleEnabled(context.Background(), "id-1")
	require.NoError(t, err)
	assert.False(t, user.Enabled)
	assert.False(t, users.users["id-1"].Enabled)
	assert.Equal(t, []string{"alice"}, cache.evicted)

	// Toggling again re-enables.
	user, err = service.ToggleEnabled(context.Background(), "id-1")
	require.NoError(t, err)
	assert.True(t, user.Enabled)
}

/*
TestService_ToggleEnabled_NotFound verifies unknown IDs surface 404.
*/
func TestService_ToggleEnabled_NotFound(t *testing.T) {
	service, _, cache := newFixture()

	_, err := service.ToggleEnabled(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
	assert.Empty(t, cache.evicted)
}

/*
TestService_Delete verifies soft deletion removes the account and evicts the
cached subject.
*/
func TestService_Delete(t *testing.T) {
	service, users, cache := newFixture()

	require.NoError(t, service.Delete(context.Background(), "id-2"))
	_, ok := users.users["id-2"]
	assert.False(t, ok)
	assert.Equal(t, []string{"bob"}, cache.evicted)
}

/*
TestService_Search verifies empty terms are rejected before touching storage.
*/
func TestService_Search(t *testing.T) {
	service, _, _ := newFixture()

	_, _, err := service.Search(context.Background(), "   ", 20, 0)
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)

	users, total, err := service.Search(context.Background(), "alice", 20, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

/*
TestService_Stats passes the aggregate counts through untouched.
*/
func TestService_Stats(t *testing.T) {
	service, _, _ := newFixture()

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.Admins)
}
