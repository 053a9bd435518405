// Copyright (c) 2026 Gatekeep. All rights reserved.

package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuminh-lab/gatekeep/internal/platform/ctxutil"
	"github.com/vuminh-lab/gatekeep/internal/platform/middleware"
	"github.com/vuminh-lab/gatekeep/internal/platform/sec"
)

// fakeVerifier scripts the token service's behavior per raw token string.
type fakeVerifier struct {
	subjects map[string]string // raw token → subject
	errs     map[string]error  // raw token → taxonomy error
	valid    map[string]bool   // raw token → Validate outcome
}

func (f *fakeVerifier) Subject(token string) (string, error) {
	if err, ok := f.errs[token]; ok {
		return "", err
	}
	return f.subjects[token], nil
}

func (f *fakeVerifier) Validate(token, expectedSubject string) (bool, error) {
	if err, ok := f.errs[token]; ok {
		return false, err
	}
	if valid, ok := f.valid[token]; ok {
		return valid, nil
	}
	return f.subjects[token] == expectedSubject, nil
}

// fakeResolver scripts live account state per subject.
type fakeResolver struct {
	records map[string]middleware.SubjectRecord
}

func (f *fakeResolver) ResolveSubject(_ context.Context, subject string) (middleware.SubjectRecord, error) {
	record, ok := f.records[subject]
	if !ok {
		return middleware.SubjectRecord{}, errors.New("unknown subject")
	}
	return record, nil
}

// capture is a terminal handler that records the principal it saw.
type capture struct {
	called    bool
	principal *sec.Principal
}

func (c *capture) handler() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		c.called = true
		c.principal = ctxutil.GetPrincipal(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

func defaultFakes() (*fakeVerifier, *fakeResolver) {
	verifier := &fakeVerifier{
		subjects: map[string]string{
			"good-token":     "alice",
			"disabled-token": "mallory",
			"unknown-token":  "ghost",
		},
		errs: map[string]error{
			"expired-token":   sec.ErrTokenExpired,
			"tampered-token":  sec.ErrSignatureInvalid,
			"malformed-token": sec.ErrTokenMalformed,
			"weird-token":     errors.New("disk on fire"),
		},
	}
	resolver := &fakeResolver{
		records: map[string]middleware.SubjectRecord{
			"alice":   {Roles: []string{"admin", "user"}, Enabled: true},
			"mallory": {Roles: []string{"user"}, Enabled: false},
		},
	}
	return verifier, resolver
}

func runGate(t *testing.T, header string) (*httptest.ResponseRecorder, *capture) {
	t.Helper()

	verifier, resolver := defaultFakes()
	next := &capture{}

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		request.Header.Set("Authorization", header)
	}

	recorder := httptest.NewRecorder()
	middleware.Authenticate(verifier, resolver)(next.handler()).ServeHTTP(recorder, request)

	return recorder, next
}

func decodeErrorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body.Code
}

/*
TestAuthenticate_AnonymousPassThrough verifies requests without usable bearer
credentials continue unauthenticated rather than being rejected.
*/
func TestAuthenticate_AnonymousPassThrough(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no_header", ""},
		{"basic_scheme", "Basic dXNlcjpwYXNz"},
		{"lowercase_scheme", "bearer good-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, next := runGate(t, tt.header)

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.True(t, next.called)
			assert.Nil(t, next.principal)
		})
	}
}

/*
TestAuthenticate_BareBearerIsMalformed verifies "Bearer" with no token is a
400 malformed credential, not a missing one.
*/
func TestAuthenticate_BareBearerIsMalformed(t *testing.T) {
	for _, header := range []string{"Bearer", "Bearer "} {
		recorder, next := runGate(t, header)

		assert.Equal(t, http.StatusBadRequest, recorder.Code, "header=%q", header)
		assert.Equal(t, "TOKEN_MALFORMED", decodeErrorCode(t, recorder))
		assert.False(t, next.called)
	}
}

/*
TestAuthenticate_TokenFailureMapping checks the exact HTTP mapping of the
token error taxonomy.
*/
func TestAuthenticate_TokenFailureMapping(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantCode   string
	}{
		{"expired", "expired-token", http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"tampered", "tampered-token", http.StatusUnauthorized, "TOKEN_SIGNATURE_INVALID"},
		{"malformed", "malformed-token", http.StatusBadRequest, "TOKEN_MALFORMED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, next := runGate(t, "Bearer "+tt.token)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantCode, decodeErrorCode(t, recorder))
			assert.False(t, next.called)
		})
	}
}

/*
TestAuthenticate_FailsOpenToAnonymous verifies that unknown subjects,
disabled accounts, and unexpected errors continue unauthenticated instead of
short-circuiting.
*/
func TestAuthenticate_FailsOpenToAnonymous(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"unknown_subject", "unknown-token"},
		{"disabled_account", "disabled-token"},
		{"unexpected_error", "weird-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, next := runGate(t, "Bearer "+tt.token)

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.True(t, next.called)
			assert.Nil(t, next.principal)
		})
	}
}

/*
TestAuthenticate_Success verifies a valid token yields a principal carrying
the live roles as prefixed authorities.
*/
func TestAuthenticate_Success(t *testing.T) {
	recorder, next := runGate(t, "Bearer good-token")

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, next.called)
	require.NotNil(t, next.principal)
	assert.Equal(t, "alice", next.principal.Subject)
	assert.Equal(t, []string{"ROLE_ADMIN", "ROLE_USER"}, next.principal.Authorities)
}

/*
TestAuthenticate_Idempotence verifies the gate never overrides a principal
attached by an earlier chain stage.
*/
func TestAuthenticate_Idempotence(t *testing.T) {
	verifier, resolver := defaultFakes()
	next := &capture{}

	existing := sec.NewPrincipal("someone-else", []string{"user"})
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer good-token")
	request = request.WithContext(ctxutil.WithPrincipal(request.Context(), existing))

	recorder := httptest.NewRecorder()
	middleware.Authenticate(verifier, resolver)(next.handler()).ServeHTTP(recorder, request)

	require.True(t, next.called)
	require.NotNil(t, next.principal)
	assert.Equal(t, "someone-else", next.principal.Subject)
}

/*
TestRequireAuth verifies anonymous requests are rejected with 401 and
authenticated ones pass.
*/
func TestRequireAuth(t *testing.T) {
	next := &capture{}

	// Anonymous → 401.
	recorder := httptest.NewRecorder()
	middleware.RequireAuth(next.handler()).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.False(t, next.called)

	// Authenticated → pass.
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithPrincipal(request.Context(), sec.NewPrincipal("alice", []string{"user"})))
	recorder = httptest.NewRecorder()
	middleware.RequireAuth(next.handler()).ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, next.called)
}

/*
TestRequireRole verifies the 401/403/200 split: anonymous, authenticated
without the role, authenticated with it.
*/
func TestRequireRole(t *testing.T) {
	gate := middleware.RequireRole("admin")

	tests := []struct {
		name       string
		roles      []string
		anonymous  bool
		wantStatus int
	}{
		{"anonymous", nil, true, http.StatusUnauthorized},
		{"wrong_role", []string{"user"}, false, http.StatusForbidden},
		{"has_role", []string{"admin"}, false, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &capture{}
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if !tt.anonymous {
				principal := sec.NewPrincipal("alice", tt.roles)
				request = request.WithContext(ctxutil.WithPrincipal(request.Context(), principal))
			}

			recorder := httptest.NewRecorder()
			gate(next.handler()).ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, next.called)
		})
	}
}
