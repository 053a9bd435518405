// Copyright (c) 2026 Gatekeep. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vuminh-lab/gatekeep/internal/platform/sec"
)

/*
TestRoleAuthority verifies the role-to-authority conversion rules.
*/
func TestRoleAuthority(t *testing.T) {
	tests := []struct {
		name string
		role string
		want string
	}{
		{"plain_role", "admin", "ROLE_ADMIN"},
		{"uppercase_input", "ADMIN", "ROLE_ADMIN"},
		{"mixed_case", "AdMiN", "ROLE_ADMIN"},
		{"whitespace", "  user ", "ROLE_USER"},
		{"already_prefixed", "ROLE_ADMIN", "ROLE_ADMIN"},
		{"prefixed_lowercase", "role_admin", "ROLE_ADMIN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sec.RoleAuthority(tt.role))
		})
	}
}

/*
TestNewPrincipal verifies authority construction: prefixing, deduplication,
and preservation of first-appearance order.
*/
func TestNewPrincipal(t *testing.T) {
	principal := sec.NewPrincipal("alice", []string{"admin", "user", "ADMIN", "ROLE_USER"})

	assert.Equal(t, "alice", principal.Subject)
	assert.Equal(t, []string{"ROLE_ADMIN", "ROLE_USER"}, principal.Authorities)
}

/*
TestNewPrincipal_NoRoles verifies an empty role set yields an authenticated
principal with zero authorities.
*/
func TestNewPrincipal_NoRoles(t *testing.T) {
	principal := sec.NewPrincipal("alice", nil)

	assert.Equal(t, "alice", principal.Subject)
	assert.Empty(t, principal.Authorities)
	assert.False(t, principal.HasRole("user"))
}

/*
TestPrincipal_Checks verifies HasAuthority exact matching and HasRole's
role-name convenience form.
*/
func TestPrincipal_Checks(t *testing.T) {
	principal := sec.NewPrincipal("alice", []string{"admin"})

	assert.True(t, principal.HasAuthority("ROLE_ADMIN"))
	assert.False(t, principal.HasAuthority("admin")) // exact strings only
	assert.True(t, principal.HasRole("admin"))
	assert.True(t, principal.HasRole("ADMIN"))
	assert.False(t, principal.HasRole("user"))
}
