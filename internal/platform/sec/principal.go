// Copyright (c) 2026 Gatekeep. All rights reserved.

package sec

import "strings"

// RolePrefix is the fixed prefix that turns a role name into an authority
// string. A conceptual role "admin" is always represented internally as the
// authority "ROLE_ADMIN", so role-based checks and direct-authority checks
// operate on the same underlying set.
const RolePrefix = "ROLE_"

// RoleAuthority converts a role name into its authority string.
//
// This is the single place where the prefix convention is applied; every
// Principal is built through it, so the rule cannot drift between call sites.
// Already-prefixed input is passed through unchanged.
func RoleAuthority(role string) string {
	normalized := strings.ToUpper(strings.TrimSpace(role))
	if strings.HasPrefix(normalized, RolePrefix) {
		return normalized
	}
	return RolePrefix + normalized
}

// Principal is the resolved identity attached to one request's context.
//
// It is constructed fresh per request from token claims plus a live user
// lookup, owned exclusively by that request's scope, and discarded when the
// request ends. It is never shared or mutated after construction.
type Principal struct {
	// Subject is the authenticated username.
	Subject string `json:"subject"`

	// Authorities is the set of granted authority strings ("ROLE_ADMIN", ...).
	Authorities []string `json:"authorities"`
}

// NewPrincipal builds a Principal from a subject and its role names.
//
// Role names are normalized through [RoleAuthority] here and nowhere else.
// Duplicates collapse; order of first appearance is preserved.
func NewPrincipal(subject string, roles []string) *Principal {
	seen := make(map[string]bool, len(roles))
	authorities := make([]string, 0, len(roles))

	for _, role := range roles {
		authority := RoleAuthority(role)
		if seen[authority] {
			continue
		}
		seen[authority] = true
		authorities = append(authorities, authority)
	}

	return &Principal{
		Subject:     subject,
		Authorities: authorities,
	}
}

// HasAuthority reports whether the principal holds the exact authority string.
func (p *Principal) HasAuthority(authority string) bool {
	for _, granted := range p.Authorities {
		if granted == authority {
			return true
		}
	}
	return false
}

// HasRole reports whether the principal holds the authority derived from the
// given role name ("admin" matches "ROLE_ADMIN").
func (p *Principal) HasRole(role string) bool {
	return p.HasAuthority(RoleAuthority(role))
}
