// Copyright (c) 2026 Gatekeep. All rights reserved.

// Package normalize canonicalizes user-supplied identifiers.
//
// # Usage
//
// Usernames and email addresses are normalized once at the registration and
// login boundaries, so that "Admin", "admin", and a fullwidth "ａｄｍｉｎ"
// all address the same stored account and uniqueness checks cannot be
// bypassed with confusable spellings.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Username canonicalizes a username: trims surrounding whitespace, applies
// NFKC (collapsing compatibility variants like fullwidth letters), and
// case-folds.
//
// A cases.Caser carries internal transform state, so a fresh one is created
// per call rather than shared between goroutines.
func Username(s string) string {
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
}

// Email canonicalizes an email address with the same pipeline as [Username].
//
// Case-folding the local part is technically stricter than RFC 5321 allows,
// but matches what every large mail provider does in practice and keeps the
// uniqueness constraint meaningful.
func Email(s string) string {
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
}
