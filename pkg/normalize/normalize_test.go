// Copyright (c) 2026 Gatekeep. All rights reserved.

package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vuminh-lab/gatekeep/pkg/normalize"
)

/*
TestUsername verifies trimming, case folding, and NFKC compatibility
collapsing for usernames.
*/
func TestUsername(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already_canonical", "admin", "admin"},
		{"uppercase", "ADMIN", "admin"},
		{"mixed_case", "AdMiN", "admin"},
		{"surrounding_whitespace", "  admin  ", "admin"},
		{"fullwidth_latin", "ａｄｍｉｎ", "admin"},
		{"german_sharp_s", "straße", "strasse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.Username(tt.input))
		})
	}
}

/*
TestEmail verifies emails go through the same canonicalization pipeline.
*/
func TestEmail(t *testing.T) {
	assert.Equal(t, "admin@example.com", normalize.Email(" Admin@Example.COM "))
	assert.Equal(t, "admin@example.com", normalize.Email("ａｄｍｉｎ@example.com"))
}
