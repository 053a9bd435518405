// Copyright (c) 2026 Gatekeep. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuminh-lab/gatekeep/internal/platform/sec"
)

/*
TestPasswordHashing covers the hash/verify round trip and the salted,
non-deterministic nature of bcrypt output.
*/
func TestPasswordHashing(t *testing.T) {
	hash, err := sec.HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)

	assert.True(t, sec.CheckPasswordHash("admin123", hash))
	assert.False(t, sec.CheckPasswordHash("admin124", hash))
	assert.False(t, sec.CheckPasswordHash("", hash))

	// Salted: hashing the same input twice yields different hashes.
	second, err := sec.HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, second)
}

/*
TestCheckPasswordHash_InvalidHash verifies garbage stored hashes never verify.
*/
func TestCheckPasswordHash_InvalidHash(t *testing.T) {
	assert.False(t, sec.CheckPasswordHash("admin123", "not-a-bcrypt-hash"))
	assert.False(t, sec.CheckPasswordHash("admin123", ""))
}
