// Copyright (c) 2026 Gatekeep. All rights reserved.

// Package auth implements the identity domain of Gatekeep: user accounts,
// roles, credential verification, and token issuance at login.
//
// # Architecture
//
// Entities in this file have no dependencies on outer layers. Storage
// contracts live in store.go, the PostgreSQL implementation in
// store_postgres.go, and the use cases in service.go.
package auth

import "time"

// User represents a registered account.
//
// # Rules
//   - Username and Email are unique and stored in normalized form
//     (see pkg/normalize).
//   - PasswordHash is produced exclusively by the service layer via bcrypt.
//   - Enabled gates authentication: disabled accounts never authenticate,
//     regardless of how fresh their token is.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	Enabled      bool      `json:"enabled"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role is a named grant that maps to an authority string at authentication
// time ("admin" → "ROLE_ADMIN"). The conversion happens only inside
// sec.NewPrincipal; everywhere else roles are plain names.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
