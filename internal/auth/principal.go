// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package auth

import "context"

// SystemAdmin is a backend-wide administrator account.
type SystemAdmin struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
}

// LotAdmin is a parking-lot administrator account. LotID is nil until the
// admin is attached to a lot by registration approval or by a master admin
// inviting them. Master grants the right to create peer admins for the
// same lot.
type LotAdmin struct {
	ID           int64
	Email        string
	PasswordHash string
	Master       bool
	LotID        *int64
}

// Credentials is the minimal projection the login and reset flows need:
// the principal's ID and stored password hash.
type Credentials struct {
	ID           int64
	PasswordHash string
}

// AdminRepository looks up principals by (email, role) and by ID, and
// overwrites password hashes during reset consumption. It is otherwise
// read-only from this package's perspective.
type AdminRepository interface {
	// GetCredentials returns the ID and password hash for the principal
	// registered under the given email and role. Returns ErrNotFound if no
	// such principal exists.
	GetCredentials(ctx context.Context, email string, role Role) (*Credentials, error)

	// GetSystemAdmin retrieves a system admin by ID.
	GetSystemAdmin(ctx context.Context, id int64) (*SystemAdmin, error)

	// GetLotAdmin retrieves a lot admin by ID.
	GetLotAdmin(ctx context.Context, id int64) (*LotAdmin, error)

	// UpdatePassword overwrites the stored password hash for the principal
	// identified by (role, id).
	UpdatePassword(ctx context.Context, role Role, id int64, passwordHash string) error
}
