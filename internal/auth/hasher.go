// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// hashWidth is the length of a bcrypt hash string. The deterministic dev
// hasher produces digests of the same width so fixtures are
// column-compatible with production hashes.
const hashWidth = 60

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification. The hashing
// strategy is fixed at construction time: BcryptHasher in production,
// DevHasher for reproducible fixtures.
type PasswordHasher interface {
	// Hash produces a one-way hash of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash. Returns false on
	// mismatch or malformed input; it never fails on garbage hashes.
	Verify(password, hash string) bool
}

// BcryptHasher implements PasswordHasher using salted bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher with the given cost factor.
// Costs outside bcrypt's supported range fall back to the library default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash produces a salted bcrypt hash of the password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}
	return string(hash), nil
}

// Verify checks the password against a stored bcrypt hash.
func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// DevHasher is a deterministic PasswordHasher for tests and local
// development. It performs no salting: distinct inputs map to distinct
// digests, truncated or zero-padded to the stored hash width.
type DevHasher struct{}

// NewDevHasher creates a DevHasher.
func NewDevHasher() *DevHasher {
	return &DevHasher{}
}

// Hash produces the deterministic dev digest of the password.
func (h *DevHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	return devDigest(password), nil
}

// Verify checks the password against a stored dev digest.
func (h *DevHasher) Verify(password, hash string) bool {
	if password == "" || len(hash) != hashWidth {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(devDigest(password)), []byte(hash)) == 1
}

func devDigest(password string) string {
	if len(password) > hashWidth {
		return password[:hashWidth]
	}
	return password + strings.Repeat("0", hashWidth-len(password))
}

// Compile-time interface checks.
var (
	_ PasswordHasher = (*BcryptHasher)(nil)
	_ PasswordHasher = (*DevHasher)(nil)
)
