// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/samber/oops"
)

// ResetCodeBytes is the entropy of a reset code; 4 bytes = 8 hex chars.
// Collision risk at this length is accepted: codes are short-lived and the
// code column's uniqueness constraint rejects the unlucky duplicate.
const ResetCodeBytes = 4

// PasswordResetRequest is a one-time code bound to exactly one principal.
// At most one request may be outstanding per principal; the datastore
// enforces this with a uniqueness constraint on each principal reference.
type PasswordResetRequest struct {
	ID            int64
	Code          string
	SystemAdminID *int64
	LotAdminID    *int64
	CreatedAt     time.Time
}

// NewPasswordResetRequest creates a validated request bound to the
// principal identified by (role, adminID).
func NewPasswordResetRequest(role Role, adminID int64, code string) (*PasswordResetRequest, error) {
	if code == "" {
		return nil, oops.Code("RESET_INVALID_CODE").Errorf("code cannot be empty")
	}
	req := &PasswordResetRequest{Code: code, CreatedAt: time.Now()}
	switch role {
	case RoleSystem:
		req.SystemAdminID = &adminID
	case RoleLot:
		req.LotAdminID = &adminID
	default:
		return nil, oops.Code("RESET_INVALID_ROLE").With("role", int(role)).Errorf("unknown role")
	}
	return req, nil
}

// PrincipalRole returns the role implied by whichever principal reference
// is set.
func (r *PasswordResetRequest) PrincipalRole() Role {
	if r.SystemAdminID != nil {
		return RoleSystem
	}
	return RoleLot
}

// PrincipalID returns the ID of the referenced principal.
func (r *PasswordResetRequest) PrincipalID() int64 {
	if r.SystemAdminID != nil {
		return *r.SystemAdminID
	}
	if r.LotAdminID != nil {
		return *r.LotAdminID
	}
	return 0
}

// GenerateResetCode draws a short random hex code.
func GenerateResetCode() (string, error) {
	raw := make([]byte, ResetCodeBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", oops.Code("RESET_CODE_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			Wrap(err)
	}
	return hex.EncodeToString(raw), nil
}

// ResetRepository manages password-reset persistence.
type ResetRepository interface {
	// CreateIfAbsent inserts the request unless the referenced principal
	// already has one outstanding. Returns created=false (and no error)
	// when a pending request exists.
	CreateIfAbsent(ctx context.Context, req *PasswordResetRequest) (created bool, err error)

	// GetByCode retrieves a request by its code. Returns ErrNotFound if no
	// request carries the code.
	GetByCode(ctx context.Context, code string) (*PasswordResetRequest, error)

	// Consume atomically overwrites the referenced principal's password
	// hash and deletes the request. Returns ErrNotFound if the request row
	// vanished between lookup and consumption; nothing is applied in that
	// case.
	Consume(ctx context.Context, req *PasswordResetRequest, passwordHash string) error
}
