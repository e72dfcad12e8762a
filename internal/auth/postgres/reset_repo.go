// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/boavaga/boavaga/internal/auth"
)

// ResetRepository implements auth.ResetRepository using PostgreSQL. The
// at-most-one-pending-request invariant is enforced by unique indexes on
// the two principal reference columns.
type ResetRepository struct {
	db Querier
}

// NewResetRepository creates a ResetRepository.
func NewResetRepository(db Querier) *ResetRepository {
	return &ResetRepository{db: db}
}

// CreateIfAbsent inserts the request unless the principal already has one
// outstanding. The unique constraint decides the race, not a prior
// existence check.
func (r *ResetRepository) CreateIfAbsent(ctx context.Context, req *auth.PasswordResetRequest) (bool, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO password_reset_requests (code, system_admin_id, lot_admin_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, req.Code, req.SystemAdminID, req.LotAdminID, req.CreatedAt).Scan(&req.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return false, nil
		}
		return false, oops.Code("RESET_CREATE_FAILED").
			With("operation", "insert password_reset_request").
			Wrap(err)
	}
	return true, nil
}

// GetByCode retrieves a request by its code.
func (r *ResetRepository) GetByCode(ctx context.Context, code string) (*auth.PasswordResetRequest, error) {
	var req auth.PasswordResetRequest
	err := r.db.QueryRow(ctx, `
		SELECT id, code, system_admin_id, lot_admin_id, created_at
		FROM password_reset_requests
		WHERE code = $1
	`, code).Scan(&req.ID, &req.Code, &req.SystemAdminID, &req.LotAdminID, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RESET_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("RESET_GET_FAILED").Wrap(err)
	}
	return &req, nil
}

// Consume overwrites the referenced principal's password hash and deletes
// the request in one transaction. Nothing is applied if the row is already
// gone.
func (r *ResetRepository) Consume(ctx context.Context, req *auth.PasswordResetRequest, passwordHash string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return oops.Code("RESET_CONSUME_FAILED").
			With("operation", "begin transaction").
			Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	deleted, err := tx.Exec(ctx, `
		DELETE FROM password_reset_requests WHERE id = $1
	`, req.ID)
	if err != nil {
		return oops.Code("RESET_CONSUME_FAILED").
			With("operation", "delete password_reset_request").
			With("id", req.ID).
			Wrap(err)
	}
	if deleted.RowsAffected() == 0 {
		return oops.Code("RESET_NOT_FOUND").
			With("id", req.ID).
			Wrap(auth.ErrNotFound)
	}

	var update string
	var adminID int64
	if req.SystemAdminID != nil {
		update = `UPDATE system_admins SET password_hash = $2 WHERE id = $1`
		adminID = *req.SystemAdminID
	} else if req.LotAdminID != nil {
		update = `UPDATE lot_admins SET password_hash = $2 WHERE id = $1`
		adminID = *req.LotAdminID
	} else {
		return oops.Code("RESET_CONSUME_FAILED").
			With("id", req.ID).
			Errorf("request references no principal")
	}

	updated, err := tx.Exec(ctx, update, adminID, passwordHash)
	if err != nil {
		return oops.Code("RESET_CONSUME_FAILED").
			With("operation", "update password hash").
			With("admin_id", adminID).
			Wrap(err)
	}
	if updated.RowsAffected() == 0 {
		return oops.Code("RESET_CONSUME_FAILED").
			With("admin_id", adminID).
			Errorf("referenced principal no longer exists")
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("RESET_CONSUME_FAILED").
			With("operation", "commit").
			Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ auth.ResetRepository = (*ResetRepository)(nil)
