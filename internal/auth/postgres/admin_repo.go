// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

// Package postgres provides PostgreSQL implementations of the auth
// repositories.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/boavaga/boavaga/internal/auth"
)

// Querier is the subset of pgxpool.Pool the repositories use. It is also
// satisfied by pgxmock, which the unit tests run against.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AdminRepository implements auth.AdminRepository using PostgreSQL. The two
// principal kinds live in separate tables; every lookup branches on the
// role tag explicitly.
type AdminRepository struct {
	db Querier
}

// NewAdminRepository creates an AdminRepository.
func NewAdminRepository(db Querier) *AdminRepository {
	return &AdminRepository{db: db}
}

// GetCredentials returns the ID and password hash registered under
// (email, role).
func (r *AdminRepository) GetCredentials(ctx context.Context, email string, role auth.Role) (*auth.Credentials, error) {
	var query string
	switch role {
	case auth.RoleSystem:
		query = `SELECT id, password_hash FROM system_admins WHERE email = $1`
	case auth.RoleLot:
		query = `SELECT id, password_hash FROM lot_admins WHERE email = $1`
	default:
		return nil, oops.Code("ADMIN_INVALID_ROLE").With("role", int(role)).Errorf("unknown role")
	}

	var creds auth.Credentials
	err := r.db.QueryRow(ctx, query, email).Scan(&creds.ID, &creds.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ADMIN_NOT_FOUND").
			With("role", role.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ADMIN_GET_CREDENTIALS_FAILED").
			With("role", role.String()).
			Wrap(err)
	}
	return &creds, nil
}

// GetSystemAdmin retrieves a system admin by ID.
func (r *AdminRepository) GetSystemAdmin(ctx context.Context, id int64) (*auth.SystemAdmin, error) {
	var admin auth.SystemAdmin
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash
		FROM system_admins
		WHERE id = $1
	`, id).Scan(&admin.ID, &admin.Name, &admin.Email, &admin.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ADMIN_NOT_FOUND").With("id", id).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ADMIN_GET_FAILED").With("id", id).Wrap(err)
	}
	return &admin, nil
}

// GetLotAdmin retrieves a lot admin by ID.
func (r *AdminRepository) GetLotAdmin(ctx context.Context, id int64) (*auth.LotAdmin, error) {
	var admin auth.LotAdmin
	err := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, master, lot_id
		FROM lot_admins
		WHERE id = $1
	`, id).Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.Master, &admin.LotID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ADMIN_NOT_FOUND").With("id", id).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ADMIN_GET_FAILED").With("id", id).Wrap(err)
	}
	return &admin, nil
}

// UpdatePassword overwrites the stored password hash for (role, id).
func (r *AdminRepository) UpdatePassword(ctx context.Context, role auth.Role, id int64, passwordHash string) error {
	var query string
	switch role {
	case auth.RoleSystem:
		query = `UPDATE system_admins SET password_hash = $2 WHERE id = $1`
	case auth.RoleLot:
		query = `UPDATE lot_admins SET password_hash = $2 WHERE id = $1`
	default:
		return oops.Code("ADMIN_INVALID_ROLE").With("role", int(role)).Errorf("unknown role")
	}

	tag, err := r.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return oops.Code("ADMIN_UPDATE_PASSWORD_FAILED").
			With("role", role.String()).
			With("id", id).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("ADMIN_NOT_FOUND").
			With("role", role.String()).
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// CreateSystemAdmin inserts a new system admin and returns its ID. Used by
// the create-admin CLI command.
func (r *AdminRepository) CreateSystemAdmin(ctx context.Context, name, email, passwordHash string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO system_admins (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`, name, email, passwordHash).Scan(&id)
	if err != nil {
		return 0, oops.Code("ADMIN_CREATE_FAILED").With("operation", "insert system_admin").Wrap(err)
	}
	return id, nil
}

// Compile-time interface check.
var _ auth.AdminRepository = (*AdminRepository)(nil)
