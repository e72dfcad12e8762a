// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/boavaga/boavaga/internal/mailer"
)

// ResetSubject is the subject line of password recovery mail.
const ResetSubject = "BoaVaga password recovery"

// ResetAuthority manages one-time password-reset codes: it issues them by
// mail and consumes them to rotate a principal's password.
type ResetAuthority struct {
	admins AdminRepository
	resets ResetRepository
	mail   mailer.Mailer
	hasher PasswordHasher
	logger *slog.Logger
}

// NewResetAuthority creates a ResetAuthority.
func NewResetAuthority(admins AdminRepository, resets ResetRepository, mail mailer.Mailer, hasher PasswordHasher) (*ResetAuthority, error) {
	return NewResetAuthorityWithLogger(admins, resets, mail, hasher, slog.Default())
}

// NewResetAuthorityWithLogger creates a ResetAuthority with an explicit logger.
func NewResetAuthorityWithLogger(admins AdminRepository, resets ResetRepository, mail mailer.Mailer, hasher PasswordHasher, logger *slog.Logger) (*ResetAuthority, error) {
	if admins == nil {
		return nil, oops.Errorf("admin repository is required")
	}
	if resets == nil {
		return nil, oops.Errorf("reset repository is required")
	}
	if mail == nil {
		return nil, oops.Errorf("mailer is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &ResetAuthority{admins: admins, resets: resets, mail: mail, hasher: hasher, logger: logger}, nil
}

// RequestReset generates a reset code for the principal registered under
// (email, role) and mails it. Nothing is persisted unless the mail is
// confirmed sent. If the principal already has a pending request, no second
// row is created but the mail is still sent with the freshly generated
// code; the stored code stays authoritative for consumption even when the
// emailed code diverges from it.
func (a *ResetAuthority) RequestReset(ctx context.Context, email string, role Role) error {
	if !role.Valid() {
		return oops.Code(CodeResetFailed).With("role", int(role)).Errorf("unknown role")
	}

	creds, err := a.admins.GetCredentials(ctx, email, role)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeEmailNotFound).Errorf("email not found")
		}
		return oops.Code(CodeResetFailed).
			With("operation", "get credentials").
			Wrap(err)
	}

	code, err := GenerateResetCode()
	if err != nil {
		return oops.Code(CodeResetFailed).Wrap(err)
	}

	req, err := NewPasswordResetRequest(role, creds.ID, code)
	if err != nil {
		return oops.Code(CodeResetFailed).Wrap(err)
	}

	sent, err := a.mail.SendSimple(ctx, email, ResetSubject, code, "")
	if err != nil || !sent {
		if err != nil {
			a.logger.Error("reset mail delivery failed",
				"role", role.String(),
				"admin_id", creds.ID,
				"error", err,
			)
		}
		return oops.Code(CodeResetSendFailed).Errorf("could not deliver reset code")
	}

	created, err := a.resets.CreateIfAbsent(ctx, req)
	if err != nil {
		return oops.Code(CodeResetFailed).
			With("operation", "persist request").
			Wrap(err)
	}
	if !created {
		a.logger.Info("reset already pending, code re-sent",
			"role", role.String(),
			"admin_id", creds.ID,
		)
	}
	return nil
}

// ConsumeReset rotates the referenced principal's password using a valid
// code, then destroys the request. The overwrite and the delete commit as
// one unit; a second consumption of the same code fails with
// RESET_CODE_INVALID.
func (a *ResetAuthority) ConsumeReset(ctx context.Context, newPassword, code string) error {
	req, err := a.resets.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeResetInvalid).Errorf("invalid code")
		}
		return oops.Code(CodeResetFailed).
			With("operation", "get by code").
			Wrap(err)
	}

	hash, err := a.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code(CodeResetFailed).
			With("operation", "hash password").
			Wrap(err)
	}

	if err := a.resets.Consume(ctx, req, hash); err != nil {
		if errors.Is(err, ErrNotFound) {
			// The row was consumed concurrently; the code is spent.
			return oops.Code(CodeResetInvalid).Errorf("invalid code")
		}
		return oops.Code(CodeResetFailed).
			With("operation", "consume request").
			Wrap(err)
	}

	a.logger.Info("password rotated via reset code",
		"role", req.PrincipalRole().String(),
		"admin_id", req.PrincipalID(),
	)
	return nil
}
