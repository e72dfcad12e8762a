// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Error codes surfaced by the authority services. Handlers map these to
// transport-level failures; the underlying faults stay wrapped.
const (
	CodeEmailNotFound   = "AUTH_EMAIL_NOT_FOUND"
	CodeWrongPassword   = "AUTH_WRONG_PASSWORD"
	CodeForbidden       = "AUTH_FORBIDDEN"
	CodeLoginFailed     = "AUTH_LOGIN_FAILED"
	CodeResetSendFailed = "RESET_EMAIL_SEND_FAILED"
	CodeResetInvalid    = "RESET_CODE_INVALID"
	CodeResetFailed     = "RESET_REQUEST_FAILED"
)
