// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

// Package mailer sends transactional mail for the credential authority.
// The mailer is a fallible, possibly slow collaborator; callers must not
// persist state before a send is confirmed.
package mailer

import "context"

// Mailer delivers a simple message with optional text and HTML bodies.
// A (false, nil) result means the provider refused delivery without a
// transport fault; callers treat it the same as an error.
type Mailer interface {
	SendSimple(ctx context.Context, destAddr, subject, textBody, htmlBody string) (bool, error)
}
