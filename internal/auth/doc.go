// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

// Package auth implements the credential and session authority for BoaVaga.
//
// # Domain Types
//
// Two kinds of principals authenticate against the backend: system
// administrators (SystemAdmin) and parking-lot administrators (LotAdmin).
// Their privilege tier is a Role; RoleSystem satisfies any requirement,
// RoleLot satisfies only lot-level requirements.
//
// # Services
//
// Service types coordinate domain operations:
//   - SessionAuthority - login, token issuance, session resolution
//   - Enforcer - minimum-role checks on protected HTTP operations
//   - ResetAuthority - one-time password-reset codes
//
// Session state lives in an external key-value cache; the SessionAuthority
// is its only writer. Principal records and reset requests live in the
// backing datastore behind the AdminRepository and ResetRepository
// interfaces.
package auth
