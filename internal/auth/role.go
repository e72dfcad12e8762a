// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package auth

import "github.com/samber/oops"

// Role is the ordered privilege tier of a principal. Lower values carry
// more privilege: RoleSystem satisfies any minimum-role requirement,
// RoleLot satisfies only lot-level requirements.
type Role int8

// Privilege tiers, ordered from most to least privileged.
const (
	RoleSystem Role = 1
	RoleLot    Role = 2
)

// Satisfies reports whether a caller holding r qualifies for an operation
// that requires at least the given role.
func (r Role) Satisfies(required Role) bool {
	return r <= required
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleSystem || r == RoleLot
}

// String returns the wire form of the role.
func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "system"
	case RoleLot:
		return "lot"
	default:
		return "unknown"
	}
}

// ParseRole converts a wire form back into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "system":
		return RoleSystem, nil
	case "lot":
		return RoleLot, nil
	default:
		return 0, oops.Code("AUTH_INVALID_ROLE").With("role", s).Errorf("unknown role %q", s)
	}
}
