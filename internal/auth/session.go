// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"github.com/samber/oops"
)

// Cache namespaces for session state. Sessions live under SessionGroup
// keyed by token; the reverse index lives under ReverseSessionGroup keyed
// by "<role>:<id>" and points back at the principal's current token.
const (
	SessionGroup        = "sess_token"
	ReverseSessionGroup = "rev_sess_token"
)

// SessionTokenBytes is the entropy of a session token; 16 bytes = 32 hex chars.
const SessionTokenBytes = 16

// SimpleSession is the cache-serializable projection of a live session.
// It is fully self-contained: no datastore handle, safe to store and
// transmit through the cache.
type SimpleSession struct {
	Role    Role  `json:"role"`
	AdminID int64 `json:"admin_id"`
}

// ReverseSessionKey returns the reverse-index key for a principal.
func ReverseSessionKey(role Role, adminID int64) string {
	return strconv.Itoa(int(role)) + ":" + strconv.FormatInt(adminID, 10)
}

// EncodeSimpleSession serializes a SimpleSession for cache storage.
func EncodeSimpleSession(s SimpleSession) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", oops.Code("SESSION_ENCODE_FAILED").Wrap(err)
	}
	return string(raw), nil
}

// DecodeSimpleSession deserializes a cache value into a SimpleSession.
func DecodeSimpleSession(value string) (*SimpleSession, error) {
	var s SimpleSession
	if err := json.Unmarshal([]byte(value), &s); err != nil {
		return nil, oops.Code("SESSION_DECODE_FAILED").Wrap(err)
	}
	if !s.Role.Valid() {
		return nil, oops.Code("SESSION_DECODE_FAILED").
			With("role", int(s.Role)).
			Errorf("cached session carries unknown role")
	}
	return &s, nil
}

// generateSessionToken draws a cryptographically random hex token.
func generateSessionToken() (string, error) {
	raw := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}
	return hex.EncodeToString(raw), nil
}
