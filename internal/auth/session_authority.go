// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package auth

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/boavaga/boavaga/internal/cache"
)

// loginStripes is the number of per-principal mutex stripes guarding the
// login critical section.
const loginStripes = 64

// dummyPasswordHash is used when a principal doesn't exist to prevent timing
// attacks. We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$2a$10$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// SessionAuthority issues, resolves, and invalidates session tokens. It is
// the only writer of session state in the cache and owns the
// single-active-session-per-principal invariant: logging in retires the
// principal's previous token via the reverse index.
//
// The cache offers no cross-key atomicity, so the invalidate-and-write
// sequence is serialized per principal with a striped in-process mutex.
// Expiry is delegated entirely to the cache's TTL/eviction; an evicted
// token behaves identically to "no session".
type SessionAuthority struct {
	admins AdminRepository
	cache  cache.KeyValueCache
	hasher PasswordHasher
	logger *slog.Logger

	locks [loginStripes]sync.Mutex
}

// NewSessionAuthority creates a SessionAuthority.
func NewSessionAuthority(admins AdminRepository, kv cache.KeyValueCache, hasher PasswordHasher) (*SessionAuthority, error) {
	return NewSessionAuthorityWithLogger(admins, kv, hasher, slog.Default())
}

// NewSessionAuthorityWithLogger creates a SessionAuthority with an explicit logger.
func NewSessionAuthorityWithLogger(admins AdminRepository, kv cache.KeyValueCache, hasher PasswordHasher, logger *slog.Logger) (*SessionAuthority, error) {
	if admins == nil {
		return nil, oops.Errorf("admin repository is required")
	}
	if kv == nil {
		return nil, oops.Errorf("cache is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &SessionAuthority{admins: admins, cache: kv, hasher: hasher, logger: logger}, nil
}

// Login authenticates a principal by (email, role) and issues a fresh
// session token, retiring any previous token for the same principal.
// Failures are tagged: AUTH_EMAIL_NOT_FOUND, AUTH_WRONG_PASSWORD, or
// AUTH_LOGIN_FAILED for internal faults.
// Uses constant-time verification to avoid leaking whether the email exists.
func (a *SessionAuthority) Login(ctx context.Context, email, password string, role Role) (string, error) {
	if !role.Valid() {
		return "", oops.Code(CodeLoginFailed).With("role", int(role)).Errorf("unknown role")
	}

	creds, lookupErr := a.admins.GetCredentials(ctx, email, role)

	targetHash := dummyPasswordHash
	exists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return "", oops.Code(CodeLoginFailed).
				With("operation", "get credentials").
				With("role", role.String()).
				Wrap(lookupErr)
		}
	} else {
		targetHash = creds.PasswordHash
		exists = true
	}

	// Always verify, even against the dummy hash, so response time does not
	// reveal whether the email is registered.
	valid := a.hasher.Verify(password, targetHash)

	if !exists {
		return "", oops.Code(CodeEmailNotFound).Errorf("email not found")
	}
	if !valid {
		return "", oops.Code(CodeWrongPassword).Errorf("wrong password")
	}

	reverseKey := ReverseSessionKey(role, creds.ID)

	lock := a.stripe(reverseKey)
	lock.Lock()
	defer lock.Unlock()

	oldToken, hadOld, err := a.cache.Get(ctx, ReverseSessionGroup, reverseKey)
	if err != nil {
		return "", oops.Code(CodeLoginFailed).
			With("operation", "read reverse index").
			Wrap(err)
	}
	if hadOld {
		// Best-effort invalidation of the previous token. A failed remove
		// leaves the old token resolvable until the cache evicts it.
		if err := a.cache.Remove(ctx, SessionGroup, oldToken); err != nil {
			a.logger.Warn("failed to retire previous session token",
				"principal", reverseKey,
				"error", err,
			)
		}
	}

	token, err := a.freshToken(ctx, oldToken)
	if err != nil {
		return "", err
	}

	payload, err := EncodeSimpleSession(SimpleSession{Role: role, AdminID: creds.ID})
	if err != nil {
		return "", oops.Code(CodeLoginFailed).Wrap(err)
	}

	if err := a.cache.Set(ctx, SessionGroup, token, payload); err != nil {
		return "", oops.Code(CodeLoginFailed).
			With("operation", "write session").
			Wrap(err)
	}
	if err := a.cache.Set(ctx, ReverseSessionGroup, reverseKey, token); err != nil {
		return "", oops.Code(CodeLoginFailed).
			With("operation", "write reverse index").
			Wrap(err)
	}

	a.logger.Info("session issued",
		"role", role.String(),
		"admin_id", creds.ID,
	)

	return token, nil
}

// Resolve looks up the session behind a token. It is a pure cache read:
// no side effects, and an absent or evicted token yields (nil, nil).
func (a *SessionAuthority) Resolve(ctx context.Context, token string) (*SimpleSession, error) {
	if token == "" {
		return nil, nil
	}
	value, ok, err := a.cache.Get(ctx, SessionGroup, token)
	if err != nil {
		return nil, oops.Code("SESSION_RESOLVE_FAILED").
			With("operation", "read session").
			Wrap(err)
	}
	if !ok {
		return nil, nil
	}
	return DecodeSimpleSession(value)
}

// freshToken draws tokens until one neither collides with a live session
// key nor equals the just-retired token. The namespace is large enough
// that retries are practically never needed; the loop is a freshness
// guarantee, not a performance concern.
func (a *SessionAuthority) freshToken(ctx context.Context, oldToken string) (string, error) {
	for {
		token, err := generateSessionToken()
		if err != nil {
			return "", err
		}
		if token == oldToken {
			continue
		}
		taken, err := a.cache.Contains(ctx, SessionGroup, token)
		if err != nil {
			return "", oops.Code(CodeLoginFailed).
				With("operation", "check token collision").
				Wrap(err)
		}
		if !taken {
			return token, nil
		}
	}
}

func (a *SessionAuthority) stripe(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key)) //nolint:errcheck // fnv Write never fails
	return &a.locks[h.Sum32()%loginStripes]
}
