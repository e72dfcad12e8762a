// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boavaga/boavaga/internal/auth"
)

// stubResolver resolves a fixed token table.
type stubResolver struct {
	sessions map[string]*auth.SimpleSession
	err      error
}

func (s *stubResolver) Resolve(_ context.Context, token string) (*auth.SimpleSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sessions[token], nil
}

func newEnforcer(t *testing.T, resolver auth.SessionResolver) *auth.Enforcer {
	t.Helper()
	enforcer, err := auth.NewEnforcer(resolver, discardLogger())
	require.NoError(t, err)
	return enforcer
}

func protectedRequest(t *testing.T, enforcer *auth.Enforcer, required auth.Role, authorization string) (*httptest.ResponseRecorder, bool, *auth.SimpleSession) {
	t.Helper()

	ran := false
	var seen *auth.SimpleSession
	handler := enforcer.RequireRole(required)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
		seen, _ = auth.SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, ran, seen
}

func TestEnforcer_AnonymousRejected(t *testing.T) {
	enforcer := newEnforcer(t, &stubResolver{})

	rec, ran, _ := protectedRequest(t, enforcer, auth.RoleLot, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, ran, "handler must not run for anonymous callers")
	assert.JSONEq(t, `{"error":{"code":"AUTH_FORBIDDEN","message":"insufficient role"}}`, rec.Body.String())
}

func TestEnforcer_MalformedAuthorizationRejected(t *testing.T) {
	enforcer := newEnforcer(t, &stubResolver{
		sessions: map[string]*auth.SimpleSession{"tok": {Role: auth.RoleSystem, AdminID: 1}},
	})

	for _, header := range []string{"tok", "Basic tok", "bearer tok"} {
		rec, ran, _ := protectedRequest(t, enforcer, auth.RoleLot, header)
		assert.Equal(t, http.StatusForbidden, rec.Code, "header %q", header)
		assert.False(t, ran)
	}
}

func TestEnforcer_UnknownTokenRejected(t *testing.T) {
	enforcer := newEnforcer(t, &stubResolver{sessions: map[string]*auth.SimpleSession{}})

	rec, ran, _ := protectedRequest(t, enforcer, auth.RoleLot, "Bearer nosuchtoken")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, ran)
}

func TestEnforcer_InsufficientRoleRejected(t *testing.T) {
	enforcer := newEnforcer(t, &stubResolver{
		sessions: map[string]*auth.SimpleSession{"tok": {Role: auth.RoleLot, AdminID: 7}},
	})

	rec, ran, _ := protectedRequest(t, enforcer, auth.RoleSystem, "Bearer tok")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, ran, "lot admin must not reach system-only handlers")
}

func TestEnforcer_SatisfiedRoleRuns(t *testing.T) {
	enforcer := newEnforcer(t, &stubResolver{
		sessions: map[string]*auth.SimpleSession{"tok": {Role: auth.RoleSystem, AdminID: 42}},
	})

	rec, ran, seen := protectedRequest(t, enforcer, auth.RoleLot, "Bearer tok")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ran)
	require.NotNil(t, seen, "session must be attached to the request context")
	assert.Equal(t, auth.RoleSystem, seen.Role)
	assert.Equal(t, int64(42), seen.AdminID)
}

func TestEnforcer_ResolverFaultTreatedAsAnonymous(t *testing.T) {
	enforcer := newEnforcer(t, &stubResolver{err: errors.New("cache down")})

	rec, ran, _ := protectedRequest(t, enforcer, auth.RoleLot, "Bearer tok")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, ran, "a cache outage must not grant access")
}

func TestSessionFromContext_Absent(t *testing.T) {
	_, ok := auth.SessionFromContext(context.Background())
	assert.False(t, ok)
}
