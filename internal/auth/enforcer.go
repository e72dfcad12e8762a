// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// bearerPrefix is the required Authorization scheme for protected calls.
const bearerPrefix = "Bearer "

// ctxKey is the private type for context values set by the enforcer.
type ctxKey struct{}

// SessionFromContext returns the session attached by the enforcer, or
// ok=false outside a protected handler.
func SessionFromContext(ctx context.Context) (*SimpleSession, bool) {
	s, ok := ctx.Value(ctxKey{}).(*SimpleSession)
	return s, ok
}

// ContextWithSession attaches a resolved session to the context. Exposed
// for handler tests.
func ContextWithSession(ctx context.Context, s *SimpleSession) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// SessionResolver resolves a bearer token to a live session. Satisfied by
// *SessionAuthority.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*SimpleSession, error)
}

// Enforcer guards protected operations with a minimum-role check. It knows
// nothing about what the wrapped handler does; the check runs identically
// for reads and mutations, and the handler never executes on rejection.
type Enforcer struct {
	sessions SessionResolver
	logger   *slog.Logger
}

// NewEnforcer creates an Enforcer.
func NewEnforcer(sessions SessionResolver, logger *slog.Logger) (*Enforcer, error) {
	if sessions == nil {
		return nil, oops.Errorf("session resolver is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enforcer{sessions: sessions, logger: logger}, nil
}

// RequireRole wraps a handler so it only runs for callers whose session
// role satisfies the required minimum. An absent or malformed bearer token
// is treated as anonymous and rejected the same way as an insufficient
// role.
func (e *Enforcer) RequireRole(required Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := e.resolve(r)
			if session == nil || !session.Role.Satisfies(required) {
				writeForbidden(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), session)))
		})
	}
}

// resolve extracts the bearer token and resolves it, returning nil for
// anonymous callers. Resolution faults are logged and treated as anonymous
// so a cache outage cannot grant access.
func (e *Enforcer) resolve(r *http.Request) *SimpleSession {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil
	}
	token := header[len(bearerPrefix):]

	session, err := e.sessions.Resolve(r.Context(), token)
	if err != nil {
		e.logger.Error("session resolution failed", "error", err)
		return nil
	}
	return session
}

func writeForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	//nolint:errcheck // rejection write error is acceptable, client may disconnect
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    CodeForbidden,
			"message": "insufficient role",
		},
	})
}
