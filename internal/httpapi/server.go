// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

// Package httpapi exposes the credential authority's operations over HTTP
// and hosts the role-enforcement middleware for protected routes.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/oops"

	"github.com/boavaga/boavaga/internal/auth"
	"github.com/boavaga/boavaga/internal/observability"
	"github.com/boavaga/boavaga/pkg/errutil"
)

// LoginService issues session tokens. Satisfied by *auth.SessionAuthority.
type LoginService interface {
	Login(ctx context.Context, email, password string, role auth.Role) (string, error)
}

// ResetService manages password-reset codes. Satisfied by *auth.ResetAuthority.
type ResetService interface {
	RequestReset(ctx context.Context, email string, role auth.Role) error
	ConsumeReset(ctx context.Context, newPassword, code string) error
}

// Server wires the authority services into a chi router.
type Server struct {
	sessions LoginService
	resets   ResetService
	enforcer *auth.Enforcer
	admins   auth.AdminRepository
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewServer creates a Server. metrics may be nil.
func NewServer(sessions LoginService, resets ResetService, enforcer *auth.Enforcer, admins auth.AdminRepository, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if sessions == nil {
		return nil, oops.Errorf("login service is required")
	}
	if resets == nil {
		return nil, oops.Errorf("reset service is required")
	}
	if enforcer == nil {
		return nil, oops.Errorf("enforcer is required")
	}
	if admins == nil {
		return nil, oops.Errorf("admin repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		sessions: sessions,
		resets:   resets,
		enforcer: enforcer,
		admins:   admins,
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// Router builds the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(s.logger))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/password-reset", s.handleResetRequest)
		r.Post("/password-reset/confirm", s.handleResetConfirm)

		r.Group(func(r chi.Router) {
			r.Use(s.enforcer.RequireRole(auth.RoleLot))
			r.Get("/me", s.handleMe)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.enforcer.RequireRole(auth.RoleSystem))
		r.Get("/admin/ping", s.handleAdminPing)
	})

	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		return
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "AUTH_INVALID_ROLE", "unknown role")
		return
	}

	token, err := s.sessions.Login(r.Context(), req.Email, req.Password, role)
	if err != nil {
		s.recordLogin(role, errorCode(err))
		s.writeServiceError(w, r, err, map[string]int{
			auth.CodeEmailNotFound: http.StatusUnauthorized,
			auth.CodeWrongPassword: http.StatusUnauthorized,
		})
		return
	}

	s.recordLogin(role, "ok")
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type resetRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		return
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "AUTH_INVALID_ROLE", "unknown role")
		return
	}

	if err := s.resets.RequestReset(r.Context(), req.Email, role); err != nil {
		s.recordReset(errorCode(err))
		s.writeServiceError(w, r, err, map[string]int{
			auth.CodeEmailNotFound:   http.StatusNotFound,
			auth.CodeResetSendFailed: http.StatusBadGateway,
		})
		return
	}

	s.recordReset("ok")
	w.WriteHeader(http.StatusNoContent)
}

type resetConfirmRequest struct {
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		return
	}

	if err := s.resets.ConsumeReset(r.Context(), req.NewPassword, req.Code); err != nil {
		s.writeServiceError(w, r, err, map[string]int{
			auth.CodeResetInvalid: http.StatusBadRequest,
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, auth.CodeForbidden, "insufficient role")
		return
	}

	switch session.Role {
	case auth.RoleSystem:
		admin, err := s.admins.GetSystemAdmin(r.Context(), session.AdminID)
		if err != nil {
			s.writeServiceError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"role":  session.Role.String(),
			"id":    admin.ID,
			"name":  admin.Name,
			"email": admin.Email,
		})
	case auth.RoleLot:
		admin, err := s.admins.GetLotAdmin(r.Context(), session.AdminID)
		if err != nil {
			s.writeServiceError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"role":   session.Role.String(),
			"id":     admin.ID,
			"email":  admin.Email,
			"master": admin.Master,
			"lot_id": admin.LotID,
		})
	default:
		writeError(w, http.StatusForbidden, auth.CodeForbidden, "insufficient role")
	}
}

func (s *Server) handleAdminPing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeServiceError maps tagged service failures to HTTP statuses. Codes
// missing from the map are reported as a generic unknown error; the
// underlying fault is logged, not exposed.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, statuses map[string]int) {
	code := errorCode(err)
	if status, ok := statuses[code]; ok {
		writeError(w, status, code, userMessage(err))
		return
	}
	errutil.LogError(s.logger, "request failed", oops.With("request_id", GetRequestID(r.Context())).Wrap(err))
	writeError(w, http.StatusInternalServerError, "UNKNOWN_ERROR", "unknown error")
}

func (s *Server) recordLogin(role auth.Role, outcome string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(role.String(), outcome).Inc()
	}
}

func (s *Server) recordReset(outcome string) {
	if s.metrics != nil {
		s.metrics.ResetRequestsTotal.WithLabelValues(outcome).Inc()
	}
}

func errorCode(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Code()
	}
	return ""
}

func userMessage(err error) string {
	var oopsErr oops.OopsError
	if errors.As(err, &oopsErr) {
		return oopsErr.Error()
	}
	return "request failed"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write error is acceptable, client may disconnect
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
