// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

// Package mocks provides testify mocks for the auth package interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/boavaga/boavaga/internal/auth"
)

// MockAdminRepository is a testify mock for auth.AdminRepository.
type MockAdminRepository struct {
	mock.Mock
}

// NewMockAdminRepository creates a MockAdminRepository bound to the test.
func NewMockAdminRepository(t *testing.T) *MockAdminRepository {
	m := &MockAdminRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAdminRepository) GetCredentials(ctx context.Context, email string, role auth.Role) (*auth.Credentials, error) {
	args := m.Called(ctx, email, role)
	var creds *auth.Credentials
	if v := args.Get(0); v != nil {
		creds = v.(*auth.Credentials)
	}
	return creds, args.Error(1)
}

func (m *MockAdminRepository) GetSystemAdmin(ctx context.Context, id int64) (*auth.SystemAdmin, error) {
	args := m.Called(ctx, id)
	var admin *auth.SystemAdmin
	if v := args.Get(0); v != nil {
		admin = v.(*auth.SystemAdmin)
	}
	return admin, args.Error(1)
}

func (m *MockAdminRepository) GetLotAdmin(ctx context.Context, id int64) (*auth.LotAdmin, error) {
	args := m.Called(ctx, id)
	var admin *auth.LotAdmin
	if v := args.Get(0); v != nil {
		admin = v.(*auth.LotAdmin)
	}
	return admin, args.Error(1)
}

func (m *MockAdminRepository) UpdatePassword(ctx context.Context, role auth.Role, id int64, passwordHash string) error {
	args := m.Called(ctx, role, id, passwordHash)
	return args.Error(0)
}

// MockResetRepository is a testify mock for auth.ResetRepository.
type MockResetRepository struct {
	mock.Mock
}

// NewMockResetRepository creates a MockResetRepository bound to the test.
func NewMockResetRepository(t *testing.T) *MockResetRepository {
	m := &MockResetRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockResetRepository) CreateIfAbsent(ctx context.Context, req *auth.PasswordResetRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

func (m *MockResetRepository) GetByCode(ctx context.Context, code string) (*auth.PasswordResetRequest, error) {
	args := m.Called(ctx, code)
	var req *auth.PasswordResetRequest
	if v := args.Get(0); v != nil {
		req = v.(*auth.PasswordResetRequest)
	}
	return req, args.Error(1)
}

func (m *MockResetRepository) Consume(ctx context.Context, req *auth.PasswordResetRequest, passwordHash string) error {
	args := m.Called(ctx, req, passwordHash)
	return args.Error(0)
}

// MockMailer is a testify mock for mailer.Mailer.
type MockMailer struct {
	mock.Mock
}

// NewMockMailer creates a MockMailer bound to the test.
func NewMockMailer(t *testing.T) *MockMailer {
	m := &MockMailer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockMailer) SendSimple(ctx context.Context, destAddr, subject, textBody, htmlBody string) (bool, error) {
	args := m.Called(ctx, destAddr, subject, textBody, htmlBody)
	return args.Bool(0), args.Error(1)
}
