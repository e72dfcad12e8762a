// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/boavaga/boavaga/internal/auth"
	authpg "github.com/boavaga/boavaga/internal/auth/postgres"
	"github.com/boavaga/boavaga/internal/cache"
	"github.com/boavaga/boavaga/internal/store"
)

// fakeMailer records sent mail instead of talking to an SMTP provider.
type fakeMailer struct {
	sent     bool
	lastTo   string
	lastBody string
}

func (m *fakeMailer) SendSimple(_ context.Context, destAddr, _, textBody, _ string) (bool, error) {
	m.sent = true
	m.lastTo = destAddr
	m.lastBody = textBody
	return true, nil
}

// setupDatabase starts a PostgreSQL container and applies the schema.
func setupDatabase() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("boavaga_test"),
		tcpostgres.WithUsername("boavaga"),
		tcpostgres.WithPassword("boavaga"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		_ = container.Terminate(ctx)
		return nil, nil, err
	}
	_ = migrator.Close()

	pool, err := store.Connect(ctx, connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}
	return pool, cleanup, nil
}

var _ = Describe("Credential authority", Ordered, func() {
	var (
		ctx      context.Context
		pool     *pgxpool.Pool
		cleanup  func()
		admins   *authpg.AdminRepository
		resets   *authpg.ResetRepository
		kv       *cache.MemoryCache
		hasher   auth.PasswordHasher
		sessions *auth.SessionAuthority
		logger   *slog.Logger

		adminID int64
	)

	const (
		adminEmail    = "root@example.com"
		adminPassword = "initial password"
	)

	BeforeAll(func() {
		var err error
		ctx = context.Background()
		pool, cleanup, err = setupDatabase()
		Expect(err).NotTo(HaveOccurred())

		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		admins = authpg.NewAdminRepository(pool)
		resets = authpg.NewResetRepository(pool)
		kv = cache.NewMemoryCache()
		hasher = auth.NewBcryptHasher(4)

		sessions, err = auth.NewSessionAuthorityWithLogger(admins, kv, hasher, logger)
		Expect(err).NotTo(HaveOccurred())

		hash, err := hasher.Hash(adminPassword)
		Expect(err).NotTo(HaveOccurred())
		adminID, err = admins.CreateSystemAdmin(ctx, "Root", adminEmail, hash)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if cleanup != nil {
			cleanup()
		}
	})

	Describe("login", func() {
		It("issues a resolvable token for valid credentials", func() {
			token, err := sessions.Login(ctx, adminEmail, adminPassword, auth.RoleSystem)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(HaveLen(2 * auth.SessionTokenBytes))

			session, err := sessions.Resolve(ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(session).NotTo(BeNil())
			Expect(session.Role).To(Equal(auth.RoleSystem))
			Expect(session.AdminID).To(Equal(adminID))
		})

		It("retires the previous token on re-login", func() {
			first, err := sessions.Login(ctx, adminEmail, adminPassword, auth.RoleSystem)
			Expect(err).NotTo(HaveOccurred())
			second, err := sessions.Login(ctx, adminEmail, adminPassword, auth.RoleSystem)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).NotTo(Equal(first))

			stale, err := sessions.Resolve(ctx, first)
			Expect(err).NotTo(HaveOccurred())
			Expect(stale).To(BeNil())
		})

		It("rejects a wrong password", func() {
			_, err := sessions.Login(ctx, adminEmail, "wrong", auth.RoleSystem)
			Expect(err).To(HaveOccurred())
		})

		It("rejects an unregistered email", func() {
			_, err := sessions.Login(ctx, "ghost@example.com", adminPassword, auth.RoleSystem)
			Expect(err).To(HaveOccurred())
		})

		It("keeps the role namespaces separate", func() {
			// The system admin's email is not a lot admin credential.
			_, err := sessions.Login(ctx, adminEmail, adminPassword, auth.RoleLot)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("password reset", func() {
		const newPassword = "rotated password"

		It("mails a code, persists one pending request, and rotates the password", func() {
			mail := &fakeMailer{}
			authority, err := auth.NewResetAuthorityWithLogger(admins, resets, mail, hasher, logger)
			Expect(err).NotTo(HaveOccurred())

			Expect(authority.RequestReset(ctx, adminEmail, auth.RoleSystem)).To(Succeed())
			Expect(mail.sent).To(BeTrue())
			Expect(mail.lastTo).To(Equal(adminEmail))
			Expect(mail.lastBody).To(HaveLen(2 * auth.ResetCodeBytes))

			code := mail.lastBody

			// A second request mails again but creates no second row; the
			// first stored code stays the consumable one.
			Expect(authority.RequestReset(ctx, adminEmail, auth.RoleSystem)).To(Succeed())
			req, err := resets.GetByCode(ctx, code)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.SystemAdminID).NotTo(BeNil())
			Expect(*req.SystemAdminID).To(Equal(adminID))

			Expect(authority.ConsumeReset(ctx, newPassword, code)).To(Succeed())

			// The old password no longer works; the new one does.
			_, err = sessions.Login(ctx, adminEmail, adminPassword, auth.RoleSystem)
			Expect(err).To(HaveOccurred())
			token, err := sessions.Login(ctx, adminEmail, newPassword, auth.RoleSystem)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).NotTo(BeEmpty())

			// The code is spent.
			Expect(authority.ConsumeReset(ctx, "another password", code)).NotTo(Succeed())
		})
	})

	Describe("admin repository", func() {
		It("updates the password hash in place", func() {
			hash, err := hasher.Hash("direct update")
			Expect(err).NotTo(HaveOccurred())
			Expect(admins.UpdatePassword(ctx, auth.RoleSystem, adminID, hash)).To(Succeed())

			creds, err := admins.GetCredentials(ctx, adminEmail, auth.RoleSystem)
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.PasswordHash).To(Equal(hash))
		})

		It("reports missing principals", func() {
			err := admins.UpdatePassword(ctx, auth.RoleSystem, 999999, "hash")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})
})
