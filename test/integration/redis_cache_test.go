// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

//go:build integration

package integration

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/boavaga/boavaga/internal/auth"
	"github.com/boavaga/boavaga/internal/cache"
)

// setupRedis starts a Redis container and connects a RedisCache to it.
func setupRedis(ttl time.Duration) (*cache.RedisCache, func(), error) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, nil, err
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, err
	}

	kv, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: endpoint, TTL: ttl})
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, err
	}

	cleanup := func() {
		_ = kv.Close()
		_ = container.Terminate(ctx)
	}
	return kv, cleanup, nil
}

var _ = Describe("RedisCache", Ordered, func() {
	var (
		ctx     context.Context
		kv      *cache.RedisCache
		cleanup func()
	)

	BeforeAll(func() {
		var err error
		ctx = context.Background()
		kv, cleanup, err = setupRedis(0)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if cleanup != nil {
			cleanup()
		}
	})

	It("round-trips values per group", func() {
		Expect(kv.Set(ctx, "sess_token", "abc", "payload")).To(Succeed())

		value, ok, err := kv.Get(ctx, "sess_token", "abc")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal("payload"))

		// Same key under another group stays absent.
		_, ok, err = kv.Get(ctx, "rev_sess_token", "abc")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("removes keys idempotently", func() {
		Expect(kv.Set(ctx, "sess_token", "gone", "v")).To(Succeed())
		Expect(kv.Remove(ctx, "sess_token", "gone")).To(Succeed())
		Expect(kv.Remove(ctx, "sess_token", "gone")).To(Succeed())

		present, err := kv.Contains(ctx, "sess_token", "gone")
		Expect(err).NotTo(HaveOccurred())
		Expect(present).To(BeFalse())
	})

	It("backs the session authority end to end", func() {
		hasher := auth.NewDevHasher()
		hash, err := hasher.Hash("secret")
		Expect(err).NotTo(HaveOccurred())

		admins := staticAdmins{email: "admin@example.com", creds: &auth.Credentials{ID: 42, PasswordHash: hash}}
		sessions, err := auth.NewSessionAuthority(admins, kv, hasher)
		Expect(err).NotTo(HaveOccurred())

		first, err := sessions.Login(ctx, "admin@example.com", "secret", auth.RoleLot)
		Expect(err).NotTo(HaveOccurred())
		second, err := sessions.Login(ctx, "admin@example.com", "secret", auth.RoleLot)
		Expect(err).NotTo(HaveOccurred())

		stale, err := sessions.Resolve(ctx, first)
		Expect(err).NotTo(HaveOccurred())
		Expect(stale).To(BeNil())

		session, err := sessions.Resolve(ctx, second)
		Expect(err).NotTo(HaveOccurred())
		Expect(session).NotTo(BeNil())
		Expect(session.AdminID).To(Equal(int64(42)))
	})

	It("expires sessions via TTL", func() {
		short, shortCleanup, err := setupRedis(time.Second)
		Expect(err).NotTo(HaveOccurred())
		defer shortCleanup()

		Expect(short.Set(ctx, "sess_token", "ephemeral", "v")).To(Succeed())

		Eventually(func() bool {
			present, err := short.Contains(ctx, "sess_token", "ephemeral")
			Expect(err).NotTo(HaveOccurred())
			return present
		}, 5*time.Second, 200*time.Millisecond).Should(BeFalse())
	})
})

// staticAdmins serves one fixed credential for any role.
type staticAdmins struct {
	email string
	creds *auth.Credentials
}

func (s staticAdmins) GetCredentials(_ context.Context, email string, _ auth.Role) (*auth.Credentials, error) {
	if email != s.email {
		return nil, auth.ErrNotFound
	}
	return s.creds, nil
}

func (s staticAdmins) GetSystemAdmin(context.Context, int64) (*auth.SystemAdmin, error) {
	return nil, auth.ErrNotFound
}

func (s staticAdmins) GetLotAdmin(context.Context, int64) (*auth.LotAdmin, error) {
	return nil, auth.ErrNotFound
}

func (s staticAdmins) UpdatePassword(context.Context, auth.Role, int64, string) error {
	return auth.ErrNotFound
}
