// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/boavaga/boavaga/internal/auth"
	"github.com/boavaga/boavaga/internal/auth/postgres"
	"github.com/boavaga/boavaga/internal/cache"
	"github.com/boavaga/boavaga/internal/config"
	"github.com/boavaga/boavaga/internal/httpapi"
	"github.com/boavaga/boavaga/internal/logging"
	"github.com/boavaga/boavaga/internal/mailer"
	"github.com/boavaga/boavaga/internal/observability"
	"github.com/boavaga/boavaga/internal/store"
	"github.com/boavaga/boavaga/pkg/errutil"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the credential authority HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	defaults := config.Default()
	cmd.Flags().String("listen", defaults.Listen, "HTTP listen address")
	cmd.Flags().String("metrics_listen", defaults.MetricsListen, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log_format", defaults.LogFormat, "log format (json or text)")
	cmd.Flags().String("database_url", "", "PostgreSQL connection string")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logging.SetDefault("boavaga", version, cfg.LogFormat)
	logger := slog.Default()

	if cfg.DatabaseURL == "" {
		return errors.New("database_url is required (flag, config file, or DATABASE_URL)")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	kv, err := cache.NewRedisCache(ctx, cache.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.SessionTTL,
	})
	if err != nil {
		return err
	}
	defer kv.Close() //nolint:errcheck // shutdown path
	logger.Info("connected to session cache", "addr", cfg.Redis.Addr)

	var hasher auth.PasswordHasher
	if cfg.Hasher.Dev {
		logger.Warn("deterministic dev hasher enabled; do not use in production")
		hasher = auth.NewDevHasher()
	} else {
		hasher = auth.NewBcryptHasher(cfg.Hasher.BcryptCost)
	}

	admins := postgres.NewAdminRepository(pool)
	resets := postgres.NewResetRepository(pool)

	sessions, err := auth.NewSessionAuthorityWithLogger(admins, kv, hasher, logger)
	if err != nil {
		return err
	}
	smtp := mailer.NewSMTPMailer(mailer.SMTPOptions{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		Username:   cfg.SMTP.Username,
		Password:   cfg.SMTP.Password,
		FromAddr:   cfg.SMTP.From,
		Encryption: cfg.SMTP.Encryption,
	})
	resetAuthority, err := auth.NewResetAuthorityWithLogger(admins, resets, smtp, hasher, logger)
	if err != nil {
		return err
	}
	enforcer, err := auth.NewEnforcer(sessions, logger)
	if err != nil {
		return err
	}

	var obs *observability.Server
	var obsErrs <-chan error
	if cfg.MetricsListen != "" {
		obs = observability.NewServer(cfg.MetricsListen, func() bool {
			return pool.Ping(ctx) == nil
		})
		obsErrs, err = obs.Start()
		if err != nil {
			return err
		}
	}

	var metrics *observability.Metrics
	if obs != nil {
		metrics = obs.Metrics()
	}
	api, err := httpapi.NewServer(sessions, resetAuthority, enforcer, admins, metrics, logger)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErrs := make(chan error, 1)
	go func() {
		logger.Info("http server started", "addr", cfg.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrs <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErrs:
		errutil.LogError(logger, "http server failed", err)
		return err
	case err := <-obsErrs:
		if err != nil {
			errutil.LogError(logger, "observability server failed", err)
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		errutil.LogError(logger, "http server shutdown failed", err)
	}
	if obs != nil {
		if err := obs.Stop(shutdownCtx); err != nil {
			errutil.LogError(logger, "observability server shutdown failed", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
