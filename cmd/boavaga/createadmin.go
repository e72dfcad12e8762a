// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/boavaga/boavaga/internal/auth"
	"github.com/boavaga/boavaga/internal/auth/postgres"
	"github.com/boavaga/boavaga/internal/config"
	"github.com/boavaga/boavaga/internal/store"
)

// NewCreateAdminCmd creates the create-admin subcommand. It bootstraps a
// system administrator account directly in the datastore.
func NewCreateAdminCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a system administrator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" || email == "" || password == "" {
				return errors.New("--name, --email, and --password are required")
			}

			cfg, err := config.Load(configFile, nil)
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("database_url is required (config file or DATABASE_URL)")
			}

			ctx := cmd.Context()
			pool, err := store.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			var hasher auth.PasswordHasher
			if cfg.Hasher.Dev {
				hasher = auth.NewDevHasher()
			} else {
				hasher = auth.NewBcryptHasher(cfg.Hasher.BcryptCost)
			}
			hash, err := hasher.Hash(password)
			if err != nil {
				return err
			}

			admins := postgres.NewAdminRepository(pool)
			id, err := admins.CreateSystemAdmin(ctx, name, email, hash)
			if err != nil {
				return err
			}

			cmd.Printf("system admin created: id=%d email=%s\n", id, email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "admin display name")
	cmd.Flags().StringVar(&email, "email", "", "admin email (login)")
	cmd.Flags().StringVar(&password, "password", "", "initial password")

	return cmd
}
