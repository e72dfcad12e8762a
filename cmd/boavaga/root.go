package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the BoaVaga CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boavaga",
		Short: "BoaVaga - parking backend credential authority",
		Long: `BoaVaga is a multi-tenant parking-lot backend. This binary runs its
credential and session authority: login, role enforcement, and
password recovery for system and lot administrators.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewCreateAdminCmd())

	return cmd
}
