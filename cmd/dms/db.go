package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AminRahimi/deadman-switch/internal/config"
	"github.com/AminRahimi/deadman-switch/internal/store"
)

// connectFromConfig loads the config file and opens the state store.
func connectFromConfig(configPath string) (*config.Config, *store.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	s, err := store.Open(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return cfg, s, nil
}

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "State store management commands",
	}
	cmd.AddCommand(newDBMigrateCmd())
	return cmd
}

func newDBMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the state store tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d tables (%s)\n", len(store.AllModels()), cfg.DB.Driver)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "deadman.yaml", "path to config file")
	return cmd
}
