package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCheckinCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Record a check-in directly",
		Long:  "Records a check-in without going through the chat platform — the owner's escape hatch when the messaging channel itself is down.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckin(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "deadman.yaml", "path to config file")
	return cmd
}

func runCheckin(cmd *cobra.Command, configPath string) error {
	_, s, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	state := s.LoadCheckinState()
	now := time.Now().UTC()
	state.LastCheckin = &now
	state.AlertSent = false
	if err := s.SaveCheckinState(state); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Check-in recorded at %s, timer reset.\n", now.Format(time.RFC3339))
	return nil
}
