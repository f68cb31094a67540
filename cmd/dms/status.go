package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/AminRahimi/deadman-switch/internal/store"
)

func newStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the monitor's current state",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), s, time.Now())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "deadman.yaml", "path to config file")
	return cmd
}

func printStatus(out io.Writer, s *store.Store, now time.Time) error {
	state := s.LoadCheckinState()

	if state.LastCheckin == nil {
		fmt.Fprintln(out, "Last check-in: never")
	} else {
		age := now.Sub(*state.LastCheckin).Round(time.Minute)
		fmt.Fprintf(out, "Last check-in: %s (%s ago)\n",
			state.LastCheckin.Format(time.RFC3339), age)
	}
	fmt.Fprintf(out, "Alert sent:    %t\n", state.AlertSent)
	fmt.Fprintf(out, "Cursor:        %d\n", s.LoadCursor())

	runs, err := s.RecentRuns(5)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	fmt.Fprintln(out, "Recent runs:")
	for _, r := range runs {
		fmt.Fprintf(out, "  %s  %-20s fetched=%d checkins=%d delivered=%d failures=%d\n",
			r.RanAt.Format(time.RFC3339), r.Outcome,
			r.Fetched, r.CheckinsApplied, r.Delivered, r.DeliveryFailures)
	}
	return nil
}
