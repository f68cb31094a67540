package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AminRahimi/deadman-switch/internal/monitor"
	"github.com/AminRahimi/deadman-switch/internal/runner"
)

func newCheckCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single monitor pass and exit",
		Long:  "Fetches new messages, applies any check-ins, evaluates the grace period, and dispatches alerts if needed. Intended to be invoked by cron or a CI schedule.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "deadman.yaml", "path to config file")
	return cmd
}

func runCheck(cmd *cobra.Command, configPath string) error {
	cfg, s, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	source, sink, announce, err := buildChannels(cfg)
	if err != nil {
		return err
	}

	r, err := runner.New(runner.Options{
		Store:    s,
		Source:   source,
		Sink:     sink,
		Announce: announce,
		Config:   cfg,
	})
	if err != nil {
		return err
	}

	sum, err := r.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, describeOutcome(sum))

	encoded, err := json.Marshal(struct {
		Result *runner.Summary `json:"result"`
	}{sum})
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	fmt.Fprintln(out, string(encoded))
	return nil
}

// describeOutcome renders the one-line human summary of a pass.
func describeOutcome(sum *runner.Summary) string {
	switch sum.Outcome {
	case monitor.OutcomeAlertSent:
		return fmt.Sprintf("⚠️ Grace period breached — alerted %d recipient(s).", sum.Delivered)
	case monitor.OutcomeSendFailedPartial:
		return fmt.Sprintf("⚠️ Grace period breached — %d delivered, %d failed.", sum.Delivered, len(sum.DeliveryFailures))
	case monitor.OutcomeNoInitialCheckin:
		return "⚠️ No initial check-in recorded yet."
	default:
		return "✅ Still within the safe window (or alert already sent)."
	}
}
