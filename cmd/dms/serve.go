package main

import (
	"fmt"
	"log"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/AminRahimi/deadman-switch/internal/dashboard"
	"github.com/AminRahimi/deadman-switch/internal/runner"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run monitor passes on a schedule",
		Long:  "Runs a monitor pass on the configured cron schedule and, when a dashboard port is set, serves the status page. Stops on SIGINT/SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "deadman.yaml", "path to config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
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

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Overlapping ticks are skipped: the core assumes one run at a time.
	var running atomic.Bool
	sched := cron.New()
	_, err = sched.AddFunc(cfg.Schedule, func() {
		if !running.CompareAndSwap(false, true) {
			log.Printf("serve: previous pass still running, skipping tick")
			return
		}
		defer running.Store(false)

		sum, err := r.Run(ctx)
		if err != nil {
			log.Printf("serve: pass failed: %v", err)
			return
		}
		log.Printf("serve: %s (fetched=%d checkins=%d delivered=%d)",
			sum.Outcome, sum.Fetched, sum.CheckinsApplied, sum.Delivered)
	})
	if err != nil {
		return fmt.Errorf("parse schedule %q: %w", cfg.Schedule, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Monitoring on schedule %q (Ctrl+C to stop)\n", cfg.Schedule)
	sched.Start()

	if cfg.Dashboard.Port > 0 {
		go func() {
			if err := dashboard.Start(ctx, dashboard.StartOpts{Store: s, Port: cfg.Dashboard.Port, Out: out}); err != nil {
				log.Printf("serve: dashboard: %v", err)
			}
		}()
	}

	<-ctx.Done()
	<-sched.Stop().Done()
	fmt.Fprintln(out, "Stopped.")
	return nil
}
