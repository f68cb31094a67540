// Package runner executes one monitor pass: ingest updates, fold
// check-ins, evaluate the alert condition, dispatch, persist.
package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/AminRahimi/deadman-switch/internal/channel"
	"github.com/AminRahimi/deadman-switch/internal/config"
	"github.com/AminRahimi/deadman-switch/internal/models"
	"github.com/AminRahimi/deadman-switch/internal/monitor"
	"github.com/AminRahimi/deadman-switch/internal/store"
)

// Options holds the runner's collaborators.
type Options struct {
	Store    *store.Store
	Source   channel.Source
	Sink     channel.Sink // per-recipient delivery, same id space as Config.Recipients
	Announce channel.Sink // optional: fired once per alert (shared channels, issue trackers)
	Config   *config.Config
	Now      func() time.Time // defaults to time.Now
}

// Runner performs monitor passes. It holds no cross-run state; everything
// durable flows through the store.
type Runner struct {
	store    *store.Store
	source   channel.Source
	sink     channel.Sink
	announce channel.Sink
	cfg      *config.Config
	now      func() time.Time
}

// Summary is the machine-readable outcome of one pass.
type Summary struct {
	Outcome          monitor.Outcome `json:"outcome"`
	Fetched          int             `json:"fetched"`
	CheckinsApplied  int             `json:"checkins_applied"`
	Delivered        int             `json:"delivered"`
	DeliveryFailures []string        `json:"delivery_failures,omitempty"`
	FetchError       string          `json:"fetch_error,omitempty"`
	LastCheckin      *time.Time      `json:"last_checkin,omitempty"`
	Timestamp        time.Time       `json:"timestamp"`
}

// New creates a Runner.
func New(opts Options) (*Runner, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("runner: store is required")
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("runner: source is required")
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("runner: sink is required")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("runner: config is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		store:    opts.Store,
		source:   opts.Source,
		sink:     opts.Sink,
		announce: opts.Announce,
		cfg:      opts.Config,
		now:      now,
	}, nil
}

// Run executes a single pass. It returns an error only when persisting
// state fails; transport failures are reported in the Summary so the
// evaluation step always executes.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	now := r.now().UTC()
	summary := &Summary{Outcome: monitor.OutcomeWithinWindow, Timestamp: now}

	cursor := r.store.LoadCursor()

	msgs, err := r.source.Fetch(ctx, cursor)
	if err != nil {
		// Keep going on prior state: the alert evaluation must still run.
		log.Printf("runner: fetch failed, continuing with prior state: %v", err)
		summary.FetchError = err.Error()
		msgs = nil
	}
	summary.Fetched = len(msgs)

	state := r.store.LoadCheckinState()
	state, applied := monitor.FoldBatch(state, msgs, r.cfg.Owner, r.cfg.CheckinWords, now)
	summary.CheckinsApplied = applied

	// Cursor first, and only after the batch is folded into the state we
	// are about to persist: an abort between the two writes may drop the
	// batch's check-ins but can never reprocess cursor-advanced messages.
	if next := monitor.AdvanceOffset(cursor, msgs); next != cursor {
		if err := r.store.SaveCursor(next); err != nil {
			return summary, err
		}
	}
	if err := r.store.SaveCheckinState(state); err != nil {
		return summary, err
	}

	if applied > 0 {
		r.ackOwner(ctx)
	}

	shouldAlert, state := monitor.EvaluateAlert(state, now, r.cfg.GracePeriod())
	summary.LastCheckin = state.LastCheckin

	switch {
	case state.LastCheckin == nil:
		log.Printf("runner: no initial check-in recorded yet")
		summary.Outcome = monitor.OutcomeNoInitialCheckin
	case shouldAlert:
		summary.Delivered, summary.DeliveryFailures = r.dispatch(ctx)
		// The alert counts as sent even when some deliveries failed;
		// re-firing every run would only storm the surviving channels.
		if err := r.store.SaveCheckinState(state); err != nil {
			return summary, err
		}
		if len(summary.DeliveryFailures) > 0 {
			summary.Outcome = monitor.OutcomeSendFailedPartial
		} else {
			summary.Outcome = monitor.OutcomeAlertSent
		}
	default:
		summary.Outcome = monitor.OutcomeWithinWindow
	}

	if err := r.store.RecordRun(models.RunRecord{
		Outcome:          string(summary.Outcome),
		Fetched:          summary.Fetched,
		CheckinsApplied:  summary.CheckinsApplied,
		Delivered:        summary.Delivered,
		DeliveryFailures: len(summary.DeliveryFailures),
		FetchError:       summary.FetchError,
		RanAt:            now,
	}); err != nil {
		log.Printf("runner: record run: %v", err)
	}

	return summary, nil
}

// dispatch attempts delivery to every configured recipient, regardless of
// earlier failures, then fires the announce sink once.
func (r *Runner) dispatch(ctx context.Context) (delivered int, failures []string) {
	text := fmt.Sprintf("⚠️ Warning: no sign of the owner for more than %d days. Please check on them.", r.cfg.GraceDays)
	for _, rid := range r.cfg.Recipients {
		if err := r.sink.Deliver(ctx, rid, text); err != nil {
			log.Printf("runner: %v", err)
			failures = append(failures, err.Error())
			continue
		}
		delivered++
	}
	if r.announce != nil {
		if err := r.announce.Deliver(ctx, 0, text); err != nil {
			log.Printf("runner: %v", err)
			failures = append(failures, err.Error())
		}
	}
	return delivered, failures
}

// ackOwner confirms a recorded check-in back to the owner. Best-effort.
func (r *Runner) ackOwner(ctx context.Context) {
	if err := r.sink.Deliver(ctx, r.cfg.Owner, "✅ Check-in recorded, timer reset."); err != nil {
		log.Printf("runner: ack owner: %v", err)
	}
}
