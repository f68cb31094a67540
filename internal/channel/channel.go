// Package channel defines the inbound message source and outbound alert
// sinks, with one subpackage per platform.
package channel

import (
	"context"
	"fmt"
	"strings"

	"github.com/AminRahimi/deadman-switch/internal/monitor"
)

// Source pulls inbound messages by offset cursor. Fetch returns messages
// with sequence id >= sinceOffset in ascending order; transport failures
// return an empty slice plus the error so the caller can continue with
// prior state.
type Source interface {
	Fetch(ctx context.Context, sinceOffset int64) ([]monitor.Message, error)
}

// Sink delivers one notification to one recipient. Sinks that post to a
// shared channel (Slack, GitHub issues) may ignore the recipient id.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, recipientID int64, text string) error
}

// Fanout delivers through every sink, attempting all of them regardless
// of earlier failures.
type Fanout struct {
	sinks []Sink
}

// NewFanout builds a fanout over the given sinks.
func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

// Name identifies the fanout in delivery-failure reports.
func (f *Fanout) Name() string {
	names := make([]string, len(f.sinks))
	for i, s := range f.sinks {
		names[i] = s.Name()
	}
	return "fanout(" + strings.Join(names, ",") + ")"
}

// Deliver sends text to recipientID through every sink. All sinks are
// attempted; failures are joined into a single error.
func (f *Fanout) Deliver(ctx context.Context, recipientID int64, text string) error {
	if len(f.sinks) == 0 {
		return fmt.Errorf("channel: no sinks configured")
	}
	var failed []string
	for _, s := range f.sinks {
		if err := s.Deliver(ctx, recipientID, text); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", s.Name(), err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("channel: deliver to %d: %s", recipientID, strings.Join(failed, "; "))
	}
	return nil
}
