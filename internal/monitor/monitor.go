// Package monitor implements the check-in state machine.
//
// Everything here is pure: state in, state out, no I/O. The runner owns
// loading, fetching, and persisting; this package only decides.
package monitor

import (
	"strings"
	"time"
)

// State is the in-memory form of the persisted check-in record.
type State struct {
	LastCheckin *time.Time
	AlertSent   bool
}

// Message is one inbound message from the check-in source.
type Message struct {
	SequenceID int64
	SenderID   int64
	Text       string
}

// IsCheckin reports whether msg is a qualifying check-in: authored by the
// owner, and its trimmed, lowercased text equals one of the recognized
// check-in words.
func IsCheckin(msg Message, ownerID int64, words []string) bool {
	if msg.SenderID != ownerID {
		return false
	}
	text := strings.ToLower(strings.TrimSpace(msg.Text))
	for _, w := range words {
		if text == strings.ToLower(w) {
			return true
		}
	}
	return false
}

// ApplyCheckin folds one message into state. A qualifying check-in records
// now (processing time, not the message's send time) and clears the alert
// flag; anything else leaves state unchanged.
func ApplyCheckin(state State, msg Message, ownerID int64, words []string, now time.Time) State {
	if !IsCheckin(msg, ownerID, words) {
		return state
	}
	t := now.UTC()
	state.LastCheckin = &t
	state.AlertSent = false
	return state
}

// FoldBatch applies every qualifying check-in in msgs, in order, and
// returns the resulting state plus the number applied. Multiple check-ins
// may have accumulated between runs; all of them are folded, not just the
// first.
func FoldBatch(state State, msgs []Message, ownerID int64, words []string, now time.Time) (State, int) {
	applied := 0
	for _, msg := range msgs {
		if IsCheckin(msg, ownerID, words) {
			state = ApplyCheckin(state, msg, ownerID, words, now)
			applied++
		}
	}
	return state, applied
}

// AdvanceOffset computes the cursor position after a fetch:
// max(current, max(sequence_id)+1). An empty batch leaves the cursor
// unchanged. The result never goes backwards.
func AdvanceOffset(current int64, msgs []Message) int64 {
	next := current
	for _, msg := range msgs {
		if msg.SequenceID+1 > next {
			next = msg.SequenceID + 1
		}
	}
	return next
}

// EvaluateAlert decides whether the grace period has been breached.
//
// No baseline (no check-in ever recorded) never alerts: absence of history
// is not evidence of a problem. A breach alerts only while AlertSent is
// false, and sets it, so the alert fires once per breach and stays
// suppressed until a fresh check-in clears the flag. The boundary is
// strict: elapsed exactly equal to grace does not alert.
func EvaluateAlert(state State, now time.Time, grace time.Duration) (bool, State) {
	if state.LastCheckin == nil {
		return false, state
	}
	if now.Sub(*state.LastCheckin) > grace && !state.AlertSent {
		state.AlertSent = true
		return true, state
	}
	return false, state
}
