package monitor

import (
	"testing"
	"time"
)

var defaultWords = []string{"checkin", "/checkin"}

const owner = int64(111111)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatal(err)
	}
	return parsed
}

func TestIsCheckin_OwnerExactWord(t *testing.T) {
	msg := Message{SequenceID: 1, SenderID: owner, Text: "checkin"}
	if !IsCheckin(msg, owner, defaultWords) {
		t.Error("expected qualifying check-in")
	}
}

func TestIsCheckin_TrimsAndLowercases(t *testing.T) {
	for _, text := range []string{"  CheckIn  ", "CHECKIN", "\tcheckin\n", "/CheckIn"} {
		msg := Message{SenderID: owner, Text: text}
		if !IsCheckin(msg, owner, defaultWords) {
			t.Errorf("IsCheckin(%q) = false, want true", text)
		}
	}
}

func TestIsCheckin_RejectsNonOwner(t *testing.T) {
	msg := Message{SenderID: 999, Text: "checkin"}
	if IsCheckin(msg, owner, defaultWords) {
		t.Error("non-owner message must never qualify")
	}
}

func TestIsCheckin_RejectsOtherText(t *testing.T) {
	for _, text := range []string{"check in", "checking", "hello", "", "status"} {
		msg := Message{SenderID: owner, Text: text}
		if IsCheckin(msg, owner, defaultWords) {
			t.Errorf("IsCheckin(%q) = true, want false", text)
		}
	}
}

func TestApplyCheckin_RecordsProcessingTime(t *testing.T) {
	now := ts(t, "2026-01-10T12:00:00Z")
	msg := Message{SenderID: owner, Text: "checkin"}

	state := ApplyCheckin(State{}, msg, owner, defaultWords, now)
	if state.LastCheckin == nil || !state.LastCheckin.Equal(now) {
		t.Errorf("LastCheckin = %v, want %v", state.LastCheckin, now)
	}
	if state.AlertSent {
		t.Error("AlertSent = true, want false")
	}
}

func TestApplyCheckin_ResetsAlertFlag(t *testing.T) {
	old := ts(t, "2026-01-01T00:00:00Z")
	now := ts(t, "2026-01-10T12:00:00Z")
	state := State{LastCheckin: &old, AlertSent: true}

	state = ApplyCheckin(state, Message{SenderID: owner, Text: "/checkin"}, owner, defaultWords, now)
	if state.AlertSent {
		t.Error("check-in must always clear AlertSent")
	}
	if !state.LastCheckin.Equal(now) {
		t.Errorf("LastCheckin = %v, want %v", state.LastCheckin, now)
	}
}

func TestApplyCheckin_NonOwnerImmunity(t *testing.T) {
	old := ts(t, "2026-01-01T00:00:00Z")
	state := State{LastCheckin: &old, AlertSent: true}
	now := ts(t, "2026-01-10T12:00:00Z")

	got := ApplyCheckin(state, Message{SenderID: 999, Text: "checkin"}, owner, defaultWords, now)
	if !got.LastCheckin.Equal(old) {
		t.Errorf("LastCheckin = %v, want unchanged %v", got.LastCheckin, old)
	}
	if !got.AlertSent {
		t.Error("AlertSent changed by non-owner message")
	}
}

func TestFoldBatch_AppliesAllQualifying(t *testing.T) {
	now := ts(t, "2026-01-10T12:00:00Z")
	msgs := []Message{
		{SequenceID: 1, SenderID: 999, Text: "checkin"},
		{SequenceID: 2, SenderID: owner, Text: "hello"},
		{SequenceID: 3, SenderID: owner, Text: "checkin"},
		{SequenceID: 4, SenderID: owner, Text: "/checkin"},
	}

	state, applied := FoldBatch(State{AlertSent: true}, msgs, owner, defaultWords, now)
	if applied != 2 {
		t.Errorf("applied = %d, want 2", applied)
	}
	if state.LastCheckin == nil || !state.LastCheckin.Equal(now) {
		t.Errorf("LastCheckin = %v, want %v", state.LastCheckin, now)
	}
	if state.AlertSent {
		t.Error("AlertSent = true, want false")
	}
}

func TestFoldBatch_EmptyBatch(t *testing.T) {
	now := ts(t, "2026-01-10T12:00:00Z")
	state, applied := FoldBatch(State{}, nil, owner, defaultWords, now)
	if applied != 0 {
		t.Errorf("applied = %d, want 0", applied)
	}
	if state.LastCheckin != nil {
		t.Error("LastCheckin set by empty batch")
	}
}

func TestAdvanceOffset_MaxSeqPlusOne(t *testing.T) {
	msgs := []Message{{SequenceID: 10}, {SequenceID: 12}, {SequenceID: 11}}
	if got := AdvanceOffset(5, msgs); got != 13 {
		t.Errorf("AdvanceOffset = %d, want 13", got)
	}
}

func TestAdvanceOffset_EmptyUnchanged(t *testing.T) {
	if got := AdvanceOffset(42, nil); got != 42 {
		t.Errorf("AdvanceOffset = %d, want 42", got)
	}
}

func TestAdvanceOffset_NeverRegresses(t *testing.T) {
	// Stale messages below the cursor must not pull it backwards.
	msgs := []Message{{SequenceID: 3}}
	if got := AdvanceOffset(100, msgs); got != 100 {
		t.Errorf("AdvanceOffset = %d, want 100", got)
	}
}

func TestEvaluateAlert_NoBaseline(t *testing.T) {
	now := ts(t, "2026-01-10T12:00:00Z")
	should, state := EvaluateAlert(State{}, now, 72*time.Hour)
	if should {
		t.Error("no baseline must never alert")
	}
	if state.AlertSent {
		t.Error("AlertSent set without a breach")
	}
}

func TestEvaluateAlert_Breach(t *testing.T) {
	last := ts(t, "2026-01-01T00:00:00Z")
	now := last.Add(4 * 24 * time.Hour)

	should, state := EvaluateAlert(State{LastCheckin: &last}, now, 72*time.Hour)
	if !should {
		t.Fatal("expected alert on breach")
	}
	if !state.AlertSent {
		t.Error("AlertSent not set on breach")
	}
}

func TestEvaluateAlert_WithinWindow(t *testing.T) {
	last := ts(t, "2026-01-01T00:00:00Z")
	now := last.Add(2 * 24 * time.Hour)

	should, state := EvaluateAlert(State{LastCheckin: &last}, now, 72*time.Hour)
	if should {
		t.Error("no alert expected within window")
	}
	if state.AlertSent {
		t.Error("AlertSent set within window")
	}
}

func TestEvaluateAlert_ExactBoundaryDoesNotFire(t *testing.T) {
	last := ts(t, "2026-01-01T00:00:00Z")
	grace := 72 * time.Hour

	should, _ := EvaluateAlert(State{LastCheckin: &last}, last.Add(grace), grace)
	if should {
		t.Error("elapsed == grace must not alert")
	}

	should, _ = EvaluateAlert(State{LastCheckin: &last}, last.Add(grace+time.Nanosecond), grace)
	if !should {
		t.Error("elapsed just past grace must alert")
	}
}

func TestEvaluateAlert_EdgeTriggered(t *testing.T) {
	last := ts(t, "2026-01-01T00:00:00Z")
	now := last.Add(4 * 24 * time.Hour)
	grace := 72 * time.Hour

	should, state := EvaluateAlert(State{LastCheckin: &last}, now, grace)
	if !should {
		t.Fatal("first evaluation must alert")
	}

	// Same breach, second evaluation: suppressed.
	should, state = EvaluateAlert(state, now.Add(time.Hour), grace)
	if should {
		t.Error("second evaluation must be suppressed")
	}
	if !state.AlertSent {
		t.Error("AlertSent cleared without a check-in")
	}
}

func TestScenario_CheckinRearmsAlert(t *testing.T) {
	t0 := ts(t, "2026-01-01T00:00:00Z")
	grace := 3 * 24 * time.Hour
	day := 24 * time.Hour

	state := State{LastCheckin: &t0}

	// T0+2d: within window.
	should, state := EvaluateAlert(state, t0.Add(2*day), grace)
	if should {
		t.Fatal("T0+2d: no alert expected")
	}

	// T0+4d: breach fires.
	should, state = EvaluateAlert(state, t0.Add(4*day), grace)
	if !should {
		t.Fatal("T0+4d: alert expected")
	}

	// T0+5d: suppressed.
	should, state = EvaluateAlert(state, t0.Add(5*day), grace)
	if should {
		t.Fatal("T0+5d: suppression expected")
	}

	// Owner checks in at T0+5d: flag clears, timer resets.
	state = ApplyCheckin(state, Message{SenderID: owner, Text: "checkin"}, owner, defaultWords, t0.Add(5*day))
	if state.AlertSent {
		t.Fatal("check-in must clear AlertSent")
	}

	// T0+5d+4d: breach re-fires.
	should, _ = EvaluateAlert(state, t0.Add(9*day), grace)
	if !should {
		t.Fatal("T0+9d: alert expected after re-arm")
	}
}
