package monitor

// Outcome summarizes a single monitor pass.
type Outcome string

const (
	// OutcomeAlertSent means the grace period was breached and every
	// configured recipient was notified.
	OutcomeAlertSent Outcome = "alert_sent"
	// OutcomeWithinWindow means the owner checked in recently enough, or a
	// previous alert is still suppressing re-fires.
	OutcomeWithinWindow Outcome = "within_window"
	// OutcomeNoInitialCheckin means no check-in has ever been recorded.
	OutcomeNoInitialCheckin Outcome = "no_initial_checkin"
	// OutcomeSendFailedPartial means an alert fired but delivery to at
	// least one recipient failed. The alert still counts as sent.
	OutcomeSendFailedPartial Outcome = "send_failed_partial"
)
