package auth

import "time"

// WindowPolicy is a pure trailing-window rate-limit policy: given how many
// events already happened inside the window, decide whether one more is
// allowed. Counting is the caller's job (the verification-code registry keeps
// the durable counts), which keeps the policy reusable for other flows with
// different windows and thresholds.
type WindowPolicy struct {
	// Window is the trailing window length events are counted over.
	Window time.Duration

	// Threshold is how many events are allowed inside the window beyond the
	// first. A threshold of 1 permits at most 2 requests per window.
	Threshold int
}

// DefaultResetPolicy is the password-reset policy: at most 2 outstanding
// requests per 5 minutes.
func DefaultResetPolicy() WindowPolicy {
	return WindowPolicy{
		Window:    5 * time.Minute,
		Threshold: 1,
	}
}

// Allow reports whether another event is permitted given the count already
// observed inside the window.
func (p WindowPolicy) Allow(countInWindow int64) bool {
	return countInWindow <= int64(p.Threshold)
}

// WindowStart returns the beginning of the trailing window at the given instant.
func (p WindowPolicy) WindowStart(now time.Time) time.Time {
	return now.Add(-p.Window)
}
