package session

import "time"

// ExpiryState is the derived countdown state of a session. It is never
// persisted; it is recomputed from startedAt + durationHours against the
// clock, so it always reflects the latest saved duration.
type ExpiryState string

const (
	StateActive  ExpiryState = "active"
	StateWarning ExpiryState = "warning"
	StateExpired ExpiryState = "expired"
)

// WarningWindow is how close to expiry a session flips to WARNING.
const WarningWindow = 5 * time.Minute

// Remaining returns the time left in the session at now. Expired sessions
// report zero, not a negative duration.
func Remaining(e *Entry, now time.Time) time.Duration {
	left := e.EndsAt().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// State classifies a session at now. Transitions only run forward:
// ACTIVE -> WARNING -> EXPIRED. A coarse monitor tick may skip WARNING
// entirely, which is acceptable.
func State(e *Entry, now time.Time) ExpiryState {
	left := e.EndsAt().Sub(now)
	switch {
	case left <= 0:
		return StateExpired
	case left <= WarningWindow:
		return StateWarning
	default:
		return StateActive
	}
}

// IsExpired reports whether the session's allotted time has elapsed.
func IsExpired(e *Entry, now time.Time) bool {
	return !now.Before(e.EndsAt())
}
