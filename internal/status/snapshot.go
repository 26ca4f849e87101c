// internal/status/snapshot.go
package status

import "time"

// Snapshot is the health of the bridge after one read burst.
type Snapshot struct {
	Health         string  `json:"health"`
	FailedRanges   int     `json:"failed_ranges"`
	ReadSeconds    float64 `json:"read_seconds"`
	PendingWrites  int     `json:"pending_writes"`
	SecondsInError int     `json:"seconds_in_error"`
}

// Tracker turns burst outcomes into snapshots.
// It remembers only when the current error streak started.
type Tracker struct {
	errorSince time.Time
}

// Observe records one burst. total == 0 means nothing was attempted
// (e.g. the bus could not be acquired) and yields HealthUnknown.
func (t *Tracker) Observe(total, failed int, elapsed time.Duration, pending int, now time.Time) Snapshot {
	s := Snapshot{
		Health:        HealthUnknown,
		FailedRanges:  failed,
		ReadSeconds:   elapsed.Round(time.Millisecond).Seconds(),
		PendingWrites: pending,
	}

	switch {
	case total == 0:
		// keep the streak: an unattempted burst says nothing new
		if !t.errorSince.IsZero() {
			s.SecondsInError = t.secondsInError(now)
		}
		return s

	case failed > 0:
		s.Health = HealthError
		if t.errorSince.IsZero() {
			t.errorSince = now
		}
		s.SecondsInError = t.secondsInError(now)

	default:
		s.Health = HealthOK
		t.errorSince = time.Time{}
	}

	return s
}

func (t *Tracker) secondsInError(now time.Time) int {
	sec := int(now.Sub(t.errorSince) / time.Second)
	if sec > SecondsInErrorMax {
		return SecondsInErrorMax
	}
	if sec < 0 {
		return 0
	}
	return sec
}
