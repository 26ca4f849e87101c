// internal/bus/lease.go
package bus

import (
	"math"
	"time"
)

// Lease grants bus mastership until Deadline.
// Transient: consumed by one read or write burst, never persisted.
type Lease struct {
	Deadline time.Time

	// Unbounded is set in single-master mode; the lease never expires.
	Unbounded bool

	// Forced is set when the peer was never heard and mastership was
	// taken by default (see ErrTimeoutExceeded).
	Forced bool
}

// Expired reports whether the lease must be given back at now.
func (l Lease) Expired(now time.Time) bool {
	if l.Unbounded {
		return false
	}
	return !now.Before(l.Deadline)
}

// Remaining is the time left before the deadline (0 once expired).
func (l Lease) Remaining(now time.Time) time.Duration {
	if l.Unbounded {
		return time.Duration(math.MaxInt64)
	}
	if d := l.Deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}
