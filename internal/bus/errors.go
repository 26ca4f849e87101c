// internal/bus/errors.go
package bus

import "errors"

var (
	// ErrTransport wraps serial open/read/close failures during arbitration.
	ErrTransport = errors.New("bus: transport error")

	// ErrTimeoutExceeded marks an acquisition where the peer was never heard
	// within MaxWaitCycles reads. Mastership is taken anyway (Lease.Forced);
	// the error is only logged.
	ErrTimeoutExceeded = errors.New("bus: peer never detected")

	// ErrPeerBusy is returned when the peer kept the line busy for
	// MaxWaitCycles consecutive reads. No lease is granted.
	ErrPeerBusy = errors.New("bus: peer did not release the line")
)
