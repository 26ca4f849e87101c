// internal/bus/slot.go
package bus

import (
	"errors"
	"time"
)

// Bi-master defaults: the peer is master for one 5s slot, then we are.
const (
	DefaultSlotDuration       = 5 * time.Second
	DefaultWaitTimeout        = 400 * time.Millisecond
	DefaultOperationalTimeout = time.Second
	DefaultReadSize           = 100
)

// SlotConfig is fixed at startup and read-only afterwards.
type SlotConfig struct {
	SlotDuration time.Duration
	WaitTimeout  time.Duration

	// MaxWaitCycles bounds the wait for peer traffic. The drain is bounded
	// by DrainLimit instead: reads return as soon as bytes arrive.
	MaxWaitCycles int

	// OperationalTimeout is restored on the transport after arbitration.
	OperationalTimeout time.Duration

	// ReadSize is the buffer length of one probing read.
	ReadSize int
}

// MaxWaitCyclesFor returns the read count covering three full slots
// (slave -> master -> slave), so one full peer cycle is always observed.
func MaxWaitCyclesFor(slot, wait time.Duration) int {
	if wait <= 0 {
		return 1
	}
	return 1 + int(slot*3/wait)
}

// DefaultSlotConfig returns the 5s / 400ms slot layout.
func DefaultSlotConfig() SlotConfig {
	return NewSlotConfig(DefaultSlotDuration, DefaultWaitTimeout)
}

// NewSlotConfig derives MaxWaitCycles from slot and wait.
func NewSlotConfig(slot, wait time.Duration) SlotConfig {
	return SlotConfig{
		SlotDuration:       slot,
		WaitTimeout:        wait,
		MaxWaitCycles:      MaxWaitCyclesFor(slot, wait),
		OperationalTimeout: DefaultOperationalTimeout,
		ReadSize:           DefaultReadSize,
	}
}

// Budget is the usable part of our slot: SlotDuration - WaitTimeout.
func (c SlotConfig) Budget() time.Duration {
	return c.SlotDuration - c.WaitTimeout
}

// DrainLimit bounds how long the peer may keep the line busy once its
// traffic has been seen: three full slots, the same span as MaxWaitCycles.
func (c SlotConfig) DrainLimit() time.Duration {
	return 3 * c.SlotDuration
}

// Validate checks slot geometry.
func (c SlotConfig) Validate() error {
	if c.WaitTimeout <= 0 {
		return errors.New("bus: wait timeout must be > 0")
	}
	if c.SlotDuration <= c.WaitTimeout {
		return errors.New("bus: slot duration must exceed wait timeout")
	}
	if c.MaxWaitCycles <= 0 {
		return errors.New("bus: max wait cycles must be > 0")
	}
	if c.ReadSize <= 0 {
		return errors.New("bus: read size must be > 0")
	}
	return nil
}
