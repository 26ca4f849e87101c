// internal/bus/arbitrator.go
package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/isystem-bridge/internal/metrics"
)

// Transport is the raw half-duplex line used to watch the peer.
// Read returns (0, nil) when the read timeout elapses with no bytes.
type Transport interface {
	Open() error
	SetReadTimeout(d time.Duration) error
	Read(p []byte) (int, error)
	Close() error
}

// Options configures an Arbitrator.
type Options struct {
	BiMaster  bool
	Slot      SlotConfig
	Transport Transport // required in bi-master mode
	Logger    logrus.FieldLogger
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

// Arbitrator negotiates bus mastership with the peer controller.
// Acquire must only be called from the goroutine that owns the line.
type Arbitrator struct {
	biMaster bool
	cfg      SlotConfig
	tr       Transport
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	now      func() time.Time

	mu    sync.RWMutex
	state State
}

// New creates an arbitrator.
func New(opts Options) (*Arbitrator, error) {
	if opts.BiMaster {
		if opts.Transport == nil {
			return nil, errors.New("bus: transport required in bi-master mode")
		}
		if err := opts.Slot.Validate(); err != nil {
			return nil, err
		}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Arbitrator{
		biMaster: opts.BiMaster,
		cfg:      opts.Slot,
		tr:       opts.Transport,
		log:      opts.Logger.WithField("component", "bus"),
		metrics:  opts.Metrics,
		now:      opts.Now,
	}, nil
}

// State returns the current arbitration state.
func (a *Arbitrator) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *Arbitrator) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// Acquire waits for our time slot and returns a lease.
//
// Single-master: immediate, unbounded lease.
// Bi-master:
//  1. switch the line to WaitTimeout reads
//  2. read until traffic is seen or MaxWaitCycles reads came back empty
//  3. no traffic at all: warn and take the bus anyway (Lease.Forced)
//  4. traffic seen: read until one read comes back empty (bounded by DrainLimit)
//  5. restore the operational timeout, lease until now + SlotDuration - WaitTimeout
func (a *Arbitrator) Acquire(ctx context.Context) (Lease, error) {
	if !a.biMaster {
		a.setState(StateMaster)
		a.metrics.BusAcquisition("single")
		return Lease{Unbounded: true}, nil
	}

	lease, err := a.acquireSlot(ctx)
	if err != nil {
		a.setState(StateIdle)
		switch {
		case errors.Is(err, ErrPeerBusy):
			a.metrics.BusAcquisition("busy")
		default:
			a.metrics.BusAcquisition("error")
		}
		return Lease{}, err
	}

	a.setState(StateMaster)
	if lease.Forced {
		a.metrics.BusAcquisition("forced")
	} else {
		a.metrics.BusAcquisition("granted")
	}
	return lease, nil
}

func (a *Arbitrator) acquireSlot(ctx context.Context) (lease Lease, err error) {
	if err := a.tr.Open(); err != nil {
		return Lease{}, fmt.Errorf("%w: open: %v", ErrTransport, err)
	}
	defer func() {
		if cerr := a.tr.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close: %v", ErrTransport, cerr)
		}
	}()

	if err := a.tr.SetReadTimeout(a.cfg.WaitTimeout); err != nil {
		return Lease{}, fmt.Errorf("%w: set wait timeout: %v", ErrTransport, err)
	}

	buf := make([]byte, a.cfg.ReadSize)

	// ---- WAITING_FOR_PEER ----
	a.setState(StateWaitingForPeer)
	a.log.Debug("waiting for the peer to be master")

	seen := false
	for cycle := 0; cycle < a.cfg.MaxWaitCycles; cycle++ {
		if err := ctx.Err(); err != nil {
			return Lease{}, err
		}
		n, err := a.tr.Read(buf)
		if err != nil {
			return Lease{}, fmt.Errorf("%w: read: %v", ErrTransport, err)
		}
		if n > 0 {
			seen = true
			break
		}
	}

	if !seen {
		a.log.WithError(ErrTimeoutExceeded).WithField("cycles", a.cfg.MaxWaitCycles).
			Warn("never got data from peer, taking the bus; remove --bimaster if there is no peer")
	} else {
		// ---- DRAINING_PEER ----
		a.setState(StateDrainingPeer)
		a.log.Debug("waiting for the peer to be slave")

		if err := a.drain(ctx, buf); err != nil {
			return Lease{}, err
		}
	}

	if err := a.tr.SetReadTimeout(a.cfg.OperationalTimeout); err != nil {
		return Lease{}, fmt.Errorf("%w: restore timeout: %v", ErrTransport, err)
	}

	a.log.Debug("we are master")
	return Lease{
		Deadline: a.now().Add(a.cfg.Budget()),
		Forced:   !seen,
	}, nil
}

// drain reads until the line is silent for one WaitTimeout or DrainLimit
// has elapsed since the peer's traffic was first seen.
func (a *Arbitrator) drain(ctx context.Context, buf []byte) error {
	start := a.now()
	deadline := start.Add(a.cfg.DrainLimit())
	for reads := 0; ; reads++ {
		if !a.now().Before(deadline) {
			return fmt.Errorf("%w: still busy after %s (%d reads)", ErrPeerBusy, a.now().Sub(start), reads)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := a.tr.Read(buf)
		if err != nil {
			return fmt.Errorf("%w: read: %v", ErrTransport, err)
		}
		if n == 0 {
			return nil
		}
	}
}
