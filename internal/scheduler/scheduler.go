// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/isystem-bridge/internal/bus"
	"github.com/tamzrod/isystem-bridge/internal/metrics"
	"github.com/tamzrod/isystem-bridge/internal/poller"
	"github.com/tamzrod/isystem-bridge/internal/status"
	"github.com/tamzrod/isystem-bridge/internal/writer"
)

// Arbitrator grants bus mastership.
type Arbitrator interface {
	Acquire(ctx context.Context) (bus.Lease, error)
}

// Port is the register client's hold on the serial device.
type Port interface {
	Release() error
}

// Publisher delivers decoded values and health to the broker.
// Implementations never fail the caller.
type Publisher interface {
	Publish(topic, value string)
	PublishHealth(s status.Snapshot)
}

// Options wires the scheduler. Every field except Logger, Metrics and
// Now is required.
type Options struct {
	Interval time.Duration
	BiMaster bool
	Slot     bus.SlotConfig

	Arbitrator Arbitrator
	Port       Port
	Poller     *poller.Poller
	Writer     *writer.Writer
	Queue      *writer.Queue
	Publisher  Publisher

	Logger  logrus.FieldLogger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Scheduler is the single owner of the bus.
// It alternates a read burst over every zone with draining pending
// writes, holding a bus lease around each register operation.
type Scheduler struct {
	opts Options
	log  logrus.FieldLogger

	lease     bus.Lease
	haveLease bool
	tracker   status.Tracker

	mu    sync.RWMutex
	phase Phase
}

// New validates opts and creates a scheduler.
func New(opts Options) (*Scheduler, error) {
	switch {
	case opts.Interval <= 0:
		return nil, errors.New("scheduler: interval must be > 0")
	case opts.Arbitrator == nil:
		return nil, errors.New("scheduler: arbitrator required")
	case opts.Port == nil:
		return nil, errors.New("scheduler: port required")
	case opts.Poller == nil:
		return nil, errors.New("scheduler: poller required")
	case opts.Writer == nil:
		return nil, errors.New("scheduler: writer required")
	case opts.Queue == nil:
		return nil, errors.New("scheduler: queue required")
	case opts.Publisher == nil:
		return nil, errors.New("scheduler: publisher required")
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Scheduler{
		opts: opts,
		log:  opts.Logger.WithField("component", "scheduler"),
	}, nil
}

// Phase returns the current loop state.
func (s *Scheduler) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *Scheduler) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// Run loops READING -> DRAINING_WRITES until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.WithFields(logrus.Fields{
		"interval": s.opts.Interval,
		"bimaster": s.opts.BiMaster,
	}).Info("scheduler started")

	for {
		s.ReadCycle(ctx)
		if ctx.Err() != nil {
			break
		}
		if _, err := s.DrainWrites(ctx); err != nil {
			// bus unavailable with writes pending: pace the retries
			select {
			case <-ctx.Done():
			case <-time.After(s.opts.Interval):
			}
		}
		if ctx.Err() != nil {
			break
		}
	}

	s.log.Info("scheduler stopped")
	return nil
}

// ------------------------------------------------------------
// READING
// ------------------------------------------------------------

// ReadCycle reads every zone in table order and publishes the results.
// A failed range is logged and skipped; the burst goes on.
// A failed bus acquisition ends the burst.
func (s *Scheduler) ReadCycle(ctx context.Context) poller.PollResult {
	s.setPhase(PhaseReading)

	start := s.opts.Now()
	res := poller.PollResult{At: start}

	for _, r := range s.opts.Poller.Ranges() {
		if ctx.Err() != nil {
			break
		}
		if err := s.ensureLease(ctx); err != nil {
			s.logAcquireError(err, "read burst")
			break
		}

		b := s.opts.Poller.ReadRange(r)
		res.Blocks = append(res.Blocks, b)
		s.opts.Metrics.ReadRange(b.Err == nil)

		if b.Err != nil {
			s.log.WithError(b.Err).WithFields(logrus.Fields{
				"address": r.Address,
				"count":   r.Count,
			}).Error("range read failed")
			continue
		}

		for _, p := range b.Publications {
			s.opts.Publisher.Publish(p.Topic, p.Value)
		}
	}

	now := s.opts.Now()
	res.Elapsed = now.Sub(start)
	s.opts.Metrics.ReadBurst(res.Elapsed)

	if budget := s.opts.Slot.Budget(); budget > 0 && res.Elapsed > budget {
		s.log.WithFields(logrus.Fields{
			"elapsed":  res.Elapsed,
			"budget":   budget,
			"bimaster": s.opts.BiMaster,
		}).Warn("read burst overran the time slot")
	}

	s.opts.Publisher.PublishHealth(
		s.tracker.Observe(len(res.Blocks), res.Failed(), res.Elapsed, s.opts.Queue.Len(), now),
	)
	return res
}

// ------------------------------------------------------------
// DRAINING_WRITES
// ------------------------------------------------------------

// DrainWrites applies pending writes in FIFO order. The first pop waits
// up to Interval; once a write was applied the queue is drained without
// waiting. Returns the number of requests taken from the queue, and the
// acquisition error that ended the drain early, if any.
func (s *Scheduler) DrainWrites(ctx context.Context) (int, error) {
	s.setPhase(PhaseDrainingWrites)

	wait := s.opts.Interval
	taken := 0

	for {
		s.opts.Metrics.PendingWrites(s.opts.Queue.Len())

		req, ok := s.opts.Queue.Pop(ctx, wait)
		if !ok {
			return taken, nil
		}
		wait = 0

		if err := s.applyWrite(ctx, req); err != nil {
			return taken, err
		}
		taken++
	}
}

// applyWrite only fails when the bus could not be acquired; the request
// is then put back at the head of the queue.
func (s *Scheduler) applyWrite(ctx context.Context, req writer.Request) error {
	log := s.log.WithFields(logrus.Fields{
		"topic":   req.Topic,
		"payload": req.Payload,
	})

	cmd, err := s.opts.Writer.Prepare(req)
	if err != nil {
		log.WithError(err).Debug("dropping write")
		s.opts.Metrics.Write("dropped")
		return nil
	}

	if err := s.ensureLease(ctx); err != nil {
		s.opts.Queue.PushFront(req)
		s.logAcquireError(err, "write drain")
		return err
	}

	if err := s.opts.Writer.Execute(cmd); err != nil {
		log.WithError(err).Error("register write failed")
		s.opts.Metrics.Write("failed")
		return nil
	}

	log.WithField("address", cmd.Address).Info("register written")
	s.opts.Metrics.Write("applied")
	return nil
}

// ------------------------------------------------------------
// bus lease
// ------------------------------------------------------------

// ensureLease reuses the current lease while it is valid, otherwise
// releases the register port and acquires a new one.
func (s *Scheduler) ensureLease(ctx context.Context) error {
	if s.haveLease && !s.lease.Expired(s.opts.Now()) {
		return nil
	}
	s.haveLease = false

	if err := s.opts.Port.Release(); err != nil {
		s.log.WithError(err).Warn("failed to release register port")
	}

	lease, err := s.opts.Arbitrator.Acquire(ctx)
	if err != nil {
		return err
	}

	s.lease = lease
	s.haveLease = true
	return nil
}

func (s *Scheduler) logAcquireError(err error, during string) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.log.WithField("phase", during).Debug("bus acquisition cancelled")
		return
	}
	s.log.WithError(err).WithField("phase", during).Error("cannot acquire bus, retrying next cycle")
}
