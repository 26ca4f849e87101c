package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------------------------------------------------------
// fake transport
// ------------------------------------------------------------

type fakeTransport struct {
	script   []int // bytes returned per read; exhausted script reads silent
	busy     bool  // when set, every read past the script returns 1 byte
	clock    *time.Time
	step     time.Duration // clock advance per non-empty read
	openErr  error
	readErr  error
	reads    int
	opened   int
	closed   int
	timeouts []time.Duration
}

func (f *fakeTransport) Open() error {
	if f.openErr != nil {
		return f.openErr
	}
	f.opened++
	return nil
}

func (f *fakeTransport) SetReadTimeout(d time.Duration) error {
	f.timeouts = append(f.timeouts, d)
	return nil
}

func (f *fakeTransport) Read(p []byte) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	i := f.reads
	f.reads++
	n := 0
	switch {
	case i < len(f.script):
		n = f.script[i]
	case f.busy:
		n = 1
	}
	if f.clock != nil {
		if n > 0 {
			*f.clock = f.clock.Add(f.step)
		} else {
			*f.clock = f.clock.Add(DefaultWaitTimeout)
		}
	}
	return n, nil
}

func (f *fakeTransport) Close() error {
	f.closed++
	return nil
}

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestArbitrator(t *testing.T, tr *fakeTransport) (*Arbitrator, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	now := func() time.Time { return epoch }
	if tr.clock != nil {
		now = func() time.Time { return *tr.clock }
	}

	a, err := New(Options{
		BiMaster:  true,
		Slot:      DefaultSlotConfig(),
		Transport: tr,
		Logger:    logger,
		Now:       now,
	})
	require.NoError(t, err)
	return a, hook
}

// ------------------------------------------------------------
// tests
// ------------------------------------------------------------

func TestMaxWaitCyclesDefault(t *testing.T) {
	assert.Equal(t, 38, DefaultSlotConfig().MaxWaitCycles)
	assert.Equal(t, 15*time.Second, DefaultSlotConfig().DrainLimit())
	assert.Equal(t, 4600*time.Millisecond, DefaultSlotConfig().Budget())
}

func TestAcquire_SingleMasterIsImmediate(t *testing.T) {
	a, err := New(Options{})
	require.NoError(t, err)

	lease, err := a.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, lease.Unbounded)
	assert.False(t, lease.Expired(time.Now().Add(24*time.Hour)))
	assert.Equal(t, StateMaster, a.State())
}

func TestAcquire_WaitsForPeerThenSilence(t *testing.T) {
	// two silent reads, traffic, more traffic, then silence
	tr := &fakeTransport{script: []int{0, 0, 12, 40, 0}}
	a, _ := newTestArbitrator(t, tr)

	lease, err := a.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, tr.reads, "lease must follow the first empty read after traffic")
	assert.False(t, lease.Forced)
	assert.Equal(t, epoch.Add(4600*time.Millisecond), lease.Deadline)
	assert.Equal(t, []time.Duration{DefaultWaitTimeout, DefaultOperationalTimeout}, tr.timeouts)
	assert.Equal(t, 1, tr.opened)
	assert.Equal(t, 1, tr.closed)
	assert.Equal(t, StateMaster, a.State())
}

func TestAcquire_NoPeerForcesMastership(t *testing.T) {
	tr := &fakeTransport{}
	a, hook := newTestArbitrator(t, tr)

	lease, err := a.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 38, tr.reads)
	assert.True(t, lease.Forced)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
			assert.ErrorIs(t, e.Data[logrus.ErrorKey].(error), ErrTimeoutExceeded)
		}
	}
	assert.True(t, warned, "expected a warning about the missing peer")
}

func TestAcquire_PeerHoldsOneFullSlot(t *testing.T) {
	// 9600 baud: each read returns a few bytes every ~20ms for a whole 5s slot
	script := []int{0, 0}
	for i := 0; i < 250; i++ {
		script = append(script, 8)
	}
	script = append(script, 0)

	clock := epoch
	tr := &fakeTransport{script: script, clock: &clock, step: 20 * time.Millisecond}
	a, _ := newTestArbitrator(t, tr)

	lease, err := a.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(script), tr.reads, "lease must follow the silence after the peer's slot")
	assert.False(t, lease.Forced)
	assert.Equal(t, clock.Add(4600*time.Millisecond), lease.Deadline)
	assert.Equal(t, StateMaster, a.State())
}

func TestAcquire_PeerNeverReleases(t *testing.T) {
	clock := epoch
	tr := &fakeTransport{busy: true, clock: &clock, step: 20 * time.Millisecond}
	a, _ := newTestArbitrator(t, tr)

	_, err := a.Acquire(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPeerBusy)
	assert.GreaterOrEqual(t, clock.Sub(epoch), DefaultSlotConfig().DrainLimit())
	assert.Greater(t, tr.reads, DefaultSlotConfig().MaxWaitCycles, "drain is bounded by time, not by reads")
	assert.Equal(t, 1, tr.closed, "port must be released on failure")
	assert.Equal(t, StateIdle, a.State())
}

func TestAcquire_OpenFailure(t *testing.T) {
	tr := &fakeTransport{openErr: errors.New("no such device")}
	a, _ := newTestArbitrator(t, tr)

	_, err := a.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestAcquire_ReadFailure(t *testing.T) {
	tr := &fakeTransport{readErr: errors.New("i/o error")}
	a, _ := newTestArbitrator(t, tr)

	_, err := a.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, 1, tr.closed)
}

func TestAcquire_CancelledContext(t *testing.T) {
	tr := &fakeTransport{}
	a, _ := newTestArbitrator(t, tr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, tr.reads)
}

func TestNew_BiMasterRequiresTransport(t *testing.T) {
	_, err := New(Options{BiMaster: true, Slot: DefaultSlotConfig()})
	assert.Error(t, err)
}

func TestLease_Expiry(t *testing.T) {
	l := Lease{Deadline: epoch}
	assert.False(t, l.Expired(epoch.Add(-time.Millisecond)))
	assert.True(t, l.Expired(epoch))
	assert.Equal(t, time.Second, l.Remaining(epoch.Add(-time.Second)))
}
