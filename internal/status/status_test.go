package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func TestTracker_OKBurst(t *testing.T) {
	var tr Tracker
	s := tr.Observe(5, 0, 1234*time.Millisecond, 2, t0)

	assert.Equal(t, HealthOK, s.Health)
	assert.Equal(t, 0, s.FailedRanges)
	assert.Equal(t, 1.234, s.ReadSeconds)
	assert.Equal(t, 2, s.PendingWrites)
	assert.Equal(t, 0, s.SecondsInError)
}

func TestTracker_ErrorStreak(t *testing.T) {
	var tr Tracker

	s := tr.Observe(5, 1, time.Second, 0, t0)
	assert.Equal(t, HealthError, s.Health)
	assert.Equal(t, 0, s.SecondsInError)

	s = tr.Observe(5, 2, time.Second, 0, t0.Add(90*time.Second))
	assert.Equal(t, 90, s.SecondsInError)

	// unattempted burst keeps the streak
	s = tr.Observe(0, 0, 0, 0, t0.Add(120*time.Second))
	assert.Equal(t, HealthUnknown, s.Health)
	assert.Equal(t, 120, s.SecondsInError)

	// recovery resets
	s = tr.Observe(5, 0, time.Second, 0, t0.Add(180*time.Second))
	assert.Equal(t, HealthOK, s.Health)
	assert.Equal(t, 0, s.SecondsInError)
}

func TestTracker_SecondsInErrorIsCapped(t *testing.T) {
	var tr Tracker
	tr.Observe(1, 1, 0, 0, t0)
	s := tr.Observe(1, 1, 0, 0, t0.Add(48*time.Hour))
	assert.Equal(t, SecondsInErrorMax, s.SecondsInError)
}

func TestEncode(t *testing.T) {
	out, err := Encode(Snapshot{Health: HealthOK, FailedRanges: 0, ReadSeconds: 1.5, PendingWrites: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"health":"ok","failed_ranges":0,"read_seconds":1.5,"pending_writes":3,"seconds_in_error":0}`, out)
}
