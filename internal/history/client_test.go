package history

import (
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/isystem-bridge/internal/config"
)

type fakeWriteAPI struct {
	api.WriteAPI
	points []*write.Point
}

func (f *fakeWriteAPI) WritePoint(p *write.Point) {
	f.points = append(f.points, p)
}

var at = time.Date(2026, 2, 1, 6, 30, 0, 0, time.UTC)

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(config.InfluxConfig{}, nil)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestPoint_Numeric(t *testing.T) {
	p, ok := point("heating/outside-temperature", "-3.5", at)
	require.True(t, ok)

	line := write.PointToLineProtocol(p, time.Second)
	assert.Contains(t, line, "register_value,topic=heating/outside-temperature value=-3.5")
}

func TestPoint_NonNumericSkipped(t *testing.T) {
	_, ok := point("heating/zone-a/mode", "day permanent", at)
	assert.False(t, ok)

	_, ok = point("heating/zone-a/schedule", `{"monday":[]}`, at)
	assert.False(t, ok)
}

func TestRecord(t *testing.T) {
	fake := &fakeWriteAPI{}
	c := &Client{writeAPI: fake, now: func() time.Time { return at }}

	c.Record("heating/zone-a/program", "2")
	c.Record("heating/zone-a/mode-simple", "AUTO")

	require.Len(t, fake.points, 1)
	assert.Equal(t, "register_value", fake.points[0].Name())
}

func TestRecord_NilClient(t *testing.T) {
	var c *Client
	assert.NotPanics(t, func() { c.Record("t", "1") })
	assert.NoError(t, c.Close())
}
