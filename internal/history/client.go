// internal/history/client.go
package history

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/isystem-bridge/internal/config"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultBatchSize      = 100
	defaultFlushMillis    = 10_000

	measurement = "register_value"
)

// Client records numeric register values into InfluxDB v2.
// Writes are non-blocking and batched.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	now      func() time.Time
}

// Connect pings the server and opens the non-blocking write API.
// Asynchronous write errors are logged on log.
func Connect(cfg config.InfluxConfig, log logrus.FieldLogger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(defaultBatchSize).
			SetFlushInterval(defaultFlushMillis),
	)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)
	if log != nil {
		log = log.WithField("component", "history")
		go func(errs <-chan error) {
			for err := range errs {
				log.WithError(err).Warn("influxdb write failed")
			}
		}(writeAPI.Errors())
	}

	return &Client{client: client, writeAPI: writeAPI, now: time.Now}, nil
}

// Record writes value for topic when it parses as a number.
// Non-numeric values (modes, schedules) are ignored.
func (c *Client) Record(topic, value string) {
	if c == nil || c.writeAPI == nil {
		return
	}
	if p, ok := point(topic, value, c.now()); ok {
		c.writeAPI.WritePoint(p)
	}
}

// Close flushes pending points and closes the client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.writeAPI.Flush()
	c.client.Close()
	return nil
}

func point(topic, value string, at time.Time) (*write.Point, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil, false
	}
	return write.NewPoint(
		measurement,
		map[string]string{"topic": topic},
		map[string]interface{}{"value": v},
		at,
	), true
}
