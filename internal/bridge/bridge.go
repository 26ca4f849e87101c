// internal/bridge/bridge.go
package bridge

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/isystem-bridge/internal/metrics"
	"github.com/tamzrod/isystem-bridge/internal/mqtt"
	"github.com/tamzrod/isystem-bridge/internal/status"
	"github.com/tamzrod/isystem-bridge/internal/table"
	"github.com/tamzrod/isystem-bridge/internal/writer"
)

// writeQoS is the subscription QoS of every write topic.
const writeQoS byte = 0

// Session is the broker connection the bridge drives.
type Session interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishAsync(topic string, payload []byte, qos byte, retained bool, done func(error)) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	SetOnConnect(callback func())
	IsConnected() bool
	Close() error
}

// Recorder stores published values (history sink). May be nil.
type Recorder interface {
	Record(topic, value string)
}

// Options configures a Bridge.
type Options struct {
	BaseTopic string
	QoS       byte // QoS of value publications

	History Recorder
	Logger  logrus.FieldLogger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Bridge connects the broker to the scheduler: inbound write topics go
// to the queue, decoded values and health come back out as retained
// messages.
type Bridge struct {
	session Session
	queue   *writer.Queue
	table   *table.Table
	opts    Options
	log     logrus.FieldLogger
}

// LastWill is the message the broker publishes when the bridge dies.
func LastWill(base string) mqtt.Will {
	return mqtt.Will{
		Topic:    base + status.TopicReading,
		Payload:  status.PayloadOff,
		QoS:      status.ReadingQoS,
		Retained: true,
	}
}

// New creates a bridge. Nothing is sent until Start.
func New(session Session, queue *writer.Queue, tbl *table.Table, opts Options) (*Bridge, error) {
	if session == nil {
		return nil, errors.New("bridge: session required")
	}
	if queue == nil {
		return nil, errors.New("bridge: queue required")
	}
	if tbl == nil {
		return nil, errors.New("bridge: address table required")
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Bridge{
		session: session,
		queue:   queue,
		table:   tbl,
		opts:    opts,
		log:     opts.Logger.WithField("component", "bridge"),
	}, nil
}

// Start subscribes every write topic and announces the bridge.
// Subscriptions are restored by the session after a reconnect; the
// announcement is repeated on every connect.
func (b *Bridge) Start() error {
	b.session.SetOnConnect(b.announce)

	var errs []error
	for _, suffix := range b.table.WriteTopics() {
		topic := b.opts.BaseTopic + suffix
		if err := b.session.Subscribe(topic, writeQoS, b.HandleMessage); err != nil {
			errs = append(errs, fmt.Errorf("subscribe %s: %w", topic, err))
			continue
		}
		b.log.WithField("topic", topic).Debug("subscribed")
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	b.announce()
	return nil
}

// announce publishes reading=ON.
func (b *Bridge) announce() {
	topic := b.opts.BaseTopic + status.TopicReading
	if err := b.session.Publish(topic, []byte(status.PayloadOn), status.ReadingQoS, true); err != nil {
		b.log.WithError(err).WithField("topic", topic).Warn("failed to announce bridge")
	}
}

// HandleMessage queues an inbound write. It never touches the bus.
func (b *Bridge) HandleMessage(topic string, payload []byte) error {
	b.queue.Push(writer.Request{
		Topic:      topic,
		Payload:    string(payload),
		EnqueuedAt: b.opts.Now(),
	})
	b.opts.Metrics.PendingWrites(b.queue.Len())

	b.log.WithFields(logrus.Fields{
		"topic":   topic,
		"payload": string(payload),
	}).Debug("write queued")
	return nil
}

// Publish sends a decoded value, retained. It never waits for the broker:
// the caller holds the bus. Failures are logged only.
func (b *Bridge) Publish(topic, value string) {
	if err := b.session.PublishAsync(topic, []byte(value), b.opts.QoS, true, b.completion(topic)); err != nil {
		b.logPublishError(err, topic)
		return
	}
	b.opts.Metrics.Publication()

	if b.opts.History != nil {
		b.opts.History.Record(topic, value)
	}
}

// PublishHealth sends the JSON health snapshot, retained, without waiting.
func (b *Bridge) PublishHealth(s status.Snapshot) {
	payload, err := status.Encode(s)
	if err != nil {
		b.log.WithError(err).Error("failed to encode health")
		return
	}

	topic := b.opts.BaseTopic + status.TopicHealth
	if err := b.session.PublishAsync(topic, []byte(payload), b.opts.QoS, true, b.completion(topic)); err != nil {
		b.logPublishError(err, topic)
	}
}

// Healthy reports whether the broker session is up.
func (b *Bridge) Healthy() bool {
	return b.session.IsConnected()
}

// Close publishes reading=OFF, waiting for the broker, and disconnects.
func (b *Bridge) Close() error {
	if b.session.IsConnected() {
		topic := b.opts.BaseTopic + status.TopicReading
		if err := b.session.Publish(topic, []byte(status.PayloadOff), status.ReadingQoS, true); err != nil {
			b.log.WithError(err).Warn("failed to publish offline status")
		}
	}
	return b.session.Close()
}

// completion logs a publish the broker did not accept.
func (b *Bridge) completion(topic string) func(error) {
	return func(err error) {
		if err != nil {
			b.logPublishError(err, topic)
		}
	}
}

func (b *Bridge) logPublishError(err error, topic string) {
	entry := b.log.WithError(err).WithField("topic", topic)
	if errors.Is(err, mqtt.ErrNotConnected) {
		entry.Debug("publish skipped")
		return
	}
	entry.Warn("publish failed")
}
