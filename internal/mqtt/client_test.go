// internal/mqtt/client_test.go
package mqtt

import (
	"crypto/tls"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/isystem-bridge/internal/config"
)

// ------------------------------------------------------------
// fake paho client
// ------------------------------------------------------------

type fakeToken struct {
	err     error
	timeout bool
	done    chan struct{} // nil = already complete
}

func (t *fakeToken) Wait() bool                     { return !t.timeout }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Done() <-chan struct{} {
	if t.done != nil {
		return t.done
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakePaho struct {
	mu         sync.Mutex
	connected  bool
	published  []published
	subscribed map[string]pahomqtt.MessageHandler
	subErr     error
	pubToken   *fakeToken
}

func newFakePaho() *fakePaho {
	return &fakePaho{connected: true, subscribed: map[string]pahomqtt.MessageHandler{}}
}

func (f *fakePaho) IsConnected() bool      { return f.connected }
func (f *fakePaho) IsConnectionOpen() bool { return f.connected }
func (f *fakePaho) Connect() pahomqtt.Token {
	return &fakeToken{}
}
func (f *fakePaho) Disconnect(uint) { f.connected = false }

func (f *fakePaho) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, published{topic, qos, retained, payload.([]byte)})
	if f.pubToken != nil {
		return f.pubToken
	}
	return &fakeToken{}
}

func (f *fakePaho) Subscribe(topic string, _ byte, cb pahomqtt.MessageHandler) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subErr != nil {
		return &fakeToken{err: f.subErr}
	}
	f.subscribed[topic] = cb
	return &fakeToken{}
}

func (f *fakePaho) SubscribeMultiple(map[string]byte, pahomqtt.MessageHandler) pahomqtt.Token {
	return &fakeToken{}
}
func (f *fakePaho) Unsubscribe(...string) pahomqtt.Token        { return &fakeToken{} }
func (f *fakePaho) AddRoute(string, pahomqtt.MessageHandler)    {}
func (f *fakePaho) OptionsReader() pahomqtt.ClientOptionsReader { return pahomqtt.ClientOptionsReader{} }

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func newTestClient(t *testing.T) (*Client, *fakePaho, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	paho := newFakePaho()
	c := &Client{
		client:        paho,
		log:           logger,
		subscriptions: make(map[string]subscription),
		connected:     true,
	}
	return c, paho, hook
}

// ------------------------------------------------------------
// options
// ------------------------------------------------------------

func TestBuildClientOptions_Plain(t *testing.T) {
	opts, err := buildClientOptions(config.MQTTConfig{
		Host: "broker.local", Port: 1883, ClientID: "isystem-test", Username: "u", Password: "p",
	})
	require.NoError(t, err)

	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "tcp://broker.local:1883", opts.Servers[0].String())
	assert.Equal(t, "isystem-test", opts.ClientID)
	assert.Equal(t, "u", opts.Username)
	assert.True(t, opts.AutoReconnect)
	assert.Nil(t, opts.TLSConfig)
}

func TestBuildClientOptions_TLS(t *testing.T) {
	opts, err := buildClientOptions(config.MQTTConfig{Host: "broker.local", Port: 8883, TLS: true})
	require.NoError(t, err)

	assert.Equal(t, "ssl://broker.local:8883", opts.Servers[0].String())
	require.NotNil(t, opts.TLSConfig)
	assert.Equal(t, uint16(tls.VersionTLS12), opts.TLSConfig.MinVersion)
}

func TestBuildTLSConfig_BadBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

	_, err := buildTLSConfig(path)
	assert.ErrorIs(t, err, ErrTLSConfig)

	_, err = buildTLSConfig(filepath.Join(t.TempDir(), "missing.pem"))
	assert.ErrorIs(t, err, ErrTLSConfig)
}

func TestConfigureLWT(t *testing.T) {
	opts := pahomqtt.NewClientOptions()
	configureLWT(opts, Will{Topic: "heating/reading", Payload: "OFF", QoS: 1, Retained: true})

	assert.True(t, opts.WillEnabled)
	assert.Equal(t, "heating/reading", opts.WillTopic)
	assert.Equal(t, []byte("OFF"), opts.WillPayload)
	assert.Equal(t, byte(1), opts.WillQos)
	assert.True(t, opts.WillRetained)
}

// ------------------------------------------------------------
// publish / subscribe
// ------------------------------------------------------------

func TestPublish(t *testing.T) {
	c, paho, _ := newTestClient(t)

	require.NoError(t, c.Publish("heating/zone-a/program", []byte("2"), 0, true))
	require.Len(t, paho.published, 1)
	assert.Equal(t, published{"heating/zone-a/program", 0, true, []byte("2")}, paho.published[0])
}

func TestPublish_Validation(t *testing.T) {
	c, paho, _ := newTestClient(t)

	assert.ErrorIs(t, c.Publish("", []byte("x"), 0, false), ErrInvalidTopic)
	assert.ErrorIs(t, c.Publish("t", []byte("x"), 3, false), ErrInvalidQoS)
	assert.ErrorIs(t, c.PublishAsync("", []byte("x"), 0, false, nil), ErrInvalidTopic)

	paho.connected = false
	assert.ErrorIs(t, c.Publish("t", []byte("x"), 0, false), ErrNotConnected)
	assert.ErrorIs(t, c.PublishAsync("t", []byte("x"), 0, false, nil), ErrNotConnected)
}

func TestPublish_Timeout(t *testing.T) {
	c, paho, _ := newTestClient(t)
	paho.pubToken = &fakeToken{timeout: true}

	assert.ErrorIs(t, c.Publish("t", []byte("x"), 1, false), ErrPublishFailed)
}

func TestPublishAsync_ReturnsBeforeAck(t *testing.T) {
	c, paho, _ := newTestClient(t)
	pending := make(chan struct{})
	paho.pubToken = &fakeToken{done: pending, err: errors.New("broker gone")}

	got := make(chan error, 1)
	require.NoError(t, c.PublishAsync("heating/zone-a/program", []byte("2"), 1, true, func(err error) {
		got <- err
	}))
	require.Len(t, paho.published, 1)

	select {
	case <-got:
		t.Fatal("completion reported before the token finished")
	default:
	}

	close(pending)
	select {
	case err := <-got:
		assert.ErrorIs(t, err, ErrPublishFailed)
	case <-time.After(time.Second):
		t.Fatal("completion never reported")
	}
}

func TestSubscribe_TrackedAndRestored(t *testing.T) {
	c, paho, _ := newTestClient(t)

	var got []string
	require.NoError(t, c.Subscribe("heating/zone-a/program/SET", 0, func(topic string, payload []byte) error {
		got = append(got, topic+"="+string(payload))
		return nil
	}))
	assert.Contains(t, c.subscriptions, "heating/zone-a/program/SET")

	// broker forgets us, reconnect restores
	paho.subscribed = map[string]pahomqtt.MessageHandler{}
	var announced bool
	c.SetOnConnect(func() { announced = true })
	c.handleConnect()

	cb, ok := paho.subscribed["heating/zone-a/program/SET"]
	require.True(t, ok)
	cb(paho, fakeMessage{topic: "heating/zone-a/program/SET", payload: []byte("1")})

	assert.Equal(t, []string{"heating/zone-a/program/SET=1"}, got)
	assert.True(t, announced)
}

func TestSubscribe_FailureIsNotTracked(t *testing.T) {
	c, paho, _ := newTestClient(t)
	paho.subErr = errors.New("not authorized")

	err := c.Subscribe("t", 0, func(string, []byte) error { return nil })
	assert.ErrorIs(t, err, ErrSubscribeFailed)
	assert.Empty(t, c.subscriptions)
}

func TestWrapHandler_RecoversPanic(t *testing.T) {
	c, paho, hook := newTestClient(t)

	h := c.wrapHandler(func(string, []byte) error { panic("boom") })
	assert.NotPanics(t, func() {
		h(paho, fakeMessage{topic: "t"})
	})
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestWrapHandler_LogsError(t *testing.T) {
	c, paho, hook := newTestClient(t)

	h := c.wrapHandler(func(string, []byte) error { return errors.New("bad payload") })
	h(paho, fakeMessage{topic: "t"})
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestHandleDisconnect(t *testing.T) {
	c, _, _ := newTestClient(t)
	c.handleDisconnect(errors.New("EOF"))
	assert.False(t, c.IsConnected())
}
