// internal/config/config.go
package config

import "time"

type Config struct {
	Model   string        `yaml:"model"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Serial  SerialConfig  `yaml:"serial"`
	Poll    PollConfig    `yaml:"poll"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Influx  InfluxConfig  `yaml:"influx"`
}

// ---- MQTT ----

type MQTTConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"` // 0 = 1883, or 8883 with TLS
	TLS      bool   `yaml:"tls12"`
	CACert   string `yaml:"cacert"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	ClientID string `yaml:"client_id"` // empty = generated

	BaseTopic string `yaml:"base_topic"`
	QoS       int    `yaml:"qos"`
}

// ---- SERIAL ----

type SerialConfig struct {
	Device   string `yaml:"device"`
	DeviceID int    `yaml:"device_id"`
	BiMaster bool   `yaml:"bimaster"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalSeconds int `yaml:"interval"`
}

// Interval is the pause between two read bursts.
func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

// ---- METRICS ----

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty = disabled
}

// ---- INFLUX ----

type InfluxConfig struct {
	URL    string `yaml:"url"` // empty = disabled
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// Enabled reports whether the history sink is configured.
func (c InfluxConfig) Enabled() bool {
	return c.URL != ""
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Model: "modulens-o",
		MQTT: MQTTConfig{
			CACert:    "/etc/ssl/certs/ca-certificates.crt",
			BaseTopic: "heating/",
		},
		Serial: SerialConfig{
			Device:   "/dev/ttyUSB0",
			DeviceID: 10,
		},
		Poll: PollConfig{IntervalSeconds: 60},
		Log:  LogConfig{Level: "INFO", Format: "text"},
	}
}
