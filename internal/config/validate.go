// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Validate checks configuration correctness.
// It performs declarative validation only and reports every problem.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil configuration")
	}

	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	// ------------------------------------------------------------
	// MQTT
	// ------------------------------------------------------------

	if cfg.MQTT.Host == "" {
		add("mqtt: server is required")
	}
	if cfg.MQTT.Port < 0 || cfg.MQTT.Port > 65535 {
		add("mqtt: port %d out of range", cfg.MQTT.Port)
	}
	if cfg.MQTT.QoS < 0 || cfg.MQTT.QoS > 2 {
		add("mqtt: qos %d must be 0, 1 or 2", cfg.MQTT.QoS)
	}
	if cfg.MQTT.TLS && cfg.MQTT.CACert != "" {
		if _, err := os.Stat(cfg.MQTT.CACert); err != nil {
			add("mqtt: cacert: %v", err)
		}
	}
	if strings.ContainsAny(cfg.MQTT.BaseTopic, "+#") {
		add("mqtt: base topic %q must not contain wildcards", cfg.MQTT.BaseTopic)
	}

	// ------------------------------------------------------------
	// SERIAL / POLL
	// ------------------------------------------------------------

	if cfg.Serial.Device == "" {
		add("serial: device is required")
	}
	if cfg.Serial.DeviceID < 1 || cfg.Serial.DeviceID > 247 {
		add("serial: device id %d must be 1..247", cfg.Serial.DeviceID)
	}
	if cfg.Poll.IntervalSeconds <= 0 {
		add("poll: interval must be > 0 (got %d)", cfg.Poll.IntervalSeconds)
	}
	if cfg.Model == "" {
		add("model is required")
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		add("log: %v", err)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "text", "json":
	default:
		add("log: format %q must be text or json", cfg.Log.Format)
	}

	// ------------------------------------------------------------
	// INFLUX (OPT-IN)
	// ------------------------------------------------------------

	if cfg.Influx.Enabled() {
		if cfg.Influx.Token == "" {
			add("influx: token is required when url is set")
		}
		if cfg.Influx.Org == "" {
			add("influx: org is required when url is set")
		}
		if cfg.Influx.Bucket == "" {
			add("influx: bucket is required when url is set")
		}
	}

	return errors.Join(errs...)
}
