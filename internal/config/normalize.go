// internal/config/normalize.go
package config

import (
	"strings"

	"github.com/google/uuid"
)

const (
	defaultPort    = 1883
	defaultTLSPort = 8883
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.MQTT.Port == 0 {
		cfg.MQTT.Port = defaultPort
		if cfg.MQTT.TLS {
			cfg.MQTT.Port = defaultTLSPort
		}
	}

	// Base topic is a prefix: always ends with a separator
	if cfg.MQTT.BaseTopic != "" && !strings.HasSuffix(cfg.MQTT.BaseTopic, "/") {
		cfg.MQTT.BaseTopic += "/"
	}

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "isystem-bridge-" + uuid.NewString()[:8]
	}

	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
