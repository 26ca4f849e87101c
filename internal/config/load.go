// internal/config/load.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUsage is returned for command-line errors; usage has been printed.
var ErrUsage = errors.New("config: invalid command line")

// Load reads a YAML file over cfg. Keys absent from the file keep their
// current value.
func Load(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// Parse builds the configuration from defaults, an optional --config
// file and the command line, in increasing priority.
func Parse(args []string, output io.Writer) (*Config, error) {
	cfg := Default()

	if path := configPath(args); path != "" {
		if err := Load(path, cfg); err != nil {
			return nil, err
		}
	}

	fs := flag.NewFlagSet("isystem-bridge", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: isystem-bridge [flags] server")
		fs.PrintDefaults()
	}

	fs.String("config", "", "YAML configuration file")

	fs.StringVar(&cfg.MQTT.Username, "user", cfg.MQTT.Username, "MQTT username")
	fs.StringVar(&cfg.MQTT.Password, "password", cfg.MQTT.Password, "MQTT password")
	fs.BoolVar(&cfg.MQTT.TLS, "tls12", cfg.MQTT.TLS, "use TLS 1.2")
	fs.StringVar(&cfg.MQTT.CACert, "cacert", cfg.MQTT.CACert, "CA certificate bundle")
	fs.IntVar(&cfg.MQTT.Port, "port", cfg.MQTT.Port, "MQTT port (default 1883, 8883 with --tls12)")
	fs.StringVar(&cfg.MQTT.ClientID, "client-id", cfg.MQTT.ClientID, "MQTT client id (default generated)")
	fs.StringVar(&cfg.MQTT.BaseTopic, "base-topic", cfg.MQTT.BaseTopic, "topic prefix")
	fs.IntVar(&cfg.MQTT.QoS, "qos", cfg.MQTT.QoS, "QoS of published values")

	fs.IntVar(&cfg.Poll.IntervalSeconds, "interval", cfg.Poll.IntervalSeconds, "check interval in seconds")

	fs.StringVar(&cfg.Serial.Device, "serial", cfg.Serial.Device, "serial interface")
	fs.IntVar(&cfg.Serial.DeviceID, "deviceid", cfg.Serial.DeviceID, "Modbus device id")
	fs.BoolVar(&cfg.Serial.BiMaster, "bimaster", cfg.Serial.BiMaster, "bi-master mode (5s for peer, 5s for us)")

	fs.StringVar(&cfg.Model, "model", cfg.Model, "boiler model")

	fs.StringVar(&cfg.Log.Level, "log", cfg.Log.Level, "logging level")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "log format: text or json")

	fs.StringVar(&cfg.Metrics.Addr, "metrics-addr", cfg.Metrics.Addr, "Prometheus listen address (empty = disabled)")

	fs.StringVar(&cfg.Influx.URL, "influx-url", cfg.Influx.URL, "InfluxDB URL (empty = disabled)")
	fs.StringVar(&cfg.Influx.Token, "influx-token", cfg.Influx.Token, "InfluxDB token")
	fs.StringVar(&cfg.Influx.Org, "influx-org", cfg.Influx.Org, "InfluxDB organisation")
	fs.StringVar(&cfg.Influx.Bucket, "influx-bucket", cfg.Influx.Bucket, "InfluxDB bucket")

	// flags may follow the positional server
	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUsage, err)
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		rest = fs.Args()[1:]
	}

	switch len(positional) {
	case 0:
		if cfg.MQTT.Host == "" {
			fs.Usage()
			return nil, fmt.Errorf("%w: server is required", ErrUsage)
		}
	case 1:
		cfg.MQTT.Host = positional[0]
	default:
		fs.Usage()
		return nil, fmt.Errorf("%w: unexpected arguments %v", ErrUsage, positional[1:])
	}

	return cfg, nil
}

// configPath finds --config before the real parse so file values can
// become flag defaults.
func configPath(args []string) string {
	for i, a := range args {
		if a == "--" {
			return ""
		}
		name := strings.TrimLeft(a, "-")
		if name == a {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
