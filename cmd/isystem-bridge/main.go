// cmd/isystem-bridge/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/isystem-bridge/internal/bridge"
	"github.com/tamzrod/isystem-bridge/internal/bus"
	"github.com/tamzrod/isystem-bridge/internal/config"
	"github.com/tamzrod/isystem-bridge/internal/history"
	"github.com/tamzrod/isystem-bridge/internal/logging"
	"github.com/tamzrod/isystem-bridge/internal/metrics"
	"github.com/tamzrod/isystem-bridge/internal/modbus"
	"github.com/tamzrod/isystem-bridge/internal/mqtt"
	"github.com/tamzrod/isystem-bridge/internal/poller"
	"github.com/tamzrod/isystem-bridge/internal/scheduler"
	"github.com/tamzrod/isystem-bridge/internal/table"
	"github.com/tamzrod/isystem-bridge/internal/writer"
)

func main() {
	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Parse(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		logrus.Fatalf("config: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	log, err := logging.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("logging: %v", err)
	}

	tbl, err := table.ForModel(cfg.Model)
	if err != nil {
		log.Fatalf("model %q: %v", cfg.Model, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Metrics (opt-in)
	// --------------------

	var m *metrics.Metrics
	if cfg.Metrics.Addr != "" {
		m = metrics.New()
	}

	// --------------------
	// Modbus + bus arbitration
	// --------------------

	client, err := modbus.New(modbus.Config{
		Device:   cfg.Serial.Device,
		BaudRate: modbus.DefaultBaudRate,
		SlaveID:  byte(cfg.Serial.DeviceID),
		Timeout:  modbus.DefaultTimeout,
	})
	if err != nil {
		log.Fatalf("modbus client: %v", err)
	}
	defer client.Close()

	slot := bus.DefaultSlotConfig()
	arb, err := bus.New(bus.Options{
		BiMaster:  cfg.Serial.BiMaster,
		Slot:      slot,
		Transport: bus.NewSerialTransport(cfg.Serial.Device, modbus.DefaultBaudRate),
		Logger:    log,
		Metrics:   m,
	})
	if err != nil {
		log.Fatalf("bus arbitrator: %v", err)
	}

	// --------------------
	// History (opt-in)
	// --------------------

	var rec bridge.Recorder
	if cfg.Influx.Enabled() {
		h, err := history.Connect(cfg.Influx, log)
		if err != nil {
			log.Fatalf("history: %v", err)
		}
		defer h.Close()
		rec = h
	}

	// --------------------
	// Broker session
	// --------------------

	queue := writer.NewQueue()

	session, err := mqtt.Connect(cfg.MQTT, bridge.LastWill(cfg.MQTT.BaseTopic), nil, log)
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}

	br, err := bridge.New(session, queue, tbl, bridge.Options{
		BaseTopic: cfg.MQTT.BaseTopic,
		QoS:       byte(cfg.MQTT.QoS),
		History:   rec,
		Logger:    log,
		Metrics:   m,
	})
	if err != nil {
		log.Fatalf("bridge: %v", err)
	}
	defer br.Close()

	if err := br.Start(); err != nil {
		log.Fatalf("bridge start: %v", err)
	}

	if m != nil {
		srv := metrics.NewServer(cfg.Metrics.Addr, m, br.Healthy, log)
		go func() {
			if err := srv.Serve(ctx); err != nil {
				log.WithError(err).Error("metrics endpoint stopped")
			}
		}()
	}

	// --------------------
	// Scheduler (bus owner)
	// --------------------

	p, err := poller.New(poller.Config{BaseTopic: cfg.MQTT.BaseTopic}, client, tbl)
	if err != nil {
		log.Fatalf("poller: %v", err)
	}
	w, err := writer.New(cfg.MQTT.BaseTopic, tbl, client)
	if err != nil {
		log.Fatalf("writer: %v", err)
	}

	sched, err := scheduler.New(scheduler.Options{
		Interval:   cfg.Poll.Interval(),
		BiMaster:   cfg.Serial.BiMaster,
		Slot:       slot,
		Arbitrator: arb,
		Port:       client,
		Poller:     p,
		Writer:     w,
		Queue:      queue,
		Publisher:  br,
		Logger:     log,
		Metrics:    m,
	})
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}

	log.WithFields(logrus.Fields{
		"model":  cfg.Model,
		"serial": cfg.Serial.Device,
		"broker": cfg.MQTT.Host,
		"base":   cfg.MQTT.BaseTopic,
	}).Info("isystem bridge started")

	if err := sched.Run(ctx); err != nil {
		log.WithError(err).Error("scheduler failed")
	}
}
