// Command powerstrip meters four switched outlets and enforces per-channel
// timers and daily usage limits. Live state is broadcast over WebSocket and
// optionally MQTT; a dashboard and JSON endpoints are served over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Naresh476n/iot1/internal/config"
	"github.com/Naresh476n/iot1/internal/engine"
	"github.com/Naresh476n/iot1/internal/hub"
	"github.com/Naresh476n/iot1/internal/metrics"
	"github.com/Naresh476n/iot1/internal/mqtt"
	"github.com/Naresh476n/iot1/internal/relay"
	"github.com/Naresh476n/iot1/internal/sensor"
	"github.com/Naresh476n/iot1/internal/status"
	"github.com/Naresh476n/iot1/internal/store"
	"github.com/Naresh476n/iot1/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (empty: defaults and POWERSTRIP_* env only)")
	addr := flag.String("addr", "", "HTTP listen address, overrides the config")
	broker := flag.String("broker", "", "MQTT broker URL, overrides the config")
	printState := flag.Bool("print-state", false, "print one round of sensor readings and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	if *broker != "" {
		cfg.MQTT.Broker = *broker
	}

	log := newLogger(cfg.Logging)

	if err := run(cfg, log, *printState); err != nil {
		log.WithError(err).Fatal("daemon failed")
	}
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

func run(cfg *config.Config, log *logrus.Logger, printState bool) error {
	readers, closeSensors, err := sensor.Probe(log, cfg.Sensors.Bus, cfg.SensorAddresses())
	if err != nil {
		return fmt.Errorf("init sensors: %w", err)
	}
	defer closeSensors()
	bank := sensor.NewBank(readers, log)

	if printState {
		return printReadings(bank)
	}

	relays := buildRelays(cfg, log)
	defer relays.Close()

	docs, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer docs.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		HTTPAddr:  cfg.HTTP.Addr,
		Broker:    cfg.MQTT.Broker,
		StoreKind: cfg.Store.Backend,
		DataDir:   dataDir(cfg),
	})

	broadcast := &engine.MultiBroadcaster{tracker, metrics.NewCollector()}
	eng := engine.New(engine.Options{
		Sensors:   bank,
		Relays:    relays,
		Settings:  store.NewSettings(docs, log),
		Notifs:    store.NewNotifications(docs, log),
		Broadcast: broadcast,
		Log:       log,
		Poll:      cfg.Engine.Poll,
	})

	h := hub.New(eng, log)

	var bridge *mqtt.Bridge
	if cfg.MQTT.Broker != "" {
		bridge, err = mqtt.NewBridge(cfg.MQTT.Broker, cfg.MQTT.ClientID, eng, log)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer bridge.Close()
	}

	// Transports register before the engine starts broadcasting.
	*broadcast = append(*broadcast, h)
	var bridgeStatus mqtt.ConnectionStatus
	if bridge != nil {
		*broadcast = append(*broadcast, bridge)
		bridgeStatus = bridge
	}

	srv := web.New(cfg.HTTP.Addr, tracker, docs, h, bridgeStatus, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"http":   cfg.HTTP.Addr,
		"broker": cfg.MQTT.Broker,
		"store":  cfg.Store.Backend,
		"poll":   cfg.Engine.Poll,
	}).Info("power strip daemon starting")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return eng.Run(ctx)
	})
	g.Go(func() error {
		return srv.ListenAndServe()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("power strip daemon stopped")
	return err
}

// buildRelays attaches the GPIO lines, falling back to a no-op driver so the
// daemon still meters and serves on machines without the relay hat.
func buildRelays(cfg *config.Config, log *logrus.Logger) relay.Driver {
	drv, err := relay.NewGPIO(cfg.Relays.Chip, cfg.Relays.Pins)
	if err != nil {
		log.WithError(err).Warn("gpio unavailable, relay switching disabled")
		return relay.Noop{}
	}
	log.WithFields(logrus.Fields{
		"chip": cfg.Relays.Chip,
		"pins": cfg.Relays.Pins,
	}).Info("relays attached")
	return drv
}

func buildStore(cfg *config.Config) (store.DocumentStore, error) {
	switch cfg.Store.Backend {
	case "redis":
		return store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
	case "memory":
		return store.NewMemStore(), nil
	default:
		return store.NewFileStore(cfg.Store.Dir)
	}
}

// dataDir is only meaningful for the file backend.
func dataDir(cfg *config.Config) string {
	if cfg.Store.Backend == "file" {
		return cfg.Store.Dir
	}
	return ""
}

func printReadings(bank *sensor.Bank) error {
	for i := 0; i < engine.NumChannels; i++ {
		v, a := bank.Read(i)
		fmt.Printf("channel %d: %.2fV %.3fA %.1fW\n", i+1, v, a, v*a)
	}
	return nil
}
