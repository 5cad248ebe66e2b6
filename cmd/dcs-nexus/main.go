package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/dbehnke/dcs-nexus/pkg/audio"
	"github.com/dbehnke/dcs-nexus/pkg/config"
	"github.com/dbehnke/dcs-nexus/pkg/database"
	"github.com/dbehnke/dcs-nexus/pkg/dcs"
	"github.com/dbehnke/dcs-nexus/pkg/logger"
	"github.com/dbehnke/dcs-nexus/pkg/metrics"
	"github.com/dbehnke/dcs-nexus/pkg/mqtt"
	"github.com/dbehnke/dcs-nexus/pkg/squelch"
	"github.com/dbehnke/dcs-nexus/pkg/web"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

const blockSize = 1024

// channelGate bundles a configured channel with its gate.
type channelGate struct {
	name string
	gate *squelch.Gate
}

func main() {
	// Parse command line flags
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	validate := flag.Bool("validate", false, "Validate configuration and exit")
	selftest := flag.Bool("selftest", false, "Run each configured channel against a generated tone and exit")
	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("DCS-Nexus %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Validate only mode
	if *validate {
		fmt.Println("Configuration is valid")
		os.Exit(0)
	}

	// Self test mode: decode a synthesized tone per channel
	if *selftest {
		os.Exit(runSelfTest(cfg))
	}

	// Initialize logger from configuration
	logCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logCfg.Output = f
	}
	log := logger.New(logCfg)

	log.Info("Starting DCS-Nexus",
		logger.String("version", version),
		logger.String("build_time", buildTime),
		logger.String("config_file", *configFile))

	if len(cfg.Channels) == 0 {
		log.Error("No channels configured")
		os.Exit(1)
	}

	web.SetVersionInfo(version, commit, buildTime)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize wait group for goroutines
	var wg sync.WaitGroup

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector()

	// Start Prometheus metrics server if enabled
	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metricsServer := metrics.NewPrometheusServer(
				metrics.PrometheusConfig{
					Enabled: cfg.Metrics.Prometheus.Enabled,
					Port:    cfg.Metrics.Prometheus.Port,
					Path:    cfg.Metrics.Prometheus.Path,
				},
				metricsCollector,
				log.WithComponent("metrics"),
			)
			if err := metricsServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Prometheus metrics server error", logger.Error(err))
			}
		}()
	}

	// Initialize MQTT publisher if enabled
	var mqttPublisher *mqtt.Publisher
	if cfg.MQTT.Enabled {
		mqttPublisher = mqtt.New(
			mqtt.Config{
				Enabled:     cfg.MQTT.Enabled,
				Broker:      cfg.MQTT.Broker,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				ClientID:    cfg.MQTT.ClientID,
				Username:    cfg.MQTT.Username,
				Password:    cfg.MQTT.Password,
				QoS:         cfg.MQTT.QoS,
				Retained:    cfg.MQTT.Retained,
			},
			log.WithComponent("mqtt"),
		)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := mqttPublisher.Start(ctx); err != nil && err != context.Canceled {
				log.Error("MQTT publisher error", logger.Error(err))
			}
		}()
	}

	// Initialize detection log if enabled
	var detectionRepo *database.DetectionRepository
	if cfg.Database.Enabled {
		db, err := database.NewDB(database.Config{Path: cfg.Database.Path}, log.WithComponent("database"))
		if err != nil {
			log.Error("Failed to open detection log", logger.Error(err))
			os.Exit(1)
		}
		defer db.Close()
		detectionRepo = database.NewDetectionRepository(db.GetDB())
	}

	// Build one gate per configured channel
	names := make([]string, 0, len(cfg.Channels))
	for name := range cfg.Channels {
		names = append(names, name)
	}
	sort.Strings(names)

	gates := make([]*channelGate, 0, len(names))
	for _, name := range names {
		ch := cfg.Channels[name]
		gate := squelch.NewGate(cfg.Audio.SampleRate, squelch.Config{
			Code:     ch.Code,
			Inverted: ch.Inverted,
			TailMs:   ch.TailMs,
		})
		gates = append(gates, &channelGate{name: name, gate: gate})
		log.Info("Channel configured",
			logger.String("channel", name),
			logger.String("designator", dcs.FormatCode(ch.Code, ch.Inverted)),
			logger.Duration("tail", time.Duration(ch.TailMs)*time.Millisecond))
	}

	// Start web server if enabled
	var hub *web.WebSocketHub
	if cfg.Web.Enabled {
		srv := web.NewServer(cfg.Web, log.WithComponent("web"))
		hub = srv.GetHub()

		if detectionRepo != nil {
			srv.GetAPI().SetDetectionStore(detectionRepo)
		}
		srv.GetAPI().SetChannelStatusFunc(func() []web.ChannelStatus {
			statuses := make([]web.ChannelStatus, 0, len(gates))
			for _, cg := range gates {
				code, inverted := cg.gate.Target()
				statuses = append(statuses, web.ChannelStatus{
					Name:       cg.name,
					Designator: dcs.FormatCode(code, inverted),
					Open:       cg.gate.IsOpen(),
				})
			}
			return statuses
		})

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Web server error", logger.Error(err))
			}
		}()
	}

	// Wire per-channel event fan-out
	for _, cg := range gates {
		cg := cg
		chLog := log.WithComponent("squelch")

		cg.gate.SetDetectionHook(func(code int, inverted bool) {
			designator := dcs.FormatCode(code, inverted)
			metricsCollector.Detection(designator)
			chLog.Debug("Detection",
				logger.String("channel", cg.name),
				logger.String("designator", designator))
			if mqttPublisher != nil {
				if err := mqttPublisher.PublishDetection(mqtt.DetectionEvent{
					Channel:    cg.name,
					Code:       code,
					Designator: designator,
					Inverted:   inverted,
					Timestamp:  time.Now(),
				}); err != nil {
					chLog.Warn("Failed to publish detection", logger.Error(err))
				}
			}
			if hub != nil {
				hub.BroadcastDetection(cg.name, code, designator, inverted)
			}
			if detectionRepo != nil {
				if err := detectionRepo.RecordDetection(cg.name, code, designator, inverted, time.Now()); err != nil {
					chLog.Warn("Failed to record detection", logger.Error(err))
				}
			}
		})

		cg.gate.SetHooks(
			func() { squelchTransition(cg, true, chLog, metricsCollector, mqttPublisher, hub) },
			func() { squelchTransition(cg, false, chLog, metricsCollector, mqttPublisher, hub) },
		)
	}

	// Open the audio input
	source, closeInput, err := openSource(cfg.Audio)
	if err != nil {
		log.Error("Failed to open audio input", logger.Error(err))
		os.Exit(1)
	}
	defer closeInput()

	log.Info("Audio input opened",
		logger.String("input", cfg.Audio.Input),
		logger.String("format", cfg.Audio.Format),
		logger.Int("sample_rate", source.SampleRate()))

	// Periodically push decoder counters into the metrics collector
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				var bits, corrections, misses uint64
				for _, cg := range gates {
					stats := cg.gate.DecoderStats()
					bits += stats.BitsSliced
					corrections += stats.CorrectionsApplied
					misses += stats.WindowMisses
				}
				metricsCollector.SetDecoderCounters(bits, corrections, misses)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Pump the audio stream through the gates. Not added to the wait
	// group: a blocking Read on stdin cannot be interrupted, and the
	// goroutine dies with the process.
	pumpDone := make(chan error, 1)
	go func() {
		pumpDone <- pump(ctx, source, gates, metricsCollector)
	}()

	// Wait for shutdown signal or end of input
	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", logger.String("signal", sig.String()))
	case err := <-pumpDone:
		if err != nil && err != context.Canceled {
			log.Error("Audio pump error", logger.Error(err))
		} else {
			log.Info("Audio input ended")
		}
	}

	// Cancel context to trigger graceful shutdown
	cancel()

	// Stop MQTT publisher if running
	if mqttPublisher != nil {
		mqttPublisher.Stop()
	}

	// Wait for all components to stop
	wg.Wait()

	log.Info("DCS-Nexus stopped")
}

// runSelfTest feeds each configured channel a generated tone of its own
// target and checks that the gate opens. Returns the process exit code.
func runSelfTest(cfg *config.Config) int {
	names := make([]string, 0, len(cfg.Channels))
	for name := range cfg.Channels {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := 0
	for _, name := range names {
		ch := cfg.Channels[name]
		gate := squelch.NewGate(cfg.Audio.SampleRate, squelch.Config{
			Code:     ch.Code,
			Inverted: ch.Inverted,
			TailMs:   ch.TailMs,
		})

		tone, err := audio.NewTone(ch.Code, ch.Inverted, cfg.Audio.SampleRate, 0.5)
		if err != nil {
			fmt.Printf("FAIL %s (%s): %v\n", name, dcs.FormatCode(ch.Code, ch.Inverted), err)
			failed++
			continue
		}

		// Two seconds of tone (268 bits) is ample for confirmation
		total := int(2 * 134 * float64(cfg.Audio.SampleRate) / 134.4)
		in := make([]float32, blockSize)
		out := make([]float32, blockSize)
		for total > 0 && !gate.IsOpen() {
			n := blockSize
			if total < n {
				n = total
			}
			if _, err := tone.Read(in[:n]); err != nil {
				break
			}
			gate.Process(in[:n], out[:n])
			total -= n
		}

		if gate.IsOpen() {
			fmt.Printf("ok   %s (%s)\n", name, dcs.FormatCode(ch.Code, ch.Inverted))
		} else {
			fmt.Printf("FAIL %s (%s): gate did not open\n", name, dcs.FormatCode(ch.Code, ch.Inverted))
			failed++
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}

// openSource opens the configured audio input and returns the sample
// source plus a cleanup function.
func openSource(cfg config.AudioConfig) (audio.Source, func(), error) {
	var r io.Reader
	cleanup := func() {}

	if cfg.Input == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(cfg.Input)
		if err != nil {
			return nil, nil, err
		}
		r = f
		cleanup = func() { _ = f.Close() }
	}

	switch cfg.Format {
	case "wav":
		src, err := audio.NewWAVSource(r, cfg.Channel)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		return src, cleanup, nil
	case "raw16":
		return audio.NewRawSource(r, cfg.SampleRate), cleanup, nil
	default:
		cleanup()
		return nil, nil, fmt.Errorf("unsupported audio format: %s", cfg.Format)
	}
}

// pump reads the source in blocks and runs every gate over each block.
func pump(ctx context.Context, source audio.Source, gates []*channelGate, collector *metrics.Collector) error {
	in := make([]float32, blockSize)
	out := make([]float32, blockSize)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		n, err := source.Read(in)
		if n > 0 {
			collector.SamplesProcessed(n)
			for _, cg := range gates {
				cg.gate.Process(in[:n], out[:n])
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// squelchTransition fans a gate transition out to metrics, MQTT and the
// web dashboard.
func squelchTransition(cg *channelGate, open bool, log *logger.Logger, collector *metrics.Collector, pub *mqtt.Publisher, hub *web.WebSocketHub) {
	code, inverted := cg.gate.Target()
	designator := dcs.FormatCode(code, inverted)

	if open {
		collector.SquelchOpened(cg.name)
		log.Info("Squelch opened",
			logger.String("channel", cg.name),
			logger.String("designator", designator))
	} else {
		collector.SquelchClosed(cg.name)
		log.Info("Squelch closed",
			logger.String("channel", cg.name),
			logger.String("designator", designator))
	}

	if pub != nil {
		if err := pub.PublishSquelch(mqtt.SquelchEvent{
			Channel:    cg.name,
			Designator: designator,
			Open:       open,
			Timestamp:  time.Now(),
		}); err != nil {
			log.Warn("Failed to publish squelch transition", logger.Error(err))
		}
	}
	if hub != nil {
		hub.BroadcastSquelch(cg.name, designator, open)
	}
}
