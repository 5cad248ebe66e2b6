package config

import (
	"fmt"
	"strings"

	"github.com/dbehnke/dcs-nexus/pkg/dcs"
)

// validate validates the configuration and fills per-channel defaults
func validate(cfg *Config) error {
	// Validate audio config
	format := strings.ToLower(cfg.Audio.Format)
	if format != "wav" && format != "raw16" {
		return fmt.Errorf("audio.format must be wav or raw16, got %q", cfg.Audio.Format)
	}
	cfg.Audio.Format = format
	if cfg.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive")
	}
	if cfg.Audio.Channel < 0 {
		return fmt.Errorf("audio.channel must not be negative")
	}
	if cfg.Audio.Input == "" {
		return fmt.Errorf("audio.input is required (use \"-\" for stdin)")
	}

	// Validate channels
	for name, ch := range cfg.Channels {
		if !dcs.ValidCode(ch.Code) {
			return fmt.Errorf("channel %s: %d is not a DCS code", name, ch.Code)
		}
		if ch.TailMs < 0 {
			return fmt.Errorf("channel %s: tail_ms must not be negative", name)
		}
		if ch.TailMs == 0 {
			ch.TailMs = DefaultTailMs
			cfg.Channels[name] = ch
		}
	}

	// Validate web config
	if cfg.Web.Enabled {
		if cfg.Web.Port <= 0 || cfg.Web.Port > 65535 {
			return fmt.Errorf("web.port must be between 1 and 65535")
		}
	}

	// Validate MQTT config
	if cfg.MQTT.Enabled {
		if cfg.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
		}
	}

	// Validate metrics config
	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		if cfg.Metrics.Prometheus.Port <= 0 || cfg.Metrics.Prometheus.Port > 65535 {
			return fmt.Errorf("metrics.prometheus.port must be between 1 and 65535")
		}
	}

	// Validate database config
	if cfg.Database.Enabled && cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required when database is enabled")
	}

	return nil
}
