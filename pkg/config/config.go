package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig             `mapstructure:"server"`
	Audio    AudioConfig              `mapstructure:"audio"`
	Channels map[string]ChannelConfig `mapstructure:"channels"`
	Web      WebConfig                `mapstructure:"web"`
	MQTT     MQTTConfig               `mapstructure:"mqtt"`
	Logging  LoggingConfig            `mapstructure:"logging"`
	Metrics  MetricsConfig            `mapstructure:"metrics"`
	Database DatabaseConfig           `mapstructure:"database"`
}

// ServerConfig holds service identification
type ServerConfig struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
}

// AudioConfig holds the input stream configuration
type AudioConfig struct {
	Input      string `mapstructure:"input"`       // file path, or "-" for stdin
	Format     string `mapstructure:"format"`      // wav or raw16
	SampleRate int    `mapstructure:"sample_rate"` // Hz, used for raw16 input
	Channel    int    `mapstructure:"channel"`     // channel index for multichannel WAV
}

// ChannelConfig describes one monitored squelch channel
type ChannelConfig struct {
	Code     int     `mapstructure:"code"`     // DCS code, decimal
	Inverted bool    `mapstructure:"inverted"` // inverted stream polarity
	TailMs   float64 `mapstructure:"tail_ms"`  // squelch tail in milliseconds
}

// WebConfig holds web dashboard configuration
type WebConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// MQTTConfig holds MQTT client configuration
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	QoS         byte   `mapstructure:"qos"`
	Retained    bool   `mapstructure:"retained"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled    bool             `mapstructure:"enabled"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig holds Prometheus metrics configuration
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// DatabaseConfig holds detection log configuration
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from file and environment variables
func Load(configFile string) (*Config, error) {
	// Set defaults
	setDefaults()

	// Set config file
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/dcs-nexus")
	}

	// Environment variables
	viper.SetEnvPrefix("DCS")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is OK, use defaults
		} else if os.IsNotExist(err) {
			// File explicitly specified but doesn't exist - that's also OK
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal to struct
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.name", "DCS-Nexus")
	viper.SetDefault("server.description", "Go DCS squelch gate")

	// Audio defaults
	viper.SetDefault("audio.input", "-")
	viper.SetDefault("audio.format", "raw16")
	viper.SetDefault("audio.sample_rate", 16000)
	viper.SetDefault("audio.channel", 0)

	// Web defaults
	viper.SetDefault("web.enabled", true)
	viper.SetDefault("web.host", "0.0.0.0")
	viper.SetDefault("web.port", 8080)

	// MQTT defaults
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.topic_prefix", "dcs/nexus")
	viper.SetDefault("mqtt.client_id", "dcs-nexus")
	viper.SetDefault("mqtt.qos", 1)
	viper.SetDefault("mqtt.retained", false)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.prometheus.enabled", true)
	viper.SetDefault("metrics.prometheus.port", 9090)
	viper.SetDefault("metrics.prometheus.path", "/metrics")

	// Database defaults
	viper.SetDefault("database.enabled", true)
	viper.SetDefault("database.path", "dcs-nexus.db")
}

// DefaultTailMs is applied to channels that do not set tail_ms.
const DefaultTailMs = 250
