package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config holds the server settings, read from the environment and an optional .env file
type Config struct {
	Port            string        `mapstructure:"port"`
	Env             string        `mapstructure:"go_env"`
	DatabaseURL     string        `mapstructure:"database_url"`
	LogLevel        string        `mapstructure:"log_level"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	RandomSeed      int64         `mapstructure:"random_seed"`
	HistoryLimit    int           `mapstructure:"history_limit"`
	KafkaEnabled    bool          `mapstructure:"kafka_enabled"`
	KafkaBrokers    string        `mapstructure:"kafka_brokers"`
	KafkaTopic      string        `mapstructure:"kafka_topic"`
	ConsoleSink     bool          `mapstructure:"console_sink"`
}

var defaults = map[string]any{
	"port":             "8080",
	"go_env":           "development",
	"database_url":     "",
	"log_level":        "info",
	"refresh_interval": "30s",
	"random_seed":      0,
	"history_limit":    2880,
	"kafka_enabled":    false,
	"kafka_brokers":    "localhost:9092",
	"kafka_topic":      "traffic.snapshots",
	"console_sink":     false,
}

// Load reads envFiles (missing files are ignored) and then the process environment
func Load(envFiles ...string) (*Config, error) {
	// godotenv never overrides variables already set in the environment
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	decoderOption := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			dc.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
		dc.WeaklyTypedInput = true
	})
	if err := v.Unmarshal(&cfg, decoderOption); err != nil {
		return nil, fmt.Errorf("config: unable to decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("config: refresh interval must be positive, got %s", c.RefreshInterval)
	}
	if c.KafkaEnabled && len(c.Brokers()) == 0 {
		return fmt.Errorf("config: kafka enabled without brokers")
	}
	return nil
}

// Brokers splits the comma-separated broker list
func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
