package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Defaults for the svchost daemon.
const (
	DefaultMetricsAddr      = "127.0.0.1:9464"
	DefaultMetricsNamespace = "svchost"
	DefaultLogLevel         = "info"
)

// Config holds CLI configuration for svchost.
type Config struct {
	// WatchDir is the directory watched by the dirwatch service.
	// Empty disables the service.
	WatchDir string

	// MetricsAddr is the listen address of the metrics endpoint.
	// Empty disables the service.
	MetricsAddr      string
	MetricsNamespace string

	StartTimeout    time.Duration
	ShutdownTimeout time.Duration

	FailOnSetupNotStarted   bool
	FailOnSetupUnsuccessful bool

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:             DefaultMetricsAddr,
		MetricsNamespace:        DefaultMetricsNamespace,
		StartTimeout:            15 * time.Second,
		ShutdownTimeout:         30 * time.Second,
		FailOnSetupNotStarted:   true,
		FailOnSetupUnsuccessful: true,
		LogLevel:                DefaultLogLevel,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.WatchDir == "" && c.MetricsAddr == "" {
		return fmt.Errorf("nothing to run: set watch-dir or metrics-addr")
	}

	if c.MetricsNamespace == "" {
		c.MetricsNamespace = DefaultMetricsNamespace
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	if c.StartTimeout < 0 {
		return fmt.Errorf("start timeout must not be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}

	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = b
	return nil
}
