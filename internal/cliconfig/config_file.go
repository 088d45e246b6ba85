package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	WatchDir                string `toml:"watch_dir"`
	MetricsAddr             string `toml:"metrics_addr"`
	MetricsNamespace        string `toml:"metrics_namespace"`
	StartTimeout            string `toml:"start_timeout"`
	ShutdownTimeout         string `toml:"shutdown_timeout"`
	FailOnSetupNotStarted   *bool  `toml:"fail_on_setup_not_started"`
	FailOnSetupUnsuccessful *bool  `toml:"fail_on_setup_unsuccessful"`
	LogLevel                string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.svchost/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".svchost", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("watch-dir", fc.WatchDir, &cfg.WatchDir)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setString("metrics-namespace", fc.MetricsNamespace, &cfg.MetricsNamespace)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("start-timeout", fc.StartTimeout, &cfg.StartTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}

	s.setBool("fail-on-not-started", fc.FailOnSetupNotStarted, &cfg.FailOnSetupNotStarted)
	s.setBool("fail-on-unsuccessful", fc.FailOnSetupUnsuccessful, &cfg.FailOnSetupUnsuccessful)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
