package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (SVCHOST_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("watch-dir", os.Getenv("SVCHOST_WATCH_DIR"), &cfg.WatchDir)
	s.setString("metrics-addr", os.Getenv("SVCHOST_METRICS_ADDR"), &cfg.MetricsAddr)
	s.setString("metrics-namespace", os.Getenv("SVCHOST_METRICS_NAMESPACE"), &cfg.MetricsNamespace)
	s.setString("log-level", os.Getenv("SVCHOST_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("start-timeout", os.Getenv("SVCHOST_START_TIMEOUT"), &cfg.StartTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv("SVCHOST_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}

	if err := s.setBoolFromString("fail-on-not-started", os.Getenv("SVCHOST_FAIL_ON_NOT_STARTED"), &cfg.FailOnSetupNotStarted); err != nil {
		return err
	}
	if err := s.setBoolFromString("fail-on-unsuccessful", os.Getenv("SVCHOST_FAIL_ON_UNSUCCESSFUL"), &cfg.FailOnSetupUnsuccessful); err != nil {
		return err
	}

	return nil
}
