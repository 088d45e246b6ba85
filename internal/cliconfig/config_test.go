package cliconfig

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MetricsAddr != DefaultMetricsAddr {
		t.Errorf("MetricsAddr = %v, want %v", cfg.MetricsAddr, DefaultMetricsAddr)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
	if !cfg.FailOnSetupNotStarted || !cfg.FailOnSetupUnsuccessful {
		t.Errorf("setup policy = %v/%v, want true/true", cfg.FailOnSetupNotStarted, cfg.FailOnSetupUnsuccessful)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, DefaultLogLevel)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name          string
		config        Config
		wantErr       bool
		wantNamespace string
	}{
		{
			name: "valid metrics only",
			config: Config{
				MetricsAddr:     ":0",
				ShutdownTimeout: time.Second,
			},
			wantErr:       false,
			wantNamespace: DefaultMetricsNamespace,
		},
		{
			name: "valid watch dir only",
			config: Config{
				WatchDir:        "/tmp",
				ShutdownTimeout: time.Second,
				LogLevel:        "debug",
			},
			wantErr: false,
		},
		{
			name: "nothing to run",
			config: Config{
				ShutdownTimeout: time.Second,
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			config: Config{
				MetricsAddr:     ":0",
				ShutdownTimeout: time.Second,
				LogLevel:        "loud",
			},
			wantErr: true,
		},
		{
			name: "negative start timeout",
			config: Config{
				MetricsAddr:     ":0",
				StartTimeout:    -1,
				ShutdownTimeout: time.Second,
			},
			wantErr: true,
		},
		{
			name: "zero shutdown timeout",
			config: Config{
				MetricsAddr: ":0",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.wantNamespace != "" && tt.config.MetricsNamespace != tt.wantNamespace {
				t.Errorf("MetricsNamespace = %v, want %v", tt.config.MetricsNamespace, tt.wantNamespace)
			}
		})
	}
}

func TestConfig_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"trace", zerolog.TraceLevel},
		{"warn", zerolog.WarnLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		c := Config{LogLevel: tt.level}
		if got := c.Level(); got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
