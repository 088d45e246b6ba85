package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/svchost/internal/cliconfig"
	"github.com/bft-labs/svchost/pkg/host"
	"github.com/bft-labs/svchost/pkg/hosting"
	"github.com/bft-labs/svchost/pkg/lifecycle"
	"github.com/bft-labs/svchost/pkg/log"
	"github.com/bft-labs/svchost/pkg/metrics"
	"github.com/bft-labs/svchost/plugins/dirwatch"
	"github.com/bft-labs/svchost/plugins/metricsserver"
)

const helpDescription = `
Run background services under a managed lifecycle.

Each service goes through setup, execution and teardown. svchost starts
them in order, waits for a signal and stops them in reverse order with a
bounded grace period.

Built-in services:
  - dirwatch:      watches a directory and logs debounced changes.
  - metrics:       serves lifecycle and process metrics for Prometheus.
`

var exampleUsage = strings.TrimSpace(`
  svchost --watch-dir /srv/inbox
  svchost --metrics-addr :9464 --log-level trace
  svchost --config $HOME/.svchost/config.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	zl := log.NewConsoleLogger(os.Stderr, zerolog.InfoLevel)

	root := &cobra.Command{
		Use:          "svchost",
		Short:        "Run background services under a managed lifecycle",
		Long:         strings.TrimSpace(helpDescription),
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// SVCHOST_* override the file but not explicit flags.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			zl = zl.Level(cfg.Level())
			zl.Info().Interface("config", cfg).Msg("configuration")

			h, err := newHost(cfg, log.NewZerologAdapterWithLogger(zl))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return h.Run(ctx)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.svchost/config.toml)")
	root.Flags().StringVar(&cfg.WatchDir, "watch-dir", cfg.WatchDir, "directory watched by the dirwatch service (empty disables it)")
	root.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "listen address of the metrics endpoint (empty disables it)")
	root.Flags().StringVar(&cfg.MetricsNamespace, "metrics-namespace", cfg.MetricsNamespace, "Prometheus namespace of lifecycle metrics")
	if err := root.Flags().MarkHidden("metrics-namespace"); err != nil {
		zl.Info().Err(err).Msg("failed to hide metrics-namespace flag")
	}

	root.Flags().DurationVar(&cfg.StartTimeout, "start-timeout", cfg.StartTimeout, "maximum time a single service may take to start (0 = unbounded)")
	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "maximum time to wait for a single service to stop")
	root.Flags().BoolVar(&cfg.FailOnSetupNotStarted, "fail-on-not-started", cfg.FailOnSetupNotStarted, "treat a service that declined to start as a startup failure")
	root.Flags().BoolVar(&cfg.FailOnSetupUnsuccessful, "fail-on-unsuccessful", cfg.FailOnSetupUnsuccessful, "treat a failed service setup as a startup failure")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		zl.Error().Err(err).Msg("svchost")
		os.Exit(1)
	}
}

// newHost wires the enabled services into a host. The metrics endpoint is
// registered first so it is up while the others start and down last.
func newHost(cfg cliconfig.Config, logger log.Logger) (*host.Host, error) {
	h, err := host.New(logger,
		host.WithStartTimeout(cfg.StartTimeout),
		host.WithShutdownTimeout(cfg.ShutdownTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create host: %w", err)
	}

	collector := metrics.NewCollector(cfg.MetricsNamespace)

	add := func(name string, svc lifecycle.Service) error {
		hosted := hosting.New(svc, logger,
			hosting.WithName(name),
			hosting.WithFailOnSetupNotStarted(cfg.FailOnSetupNotStarted),
			hosting.WithFailOnSetupUnsuccessful(cfg.FailOnSetupUnsuccessful),
			hosting.WithObserver(collector.Observer(name)),
		)
		return h.Add(name, hosted)
	}

	if cfg.MetricsAddr != "" {
		srv := metricsserver.New(metricsserver.Config{Addr: cfg.MetricsAddr}, collector.Registry(), logger)
		if err := add("metrics", srv); err != nil {
			return nil, err
		}
	}

	if cfg.WatchDir != "" {
		dcfg := dirwatch.DefaultConfig()
		dcfg.Dir = cfg.WatchDir
		if err := add("dirwatch", dirwatch.New(dcfg, logger)); err != nil {
			return nil, err
		}
	}

	return h, nil
}
