// Package metricsserver provides a lifecycle service exposing a Prometheus
// gatherer over HTTP.
package metricsserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/svchost/pkg/lifecycle"
	"github.com/bft-labs/svchost/pkg/log"
)

// Config holds the HTTP endpoint settings.
type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:9464". Port 0 picks a free port.
	Addr string

	// Path serves the metrics. Default: /metrics
	Path string

	// ShutdownTimeout bounds the graceful shutdown of in-flight scrapes.
	// Default: 5 seconds
	ShutdownTimeout time.Duration
}

// Service serves /metrics and /healthz.
type Service struct {
	cfg      Config
	gatherer prometheus.Gatherer
	logger   log.Logger

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

// New creates a metrics endpoint for gatherer.
func New(cfg Config, gatherer prometheus.Gatherer, logger log.Logger) *Service {
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	logger = log.OrNop(logger)
	return &Service{cfg: cfg, gatherer: gatherer, logger: logger}
}

// Addr returns the bound address once Setup succeeded, or "".
func (s *Service) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Setup binds the listener so address errors surface as a failed start.
func (s *Service) Setup(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.mu.Lock()
	s.listener = ln
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	s.mu.Unlock()

	s.logger.Info("metrics endpoint listening",
		log.String("addr", ln.Addr().String()),
		log.String("path", s.cfg.Path))
	return nil
}

// Execute serves until ctx is canceled, then shuts the server down gracefully.
func (s *Service) Execute(ctx context.Context) error {
	s.mu.Lock()
	server, ln := s.server, s.listener
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve metrics: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("metrics endpoint shutdown incomplete", log.Err(err))
		}
		<-errCh
		return nil
	}
}

// Teardown force-closes whatever Execute did not shut down.
func (s *Service) Teardown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	err := s.server.Close()
	// Serve closes the listener; closing it again is harmless.
	_ = s.listener.Close()
	return err
}

// Ensure Service implements lifecycle.Service.
var _ lifecycle.Service = (*Service)(nil)
