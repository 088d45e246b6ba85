// Package host runs a set of background services for the lifetime of a
// context: it starts them in registration order and stops them in reverse
// order, bounding how long each stop may block.
package host

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bft-labs/svchost/pkg/hosting"
	"github.com/bft-labs/svchost/pkg/lifecycle"
	"github.com/bft-labs/svchost/pkg/log"
)

// Service is the contract the host drives. Start is called once and may
// block until the service is ready; Stop may be called without a prior
// successful Start and must then be a no-op.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Common host errors.
var (
	ErrAlreadyRunning = errors.New("host already running")
	ErrDuplicateName  = errors.New("duplicate service name")
)

const (
	// DefaultStartTimeout is the default bound on a single service start.
	DefaultStartTimeout = 30 * time.Second

	// ShutdownTimeout is the default maximum time to wait for one service to stop.
	ShutdownTimeout = 30 * time.Second
)

// Option configures a Host.
type Option func(*Host)

// WithStartTimeout bounds each service start. Zero disables the bound.
func WithStartTimeout(d time.Duration) Option {
	return func(h *Host) {
		h.startTimeout = d
	}
}

// WithShutdownTimeout bounds each service stop.
func WithShutdownTimeout(d time.Duration) Option {
	return func(h *Host) {
		if d > 0 {
			h.shutdownTimeout = d
		}
	}
}

type entry struct {
	name string
	svc  Service
}

// Host owns an ordered list of services.
type Host struct {
	logger          log.Logger
	startTimeout    time.Duration
	shutdownTimeout time.Duration

	mu       sync.Mutex
	services []entry
	running  bool
}

// New creates an empty host. It fails if the linked modules are not
// version compatible.
func New(logger log.Logger, opts ...Option) (*Host, error) {
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}
	logger = log.OrNop(logger)
	h := &Host{
		logger:          logger,
		startTimeout:    DefaultStartTimeout,
		shutdownTimeout: ShutdownTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Add registers svc under name. Services start in the order they are added.
func (h *Host) Add(name string, svc Service) error {
	if svc == nil {
		return fmt.Errorf("service %q cannot be nil", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return ErrAlreadyRunning
	}
	for _, e := range h.services {
		if e.name == name {
			return fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
	}
	h.services = append(h.services, entry{name: name, svc: svc})
	return nil
}

// Run starts every service, blocks until ctx is done, then stops them.
// If a start fails, the services already started are stopped and the
// start error is returned.
func (h *Host) Run(ctx context.Context) error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return ErrAlreadyRunning
	}
	h.running = true
	services := append([]entry(nil), h.services...)
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
	}()

	started, err := h.startAll(ctx, services)
	if err != nil {
		h.stopAll(started)
		return err
	}

	h.logger.Info("all services started", log.Int("count", len(services)))
	<-ctx.Done()
	h.logger.Info("shutting down", log.Int("count", len(started)))

	h.stopAll(started)
	return nil
}

func (h *Host) startAll(ctx context.Context, services []entry) ([]entry, error) {
	started := make([]entry, 0, len(services))
	for _, e := range services {
		// Stop is safe on a service whose start failed.
		started = append(started, e)

		startCtx, cancel := ctx, context.CancelFunc(func() {})
		if h.startTimeout > 0 {
			startCtx, cancel = context.WithTimeout(ctx, h.startTimeout)
		}
		begin := time.Now()
		err := e.svc.Start(startCtx)
		cancel()

		if err != nil {
			h.logger.Error("service start failed",
				log.String("service", e.name),
				log.Err(err))
			return started, fmt.Errorf("start %s: %w", e.name, err)
		}
		h.logger.Info("service started",
			log.String("service", e.name),
			log.Duration("duration", time.Since(begin)))
	}
	return started, nil
}

// stopAll stops services in reverse order, each bounded by shutdownTimeout.
func (h *Host) stopAll(services []entry) {
	for i := len(services) - 1; i >= 0; i-- {
		e := services[i]
		stopCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		begin := time.Now()
		if err := e.svc.Stop(stopCtx); err != nil {
			h.logger.Error("service stop failed",
				log.String("service", e.name),
				log.Err(err))
		} else if stopCtx.Err() != nil {
			h.logger.Warn("service stop timed out, continuing shutdown",
				log.String("service", e.name),
				log.Duration("timeout", h.shutdownTimeout))
		} else {
			h.logger.Info("service stopped",
				log.String("service", e.name),
				log.Duration("duration", time.Since(begin)))
		}
		cancel()
	}
}

// versionRequirement states that module must be at least need. have is the
// version linked into the binary.
type versionRequirement struct {
	module string
	have   string
	need   string
}

// moduleRequirements lists every version constraint between the modules a
// host links against.
func moduleRequirements() []versionRequirement {
	return []versionRequirement{
		{"lifecycle", lifecycle.Version, lifecycle.MinCompatibleVersion},
		{"log", log.Version, log.MinCompatibleVersion},
		{"hosting", hosting.Version, hosting.MinCompatibleVersion},
		{"lifecycle (required by hosting)", lifecycle.Version, hosting.RequiredLifecycleVersion},
	}
}

func validateModuleVersions() error {
	return checkVersions(moduleRequirements())
}

// checkVersions reports every unmet or malformed requirement, not just the
// first one.
func checkVersions(reqs []versionRequirement) error {
	var errs []error
	for _, r := range reqs {
		ok, err := versionAtLeast(r.have, r.need)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("module %s: %w", r.module, err))
		case !ok:
			errs = append(errs, fmt.Errorf("module %s version %s is below required version %s",
				r.module, r.have, r.need))
		}
	}
	return errors.Join(errs...)
}

// versionAtLeast reports whether have >= need. Both must be plain
// "major.minor.patch" strings.
func versionAtLeast(have, need string) (bool, error) {
	h, err := parseVersion(have)
	if err != nil {
		return false, err
	}
	n, err := parseVersion(need)
	if err != nil {
		return false, err
	}
	for i := range h {
		if h[i] != n[i] {
			return h[i] > n[i], nil
		}
	}
	return true, nil
}

func parseVersion(v string) ([3]int, error) {
	var out [3]int
	parts := strings.Split(v, ".")
	if len(parts) != len(out) {
		return out, fmt.Errorf("malformed version %q", v)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return out, fmt.Errorf("malformed version %q", v)
		}
		out[i] = n
	}
	return out, nil
}
