package hosting

import (
	"context"
	"errors"
	"fmt"

	"github.com/bft-labs/svchost/pkg/lifecycle"
	"github.com/bft-labs/svchost/pkg/log"
)

// ErrStartFailed is matched by every error Start returns.
var ErrStartFailed = errors.New("service start failed")

// StartError reports the setup outcome that made Start fail.
type StartError struct {
	Result lifecycle.SetupResult
	// Cause is the setup error recorded by the engine, if any.
	Cause error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("%s (%s)", ErrStartFailed, e.Result)
}

// Is makes StartError match ErrStartFailed.
func (e *StartError) Is(target error) bool {
	return target == ErrStartFailed
}

// Unwrap returns the recorded setup error.
func (e *StartError) Unwrap() error {
	return e.Cause
}

// HostedService runs a lifecycle.Service behind Start and Stop.
type HostedService struct {
	engine *lifecycle.Engine
	logger log.Logger
	name   string

	failOnSetupNotStarted   bool
	failOnSetupUnsuccessful bool
}

// New wraps svc in a HostedService logging to logger. A nil logger
// discards output.
func New(svc lifecycle.Service, logger log.Logger, opts ...Option) *HostedService {
	logger = log.OrNop(logger)

	o := options{name: "service"}
	for _, opt := range opts {
		opt(&o)
	}
	notStarted, unsuccessful := resolvePolicy(svc, o)

	observers := append([]lifecycle.Observer{newLogObserver(logger, o.name)}, o.observers...)
	engine := lifecycle.New(svc, lifecycle.WithObserver(lifecycle.Observers(observers...)))

	return &HostedService{
		engine:                  engine,
		logger:                  logger,
		name:                    o.name,
		failOnSetupNotStarted:   notStarted,
		failOnSetupUnsuccessful: unsuccessful,
	}
}

// Name returns the name used in log entries.
func (h *HostedService) Name() string {
	return h.name
}

// Start runs setup and waits for its outcome. ctx bounds setup only.
// It returns a *StartError when the outcome is one the policy rejects.
func (h *HostedService) Start(ctx context.Context) error {
	h.logger.Trace("hosted service starting",
		log.EventID(EventHostedServiceStarting),
		log.String("service", h.name),
	)

	result := h.engine.StartAndWait(ctx)
	switch {
	case result == lifecycle.SetupSuccessful:
		return nil
	case result == lifecycle.SetupNotStarted && !h.failOnSetupNotStarted:
		return nil
	case result == lifecycle.SetupUnsuccessful && !h.failOnSetupUnsuccessful:
		return nil
	default:
		return &StartError{Result: result, Cause: h.engine.Err()}
	}
}

// Stop requests teardown and waits until it finishes or ctx is done.
// Teardown is never aborted by ctx. Stop always returns nil; failures are
// only visible in the log.
func (h *HostedService) Stop(ctx context.Context) error {
	h.logger.Trace("hosted service stopping",
		log.EventID(EventHostedServiceStopping),
		log.String("service", h.name),
	)

	h.engine.Stop()
	select {
	case <-h.engine.Done():
	case <-ctx.Done():
		h.logger.Debug("stop wait abandoned, teardown continues in background",
			log.EventID(EventStopWaitAbandoned),
			log.String("service", h.name),
			log.Stringer("state", h.engine.State()),
		)
	}
	return nil
}

// State returns the current lifecycle state.
func (h *HostedService) State() lifecycle.State {
	return h.engine.State()
}

// Done returns a channel closed once the service is Stopped or Faulted.
func (h *HostedService) Done() <-chan struct{} {
	return h.engine.Done()
}

// Engine returns the underlying engine.
func (h *HostedService) Engine() *lifecycle.Engine {
	return h.engine
}
