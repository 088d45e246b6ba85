package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Option configures an Engine.
type Option func(*Engine)

// WithObserver sets the observer notified of transitions and phase outcomes.
// Use Observers to combine several.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// Engine runs one service through setup, execution and teardown.
// An Engine is single-use: once Stopped or Faulted it stays there.
type Engine struct {
	svc      Service
	observer Observer

	// mu guards every state change and the fields below it.
	mu          sync.Mutex
	launched    bool
	stopping    bool
	cancelSetup context.CancelFunc

	// Notifications are queued under mu in the order of the state changes
	// and delivered outside any lock by one goroutine at a time.
	queue      []func(Observer)
	queued     uint64
	delivered  uint64
	delivering bool
	flushed    *sync.Cond

	state  atomic.Int32
	result atomic.Int32

	errMu sync.Mutex
	err   error

	stopCh chan struct{}
	ready  chan struct{}
	done   chan struct{}
}

// New creates an engine for svc in StateCreated.
func New(svc Service, opts ...Option) *Engine {
	e := &Engine{
		svc:      svc,
		observer: BaseObserver{},
		stopCh:   make(chan struct{}),
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}
	e.flushed = sync.NewCond(&e.mu)
	e.state.Store(int32(StateCreated))
	e.result.Store(int32(SetupNotStarted))
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// SetupResult returns the recorded setup outcome. It is SetupNotStarted
// until Ready is closed.
func (e *Engine) SetupResult() SetupResult {
	return SetupResult(e.result.Load())
}

// Err returns the error that made setup fail or execution fault, if any.
func (e *Engine) Err() error {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.err
}

// Ready returns a channel closed once the setup outcome is recorded.
func (e *Engine) Ready() <-chan struct{} {
	return e.ready
}

// Done returns a channel closed once the engine is terminal and no hook is
// running anymore.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// StartAndWait starts the service if nobody has yet and waits for the setup
// outcome. Concurrent and later callers all get the outcome of the single
// setup run; ctx only matters to the caller that launches it.
func (e *Engine) StartAndWait(ctx context.Context) SetupResult {
	e.mu.Lock()
	if !e.launched && !e.stopping {
		e.launched = true
		setupCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		e.cancelSetup = cancel
		go e.run(ctx, setupCtx, cancel)
	}
	e.mu.Unlock()

	<-e.ready
	return e.SetupResult()
}

// Stop requests teardown without waiting for it. Only the first call has
// an effect. A stop before any start leaves the engine Stopped with
// SetupNotStarted; a stop during setup cancels the setup context and the
// setup outcome becomes SetupNotStarted. Stop may be called from an
// Observer.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopping {
		e.mu.Unlock()
		return
	}
	e.stopping = true
	close(e.stopCh)
	prev := e.State()

	switch {
	case !e.launched:
		e.moveLocked(StateStopped)
		e.enqueueLocked(func(o Observer) {
			o.OnStopRequested(prev, false)
			o.OnStateChange(prev, StateStopped)
		})
		e.mu.Unlock()
		close(e.ready)
		close(e.done)

	case prev == StateRunning:
		e.moveLocked(StateStopRequested)
		e.enqueueLocked(func(o Observer) {
			o.OnStopRequested(prev, true)
			o.OnStateChange(prev, StateStopRequested)
		})
		e.mu.Unlock()

	default:
		// Setup pending or terminal; the run goroutine takes it from here.
		e.cancelSetup()
		e.enqueueLocked(func(o Observer) {
			o.OnStopRequested(prev, false)
		})
		e.mu.Unlock()
	}
	e.deliver()
}

// StopAndWait requests teardown and waits until the engine is terminal.
func (e *Engine) StopAndWait() {
	e.Stop()
	<-e.done
}

func (e *Engine) run(hostCtx, setupCtx context.Context, cancelSetup context.CancelFunc) {
	defer close(e.done)

	base := context.WithoutCancel(hostCtx)
	detach := context.AfterFunc(hostCtx, cancelSetup)
	ok := e.runSetup(hostCtx, setupCtx, base)
	detach()
	cancelSetup()
	if !ok {
		return
	}
	e.runExecution(base)
}

// runSetup records the setup outcome. It reports whether the engine
// reached Running; otherwise it has closed ready and the engine is terminal.
func (e *Engine) runSetup(hostCtx, setupCtx, base context.Context) bool {
	e.mu.Lock()
	if hostCtx.Err() != nil || setupCtx.Err() != nil {
		prev := e.moveLocked(StateStopped)
		e.unlockAndPublish(func(o Observer) {
			o.OnSetupCanceled()
			o.OnStateChange(prev, StateStopped)
		})
		close(e.ready)
		return false
	}
	prev := e.moveLocked(StateSettingUp)
	e.unlockAndPublish(func(o Observer) {
		o.OnStateChange(prev, StateSettingUp)
		o.OnBeforeSetup()
	})

	err := invoke(setupCtx, e.svc.Setup)

	e.mu.Lock()
	stopped := e.stopping && setupCtx.Err() != nil
	switch {
	case err == nil && !e.stopping:
		e.result.Store(int32(SetupSuccessful))
		prev = e.moveLocked(StateRunning)
		e.unlockAndPublish(func(o Observer) {
			o.OnSetupCompleted(true)
			o.OnStateChange(prev, StateRunning)
		})
		return true

	case err == nil:
		// Stopped while setup ran. Release what it acquired without ever
		// reporting the service as running.
		prev = e.moveLocked(StateTearingDown)
		e.unlockAndPublish(func(o Observer) {
			o.OnSetupCanceled()
			o.OnSetupCompleted(false)
			o.OnStateChange(prev, StateTearingDown)
		})
		close(e.ready)
		e.teardown(base)

		e.mu.Lock()
		prev = e.moveLocked(StateStopped)
		e.unlockAndPublish(func(o Observer) {
			o.OnStateChange(prev, StateStopped)
		})
		return false

	case errors.Is(err, ErrNotStarted) || (stopped && isCancellation(err)):
		canceled := !errors.Is(err, ErrNotStarted)
		prev = e.moveLocked(StateStopped)
		e.unlockAndPublish(func(o Observer) {
			if canceled {
				o.OnSetupCanceled()
			}
			o.OnSetupCompleted(false)
			o.OnStateChange(prev, StateStopped)
		})
		close(e.ready)
		return false

	default:
		e.setErr(err)
		e.result.Store(int32(SetupUnsuccessful))
		canceled := setupCtx.Err() != nil && isCancellation(err)
		prev = e.moveLocked(StateFaulted)
		e.unlockAndPublish(func(o Observer) {
			if canceled {
				o.OnSetupCanceled()
			} else {
				o.OnSetupFailed(err)
			}
			o.OnSetupCompleted(false)
			o.OnStateChange(prev, StateFaulted)
		})
		close(e.ready)
		return false
	}
}

// runExecution launches the execute hook, closes ready and drives the
// engine to a terminal state.
func (e *Engine) runExecution(base context.Context) {
	e.mu.Lock()
	if e.stopping {
		// Stop already moved Running -> StopRequested.
		e.mu.Unlock()
		close(e.ready)
		e.runStop(base)
		return
	}
	e.unlockAndPublish(func(o Observer) {
		o.OnBeforeExecute()
	})

	execCtx, cancelExec := context.WithCancel(base)
	defer cancelExec()

	execDone := make(chan error, 1)
	go func() {
		execDone <- invoke(execCtx, e.svc.Execute)
	}()
	close(e.ready)

	var execErr error
	reported := false
	select {
	case execErr = <-execDone:
		e.mu.Lock()
		if e.State() != StateRunning {
			// A stop won the race; report below.
			e.mu.Unlock()
			break
		}
		if execErr != nil {
			e.setErr(execErr)
			prev := e.moveLocked(StateFaulted)
			e.unlockAndPublish(func(o Observer) {
				o.OnExecuteFailed(execErr)
				o.OnStateChange(prev, StateFaulted)
			})
			// Faulted is terminal, but what setup acquired still has to go.
			e.teardown(base)
			return
		}
		e.unlockAndPublish(func(o Observer) {
			o.OnExecuteCompleted()
		})
		reported = true
		<-e.stopCh

	case <-e.stopCh:
		cancelExec()
		execErr = <-execDone
	}

	if !reported {
		e.publish(func(o Observer) {
			switch {
			case execErr == nil:
				o.OnExecuteCompleted()
			case isCancellation(execErr):
				o.OnExecuteCanceled()
			default:
				o.OnExecuteFailed(execErr)
			}
		})
	}
	e.runStop(base)
}

// runStop moves StopRequested -> TearingDown -> Stopped around the
// teardown hook. A failing teardown still ends in Stopped.
func (e *Engine) runStop(ctx context.Context) {
	e.mu.Lock()
	prev := e.moveLocked(StateTearingDown)
	e.unlockAndPublish(func(o Observer) {
		o.OnStateChange(prev, StateTearingDown)
	})

	e.teardown(ctx)

	e.mu.Lock()
	prev = e.moveLocked(StateStopped)
	e.unlockAndPublish(func(o Observer) {
		o.OnStateChange(prev, StateStopped)
	})
}

func (e *Engine) teardown(ctx context.Context) {
	e.publish(func(o Observer) {
		o.OnBeforeTeardown()
	})
	err := invoke(ctx, e.svc.Teardown)
	e.publish(func(o Observer) {
		if err != nil {
			o.OnTeardownFailed(err)
		} else {
			o.OnTeardownCompleted()
		}
	})
}

// moveLocked changes the state and returns the previous one.
// Must be called with mu held.
func (e *Engine) moveLocked(next State) State {
	prev := e.State()
	if !ValidTransition(prev, next) {
		e.mu.Unlock()
		panic(&TransitionError{From: prev, To: next})
	}
	e.state.Store(int32(next))
	return prev
}

// enqueueLocked queues notify behind every earlier notification.
// Must be called with mu held.
func (e *Engine) enqueueLocked(notify func(Observer)) {
	e.queue = append(e.queue, notify)
	e.queued++
}

// unlockAndPublish queues notify, releases mu and returns once the queue
// is drained. Only the run goroutine publishes, so it never moves on to the
// next hook or state before observers have heard about the previous step.
func (e *Engine) unlockAndPublish(notify func(Observer)) {
	e.enqueueLocked(notify)
	e.mu.Unlock()
	e.deliver()

	e.mu.Lock()
	for e.delivered < e.queued {
		e.flushed.Wait()
	}
	e.mu.Unlock()
}

func (e *Engine) publish(notify func(Observer)) {
	e.mu.Lock()
	e.unlockAndPublish(notify)
}

// deliver drains the queue unless another call is already draining it, in
// which case that call delivers whatever was queued before it returns.
func (e *Engine) deliver() {
	e.mu.Lock()
	if e.delivering {
		e.mu.Unlock()
		return
	}
	e.delivering = true
	for len(e.queue) > 0 {
		batch := e.queue
		e.queue = nil
		e.mu.Unlock()

		for _, notify := range batch {
			notify(e.observer)
		}

		e.mu.Lock()
		e.delivered += uint64(len(batch))
		e.flushed.Broadcast()
	}
	e.delivering = false
	e.mu.Unlock()
}

func (e *Engine) setErr(err error) {
	e.errMu.Lock()
	e.err = err
	e.errMu.Unlock()
}

// invoke calls hook, turning a panic into an error.
func invoke(ctx context.Context, hook func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHookPanic, r)
		}
	}()
	return hook(ctx)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
