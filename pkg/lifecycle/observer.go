package lifecycle

// Observer is notified of every transition and phase outcome of an engine.
//
// Notifications for one engine are delivered one at a time, in the order
// they happen, and before the hook of the following phase is invoked.
// Implementations must return quickly. They may call Stop and read State,
// SetupResult or Err; a notification caused by such a Stop is delivered
// after the current one returns. They must not call StartAndWait or
// StopAndWait on the engine that notifies them, since both wait for
// progress that the notification itself holds up.
type Observer interface {
	OnStateChange(previous, current State)

	OnBeforeSetup()
	OnSetupCompleted(success bool)
	OnSetupCanceled()
	OnSetupFailed(err error)

	OnBeforeExecute()
	OnExecuteCompleted()
	OnExecuteCanceled()
	OnExecuteFailed(err error)

	OnBeforeTeardown()
	OnTeardownCompleted()
	OnTeardownFailed(err error)

	// OnStopRequested is called once, for the first stop request.
	// running tells whether the service was running at that moment.
	OnStopRequested(previous State, running bool)
}

// BaseObserver implements Observer with no-op methods.
// Embed it to implement only the notifications you care about.
type BaseObserver struct{}

func (BaseObserver) OnStateChange(previous, current State)        {}
func (BaseObserver) OnBeforeSetup()                               {}
func (BaseObserver) OnSetupCompleted(success bool)                {}
func (BaseObserver) OnSetupCanceled()                             {}
func (BaseObserver) OnSetupFailed(err error)                      {}
func (BaseObserver) OnBeforeExecute()                             {}
func (BaseObserver) OnExecuteCompleted()                          {}
func (BaseObserver) OnExecuteCanceled()                           {}
func (BaseObserver) OnExecuteFailed(err error)                    {}
func (BaseObserver) OnBeforeTeardown()                            {}
func (BaseObserver) OnTeardownCompleted()                         {}
func (BaseObserver) OnTeardownFailed(err error)                   {}
func (BaseObserver) OnStopRequested(previous State, running bool) {}

// Observers returns an Observer that forwards every notification to each
// of obs in order. Nil entries are skipped.
func Observers(obs ...Observer) Observer {
	list := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) OnStateChange(previous, current State) {
	for _, o := range m {
		o.OnStateChange(previous, current)
	}
}

func (m multiObserver) OnBeforeSetup() {
	for _, o := range m {
		o.OnBeforeSetup()
	}
}

func (m multiObserver) OnSetupCompleted(success bool) {
	for _, o := range m {
		o.OnSetupCompleted(success)
	}
}

func (m multiObserver) OnSetupCanceled() {
	for _, o := range m {
		o.OnSetupCanceled()
	}
}

func (m multiObserver) OnSetupFailed(err error) {
	for _, o := range m {
		o.OnSetupFailed(err)
	}
}

func (m multiObserver) OnBeforeExecute() {
	for _, o := range m {
		o.OnBeforeExecute()
	}
}

func (m multiObserver) OnExecuteCompleted() {
	for _, o := range m {
		o.OnExecuteCompleted()
	}
}

func (m multiObserver) OnExecuteCanceled() {
	for _, o := range m {
		o.OnExecuteCanceled()
	}
}

func (m multiObserver) OnExecuteFailed(err error) {
	for _, o := range m {
		o.OnExecuteFailed(err)
	}
}

func (m multiObserver) OnBeforeTeardown() {
	for _, o := range m {
		o.OnBeforeTeardown()
	}
}

func (m multiObserver) OnTeardownCompleted() {
	for _, o := range m {
		o.OnTeardownCompleted()
	}
}

func (m multiObserver) OnTeardownFailed(err error) {
	for _, o := range m {
		o.OnTeardownFailed(err)
	}
}

func (m multiObserver) OnStopRequested(previous State, running bool) {
	for _, o := range m {
		o.OnStopRequested(previous, running)
	}
}
