package hosting

import (
	"github.com/bft-labs/svchost/pkg/lifecycle"
	"github.com/bft-labs/svchost/pkg/log"
)

// logObserver writes one structured log entry per engine notification.
type logObserver struct {
	logger log.Logger
	name   string
}

func newLogObserver(logger log.Logger, name string) *logObserver {
	return &logObserver{logger: logger, name: name}
}

func (l *logObserver) fields(id int, extra ...log.Field) []log.Field {
	fields := make([]log.Field, 0, len(extra)+2)
	fields = append(fields, log.EventID(id), log.String("service", l.name))
	return append(fields, extra...)
}

func (l *logObserver) OnStateChange(previous, current lifecycle.State) {
	l.logger.Trace("service state changed", l.fields(EventStateChanged,
		log.Stringer("from", previous),
		log.Stringer("to", current),
	)...)
}

func (l *logObserver) OnBeforeSetup() {
	l.logger.Trace("starting setup phase", l.fields(EventBeforeSetup)...)
}

func (l *logObserver) OnSetupCompleted(success bool) {
	if success {
		l.logger.Trace("setup phase completed successfully", l.fields(EventSetupSuccessful)...)
		return
	}
	l.logger.Warn("setup phase completed unsuccessfully", l.fields(EventSetupNotSuccessful)...)
}

func (l *logObserver) OnSetupCanceled() {
	l.logger.Warn("service execution was canceled during setup phase", l.fields(EventSetupCanceled)...)
}

func (l *logObserver) OnSetupFailed(err error) {
	l.logger.Error("service setup phase failed", l.fields(EventSetupFailed, log.Err(err))...)
}

func (l *logObserver) OnBeforeExecute() {
	l.logger.Trace("starting service execution", l.fields(EventBeforeExecute)...)
}

func (l *logObserver) OnExecuteCompleted() {
	l.logger.Trace("service execution completed", l.fields(EventExecuteCompleted)...)
}

func (l *logObserver) OnExecuteCanceled() {
	l.logger.Warn("service execution was canceled", l.fields(EventExecuteCanceled)...)
}

func (l *logObserver) OnExecuteFailed(err error) {
	l.logger.Error("service execution failed", l.fields(EventExecuteFailed, log.Err(err))...)
}

func (l *logObserver) OnBeforeTeardown() {
	l.logger.Trace("starting teardown phase", l.fields(EventBeforeTeardown)...)
}

func (l *logObserver) OnTeardownCompleted() {
	l.logger.Trace("teardown phase completed", l.fields(EventTeardownCompleted)...)
}

func (l *logObserver) OnTeardownFailed(err error) {
	l.logger.Error("service teardown phase failed", l.fields(EventTeardownFailed, log.Err(err))...)
}

func (l *logObserver) OnStopRequested(previous lifecycle.State, running bool) {
	status := "not running"
	if running {
		status = "running"
	}
	l.logger.Info("stop requested while service "+status, l.fields(EventStopRequested,
		log.Stringer("state", previous),
		log.Bool("running", running),
	)...)
}

var _ lifecycle.Observer = (*logObserver)(nil)
