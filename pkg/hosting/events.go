package hosting

// Event ids attached to every log entry written by a HostedService.
// Values are stable; new ids are only ever appended.
const (
	EventStateChanged          = 1000
	EventBeforeSetup           = 1001
	EventSetupSuccessful       = 1002
	EventSetupNotSuccessful    = 1003
	EventSetupCanceled         = 1004
	EventSetupFailed           = 1005
	EventBeforeExecute         = 1006
	EventExecuteCompleted      = 1007
	EventExecuteCanceled       = 1008
	EventExecuteFailed         = 1009
	EventBeforeTeardown        = 1010
	EventTeardownCompleted     = 1011
	EventTeardownFailed        = 1012
	EventStopRequested         = 1013
	EventHostedServiceStarting = 1014
	EventHostedServiceStopping = 1015
	EventStopWaitAbandoned     = 1016
)
