// Package lifecycle drives a long-running service through its setup,
// execution and teardown phases.
//
// An [Engine] owns a single run of a [Service]. Start and stop requests are
// safe to issue from any number of goroutines: the first start request
// launches the run and every caller receives the same [SetupResult]; the
// first stop request begins teardown and every caller is released when the
// engine reaches a terminal state.
//
// # Usage
//
//	engine := lifecycle.New(svc, lifecycle.WithObserver(observer))
//
//	if engine.StartAndWait(ctx) != lifecycle.SetupSuccessful {
//	    return errSetup
//	}
//
//	// ... later ...
//
//	engine.StopAndWait()
//
// # State Machine
//
// Valid state transitions:
//   - Created -> SettingUp, Stopped
//   - SettingUp -> Running, TearingDown, Stopped, Faulted
//   - Running -> StopRequested, Faulted
//   - StopRequested -> TearingDown
//   - TearingDown -> Stopped, Faulted
//
// Stopped and Faulted are terminal. SettingUp -> TearingDown is taken when a
// stop arrives while a setup hook that ignores cancellation still succeeds:
// the service is torn down without ever being reported as running, and the
// setup outcome is SetupNotStarted.
//
// # Cancellation
//
// The context given to [Engine.StartAndWait] bounds the setup phase only.
// Execution runs on a context that keeps the start context's values but is
// canceled only by a stop request. Teardown is never canceled.
//
// # Version
//
// Current version: 2.0.0
// Minimum compatible version: 2.0.0
//
// See version.go for version constants that can be used programmatically.
package lifecycle
