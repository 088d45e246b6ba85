// Package hosting adapts a lifecycle engine to the two-method contract a
// host uses to run background services.
//
// # Basic Usage
//
//	svc := hosting.New(myService, logger, hosting.WithName("indexer"))
//
//	if err := svc.Start(ctx); err != nil {
//	    return err
//	}
//
//	// ... run until shutdown signal ...
//
//	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	_ = svc.Stop(shutdownCtx)
//
// # Start policy
//
// Start fails when setup ends SetupNotStarted or SetupUnsuccessful. Either
// check can be turned off with [WithFailOnSetupNotStarted] or
// [WithFailOnSetupUnsuccessful], or by the service itself implementing
// [SetupPolicy].
//
// # Stop
//
// Stop never fails. It returns when teardown finishes or when its context
// is done, whichever comes first; in the latter case teardown keeps going
// in the background.
//
// # Logging
//
// Every transition and phase outcome is logged with a stable event id
// (see events.go): routine transitions at trace, cancellations at warn,
// failures at error with the cause attached.
package hosting
