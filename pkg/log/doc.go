// Package log provides a logging abstraction for svchost components.
//
// This package defines a Logger interface that can be implemented by
// any logging library. Default implementations are provided for zerolog
// and a no-op logger for testing.
//
// # Usage
//
// Use the provided zerolog adapter:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//
// Or use the no-op logger for testing:
//
//	logger := log.Nop
//
// # Levels
//
// Lifecycle transitions are reported at Trace; the remaining levels follow
// the usual meaning. Implementations that have no trace level should map
// Trace to their most verbose level.
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.1.0
//
// See version.go for version constants that can be used programmatically.
package log
