// Package logging provides a minimal logging interface and adapters for MedMesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the engine, router and task agents use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - MedMeshLogger with request/component context and model-call helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	eng := engine.New(router, agents, func(o *engine.Options) { o.Logger = logger })
//
// Arguments after the message are key/value pairs, following slog conventions.
package logging
