// Package logging provides a minimal logging interface and adapters for callwise.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn,
// Error) that the engine, callsystems and integrations use. This package
// includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - EngineLogger with contextual helpers (callsystem, conversation)
//
// The design intentionally keeps the interface minimal so any structured
// logger can be plugged in behind it.
package logging
