// Package observability exposes Prometheus metrics for the engine:
// activation outcomes, model call volume and latency, tool executions and
// component errors. A no-op sink keeps instrumentation optional.
package observability
