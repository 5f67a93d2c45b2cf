// Package core defines the shared data model of the engine: inbound messages,
// conversation records, tool call requests/results, the record store contract
// and the injected runtime configuration.
//
// Types here are deliberately free of provider or transport specifics so the
// outer packages (model, history, callsystem, transport) can depend on them
// without cycles.
package core
