// Package transport defines the outbound delivery contract between the
// engine and a chat platform. Callsystems speak to the platform only through
// a Transport, which keeps orchestration logic independent of any one
// platform SDK.
package transport
