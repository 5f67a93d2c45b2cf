// Package callsystem defines the response-pipeline plugin contract, the
// activation policy that decides whether an inbound message gets a response
// at all, and the dispatcher that routes activated messages to the
// configured callsystem.
package callsystem
