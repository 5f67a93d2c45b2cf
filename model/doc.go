// Package model defines the provider-agnostic contract for model calls inside
// callwise.
//
// Core goals:
//   - One Call shape for both provider roles: the caller (which decides what
//     tools to invoke) and the responder (which writes the final reply)
//   - Normalized tool / function call representation (ToolDefinition, ToolCallRequest)
//   - Distinguishable failures including a moderation flag (ProviderError)
//   - Lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so callsystems remain decoupled from vendor SDKs.
package model
