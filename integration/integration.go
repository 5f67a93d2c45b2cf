package integration

import (
	"context"

	"github.com/callwise/callwise/core"
	"github.com/callwise/callwise/logging"
	"github.com/callwise/callwise/model"
	"github.com/callwise/callwise/plugin"
)

// Invocation carries the request-scoped state an integration may need.
type Invocation struct {
	// Message is the inbound message that triggered the tool call.
	Message core.Message
	// Runtime exposes live engine settings such as silent mode.
	Runtime *core.RuntimeConfig
	// Logger is scoped to the executing integration.
	Logger logging.Logger
	// ImageModel is set when an image-capable provider is configured.
	ImageModel model.Model
	// Arguments are the caller-chosen function arguments, already
	// validated against the integration schema.
	Arguments map[string]any
}

// Result is the outcome of a single integration activation.
type Result struct {
	// Success distinguishes a completed activation from a tool-level
	// failure that still produced explanatory content.
	Success bool
	// Content is fed back to the responder model as the tool result.
	Content string
	// Attachments are surfaced on the final platform reply.
	Attachments []core.Attachment
	// Button, when set, is rendered as a link on the final reply.
	Button *core.Button
	// Data carries structured output for callers that need more than text.
	Data map[string]any
}

// Integration is a versioned plugin exposing one callable function.
type Integration interface {
	plugin.Plugin

	// Tool describes the function the caller model may select.
	Tool() model.ToolDefinition

	// Activate executes the function with validated arguments.
	Activate(ctx context.Context, inv *Invocation) (*Result, error)
}

// Conditional is implemented by integrations whose availability depends on
// runtime state. Unavailable integrations are left out of the caller's tool
// list for that request.
type Conditional interface {
	Available(inv *Invocation) bool
}

// AvailableTools returns the tool definitions of every integration that is
// available for the given invocation.
func AvailableTools(integrations []Integration, inv *Invocation) []model.ToolDefinition {
	tools := make([]model.ToolDefinition, 0, len(integrations))
	for _, in := range integrations {
		if c, ok := in.(Conditional); ok && !c.Available(inv) {
			continue
		}
		tools = append(tools, in.Tool())
	}
	return tools
}
