package callsystem

import (
	"context"

	"github.com/callwise/callwise/core"
	"github.com/callwise/callwise/integration"
	"github.com/callwise/callwise/logging"
	"github.com/callwise/callwise/model"
	"github.com/callwise/callwise/observability"
	"github.com/callwise/callwise/plugin"
	"github.com/callwise/callwise/transport"
)

// Invocation bundles everything a callsystem needs to answer one message.
type Invocation struct {
	// Message is the activated inbound message.
	Message core.Message
	// Transport delivers output back to the conversation.
	Transport transport.Transport
	// Runtime exposes live engine settings.
	Runtime *core.RuntimeConfig
	// Caller selects tools; Responder writes the visible reply. Simple
	// callsystems may use only the responder.
	Caller    model.Model
	Responder model.Model
	// ImageModel is set when an image-capable provider is configured.
	ImageModel model.Model
	// Integrations are the registered tool plugins, latest versions.
	Integrations []integration.Integration
	// InstructionSet is the persona prepended to responder calls.
	InstructionSet string
	// ToolInstructionSet is the persona used for tool-selection calls.
	ToolInstructionSet string
	// Fallback, when set, handles the message if this callsystem decides
	// not to run its full pipeline.
	Fallback Callsystem
	// Logger is scoped to the dispatching engine.
	Logger logging.Logger
	// Metrics is never nil; the engine installs a no-op sink by default.
	Metrics *observability.Metrics
}

// ActivationResult summarizes a completed callsystem run.
type ActivationResult struct {
	// Success is false when the pipeline degraded or delivered nothing.
	Success bool
	// Summary is a short human-readable outcome for logs.
	Summary string
	// Context carries callsystem-specific details such as record counts.
	Context map[string]any
}

// Callsystem is a versioned plugin implementing a full response pipeline.
type Callsystem interface {
	plugin.Plugin

	Activate(ctx context.Context, inv *Invocation) (ActivationResult, error)
}
