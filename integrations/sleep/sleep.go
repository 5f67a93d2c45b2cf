// Package sleep lets the conversation put the engine into silent mode: only
// direct mentions get responses until an operator clears the flag.
package sleep

import (
	"context"
	"time"

	"github.com/callwise/callwise/integration"
	"github.com/callwise/callwise/model"
	"github.com/callwise/callwise/plugin"
)

type params struct {
	Reason string `json:"reason,omitempty" jsonschema:"description=Why the bot is being put to sleep"`
}

// Integration flips the runtime silent flag.
type Integration struct{}

var (
	_ integration.Integration = (*Integration)(nil)
	_ integration.Conditional = (*Integration)(nil)
)

// New creates the sleep integration.
func New() *Integration { return &Integration{} }

// Descriptor implements plugin.Plugin.
func (i *Integration) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		PackageID:    "in.sleep",
		Version:      "1.0.2",
		ReleaseDate:  time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC),
		Capabilities: []plugin.Capability{plugin.CapabilityText, plugin.CapabilityTools},
	}
}

// Tool implements integration.Integration.
func (i *Integration) Tool() model.ToolDefinition {
	return model.ToolDefinition{
		Type: "function",
		Function: model.FunctionDefinition{
			Name:        "sleep",
			Description: "Stop responding to channel messages. Direct mentions still get replies.",
			Parameters:  integration.MustDeriveSchema(&params{}),
		},
	}
}

// Available hides the tool while already silent.
func (i *Integration) Available(inv *integration.Invocation) bool {
	return inv.Runtime == nil || !inv.Runtime.SilentMode()
}

// Activate implements integration.Integration.
func (i *Integration) Activate(ctx context.Context, inv *integration.Invocation) (*integration.Result, error) {
	if inv.Runtime == nil {
		return &integration.Result{Success: false, Content: "No runtime configuration is attached."}, nil
	}
	if err := inv.Runtime.SetSilentMode(ctx, true); err != nil {
		return nil, err
	}
	inv.Logger.Info("silent mode enabled")
	return &integration.Result{
		Success: true,
		Content: "Silent mode is now on. Channel messages will be ignored; direct mentions still get replies.",
	}, nil
}
