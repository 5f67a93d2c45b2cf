// Package legacy implements the single-model response pipeline: one
// responder call over the templated conversation window, no tool phase.
package legacy

import (
	"context"
	"time"

	"github.com/callwise/callwise/callsystem"
	"github.com/callwise/callwise/core"
	"github.com/callwise/callwise/history"
	"github.com/callwise/callwise/logging"
	"github.com/callwise/callwise/model"
	"github.com/callwise/callwise/plugin"
	"github.com/callwise/callwise/transport"
)

// WarningReaction marks the inbound message when no reply could be produced
// or delivered.
const WarningReaction = "⚠️"

// Options configure the legacy callsystem.
type Options struct {
	// ContextWindow overrides the history window size.
	ContextWindow int
	// KeyPrefix defaults to the standard history namespace.
	KeyPrefix string
	// Template rewrites user records on write.
	Template *history.Template
}

// Callsystem is the single-model pipeline.
type Callsystem struct {
	histories *history.Manager
}

var _ callsystem.Callsystem = (*Callsystem)(nil)

// New builds the legacy callsystem over a record store.
func New(store core.RecordStore, optFns ...func(o *Options)) *Callsystem {
	opts := Options{
		ContextWindow: history.DefaultContextWindow,
		KeyPrefix:     history.DefaultKeyPrefix,
		Template:      history.DefaultTemplate,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	mgr := history.NewManager(store, func(o *history.Options) {
		o.ContextWindow = opts.ContextWindow
		o.KeyPrefix = opts.KeyPrefix
		o.Template = opts.Template
	})
	return &Callsystem{histories: mgr}
}

// Descriptor implements plugin.Plugin.
func (c *Callsystem) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		PackageID:    "cs.legacy",
		Version:      "2.0.1",
		ReleaseDate:  time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
		Capabilities: []plugin.Capability{plugin.CapabilityText, plugin.CapabilityLegacy},
	}
}

// Histories exposes the callsystem's history manager for maintenance
// operations such as forgetting a conversation.
func (c *Callsystem) Histories() *history.Manager {
	return c.histories
}

// Activate runs the pipeline: persist the templated user record, call the
// responder over the window, persist and deliver the reply.
func (c *Callsystem) Activate(ctx context.Context, inv *callsystem.Invocation) (callsystem.ActivationResult, error) {
	msg := inv.Message
	log := inv.Logger
	key := msg.ChannelID

	if err := inv.Transport.Typing(ctx); err != nil {
		log.Debug("typing signal failed", "error", err.Error())
	}

	userRecord := core.Record{
		ContextID: msg.ID,
		Role:      core.RoleUser,
		Content:   msg.Content,
		Context:   core.RecordContext{Timestamp: msg.Timestamp},
	}
	view, err := c.histories.Add(ctx, key, userRecord, false, false,
		history.WriteOptions{Variables: callsystem.MessageVariables(msg)})
	if err != nil {
		// A failed write degrades recall but the reply still goes out.
		log.Warn("failed to persist user record", "key", key, "error", err.Error())
	}

	messages := make([]model.Message, 0, len(view)+1)
	if persona := c.instructionSet(inv); persona != "" {
		messages = append(messages, model.Message{Role: core.RoleSystem, Content: persona})
	}
	messages = append(messages, model.RecordMessages(view)...)

	info := inv.Responder.Info()
	start := time.Now()
	resp, err := inv.Responder.Call(ctx, model.Request{Model: info.Name, Messages: messages})
	inv.Metrics.RecordModelCall(info.Provider, info.Name, time.Since(start), err)
	if err != nil {
		log.Error("responder call failed", "provider", info.Provider, "error", err.Error())
		c.react(ctx, inv, log)
		return callsystem.ActivationResult{Success: false, Summary: "responder call failed"}, err
	}
	if resp.Text == "" {
		log.Warn("responder returned no text")
		c.react(ctx, inv, log)
		return callsystem.ActivationResult{Success: false, Summary: "empty response"}, nil
	}

	assistantRecord := core.Record{
		ContextID: msg.ID,
		Role:      core.RoleAssistant,
		Content:   resp.Text,
		Context:   core.RecordContext{RespondingTo: msg.ID, Model: info.Name},
	}
	if _, err := c.histories.Add(ctx, key, assistantRecord, false, false, history.WriteOptions{}); err != nil {
		log.Warn("failed to persist assistant record", "key", key, "error", err.Error())
	}

	out := transport.NormalizeOversize(transport.OutboundMessage{Content: resp.Text})
	if _, err := inv.Transport.Reply(ctx, out); err != nil {
		log.Error("reply delivery failed", "error", err.Error())
		c.react(ctx, inv, log)
		return callsystem.ActivationResult{Success: false, Summary: "delivery failed"}, transport.NewDeliveryError("reply", err)
	}

	return callsystem.ActivationResult{
		Success: true,
		Summary: "replied",
		Context: map[string]any{"records": 2},
	}, nil
}

func (c *Callsystem) instructionSet(inv *callsystem.Invocation) string {
	if inv.Runtime != nil {
		if override := inv.Runtime.InstructionSet(); override != "" {
			return override
		}
	}
	return inv.InstructionSet
}

func (c *Callsystem) react(ctx context.Context, inv *callsystem.Invocation, log logging.Logger) {
	if err := inv.Transport.React(ctx, WarningReaction); err != nil {
		log.Debug("warning reaction failed", "error", err.Error())
	}
}
