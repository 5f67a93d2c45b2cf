// Package unified implements the two-phase tool orchestration pipeline: a
// caller model selects integrations, they run concurrently with fault
// isolation, and a responder model writes the visible reply from the tool
// results. The provisional reply is edited in place once the final text is
// ready.
package unified

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/callwise/callwise/callsystem"
	"github.com/callwise/callwise/core"
	"github.com/callwise/callwise/history"
	"github.com/callwise/callwise/integration"
	"github.com/callwise/callwise/model"
	"github.com/callwise/callwise/plugin"
	"github.com/callwise/callwise/transport"
)

const (
	// KeyPrefix namespaces unified conversations apart from the legacy
	// history.
	KeyPrefix = "unified"

	// WarningReaction marks the inbound message when the final edit or
	// delivery failed.
	WarningReaction = "⚠️"

	// NoResponsePlaceholder replaces the reply when the responder phase
	// fails after tools already ran.
	NoResponsePlaceholder = "[No response was returned.]"

	// ProvisionalPlaceholder fills the provisional reply when the caller
	// produced tool calls but no text.
	ProvisionalPlaceholder = "Hold on..."
)

// DefaultTemplate frames user records with author, pronouns and timestamp so
// the models see who said what and when.
var DefaultTemplate = history.MustParseTemplate("%USER% (%PRONOUNS%) at %TIMESTAMP%: %RESPONSE%")

// Options configure the unified callsystem.
type Options struct {
	ContextWindow int
	KeyPrefix     string
	Template      *history.Template
}

// Callsystem is the two-phase tool pipeline.
type Callsystem struct {
	histories *history.Manager
}

var _ callsystem.Callsystem = (*Callsystem)(nil)

// New builds the unified callsystem over a record store.
func New(store core.RecordStore, optFns ...func(o *Options)) *Callsystem {
	opts := Options{
		ContextWindow: history.DefaultContextWindow,
		KeyPrefix:     KeyPrefix,
		Template:      DefaultTemplate,
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
		PackageID:    "cs.unified",
		Version:      "1.0.1",
		ReleaseDate:  time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		Capabilities: []plugin.Capability{plugin.CapabilityText, plugin.CapabilityTools},
	}
}

// Histories exposes the callsystem's history manager for maintenance
// operations such as forgetting a conversation.
func (c *Callsystem) Histories() *history.Manager {
	return c.histories
}

// Activate runs the full pipeline. When the caller phase fails or selects no
// tools, the message is handed to the fallback callsystem instead.
func (c *Callsystem) Activate(ctx context.Context, inv *callsystem.Invocation) (callsystem.ActivationResult, error) {
	msg := inv.Message
	log := inv.Logger
	key := msg.ChannelID

	if err := inv.Transport.Typing(ctx); err != nil {
		log.Debug("typing signal failed", "error", err.Error())
	}

	vars := callsystem.MessageVariables(msg)
	userContent := c.histories.Template().Render(msg.Content, vars)

	window, err := c.histories.Get(ctx, key, false)
	if err != nil {
		log.Warn("history read failed; continuing with empty window", "key", key, "error", err.Error())
	}

	toolInv := &integration.Invocation{
		Message:    msg,
		Runtime:    inv.Runtime,
		Logger:     log,
		ImageModel: inv.ImageModel,
	}
	tools := integration.AvailableTools(inv.Integrations, toolInv)

	// Phase one: the caller selects integrations.
	callerResp, callerErr := c.callCaller(ctx, inv, window, userContent, tools)
	if callerErr != nil || len(callerResp.ToolCalls) == 0 {
		if callerErr != nil {
			if model.IsModerated(callerErr) {
				log.Warn("caller request was moderated; falling back")
			} else {
				log.Error("caller call failed; falling back", "error", callerErr.Error())
			}
		}
		return c.fallback(ctx, inv)
	}

	// Phase two: run the selected integrations concurrently.
	outcomes := c.executeTools(ctx, inv, toolInv, callerResp.ToolCalls)

	label := usageLabel(callerResp.ToolCalls)
	provisionalID := c.sendProvisional(ctx, inv, callerResp.Text, label)

	finalText := c.callResponder(ctx, inv, window, userContent, callerResp, outcomes)

	delivered := c.deliverFinal(ctx, inv, provisionalID, finalText, label, outcomes)

	if err := c.persistBatch(ctx, inv, key, msg, vars, callerResp, outcomes, finalText); err != nil {
		log.Warn("failed to persist conversation batch", "key", key, "error", err.Error())
	}

	return callsystem.ActivationResult{
		Success: delivered,
		Summary: fmt.Sprintf("replied with %d tool(s)", len(outcomes)),
		Context: map[string]any{
			"tools":   len(outcomes),
			"records": len(outcomes) + 3,
		},
	}, nil
}

// callCaller asks the tool-selection model which integrations to run.
func (c *Callsystem) callCaller(ctx context.Context, inv *callsystem.Invocation, window []core.Record, userContent string, tools []model.ToolDefinition) (*model.Response, error) {
	if inv.Caller == nil {
		return nil, fmt.Errorf("no caller model configured")
	}
	if len(tools) == 0 {
		return &model.Response{}, nil
	}

	messages := make([]model.Message, 0, len(window)+2)
	if inv.ToolInstructionSet != "" {
		messages = append(messages, model.Message{Role: core.RoleSystem, Content: inv.ToolInstructionSet})
	}
	messages = append(messages, model.RecordMessages(window)...)
	messages = append(messages, model.Message{Role: core.RoleUser, Content: userContent})

	info := inv.Caller.Info()
	start := time.Now()
	resp, err := inv.Caller.Call(ctx, model.Request{
		Model:      info.Name,
		Messages:   messages,
		Tools:      tools,
		ToolChoice: model.ToolChoiceAuto,
	})
	inv.Metrics.RecordModelCall(info.Provider, info.Name, time.Since(start), err)
	return resp, err
}

// fallback hands the message to the configured fallback pipeline.
func (c *Callsystem) fallback(ctx context.Context, inv *callsystem.Invocation) (callsystem.ActivationResult, error) {
	if inv.Fallback == nil {
		inv.Logger.Error("no fallback callsystem configured")
		return callsystem.ActivationResult{Success: false, Summary: "caller phase failed, no fallback"}, nil
	}
	inv.Logger.Debug("handing message to fallback callsystem", "fallback", inv.Fallback.Descriptor().Key())
	return inv.Fallback.Activate(ctx, inv)
}

// usageLabel names the first running tool and counts the rest.
func usageLabel(calls []core.ToolCallRequest) string {
	label := fmt.Sprintf("Using %q", capitalize(calls[0].ToolName))
	if extra := len(calls) - 1; extra > 0 {
		label += fmt.Sprintf(" (and %d other", extra)
		if extra > 1 {
			label += "s"
		}
		label += ")"
	}
	return label
}

// sendProvisional posts the caller's interim text with a disabled usage
// indicator. The returned id is used for the in-place edit; empty when
// delivery failed.
func (c *Callsystem) sendProvisional(ctx context.Context, inv *callsystem.Invocation, text, label string) string {
	if strings.TrimSpace(text) == "" {
		text = ProvisionalPlaceholder
	}
	id, err := inv.Transport.Reply(ctx, transport.OutboundMessage{
		Content: text,
		Buttons: []core.Button{{Label: label, Disabled: true}},
	})
	if err != nil {
		inv.Logger.Warn("provisional reply failed", "error", err.Error())
		return ""
	}
	return id
}

// callResponder asks the responder model to write the visible reply from the
// tool results. Failures degrade to a placeholder rather than silence.
func (c *Callsystem) callResponder(ctx context.Context, inv *callsystem.Invocation, window []core.Record, userContent string, callerResp *model.Response, outcomes []toolOutcome) string {
	messages := make([]model.Message, 0, len(window)+len(outcomes)+3)
	if persona := c.instructionSet(inv); persona != "" {
		messages = append(messages, model.Message{Role: core.RoleSystem, Content: persona})
	}
	messages = append(messages, model.RecordMessages(window)...)
	messages = append(messages, model.Message{Role: core.RoleUser, Content: userContent})
	messages = append(messages, model.Message{
		Role:      core.RoleAssistant,
		Content:   callerResp.Text,
		ToolCalls: callerResp.ToolCalls,
	})
	for _, o := range outcomes {
		messages = append(messages, model.Message{
			Role:       core.RoleTool,
			Content:    o.result.Content,
			ToolCallID: o.request.ID,
			ToolName:   o.request.ToolName,
		})
	}

	info := inv.Responder.Info()
	start := time.Now()
	resp, err := inv.Responder.Call(ctx, model.Request{
		Model:      info.Name,
		Messages:   messages,
		ToolChoice: model.ToolChoiceNone,
	})
	inv.Metrics.RecordModelCall(info.Provider, info.Name, time.Since(start), err)
	if err != nil {
		inv.Logger.Error("responder call failed", "provider", info.Provider, "error", err.Error())
		return NoResponsePlaceholder
	}
	if resp.Text == "" {
		inv.Logger.Warn("responder returned no text")
		return NoResponsePlaceholder
	}
	return resp.Text
}

// deliverFinal edits the provisional reply in place with the final text and
// the primary integration's attachments. The usage indicator stays on the
// edited message unless the primary result supplies a link control.
func (c *Callsystem) deliverFinal(ctx context.Context, inv *callsystem.Invocation, provisionalID, finalText, label string, outcomes []toolOutcome) bool {
	out := transport.OutboundMessage{
		Content: finalText,
		Buttons: []core.Button{{Label: label, Disabled: true}},
	}
	if primary := outcomes[0].result; primary.Success {
		out.Attachments = primary.Attachments
		if primary.Button != nil && primary.Button.URL != "" {
			out.Buttons = []core.Button{*primary.Button}
		}
	}
	out = transport.NormalizeOversize(out)

	var err error
	if provisionalID == "" {
		_, err = inv.Transport.Reply(ctx, out)
	} else {
		err = inv.Transport.Edit(ctx, provisionalID, out)
	}
	if err != nil {
		inv.Logger.Error("final delivery failed", "error", err.Error())
		if rerr := inv.Transport.React(ctx, WarningReaction); rerr != nil {
			inv.Logger.Debug("warning reaction failed", "error", rerr.Error())
		}
		return false
	}
	return true
}

// persistBatch writes the whole exchange as one sequenced batch: the user
// message, the tool-selection turn, one record per tool result and the final
// reply.
func (c *Callsystem) persistBatch(ctx context.Context, inv *callsystem.Invocation, key string, msg core.Message, vars map[string]string, callerResp *model.Response, outcomes []toolOutcome, finalText string) error {
	responderInfo := inv.Responder.Info()
	callerInfo := inv.Caller.Info()

	records := make([]core.Record, 0, len(outcomes)+3)
	records = append(records, core.Record{
		ContextID: msg.ID,
		Role:      core.RoleUser,
		Content:   msg.Content,
		Context:   core.RecordContext{Timestamp: msg.Timestamp},
	})
	records = append(records, core.Record{
		ContextID: msg.ID,
		Role:      core.RoleAssistant,
		Content:   callerResp.Text,
		ToolCalls: callerResp.ToolCalls,
		Context:   core.RecordContext{RespondingTo: msg.ID, Model: callerInfo.Name},
	})
	for _, o := range outcomes {
		records = append(records, core.Record{
			ContextID: msg.ID,
			Role:      core.RoleTool,
			Content:   o.result.Content,
			ToolResult: &core.ToolCallResult{
				ToolCallID: o.request.ID,
				ToolName:   o.request.ToolName,
				Success:    o.result.Success,
				Content:    o.result.Content,
			},
			Context: core.RecordContext{RespondingTo: msg.ID},
		})
	}
	records = append(records, core.Record{
		ContextID: msg.ID,
		Role:      core.RoleAssistant,
		Content:   finalText,
		Context:   core.RecordContext{RespondingTo: msg.ID, Model: responderInfo.Name},
	})

	_, err := c.histories.AddMany(ctx, key, records, false, false, history.WriteOptions{Variables: vars})
	return err
}

func (c *Callsystem) instructionSet(inv *callsystem.Invocation) string {
	if inv.Runtime != nil {
		if override := inv.Runtime.InstructionSet(); override != "" {
			return override
		}
	}
	return inv.InstructionSet
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return strings.ReplaceAll(string(runes), "_", " ")
}
