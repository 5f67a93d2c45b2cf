package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/callwise/callwise/core"
)

// ToolDefinition declaratively exposes a callable integration to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolChoice controls whether the model may request tool calls.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide whether to call tools.
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceNone forces a natural-language synthesis with no tool calls.
	ToolChoiceNone ToolChoice = "none"
)

// Message is one entry of the conversation sent to a provider.
type Message struct {
	Role    core.Role `json:"role"`
	Content string    `json:"content"`

	// ToolCalls carries structured tool-call metadata on assistant messages
	// replaying a tool-selection turn.
	ToolCalls []core.ToolCallRequest `json:"toolCalls,omitempty"`

	// ToolCallID and ToolName correlate tool-role messages to the request
	// that produced them.
	ToolCallID string `json:"toolCallId,omitempty"`
	ToolName   string `json:"toolName,omitempty"`
}

// Request captures the normalized model input produced by callsystems.
type Request struct {
	Model      string           `json:"model,omitempty"`
	Messages   []Message        `json:"messages"`
	Tools      []ToolDefinition `json:"tools,omitempty"`
	ToolChoice ToolChoice       `json:"tool_choice,omitempty"`
}

// Response is the provider output: placeholder or final text plus any
// requested tool calls.
type Response struct {
	Text      string                 `json:"text"`
	ToolCalls []core.ToolCallRequest `json:"toolCalls,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface callsystems use to drive generation.
type Model interface {
	Call(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// ProviderError reports a failed model call. Moderated distinguishes content
// policy refusals from network/parse failures so callers can branch on it.
type ProviderError struct {
	Provider  string
	Model     string
	Message   string
	Moderated bool
	Err       error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Moderated {
		return fmt.Sprintf("provider %s (%s) flagged request for moderation: %s", e.Provider, e.Model, e.Message)
	}
	return fmt.Sprintf("provider %s (%s) call failed: %s", e.Provider, e.Model, e.Message)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *ProviderError) Unwrap() error { return e.Err }

// IsModerated reports whether err is a ProviderError with the moderation flag set.
func IsModerated(err error) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Moderated
}

// RecordMessages converts conversation records into provider messages,
// carrying tool-call metadata and tool results through unchanged.
func RecordMessages(records []core.Record) []Message {
	messages := make([]Message, 0, len(records))
	for _, r := range records {
		m := Message{Role: r.Role, Content: r.Content, ToolCalls: r.ToolCalls}
		if r.ToolResult != nil {
			m.ToolCallID = r.ToolResult.ToolCallID
			m.ToolName = r.ToolResult.ToolName
			if m.Content == "" {
				m.Content = r.ToolResult.Content
			}
		}
		messages = append(messages, m)
	}
	return messages
}
