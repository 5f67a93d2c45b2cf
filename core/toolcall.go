package core

import "encoding/json"

// ToolCallRequest is a function call surfaced by the caller provider.
type ToolCallRequest struct {
	ID        string          `json:"id"`
	ToolName  string          `json:"toolName"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ParsedArguments decodes the request arguments into a generic map. Providers
// occasionally return a bare string instead of a JSON object; that case yields
// an empty map rather than an error so tool execution can still proceed.
func (r ToolCallRequest) ParsedArguments() map[string]any {
	if len(r.Arguments) == 0 {
		return map[string]any{}
	}
	var args map[string]any
	if err := json.Unmarshal(r.Arguments, &args); err != nil {
		return map[string]any{}
	}
	return args
}

// ToolCallResult is the outcome of executing one requested tool call,
// correlated back to its request purely by ToolCallID.
type ToolCallResult struct {
	ToolCallID  string       `json:"toolCallId"`
	ToolName    string       `json:"toolName"`
	Success     bool         `json:"success"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"-"`
	Button      *Button      `json:"-"`
}
