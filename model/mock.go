package model

import (
	"context"
	"sync"

	"github.com/callwise/callwise/core"
)

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Responses are keyed by the content of the last message in the request;
// unkeyed calls fall back to a generic echo. Queued tool calls and a forced
// error take precedence over canned text.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	toolCalls []core.ToolCallRequest
	err       error
	calls     []Request
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider, SupportsTools: true},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// QueueToolCalls makes the next Call return the given tool call requests.
func (m *MockModel) QueueToolCalls(calls ...core.ToolCallRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolCalls = calls
}

// FailWith makes every subsequent Call return err.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns a copy of every request seen so far.
func (m *MockModel) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]Request, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// Call implements Model.
func (m *MockModel) Call(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)

	if m.err != nil {
		return nil, m.err
	}

	var prompt string
	if len(req.Messages) > 0 {
		prompt = req.Messages[len(req.Messages)-1].Content
	}
	text, ok := m.responses[prompt]
	if !ok {
		text = "Mock response to: " + prompt
	}

	resp := &Response{Text: text}
	if req.ToolChoice != ToolChoiceNone && len(m.toolCalls) > 0 {
		resp.ToolCalls = m.toolCalls
		m.toolCalls = nil
	}
	return resp, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
