package transport

import (
	"context"
	"fmt"
	"sync"
)

// MockTransport records deliveries for tests.
type MockTransport struct {
	mu sync.Mutex

	Replies   []OutboundMessage
	Edits     map[string]OutboundMessage
	Reactions []string
	Typings   int

	ReplyErr error
	EditErr  error
	ReactErr error

	nextID int
}

var _ Transport = (*MockTransport)(nil)

// NewMockTransport creates an empty mock.
func NewMockTransport() *MockTransport {
	return &MockTransport{Edits: make(map[string]OutboundMessage)}
}

// Reply records the message and returns a synthetic id.
func (t *MockTransport) Reply(ctx context.Context, msg OutboundMessage) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ReplyErr != nil {
		return "", t.ReplyErr
	}
	t.Replies = append(t.Replies, msg)
	t.nextID++
	return fmt.Sprintf("msg-%d", t.nextID), nil
}

// Edit records the latest edit for a message id.
func (t *MockTransport) Edit(ctx context.Context, messageID string, msg OutboundMessage) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.EditErr != nil {
		return t.EditErr
	}
	t.Edits[messageID] = msg
	return nil
}

// React records the emoji.
func (t *MockTransport) React(ctx context.Context, emoji string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ReactErr != nil {
		return t.ReactErr
	}
	t.Reactions = append(t.Reactions, emoji)
	return nil
}

// Typing counts typing signals.
func (t *MockTransport) Typing(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Typings++
	return nil
}

// LastReply returns the most recent reply, if any.
func (t *MockTransport) LastReply() (OutboundMessage, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.Replies) == 0 {
		return OutboundMessage{}, false
	}
	return t.Replies[len(t.Replies)-1], true
}
