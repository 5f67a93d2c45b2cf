package transport

import (
	"context"
	"fmt"

	"github.com/callwise/callwise/core"
)

// OutboundMessage is a platform-agnostic reply payload.
type OutboundMessage struct {
	Content     string
	Attachments []core.Attachment
	Buttons     []core.Button
}

// Transport delivers engine output to the platform conversation a message
// arrived on. Message ids returned by Reply identify the sent message for a
// later Edit.
type Transport interface {
	// Reply sends a new message and returns its platform id.
	Reply(ctx context.Context, msg OutboundMessage) (string, error)

	// Edit replaces the content of a previously sent message in place.
	Edit(ctx context.Context, messageID string, msg OutboundMessage) error

	// React attaches an emoji reaction to the inbound message.
	React(ctx context.Context, emoji string) error

	// Typing signals that a reply is being prepared.
	Typing(ctx context.Context) error
}

// DeliveryError reports a failed platform send or edit.
type DeliveryError struct {
	Op  string
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// NewDeliveryError wraps err with the failing operation name.
func NewDeliveryError(op string, err error) *DeliveryError {
	return &DeliveryError{Op: op, Err: err}
}
