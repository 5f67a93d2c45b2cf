package transport

import (
	"unicode/utf8"

	"github.com/callwise/callwise/core"
)

// MaxMessageLength is the platform per-message character limit.
const MaxMessageLength = 2000

// OversizeNotice replaces the body of an over-limit reply.
const OversizeNotice = "The response was too long to send as a message, so it is attached as a file."

// NormalizeOversize moves over-limit content into a markdown attachment so
// delivery never fails on length. In-limit messages pass through unchanged.
func NormalizeOversize(msg OutboundMessage) OutboundMessage {
	if utf8.RuneCountInString(msg.Content) < MaxMessageLength {
		return msg
	}
	attachments := make([]core.Attachment, 0, len(msg.Attachments)+1)
	attachments = append(attachments, core.Attachment{Name: "response.md", Data: []byte(msg.Content)})
	attachments = append(attachments, msg.Attachments...)
	msg.Content = OversizeNotice
	msg.Attachments = attachments
	return msg
}
