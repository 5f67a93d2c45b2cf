package transport

import (
	"strings"
	"testing"

	"github.com/callwise/callwise/core"
)

func TestNormalizeOversize_PassThrough(t *testing.T) {
	msg := OutboundMessage{Content: "short reply"}
	got := NormalizeOversize(msg)
	if got.Content != "short reply" || len(got.Attachments) != 0 {
		t.Fatalf("in-limit message must pass through, got %+v", got)
	}
}

func TestNormalizeOversize_MovesContentToAttachment(t *testing.T) {
	long := strings.Repeat("x", MaxMessageLength)
	got := NormalizeOversize(OutboundMessage{Content: long})

	if got.Content != OversizeNotice {
		t.Fatalf("content must be replaced with the notice, got %q", got.Content)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Name != "response.md" {
		t.Fatalf("expected a markdown attachment, got %+v", got.Attachments)
	}
	if string(got.Attachments[0].Data) != long {
		t.Fatal("attachment must carry the full original content")
	}
}

func TestNormalizeOversize_KeepsExistingAttachments(t *testing.T) {
	long := strings.Repeat("y", MaxMessageLength+1)
	msg := OutboundMessage{
		Content:     long,
		Attachments: []core.Attachment{{Name: "article.md", Data: []byte("body")}},
	}
	got := NormalizeOversize(msg)
	if len(got.Attachments) != 2 {
		t.Fatalf("expected both attachments, got %d", len(got.Attachments))
	}
	if got.Attachments[0].Name != "response.md" || got.Attachments[1].Name != "article.md" {
		t.Fatalf("the response attachment must come first, got %+v", got.Attachments)
	}
}
