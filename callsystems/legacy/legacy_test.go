package legacy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/callwise/callwise/callsystem"
	"github.com/callwise/callwise/core"
	"github.com/callwise/callwise/history"
	"github.com/callwise/callwise/logging"
	"github.com/callwise/callwise/model"
	"github.com/callwise/callwise/observability"
	"github.com/callwise/callwise/transport"
)

func testInvocation(responder *model.MockModel, tr transport.Transport) *callsystem.Invocation {
	return &callsystem.Invocation{
		Message: core.Message{
			ID:         "msg-1",
			ChannelID:  "chan-1",
			AuthorID:   "u1",
			AuthorName: "Sam",
			Content:    "hello",
			Timestamp:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		Transport:      tr,
		Runtime:        core.NewRuntimeConfig(nil, "", ""),
		Responder:      responder,
		InstructionSet: "Be helpful.",
		Logger:         logging.NoOpLogger{},
		Metrics:        observability.NoOpMetrics(),
	}
}

func TestLegacy_RepliesAndPersists(t *testing.T) {
	store := history.NewInMemoryStore()
	cs := New(store)

	responder := model.NewMockModel("responder", "mock")
	responder.AddResponse("hello", "hi Sam!")

	tr := transport.NewMockTransport()
	result, err := cs.Activate(context.Background(), testInvocation(responder, tr))
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}

	reply, ok := tr.LastReply()
	if !ok || reply.Content != "hi Sam!" {
		t.Fatalf("unexpected reply %+v", reply)
	}

	records, err := cs.Histories().Everything(context.Background(), "chan-1", false)
	if err != nil {
		t.Fatalf("everything: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected user and assistant records, got %d", len(records))
	}
	if records[0].Role != core.RoleUser || records[1].Role != core.RoleAssistant {
		t.Fatalf("unexpected roles %s/%s", records[0].Role, records[1].Role)
	}
	if records[1].Context.RespondingTo != "msg-1" {
		t.Fatalf("assistant record must link the inbound message, got %q", records[1].Context.RespondingTo)
	}

	// The persona goes to the model but is never persisted.
	calls := responder.Calls()
	if len(calls) != 1 || calls[0].Messages[0].Role != core.RoleSystem {
		t.Fatalf("responder must see the persona first, got %+v", calls)
	}
}

func TestLegacy_ResponderErrorReacts(t *testing.T) {
	store := history.NewInMemoryStore()
	cs := New(store)

	responder := model.NewMockModel("responder", "mock")
	responder.FailWith(errors.New("provider down"))

	tr := transport.NewMockTransport()
	result, err := cs.Activate(context.Background(), testInvocation(responder, tr))
	if err == nil {
		t.Fatal("expected the responder error to propagate")
	}
	if result.Success {
		t.Fatal("expected a failed result")
	}
	if len(tr.Reactions) != 1 || tr.Reactions[0] != WarningReaction {
		t.Fatalf("a warning reaction must mark the inbound message, got %v", tr.Reactions)
	}
	if len(tr.Replies) != 0 {
		t.Fatal("no reply should be sent on responder failure")
	}
}

func TestLegacy_DeliveryFailureReacts(t *testing.T) {
	store := history.NewInMemoryStore()
	cs := New(store)

	responder := model.NewMockModel("responder", "mock")
	tr := transport.NewMockTransport()
	tr.ReplyErr = errors.New("network down")

	result, err := cs.Activate(context.Background(), testInvocation(responder, tr))
	if err == nil {
		t.Fatal("expected a delivery error")
	}
	if result.Success {
		t.Fatal("expected a failed result")
	}
	if len(tr.Reactions) != 1 {
		t.Fatalf("expected one warning reaction, got %d", len(tr.Reactions))
	}
}

func TestLegacy_OversizeReplyBecomesAttachment(t *testing.T) {
	store := history.NewInMemoryStore()
	cs := New(store)

	long := make([]byte, transport.MaxMessageLength+100)
	for i := range long {
		long[i] = 'a'
	}
	responder := model.NewMockModel("responder", "mock")
	responder.AddResponse("hello", string(long))

	tr := transport.NewMockTransport()
	if _, err := cs.Activate(context.Background(), testInvocation(responder, tr)); err != nil {
		t.Fatalf("activate: %v", err)
	}

	reply, _ := tr.LastReply()
	if reply.Content != transport.OversizeNotice {
		t.Fatalf("oversize replies must be replaced with the notice, got %q", reply.Content)
	}
	if len(reply.Attachments) != 1 || reply.Attachments[0].Name != "response.md" {
		t.Fatalf("oversize content must attach as markdown, got %+v", reply.Attachments)
	}
}
