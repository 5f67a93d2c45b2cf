package unified

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/callwise/callwise/callsystem"
	"github.com/callwise/callwise/core"
	"github.com/callwise/callwise/history"
	"github.com/callwise/callwise/integration"
	"github.com/callwise/callwise/logging"
	"github.com/callwise/callwise/model"
	"github.com/callwise/callwise/observability"
	"github.com/callwise/callwise/plugin"
	"github.com/callwise/callwise/transport"
)

type stubIntegration struct {
	name   string
	result *integration.Result
	err    error
	panics bool
}

func (s *stubIntegration) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{PackageID: "in." + s.name, Version: "1.0.0", ReleaseDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (s *stubIntegration) Tool() model.ToolDefinition {
	return model.ToolDefinition{
		Type: "function",
		Function: model.FunctionDefinition{
			Name:       s.name,
			Parameters: map[string]any{"type": "object"},
		},
	}
}

func (s *stubIntegration) Activate(ctx context.Context, inv *integration.Invocation) (*integration.Result, error) {
	if s.panics {
		panic("tool exploded")
	}
	return s.result, s.err
}

type fallbackStub struct {
	calls int
}

func (f *fallbackStub) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{PackageID: "cs.fallback", Version: "1.0.0", ReleaseDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fallbackStub) Activate(ctx context.Context, inv *callsystem.Invocation) (callsystem.ActivationResult, error) {
	f.calls++
	return callsystem.ActivationResult{Success: true, Summary: "fallback"}, nil
}

func testInvocation(caller, responder model.Model, tr transport.Transport, integrations []integration.Integration, fallback callsystem.Callsystem) *callsystem.Invocation {
	return &callsystem.Invocation{
		Message: core.Message{
			ID:         "msg-1",
			ChannelID:  "chan-1",
			AuthorID:   "u1",
			AuthorName: "Sam",
			Content:    "what is the weather",
			Timestamp:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		Transport:    tr,
		Runtime:      core.NewRuntimeConfig(nil, "", ""),
		Caller:       caller,
		Responder:    responder,
		Integrations: integrations,
		Fallback:     fallback,
		Logger:       logging.NoOpLogger{},
		Metrics:      observability.NoOpMetrics(),
	}
}

func TestUnified_TwoToolsOneFailing(t *testing.T) {
	store := history.NewInMemoryStore()
	cs := New(store)

	caller := model.NewMockModel("caller", "mock")
	caller.QueueToolCalls(
		core.ToolCallRequest{ID: "t1", ToolName: "alpha", Arguments: []byte(`{}`)},
		core.ToolCallRequest{ID: "t2", ToolName: "beta", Arguments: []byte(`{}`)},
	)
	responder := model.NewMockModel("responder", "mock")

	integrations := []integration.Integration{
		&stubIntegration{name: "alpha", result: &integration.Result{Success: true, Content: "alpha output"}},
		&stubIntegration{name: "beta", err: errors.New("beta broke")},
	}

	tr := transport.NewMockTransport()
	inv := testInvocation(caller, responder, tr, integrations, nil)

	result, err := cs.Activate(context.Background(), inv)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}

	// Provisional reply carries the caller's interim text plus a disabled
	// button naming the first tool and counting the rest.
	if len(tr.Replies) != 1 {
		t.Fatalf("expected 1 provisional reply, got %d", len(tr.Replies))
	}
	provisional := tr.Replies[0]
	if provisional.Content == "" {
		t.Fatal("provisional reply must carry the caller text")
	}
	if len(provisional.Buttons) != 1 || !provisional.Buttons[0].Disabled {
		t.Fatalf("provisional reply must carry a disabled button, got %+v", provisional.Buttons)
	}
	if provisional.Buttons[0].Label != `Using "Alpha" (and 1 other)` {
		t.Fatalf("unexpected button label %q", provisional.Buttons[0].Label)
	}

	// The provisional message is edited in place with the final text; the
	// usage indicator stays on the edited message.
	if len(tr.Edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(tr.Edits))
	}
	for _, e := range tr.Edits {
		if len(e.Buttons) != 1 || !e.Buttons[0].Disabled || e.Buttons[0].Label != provisional.Buttons[0].Label {
			t.Fatalf("final edit must keep the usage indicator, got %+v", e.Buttons)
		}
	}

	// One batch of five records sharing a sequence id.
	records, err := cs.Histories().Everything(context.Background(), "chan-1", false)
	if err != nil {
		t.Fatalf("everything: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}
	seq := records[0].Context.SequenceID
	for i, r := range records {
		if r.Context.SequenceID != seq {
			t.Fatalf("record %d has a different sequence id", i)
		}
		if r.Context.Sequence != i {
			t.Fatalf("record %d has sequence %d", i, r.Context.Sequence)
		}
	}

	wantRoles := []core.Role{core.RoleUser, core.RoleAssistant, core.RoleTool, core.RoleTool, core.RoleAssistant}
	for i, want := range wantRoles {
		if records[i].Role != want {
			t.Fatalf("record %d role = %s, want %s", i, records[i].Role, want)
		}
	}

	// The user record persists with the template rendered, not with literal
	// placeholder tokens.
	if !strings.Contains(records[0].Content, "Sam (they/them)") {
		t.Fatalf("user record must carry substituted variables, got %q", records[0].Content)
	}
	if strings.Contains(records[0].Content, "%USER%") {
		t.Fatalf("placeholder left unsubstituted: %q", records[0].Content)
	}

	// The failed tool persists a failure record, isolated from the rest.
	if records[3].ToolResult == nil || records[3].ToolResult.Success {
		t.Fatalf("failed tool must persist an unsuccessful result, got %+v", records[3].ToolResult)
	}
	if records[3].Content != CatastrophicFailureContent {
		t.Fatalf("unexpected failure content %q", records[3].Content)
	}
	if records[2].ToolResult == nil || !records[2].ToolResult.Success {
		t.Fatalf("successful tool result lost: %+v", records[2].ToolResult)
	}
}

// silentCaller returns tool calls with no interim text.
type silentCaller struct {
	calls []core.ToolCallRequest
}

func (s *silentCaller) Call(ctx context.Context, req model.Request) (*model.Response, error) {
	return &model.Response{ToolCalls: s.calls}, nil
}

func (s *silentCaller) Info() model.Info {
	return model.Info{Name: "silent", Provider: "mock", SupportsTools: true}
}

func TestUnified_ProvisionalDefaultsWhenCallerHasNoText(t *testing.T) {
	store := history.NewInMemoryStore()
	cs := New(store)

	caller := &silentCaller{calls: []core.ToolCallRequest{{ID: "t1", ToolName: "alpha", Arguments: []byte(`{}`)}}}
	responder := model.NewMockModel("responder", "mock")

	tr := transport.NewMockTransport()
	inv := testInvocation(caller, responder, tr, []integration.Integration{
		&stubIntegration{name: "alpha", result: &integration.Result{Success: true, Content: "ok"}},
	}, nil)

	if _, err := cs.Activate(context.Background(), inv); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if len(tr.Replies) != 1 || tr.Replies[0].Content != ProvisionalPlaceholder {
		t.Fatalf("empty caller text must default the provisional content, got %+v", tr.Replies)
	}
}

func TestUnified_LinkButtonReplacesUsageIndicator(t *testing.T) {
	store := history.NewInMemoryStore()
	cs := New(store)

	caller := model.NewMockModel("caller", "mock")
	caller.QueueToolCalls(core.ToolCallRequest{ID: "t1", ToolName: "wiki", Arguments: []byte(`{}`)})
	responder := model.NewMockModel("responder", "mock")

	tr := transport.NewMockTransport()
	inv := testInvocation(caller, responder, tr, []integration.Integration{
		&stubIntegration{name: "wiki", result: &integration.Result{
			Success: true,
			Content: "summary",
			Button:  &core.Button{Label: "Read more", URL: "https://example.org"},
		}},
	}, nil)

	if _, err := cs.Activate(context.Background(), inv); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if len(tr.Edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(tr.Edits))
	}
	for _, e := range tr.Edits {
		if len(e.Buttons) != 1 || e.Buttons[0].URL != "https://example.org" || e.Buttons[0].Disabled {
			t.Fatalf("link control must replace the usage indicator, got %+v", e.Buttons)
		}
	}
}

func TestUnified_NoToolCallsFallsBack(t *testing.T) {
	store := history.NewInMemoryStore()
	cs := New(store)

	caller := model.NewMockModel("caller", "mock")
	responder := model.NewMockModel("responder", "mock")
	fallback := &fallbackStub{}

	tr := transport.NewMockTransport()
	inv := testInvocation(caller, responder, tr, []integration.Integration{
		&stubIntegration{name: "alpha", result: &integration.Result{Success: true}},
	}, fallback)

	result, err := cs.Activate(context.Background(), inv)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if fallback.calls != 1 {
		t.Fatalf("fallback must handle the message, calls=%d", fallback.calls)
	}
	if result.Summary != "fallback" {
		t.Fatalf("fallback result must propagate, got %+v", result)
	}
	// The unified pipeline must not persist anything when falling back.
	records, _ := cs.Histories().Everything(context.Background(), "chan-1", false)
	if len(records) != 0 {
		t.Fatalf("expected no unified records, got %d", len(records))
	}
}

func TestUnified_CallerErrorFallsBack(t *testing.T) {
	store := history.NewInMemoryStore()
	cs := New(store)

	caller := model.NewMockModel("caller", "mock")
	caller.FailWith(errors.New("provider down"))
	responder := model.NewMockModel("responder", "mock")
	fallback := &fallbackStub{}

	inv := testInvocation(caller, responder, transport.NewMockTransport(), nil, fallback)
	if _, err := cs.Activate(context.Background(), inv); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if fallback.calls != 1 {
		t.Fatal("caller errors must fall back")
	}
}

func TestUnified_ResponderFailureUsesPlaceholder(t *testing.T) {
	store := history.NewInMemoryStore()
	cs := New(store)

	caller := model.NewMockModel("caller", "mock")
	caller.QueueToolCalls(core.ToolCallRequest{ID: "t1", ToolName: "alpha", Arguments: []byte(`{}`)})
	responder := model.NewMockModel("responder", "mock")
	responder.FailWith(errors.New("provider down"))

	tr := transport.NewMockTransport()
	inv := testInvocation(caller, responder, tr, []integration.Integration{
		&stubIntegration{name: "alpha", result: &integration.Result{Success: true, Content: "ok"}},
	}, nil)

	if _, err := cs.Activate(context.Background(), inv); err != nil {
		t.Fatalf("activate: %v", err)
	}

	edited := false
	for _, e := range tr.Edits {
		if e.Content == NoResponsePlaceholder {
			edited = true
		}
	}
	if !edited {
		t.Fatal("responder failure must edit in the placeholder text")
	}
}

func TestUnified_PanickingToolIsIsolated(t *testing.T) {
	store := history.NewInMemoryStore()
	cs := New(store)

	caller := model.NewMockModel("caller", "mock")
	caller.QueueToolCalls(core.ToolCallRequest{ID: "t1", ToolName: "bomb", Arguments: []byte(`{}`)})
	responder := model.NewMockModel("responder", "mock")

	tr := transport.NewMockTransport()
	inv := testInvocation(caller, responder, tr, []integration.Integration{
		&stubIntegration{name: "bomb", panics: true},
	}, nil)

	result, err := cs.Activate(context.Background(), inv)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !result.Success {
		t.Fatalf("a tool panic must not fail the pipeline: %+v", result)
	}

	records, _ := cs.Histories().Everything(context.Background(), "chan-1", false)
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	if records[2].Content != CatastrophicFailureContent {
		t.Fatalf("panic must persist as a failure record, got %q", records[2].Content)
	}
}
