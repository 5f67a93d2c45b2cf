package callsystem

import (
	"testing"

	"github.com/callwise/callwise/core"
)

func TestShouldActivate(t *testing.T) {
	tests := []struct {
		name string
		ac   ActivationContext
		want bool
	}{
		{"whitelist listed", ActivationContext{Mode: ModeWhitelist, Listed: true}, true},
		{"whitelist unlisted", ActivationContext{Mode: ModeWhitelist, Listed: false}, false},
		{"blacklist unlisted", ActivationContext{Mode: ModeBlacklist, Listed: false}, true},
		{"blacklist listed", ActivationContext{Mode: ModeBlacklist, Listed: true}, false},
		{"mention overrides unlisted", ActivationContext{Mode: ModeWhitelist, Mention: true}, true},
		{"mention overrides silent", ActivationContext{Mode: ModeWhitelist, Mention: true, Silent: true}, true},
		{"silent suppresses channel activation", ActivationContext{Mode: ModeWhitelist, Listed: true, Silent: true}, false},
		{"comment always wins", ActivationContext{Mode: ModeWhitelist, Listed: true, Mention: true, Comment: true}, false},
		{"comment in blacklist mode", ActivationContext{Mode: ModeBlacklist, Comment: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldActivate(tt.ac); got != tt.want {
				t.Fatalf("ShouldActivate(%+v) = %v, want %v", tt.ac, got, tt.want)
			}
		})
	}
}

func TestPolicy_Derive(t *testing.T) {
	p := Policy{Mode: ModeWhitelist, Channels: []string{"general", "bots"}}

	msg := core.Message{ChannelID: "general", Content: "hello", MentionsBot: true}
	ac := p.Derive(msg, true)
	if !ac.Listed || !ac.Mention || ac.Comment || !ac.Silent {
		t.Fatalf("unexpected activation context: %+v", ac)
	}

	escaped := core.Message{ChannelID: "random", Content: "!! talking about the bot"}
	ac = p.Derive(escaped, false)
	if !ac.Comment {
		t.Fatal("content with the comment prefix must derive Comment=true")
	}
	if ac.Listed {
		t.Fatal("unlisted channel must derive Listed=false")
	}
}

func TestPolicy_Activates(t *testing.T) {
	p := Policy{Mode: ModeBlacklist, Channels: []string{"muted"}}

	if !p.Activates(core.Message{ChannelID: "general", Content: "hi"}, false) {
		t.Fatal("blacklist mode should activate in unlisted channels")
	}
	if p.Activates(core.Message{ChannelID: "muted", Content: "hi"}, false) {
		t.Fatal("blacklist mode should not activate in listed channels")
	}
	if p.Activates(core.Message{ChannelID: "general", Content: "!!hi"}, false) {
		t.Fatal("comment prefix must suppress activation")
	}
}
