package callsystem

import (
	"strings"

	"github.com/callwise/callwise/core"
)

// CommentPrefix escapes a message from activation entirely.
const CommentPrefix = "!!"

// ActivationMode selects how the channel setlist is interpreted.
type ActivationMode string

const (
	// ModeWhitelist activates only in listed channels.
	ModeWhitelist ActivationMode = "whitelist"
	// ModeBlacklist activates everywhere except listed channels.
	ModeBlacklist ActivationMode = "blacklist"
)

// Policy decides whether an inbound message should get a response.
type Policy struct {
	Mode     ActivationMode
	Channels []string
}

// ActivationContext is the fully derived input to the activation decision,
// kept explicit so the decision itself is a pure function.
type ActivationContext struct {
	Mention bool
	Comment bool
	Listed  bool
	Silent  bool
	Mode    ActivationMode
}

// Derive computes the activation context for a message under the current
// runtime state.
func (p Policy) Derive(msg core.Message, silent bool) ActivationContext {
	listed := false
	for _, ch := range p.Channels {
		if ch == msg.ChannelID {
			listed = true
			break
		}
	}
	return ActivationContext{
		Mention: msg.MentionsBot,
		Comment: strings.HasPrefix(msg.Content, CommentPrefix),
		Listed:  listed,
		Silent:  silent,
		Mode:    p.Mode,
	}
}

// ShouldActivate applies the activation rule. A comment prefix always wins.
// A direct mention activates even in silent mode; channel-based activation
// is suppressed while silent.
func ShouldActivate(ac ActivationContext) bool {
	if ac.Comment {
		return false
	}
	channelActive := (ac.Mode == ModeWhitelist && ac.Listed) ||
		(ac.Mode == ModeBlacklist && !ac.Listed)
	return ac.Mention || (channelActive && !ac.Silent)
}

// Activates is a convenience combining Derive and ShouldActivate.
func (p Policy) Activates(msg core.Message, silent bool) bool {
	return ShouldActivate(p.Derive(msg, silent))
}
