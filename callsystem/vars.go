package callsystem

import (
	"time"

	"github.com/callwise/callwise/core"
)

// DefaultPronouns is used when the platform exposes no pronoun data.
const DefaultPronouns = "they/them"

// MessageVariables derives the standard template variables for a message.
func MessageVariables(msg core.Message) map[string]string {
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return map[string]string{
		"USER":      msg.AuthorName,
		"PRONOUNS":  DefaultPronouns,
		"TIMESTAMP": ts.UTC().Format(time.RFC1123),
	}
}
