package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Role identifies the author class of a conversation record.
type Role string

const (
	// RoleSystem marks persona / instruction records.
	RoleSystem Role = "system"
	// RoleUser marks records authored by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks records authored by a model.
	RoleAssistant Role = "assistant"
	// RoleTool marks records carrying an integration result.
	RoleTool Role = "tool"
)

// AllRoles lists every record role. Passing this set to history removal
// operations turns them into a full delete.
var AllRoles = []Role{RoleSystem, RoleUser, RoleAssistant, RoleTool}

// RecordContext carries per-record metadata. SequenceID/Sequence reconstruct
// insertion order for multi-record batches even when the store returns entries
// in reverse-chronological order.
type RecordContext struct {
	Timestamp    time.Time `json:"timestamp"`
	RespondingTo string    `json:"respondingTo,omitempty"`
	Model        string    `json:"model,omitempty"`
	SequenceID   string    `json:"sequenceId,omitempty"`
	Sequence     int       `json:"sequence,omitempty"`
}

// Record is one immutable entry of a conversation. Conversation state is the
// ordered list of records under a key.
type Record struct {
	ContextID string        `json:"contextId,omitempty"`
	Role      Role          `json:"role"`
	Content   string        `json:"content"`
	Context   RecordContext `json:"context"`

	// ToolCalls carries structured tool-call metadata on assistant records
	// emitted by the tool-selection phase.
	ToolCalls []ToolCallRequest `json:"toolCalls,omitempty"`

	// ToolResult carries the correlated result on tool-role records.
	ToolResult *ToolCallResult `json:"toolResult,omitempty"`

	// Base marks persona records that are prepended on reads and never
	// persisted to the store.
	Base bool `json:"base,omitempty"`
}

// EncodeRecord serializes a record for the store.
func EncodeRecord(r Record) (string, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	return string(raw), nil
}

// DecodeRecord parses a stored record value.
func DecodeRecord(value string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(value), &r); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return r, nil
}

// HasRole reports whether the record's role is contained in roles.
func (r Record) HasRole(roles []Role) bool {
	for _, role := range roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

// ContainsAllRoles reports whether roles covers every defined role.
func ContainsAllRoles(roles []Role) bool {
	seen := map[Role]bool{}
	for _, r := range roles {
		seen[r] = true
	}
	for _, r := range AllRoles {
		if !seen[r] {
			return false
		}
	}
	return true
}
