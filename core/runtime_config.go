package core

import (
	"context"
	"encoding/json"
	"sync"
)

// RuntimeConfigKey is the reserved store key runtime snapshots are written to.
const RuntimeConfigKey = "runtime-config"

type runtimeSnapshot struct {
	SilentMode     bool   `json:"silentMode"`
	InstructionSet string `json:"instructionSet,omitempty"`
	Callsystem     string `json:"callsystem,omitempty"`
}

// RuntimeConfig is the process-wide mutable state read by the activation
// policy and the dispatcher: the silent-mode flag, the selected instruction
// set and the selected callsystem key. It replaces ad hoc shared map access
// with defined setters that also persist a snapshot to the record store.
//
// Writes are last-writer-wins. They are operator-triggered, infrequent and
// idempotent, so no stronger coordination is needed.
type RuntimeConfig struct {
	mu sync.RWMutex

	silentMode     bool
	instructionSet string
	callsystem     string

	store RecordStore
}

// NewRuntimeConfig creates a RuntimeConfig backed by store. A nil store keeps
// the state purely in memory.
func NewRuntimeConfig(store RecordStore, instructionSet, callsystem string) *RuntimeConfig {
	return &RuntimeConfig{store: store, instructionSet: instructionSet, callsystem: callsystem}
}

// Load restores the most recent persisted snapshot, if any.
func (c *RuntimeConfig) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	values, err := c.store.Range(ctx, RuntimeConfigKey, 0, 0)
	if err != nil {
		return NewStoreError("range", RuntimeConfigKey, err)
	}
	if len(values) == 0 {
		return nil
	}
	var snap runtimeSnapshot
	if err := json.Unmarshal([]byte(values[0]), &snap); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.silentMode = snap.SilentMode
	if snap.InstructionSet != "" {
		c.instructionSet = snap.InstructionSet
	}
	if snap.Callsystem != "" {
		c.callsystem = snap.Callsystem
	}
	return nil
}

func (c *RuntimeConfig) persist(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	c.mu.RLock()
	snap := runtimeSnapshot{SilentMode: c.silentMode, InstructionSet: c.instructionSet, Callsystem: c.callsystem}
	c.mu.RUnlock()
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	// Snapshots supersede each other, so the list is kept at one entry.
	if err := c.store.Delete(ctx, RuntimeConfigKey); err != nil {
		return NewStoreError("delete", RuntimeConfigKey, err)
	}
	if err := c.store.PushFront(ctx, RuntimeConfigKey, string(raw)); err != nil {
		return NewStoreError("push", RuntimeConfigKey, err)
	}
	return nil
}

// SilentMode reports whether passive activation is currently suppressed.
func (c *RuntimeConfig) SilentMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.silentMode
}

// SetSilentMode updates the silent-mode flag and persists the snapshot.
func (c *RuntimeConfig) SetSilentMode(ctx context.Context, silent bool) error {
	c.mu.Lock()
	c.silentMode = silent
	c.mu.Unlock()
	return c.persist(ctx)
}

// InstructionSet returns the selected instruction set name.
func (c *RuntimeConfig) InstructionSet() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.instructionSet
}

// SetInstructionSet selects an instruction set and persists the snapshot.
func (c *RuntimeConfig) SetInstructionSet(ctx context.Context, name string) error {
	c.mu.Lock()
	c.instructionSet = name
	c.mu.Unlock()
	return c.persist(ctx)
}

// Callsystem returns the selected callsystem registry key.
func (c *RuntimeConfig) Callsystem() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.callsystem
}

// SetCallsystem selects the callsystem registry key and persists the snapshot.
func (c *RuntimeConfig) SetCallsystem(ctx context.Context, key string) error {
	c.mu.Lock()
	c.callsystem = key
	c.mu.Unlock()
	return c.persist(ctx)
}
