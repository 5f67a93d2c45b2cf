package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
activation:
  mode: blacklist
  channels:
    - muted
    - announcements
caller:
  provider: openai
  model: gpt-4o-mini
responder:
  provider: anthropic
  model: claude-3-5-sonnet-20241022
history:
  contextWindow: 10
callsystem: cs.unified
instructionSets:
  default: "You are a helpful assistant."
  tools: "Select the most relevant tool."
defaultInstructionSet: default
toolInstructionSet: tools
metrics:
  enabled: true
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "blacklist", cfg.Activation.Mode)
	assert.Equal(t, []string{"muted", "announcements"}, cfg.Activation.Channels)
	assert.Equal(t, "openai", cfg.Caller.Provider)
	assert.Equal(t, "anthropic", cfg.Responder.Provider)
	assert.Equal(t, 10, cfg.History.ContextWindow)
	assert.Equal(t, "You are a helpful assistant.", cfg.InstructionSet("default"))
	assert.Equal(t, "Select the most relevant tool.", cfg.InstructionSet(cfg.ToolInstructionSet))
	assert.Equal(t, ":9090", cfg.Metrics.Addr, "metrics addr should default when enabled")
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, "whitelist", cfg.Activation.Mode)
	assert.Equal(t, DefaultContextWindow, cfg.History.ContextWindow)
	assert.Equal(t, DefaultCallsystem, cfg.Callsystem)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
}

func TestParse_InvalidMode(t *testing.T) {
	_, err := Parse([]byte("activation:\n  mode: greylist\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "activation mode")
}

func TestParse_UndefinedInstructionSet(t *testing.T) {
	_, err := Parse([]byte(`
instructionSets:
  default: "x"
defaultInstructionSet: missing
`))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CALLWISE_ACTIVATION_MODE", "blacklist")
	t.Setenv("CALLWISE_ACTIVATION_CHANNELS", "a, b ,c")
	t.Setenv("CALLWISE_CONTEXT_WINDOW", "7")
	t.Setenv("CALLWISE_CALLSYSTEM", "cs.legacy")
	t.Setenv("CALLWISE_RESPONDER_API_KEY", "secret")

	cfg, err := Parse([]byte("activation:\n  mode: whitelist\n"))
	require.NoError(t, err)

	assert.Equal(t, "blacklist", cfg.Activation.Mode)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Activation.Channels)
	assert.Equal(t, 7, cfg.History.ContextWindow)
	assert.Equal(t, "cs.legacy", cfg.Callsystem)
	assert.Equal(t, "secret", cfg.Responder.APIKey)
}

func TestJSONSchema(t *testing.T) {
	schema, err := JSONSchema()
	require.NoError(t, err)
	assert.Contains(t, string(schema), "activation")
}
