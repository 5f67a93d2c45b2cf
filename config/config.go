package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Validate.
const (
	DefaultContextWindow = 5
	DefaultCallsystem    = "cs.unified"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
)

// ActivationConfig drives the channel activation policy.
type ActivationConfig struct {
	// Mode is "whitelist" or "blacklist".
	Mode string `yaml:"mode"`
	// Channels is the channel id setlist the mode interprets.
	Channels []string `yaml:"channels"`
}

// ModelConfig selects a provider-backed model role.
type ModelConfig struct {
	// Provider is "openai" or "anthropic".
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
	BaseURL  string `yaml:"baseUrl"`
}

// HistoryConfig bounds conversation recall.
type HistoryConfig struct {
	ContextWindow int `yaml:"contextWindow"`
}

// LoggingConfig selects log output shape.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig enables the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// DiscordConfig holds platform credentials for the bundled binding.
type DiscordConfig struct {
	Token string `yaml:"token"`
}

// Config is the full engine configuration.
type Config struct {
	Activation ActivationConfig `yaml:"activation"`
	Caller     ModelConfig      `yaml:"caller"`
	Responder  ModelConfig      `yaml:"responder"`
	Image      ModelConfig      `yaml:"image"`
	History    HistoryConfig    `yaml:"history"`

	// Callsystem is the package id or registry key of the default
	// callsystem.
	Callsystem string `yaml:"callsystem"`

	// InstructionSets maps persona names to system prompt content.
	InstructionSets map[string]string `yaml:"instructionSets"`
	// DefaultInstructionSet names the persona used for responder calls.
	DefaultInstructionSet string `yaml:"defaultInstructionSet"`
	// ToolInstructionSet names the persona used for tool selection calls.
	ToolInstructionSet string `yaml:"toolInstructionSet"`

	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Discord DiscordConfig `yaml:"discord"`
}

// Default returns a validated configuration with built-in defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML file, applies environment overrides and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies environment overrides and
// validates.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets deploy-time settings and secrets override file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("CALLWISE_ACTIVATION_MODE"); v != "" {
		c.Activation.Mode = v
	}
	if v := os.Getenv("CALLWISE_ACTIVATION_CHANNELS"); v != "" {
		c.Activation.Channels = splitList(v)
	}
	if v := os.Getenv("CALLWISE_CALLER_API_KEY"); v != "" {
		c.Caller.APIKey = v
	}
	if v := os.Getenv("CALLWISE_RESPONDER_API_KEY"); v != "" {
		c.Responder.APIKey = v
	}
	if v := os.Getenv("CALLWISE_IMAGE_API_KEY"); v != "" {
		c.Image.APIKey = v
	}
	if v := os.Getenv("CALLWISE_CALLSYSTEM"); v != "" {
		c.Callsystem = v
	}
	if v := os.Getenv("CALLWISE_CONTEXT_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.History.ContextWindow = n
		}
	}
	if v := os.Getenv("CALLWISE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CALLWISE_DISCORD_TOKEN"); v != "" {
		c.Discord.Token = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) applyDefaults() {
	if c.Activation.Mode == "" {
		c.Activation.Mode = "whitelist"
	}
	if c.History.ContextWindow <= 0 {
		c.History.ContextWindow = DefaultContextWindow
	}
	if c.Callsystem == "" {
		c.Callsystem = DefaultCallsystem
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
}

// Validate applies defaults and rejects inconsistent settings.
func (c *Config) Validate() error {
	c.applyDefaults()

	switch c.Activation.Mode {
	case "whitelist", "blacklist":
	default:
		return fmt.Errorf("invalid activation mode %q", c.Activation.Mode)
	}

	for _, mc := range []struct {
		name string
		cfg  ModelConfig
	}{{"caller", c.Caller}, {"responder", c.Responder}, {"image", c.Image}} {
		if mc.cfg.Provider == "" {
			continue
		}
		switch mc.cfg.Provider {
		case "openai", "anthropic":
		default:
			return fmt.Errorf("invalid %s provider %q", mc.name, mc.cfg.Provider)
		}
	}

	if c.DefaultInstructionSet != "" && len(c.InstructionSets) > 0 {
		if _, ok := c.InstructionSets[c.DefaultInstructionSet]; !ok {
			return fmt.Errorf("default instruction set %q is not defined", c.DefaultInstructionSet)
		}
	}
	if c.ToolInstructionSet != "" && len(c.InstructionSets) > 0 {
		if _, ok := c.InstructionSets[c.ToolInstructionSet]; !ok {
			return fmt.Errorf("tool instruction set %q is not defined", c.ToolInstructionSet)
		}
	}
	return nil
}

// InstructionSet resolves a persona by name, empty when undefined.
func (c *Config) InstructionSet(name string) string {
	if c.InstructionSets == nil {
		return ""
	}
	return c.InstructionSets[name]
}
