// Package imagine turns a text prompt into a generated image attached to
// the reply. Generation itself is delegated to a pluggable Generator so any
// image-capable provider can back it.
package imagine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/callwise/callwise/core"
	"github.com/callwise/callwise/integration"
	"github.com/callwise/callwise/model"
	"github.com/callwise/callwise/plugin"
)

// Generator produces image bytes for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) ([]byte, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) ([]byte, error) {
	return f(ctx, prompt)
}

type params struct {
	Prompt string `json:"prompt" jsonschema:"required,description=Description of the image to generate"`
}

// Integration generates images from prompts.
type Integration struct {
	generator Generator
}

var (
	_ integration.Integration = (*Integration)(nil)
	_ integration.Conditional = (*Integration)(nil)
)

// New creates the imagine integration. A nil generator leaves the tool
// registered but unavailable.
func New(generator Generator) *Integration {
	return &Integration{generator: generator}
}

// Descriptor implements plugin.Plugin.
func (i *Integration) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		PackageID:    "in.imagine",
		Version:      "0.9.0",
		ReleaseDate:  time.Date(2024, 7, 21, 0, 0, 0, 0, time.UTC),
		Capabilities: []plugin.Capability{plugin.CapabilityImage, plugin.CapabilityTools},
	}
}

// Tool implements integration.Integration.
func (i *Integration) Tool() model.ToolDefinition {
	return model.ToolDefinition{
		Type: "function",
		Function: model.FunctionDefinition{
			Name:        "imagine",
			Description: "Generate an image from a text prompt and attach it to the reply.",
			Parameters:  integration.MustDeriveSchema(&params{}),
		},
	}
}

// Available hides the tool when no generator is wired.
func (i *Integration) Available(inv *integration.Invocation) bool {
	return i.generator != nil
}

// Activate implements integration.Integration.
func (i *Integration) Activate(ctx context.Context, inv *integration.Invocation) (*integration.Result, error) {
	if i.generator == nil {
		return &integration.Result{Success: false, Content: "No image-capable provider is configured."}, nil
	}
	prompt, _ := inv.Arguments["prompt"].(string)
	if strings.TrimSpace(prompt) == "" {
		return &integration.Result{Success: false, Content: "No prompt was provided."}, nil
	}

	data, err := i.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	return &integration.Result{
		Success: true,
		Content: fmt.Sprintf("Generated an image for the prompt: %s", prompt),
		Attachments: []core.Attachment{
			{Name: "imagine.png", Data: data},
		},
	}, nil
}
