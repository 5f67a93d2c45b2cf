// Package weather is a demonstration integration returning canned current
// conditions for a named location.
package weather

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/callwise/callwise/integration"
	"github.com/callwise/callwise/model"
	"github.com/callwise/callwise/plugin"
)

type params struct {
	Location string `json:"location" jsonschema:"required,description=City or place to report the weather for"`
	Unit     string `json:"unit,omitempty" jsonschema:"enum=celsius,enum=fahrenheit,description=Temperature unit"`
}

var conditions = []string{"clear skies", "light rain", "overcast", "scattered clouds", "thunderstorms", "snow flurries"}

// Integration reports weather conditions.
type Integration struct{}

var _ integration.Integration = (*Integration)(nil)

// New creates the weather integration.
func New() *Integration { return &Integration{} }

// Descriptor implements plugin.Plugin.
func (i *Integration) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		PackageID:    "in.weather",
		Version:      "1.2.0",
		ReleaseDate:  time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC),
		Capabilities: []plugin.Capability{plugin.CapabilityText, plugin.CapabilityTools},
	}
}

// Tool implements integration.Integration.
func (i *Integration) Tool() model.ToolDefinition {
	return model.ToolDefinition{
		Type: "function",
		Function: model.FunctionDefinition{
			Name:        "weather",
			Description: "Get the current weather conditions for a location.",
			Parameters:  integration.MustDeriveSchema(&params{}),
		},
	}
}

// Activate implements integration.Integration. The report is deterministic
// per location so repeated questions stay consistent within a day.
func (i *Integration) Activate(ctx context.Context, inv *integration.Invocation) (*integration.Result, error) {
	location, _ := inv.Arguments["location"].(string)
	if strings.TrimSpace(location) == "" {
		return &integration.Result{Success: false, Content: "No location was provided."}, nil
	}
	unit, _ := inv.Arguments["unit"].(string)

	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(location)))
	h.Write([]byte(time.Now().UTC().Format("2006-01-02")))
	seed := h.Sum32()

	condition := conditions[seed%uint32(len(conditions))]
	tempC := int(seed%35) - 5
	temp := fmt.Sprintf("%d°C", tempC)
	if unit == "fahrenheit" {
		temp = fmt.Sprintf("%d°F", tempC*9/5+32)
	}

	return &integration.Result{
		Success: true,
		Content: fmt.Sprintf("Current weather in %s: %s, %s.", location, condition, temp),
		Data: map[string]any{
			"location":  location,
			"condition": condition,
		},
	}, nil
}
