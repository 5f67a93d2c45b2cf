// Package wiki looks up article summaries from the Wikipedia REST API.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/callwise/callwise/core"
	"github.com/callwise/callwise/integration"
	"github.com/callwise/callwise/model"
	"github.com/callwise/callwise/plugin"
)

// DefaultBaseURL is the English Wikipedia REST endpoint.
const DefaultBaseURL = "https://en.wikipedia.org/api/rest_v1"

type params struct {
	Query string `json:"query" jsonschema:"required,description=Article title to look up"`
	Full  bool   `json:"full,omitempty" jsonschema:"description=Attach the full extract instead of only the summary"`
}

type summaryResponse struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	Description string `json:"description"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Options configure the wiki integration.
type Options struct {
	BaseURL string
	Client  *http.Client
}

// Integration answers questions from Wikipedia article summaries.
type Integration struct {
	baseURL string
	client  *http.Client
}

var (
	_ integration.Integration = (*Integration)(nil)
)

// New creates the wiki integration.
func New(optFns ...func(o *Options)) *Integration {
	opts := Options{
		BaseURL: DefaultBaseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Integration{baseURL: strings.TrimRight(opts.BaseURL, "/"), client: opts.Client}
}

// Descriptor implements plugin.Plugin.
func (i *Integration) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		PackageID:    "in.wiki",
		Version:      "2.1.0",
		ReleaseDate:  time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC),
		Capabilities: []plugin.Capability{plugin.CapabilityText, plugin.CapabilityTools},
	}
}

// Tool implements integration.Integration.
func (i *Integration) Tool() model.ToolDefinition {
	return model.ToolDefinition{
		Type: "function",
		Function: model.FunctionDefinition{
			Name:        "wiki",
			Description: "Look up a topic on Wikipedia and return its summary.",
			Parameters:  integration.MustDeriveSchema(&params{}),
		},
	}
}

// Activate implements integration.Integration.
func (i *Integration) Activate(ctx context.Context, inv *integration.Invocation) (*integration.Result, error) {
	query, _ := inv.Arguments["query"].(string)
	if strings.TrimSpace(query) == "" {
		return &integration.Result{Success: false, Content: "No query was provided."}, nil
	}
	full, _ := inv.Arguments["full"].(bool)

	title := url.PathEscape(strings.ReplaceAll(strings.TrimSpace(query), " ", "_"))
	endpoint := fmt.Sprintf("%s/page/summary/%s", i.baseURL, title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &integration.Result{Success: false, Content: fmt.Sprintf("No Wikipedia article found for %q.", query)}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var summary summaryResponse
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("decode wikipedia response: %w", err)
	}
	if summary.Extract == "" {
		return &integration.Result{Success: false, Content: fmt.Sprintf("The article %q has no summary.", query)}, nil
	}

	result := &integration.Result{
		Success: true,
		Content: fmt.Sprintf("%s: %s", summary.Title, summary.Extract),
		Data:    map[string]any{"title": summary.Title, "description": summary.Description},
	}
	if page := summary.ContentURLs.Desktop.Page; page != "" {
		result.Button = &core.Button{Label: "Read on Wikipedia", URL: page}
	}
	if full {
		result.Attachments = []core.Attachment{{Name: "article.md", Data: []byte(summary.Extract)}}
	}
	return result, nil
}
