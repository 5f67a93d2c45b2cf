package integration

import (
	"errors"
	"testing"
)

type lookupParams struct {
	Query string `json:"query" jsonschema:"required,description=Search query"`
	Limit int    `json:"limit,omitempty" jsonschema:"description=Maximum results"`
}

func TestDeriveSchema(t *testing.T) {
	schema, err := DeriveSchema(&lookupParams{})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if schema["type"] != "object" {
		t.Fatalf("expected an object schema, got %v", schema["type"])
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("missing properties: %v", schema)
	}
	if _, ok := props["query"]; !ok {
		t.Fatal("query property missing")
	}
	if _, ok := props["limit"]; !ok {
		t.Fatal("limit property missing")
	}
}

func TestValidateArguments(t *testing.T) {
	schema, err := DeriveSchema(&lookupParams{})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}

	if err := ValidateArguments("lookup", schema, map[string]any{"query": "go"}); err != nil {
		t.Fatalf("valid arguments rejected: %v", err)
	}

	err = ValidateArguments("lookup", schema, map[string]any{"limit": 3})
	if err == nil {
		t.Fatal("missing required field must fail validation")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Integration != "lookup" {
		t.Fatalf("expected a ValidationError naming the integration, got %v", err)
	}

	if err := ValidateArguments("lookup", schema, map[string]any{"query": "go", "limit": "three"}); err == nil {
		t.Fatal("wrong-typed field must fail validation")
	}
}

func TestValidateArguments_NilArgs(t *testing.T) {
	schema := map[string]any{"type": "object"}
	if err := ValidateArguments("open", schema, nil); err != nil {
		t.Fatalf("nil arguments against a permissive schema must pass: %v", err)
	}
}
