package integration

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	jsonschemav5 "github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationError reports caller-chosen arguments that do not satisfy an
// integration's schema.
type ValidationError struct {
	Integration string
	Err         error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for integration %q: %v", e.Integration, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// DeriveSchema reflects a JSON schema for a parameter struct, inlined so it
// can be embedded directly in a tool definition.
func DeriveSchema(params any) (map[string]any, error) {
	r := &jsonschema.Reflector{
		DoNotReference:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(params)

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	delete(out, "$schema")
	delete(out, "$id")
	return out, nil
}

// MustDeriveSchema is DeriveSchema for package-level tool definitions.
func MustDeriveSchema(params any) map[string]any {
	schema, err := DeriveSchema(params)
	if err != nil {
		panic(err)
	}
	return schema
}

var compiledSchemas sync.Map

func compileSchema(name string, schema map[string]any) (*jsonschemav5.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	key := string(raw)
	if cached, ok := compiledSchemas.Load(key); ok {
		if compiled, ok := cached.(*jsonschemav5.Schema); ok {
			return compiled, nil
		}
	}
	compiled, err := jsonschemav5.CompileString(name+".schema.json", key)
	if err != nil {
		return nil, err
	}
	compiledSchemas.Store(key, compiled)
	return compiled, nil
}

// ValidateArguments checks caller-chosen arguments against an integration's
// parameter schema. Compiled schemas are cached across calls.
func ValidateArguments(name string, schema map[string]any, args map[string]any) error {
	compiled, err := compileSchema(name, schema)
	if err != nil {
		return &ValidationError{Integration: name, Err: fmt.Errorf("compile schema: %w", err)}
	}

	// Round-trip through JSON so Go-native values normalize to the types
	// the validator expects.
	payload, err := json.Marshal(args)
	if err != nil {
		return &ValidationError{Integration: name, Err: err}
	}
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return &ValidationError{Integration: name, Err: err}
	}
	if decoded == nil {
		decoded = map[string]any{}
	}

	if err := compiled.Validate(decoded); err != nil {
		return &ValidationError{Integration: name, Err: err}
	}
	return nil
}
