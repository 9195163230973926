package modelspec

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"
)

// Schema returns the JSON Schema for model spec documents.
func Schema() *jsonschema.Schema {
	layer := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"type": {
				Type: "string",
				Enum: []any{TypeLinear, TypeReLU, TypeSigmoid, TypeFlatten, TypeSequential},
			},
			"name": {Type: "string"},
			"in":   {Type: "integer", Minimum: jsonschema.Ptr(1.0)},
			"out":  {Type: "integer", Minimum: jsonschema.Ptr(1.0)},
			"layers": {
				Type:  "array",
				Items: &jsonschema.Schema{Ref: "#/$defs/layer"},
			},
		},
		Required:             []string{"type"},
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}

	return &jsonschema.Schema{
		Type: "object",
		Defs: map[string]*jsonschema.Schema{
			"layer": layer,
		},
		Properties: map[string]*jsonschema.Schema{
			"name": {Type: "string"},
			"layers": {
				Type:  "array",
				Items: &jsonschema.Schema{Ref: "#/$defs/layer"},
			},
		},
		Required:             []string{"name", "layers"},
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
}

// Validate checks a raw YAML document against [Schema] without building
// anything. Useful for linting spec files before a run.
func Validate(data []byte) error {
	var doc any

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	resolved, err := Schema().Resolve(nil)
	if err != nil {
		return fmt.Errorf("resolving model spec schema: %w", err)
	}

	err = resolved.Validate(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	return nil
}
