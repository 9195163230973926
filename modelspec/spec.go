package modelspec

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

var (
	// ErrInvalidSpec indicates a document that does not describe a model.
	ErrInvalidSpec = errors.New("invalid model spec")
	// ErrUnknownLayerType indicates a layer type this package cannot build.
	ErrUnknownLayerType = errors.New("unknown layer type")
	// ErrBadDimensions indicates a layer with missing or non-positive
	// dimensions.
	ErrBadDimensions = errors.New("bad layer dimensions")
)

// Layer type names accepted in a spec.
const (
	TypeLinear     = "linear"
	TypeReLU       = "relu"
	TypeSigmoid    = "sigmoid"
	TypeFlatten    = "flatten"
	TypeSequential = "sequential"
)

// Spec is a declarative model architecture.
type Spec struct {
	Name   string      `json:"name"   yaml:"name"`
	Layers []LayerSpec `json:"layers" yaml:"layers"`
}

// LayerSpec describes one layer. Linear layers use In and Out; sequential
// layers nest further LayerSpecs under Layers.
type LayerSpec struct {
	Type   string      `json:"type"             yaml:"type"`
	Name   string      `json:"name,omitempty"   yaml:"name,omitempty"`
	In     int         `json:"in,omitempty"     yaml:"in,omitempty"`
	Out    int         `json:"out,omitempty"    yaml:"out,omitempty"`
	Layers []LayerSpec `json:"layers,omitempty" yaml:"layers,omitempty"`
}

// Load decodes a YAML model spec. Decoding is strict: unknown fields and
// duplicate keys are errors. The spec must name the model and list at least
// one layer.
func Load(data []byte) (*Spec, error) {
	var spec Spec

	err := yaml.UnmarshalWithOptions(data, &spec, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	if spec.Name == "" {
		return nil, fmt.Errorf("%w: missing model name", ErrInvalidSpec)
	}

	if len(spec.Layers) == 0 {
		return nil, fmt.Errorf("%w: model %q has no layers", ErrInvalidSpec, spec.Name)
	}

	return &spec, nil
}
