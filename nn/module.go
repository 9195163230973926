package nn

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrChildNotFound indicates a child name that does not exist on the
	// receiving module.
	ErrChildNotFound = errors.New("child not found")
	// ErrShape indicates an input whose dimensions do not match the layer.
	ErrShape = errors.New("shape mismatch")
)

// Module is a node in a model's composition tree.
//
// The capability set is deliberately explicit: invocation, identity, child
// enumeration, child replacement, size, and iteration. Every Module supports
// all of them; leaves report zero children rather than failing.
type Module interface {
	// Forward invokes the module on a batch of row-vector inputs and
	// returns the output batch. Input and output must not be retained or
	// mutated by the module.
	Forward(x *mat.Dense) (*mat.Dense, error)

	// Name returns the module's display identity.
	Name() string

	// NamedChildren returns the direct children in deterministic order.
	// Leaves return nil.
	NamedChildren() []Child

	// ReplaceChild swaps the named child for m. It returns
	// [ErrChildNotFound] when no child has that name.
	ReplaceChild(name string, m Module) error

	// Len returns the number of direct children.
	Len() int

	// Modules returns the direct children in the same order as
	// NamedChildren, without names.
	Modules() []Module
}

// Child pairs a child module with the name it is registered under on its
// parent.
type Child struct {
	Name   string
	Module Module
}

// Synchronizer is implemented by modules that dispatch asynchronous device
// work. Synchronize blocks until all previously dispatched work is complete.
type Synchronizer interface {
	Synchronize()
}

// Base provides leaf defaults for the child-related Module operations.
// Embed it in layers that have no submodules.
type Base struct {
	name string
}

// NewBase creates a [Base] with the given display name.
func NewBase(name string) Base {
	return Base{name: name}
}

// Name returns the module's display identity.
func (b Base) Name() string { return b.name }

// NamedChildren returns nil; a leaf has no children.
func (b Base) NamedChildren() []Child { return nil }

// ReplaceChild always returns [ErrChildNotFound]; a leaf has no children.
func (b Base) ReplaceChild(string, Module) error { return ErrChildNotFound }

// Len returns 0; a leaf has no children.
func (b Base) Len() int { return 0 }

// Modules returns nil; a leaf has no children.
func (b Base) Modules() []Module { return nil }
