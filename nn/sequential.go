package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Sequential chains child modules in registration order: the output of each
// child is the input of the next.
type Sequential struct {
	name     string
	order    []string
	children map[string]Module
}

// NewSequential creates a [Sequential] container from the given children,
// preserving their order.
func NewSequential(name string, children ...Child) *Sequential {
	s := &Sequential{
		name:     name,
		children: make(map[string]Module, len(children)),
	}

	for _, c := range children {
		s.order = append(s.order, c.Name)
		s.children[c.Name] = c.Module
	}

	return s
}

// Name returns the container's display identity.
func (s *Sequential) Name() string { return s.name }

// Forward feeds x through each child in order, propagating the first error.
func (s *Sequential) Forward(x *mat.Dense) (*mat.Dense, error) {
	y := x

	for _, name := range s.order {
		var err error

		y, err = s.children[name].Forward(y)
		if err != nil {
			return nil, fmt.Errorf("child %q: %w", name, err)
		}
	}

	return y, nil
}

// NamedChildren returns the children in registration order.
func (s *Sequential) NamedChildren() []Child {
	out := make([]Child, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, Child{Name: name, Module: s.children[name]})
	}

	return out
}

// ReplaceChild swaps the named child for m.
func (s *Sequential) ReplaceChild(name string, m Module) error {
	if _, ok := s.children[name]; !ok {
		return fmt.Errorf("%w: %q on %q", ErrChildNotFound, name, s.name)
	}

	s.children[name] = m

	return nil
}

// Len returns the number of children.
func (s *Sequential) Len() int { return len(s.order) }

// Modules returns the children in registration order.
func (s *Sequential) Modules() []Module {
	out := make([]Module, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.children[name])
	}

	return out
}
