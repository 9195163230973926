package timing

import (
	"fmt"

	"github.com/cezbloch/layertime/nn"
)

// WrapModel recursively replaces every submodule of root with a [TimedLayer]
// and returns a proxy for root itself.
//
// Children are wrapped bottom-up: a child's own subtree is fully wrapped
// before the child is replaced on its parent via
// [github.com/cezbloch/layertime/nn.Module.ReplaceChild], so a parent always
// invokes proxies rather than raw modules. The tree is mutated in place; the
// returned proxy is the only new root.
//
// Proxies one level deeper log with one additional tab of indent. A
// diagnostic line naming each module is emitted at Debug level on entry.
//
// WrapModel is not idempotent: passing an already-wrapped tree fails with
// [ErrAlreadyWrapped].
func WrapModel(root nn.Module, opts ...Option) (*TimedLayer, error) {
	if root == nil {
		return nil, ErrNilModule
	}

	return wrapTree(root, newSettings(opts))
}

func wrapTree(m nn.Module, s settings) (*TimedLayer, error) {
	if _, ok := m.(*TimedLayer); ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyWrapped, m.Name())
	}

	s.logger.Debug(s.indent + m.Name())

	child := s
	child.indent += "\t"

	for _, c := range m.NamedChildren() {
		proxy, err := wrapTree(c.Module, child)
		if err != nil {
			return nil, err
		}

		err = m.ReplaceChild(c.Name, proxy)
		if err != nil {
			return nil, fmt.Errorf("replacing child %q of %s: %w", c.Name, m.Name(), err)
		}
	}

	return newTimed(m, s)
}
