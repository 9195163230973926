package modelspec

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/cezbloch/layertime/nn"
)

// Build constructs the [nn.Module] tree described by the spec. The root is
// always a [nn.Sequential] named after the model.
//
// When rnd is non-nil, linear weights and biases are initialized uniformly
// in [-1, 1); otherwise they start at zero.
func (s *Spec) Build(rnd *rand.Rand) (nn.Module, error) {
	return buildSequential(s.Name, s.Layers, rnd)
}

func buildSequential(name string, specs []LayerSpec, rnd *rand.Rand) (nn.Module, error) {
	children := make([]nn.Child, 0, len(specs))

	for i, ls := range specs {
		m, err := buildLayer(ls, rnd)
		if err != nil {
			return nil, err
		}

		childName := ls.Name
		if childName == "" {
			childName = fmt.Sprintf("%s_%d", ls.Type, i)
		}

		children = append(children, nn.Child{Name: childName, Module: m})
	}

	return nn.NewSequential(name, children...), nil
}

func buildLayer(ls LayerSpec, rnd *rand.Rand) (nn.Module, error) {
	switch ls.Type {
	case TypeLinear:
		return buildLinear(ls, rnd)

	case TypeReLU:
		return nn.NewReLU(), nil

	case TypeSigmoid:
		return nn.NewSigmoid(), nil

	case TypeFlatten:
		return nn.NewFlatten(), nil

	case TypeSequential:
		if len(ls.Layers) == 0 {
			return nil, fmt.Errorf("%w: sequential %q has no layers", ErrInvalidSpec, ls.Name)
		}

		name := ls.Name
		if name == "" {
			name = TypeSequential
		}

		return buildSequential(name, ls.Layers, rnd)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownLayerType, ls.Type)
}

func buildLinear(ls LayerSpec, rnd *rand.Rand) (nn.Module, error) {
	if ls.In <= 0 || ls.Out <= 0 {
		return nil, fmt.Errorf("%w: linear %q has in=%d out=%d", ErrBadDimensions, ls.Name, ls.In, ls.Out)
	}

	l := nn.NewLinear(ls.In, ls.Out)

	if rnd == nil {
		return l, nil
	}

	w := mat.NewDense(ls.In, ls.Out, nil)
	for i := range ls.In {
		for j := range ls.Out {
			w.Set(i, j, rnd.Float64()*2-1)
		}
	}

	b := mat.NewVecDense(ls.Out, nil)
	for j := range ls.Out {
		b.SetVec(j, rnd.Float64()*2-1)
	}

	err := l.SetWeights(w, b)
	if err != nil {
		return nil, err
	}

	return l, nil
}
