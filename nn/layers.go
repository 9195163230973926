package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Linear is a fully connected layer computing y = xW + b for row-vector
// inputs.
type Linear struct {
	Base

	w *mat.Dense // in x out
	b *mat.VecDense
}

// NewLinear creates a [Linear] layer with in input and out output features.
// Weights start at zero; use [Linear.SetWeights] to load parameters.
func NewLinear(in, out int) *Linear {
	return &Linear{
		Base: NewBase("Linear"),
		w:    mat.NewDense(in, out, nil),
		b:    mat.NewVecDense(out, nil),
	}
}

// In returns the number of input features.
func (l *Linear) In() int {
	r, _ := l.w.Dims()
	return r
}

// Out returns the number of output features.
func (l *Linear) Out() int {
	_, c := l.w.Dims()
	return c
}

// SetWeights loads the weight matrix (in x out) and bias vector (out).
func (l *Linear) SetWeights(w *mat.Dense, b *mat.VecDense) error {
	wr, wc := w.Dims()
	if wr != l.In() || wc != l.Out() {
		return fmt.Errorf("%w: weights %dx%d, want %dx%d", ErrShape, wr, wc, l.In(), l.Out())
	}

	if b.Len() != l.Out() {
		return fmt.Errorf("%w: bias %d, want %d", ErrShape, b.Len(), l.Out())
	}

	l.w.Copy(w)
	l.b.CopyVec(b)

	return nil
}

// Forward computes xW + b. x is batch x in; the result is batch x out.
func (l *Linear) Forward(x *mat.Dense) (*mat.Dense, error) {
	batch, cols := x.Dims()
	if cols != l.In() {
		return nil, fmt.Errorf("%w: input has %d features, layer expects %d", ErrShape, cols, l.In())
	}

	y := mat.NewDense(batch, l.Out(), nil)
	y.Mul(x, l.w)

	for i := range batch {
		for j := range l.Out() {
			y.Set(i, j, y.At(i, j)+l.b.AtVec(j))
		}
	}

	return y, nil
}

// ReLU applies max(0, v) elementwise.
type ReLU struct {
	Base
}

// NewReLU creates a [ReLU] layer.
func NewReLU() *ReLU {
	return &ReLU{Base: NewBase("ReLU")}
}

// Forward applies the rectifier elementwise.
func (l *ReLU) Forward(x *mat.Dense) (*mat.Dense, error) {
	var y mat.Dense
	y.Apply(func(_, _ int, v float64) float64 {
		return math.Max(0, v)
	}, x)

	return &y, nil
}

// Sigmoid applies 1/(1+exp(-v)) elementwise.
type Sigmoid struct {
	Base
}

// NewSigmoid creates a [Sigmoid] layer.
func NewSigmoid() *Sigmoid {
	return &Sigmoid{Base: NewBase("Sigmoid")}
}

// Forward applies the logistic function elementwise.
func (l *Sigmoid) Forward(x *mat.Dense) (*mat.Dense, error) {
	var y mat.Dense
	y.Apply(func(_, _ int, v float64) float64 {
		return 1 / (1 + math.Exp(-v))
	}, x)

	return &y, nil
}

// Flatten passes its input through unchanged. Inputs are already
// batch x features matrices; the layer exists so architectures ported from
// tensor frameworks keep their shape.
type Flatten struct {
	Base
}

// NewFlatten creates a [Flatten] layer.
func NewFlatten() *Flatten {
	return &Flatten{Base: NewBase("Flatten")}
}

// Forward returns a copy of x.
func (l *Flatten) Forward(x *mat.Dense) (*mat.Dense, error) {
	var y mat.Dense
	y.CloneFrom(x)

	return &y, nil
}
