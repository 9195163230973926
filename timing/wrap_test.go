package timing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cezbloch/layertime/nn"
	"github.com/cezbloch/layertime/timing"
)

// nestedModel builds a two-level tree:
//
//	net
//	├── encoder
//	│   ├── fc
//	│   └── act
//	└── head
func nestedModel(t *testing.T) *nn.Sequential {
	t.Helper()

	fc := nn.NewLinear(2, 2)

	err := fc.SetWeights(
		mat.NewDense(2, 2, []float64{
			2, 0,
			0, 2,
		}),
		mat.NewVecDense(2, nil),
	)
	require.NoError(t, err)

	encoder := nn.NewSequential("encoder",
		nn.Child{Name: "fc", Module: fc},
		nn.Child{Name: "act", Module: nn.NewReLU()},
	)

	return nn.NewSequential("net",
		nn.Child{Name: "encoder", Module: encoder},
		nn.Child{Name: "head", Module: nn.NewSigmoid()},
	)
}

// assertFullyWrapped walks the tree below proxy and fails on any reachable
// module that is not a proxy.
func assertFullyWrapped(t *testing.T, proxy *timing.TimedLayer) {
	t.Helper()

	for _, c := range proxy.NamedChildren() {
		child, ok := c.Module.(*timing.TimedLayer)
		require.True(t, ok, "child %q of %q is not wrapped", c.Name, proxy.Name())

		assertFullyWrapped(t, child)
	}
}

func TestWrapModel_FullCoverage(t *testing.T) {
	t.Parallel()

	logger, _ := captureLogger()

	wrapped, err := timing.WrapModel(nestedModel(t), timing.WithLogger(logger))
	require.NoError(t, err)

	assertFullyWrapped(t, wrapped)
}

func TestWrapModel_Preconditions(t *testing.T) {
	t.Parallel()

	t.Run("nil root", func(t *testing.T) {
		t.Parallel()

		_, err := timing.WrapModel(nil)
		require.ErrorIs(t, err, timing.ErrNilModule)
	})

	t.Run("already wrapped root", func(t *testing.T) {
		t.Parallel()

		logger, _ := captureLogger()

		wrapped, err := timing.WrapModel(nestedModel(t), timing.WithLogger(logger))
		require.NoError(t, err)

		_, err = timing.WrapModel(wrapped, timing.WithLogger(logger))
		require.ErrorIs(t, err, timing.ErrAlreadyWrapped)
	})

	t.Run("already wrapped subtree", func(t *testing.T) {
		t.Parallel()

		logger, _ := captureLogger()

		inner, err := timing.New(nn.NewReLU(), timing.WithLogger(logger))
		require.NoError(t, err)

		model := nn.NewSequential("net",
			nn.Child{Name: "act", Module: inner},
		)

		_, err = timing.WrapModel(model, timing.WithLogger(logger))
		require.ErrorIs(t, err, timing.ErrAlreadyWrapped)
	})
}

func TestWrapModel_Transparency(t *testing.T) {
	t.Parallel()

	logger, _ := captureLogger()
	input := mat.NewDense(2, 2, []float64{
		1, -1,
		0.5, 2,
	})

	want, err := nestedModel(t).Forward(input)
	require.NoError(t, err)

	wrapped, err := timing.WrapModel(nestedModel(t), timing.WithLogger(logger))
	require.NoError(t, err)

	got, err := wrapped.Forward(input)
	require.NoError(t, err)

	assert.True(t, mat.EqualApprox(want, got, 1e-12),
		"wrapped model output %v, want %v", got, want)
}

func TestWrapModel_DiagnosticLines(t *testing.T) {
	t.Parallel()

	logger, buf := captureLogger()

	_, err := timing.WrapModel(nestedModel(t), timing.WithLogger(logger))
	require.NoError(t, err)

	// One line per module, depth-first, indented by depth.
	assert.Equal(t, []string{
		"\tnet",
		"\t\tencoder",
		"\t\t\tfc",
		"\t\t\tact",
		"\t\thead",
	}, logMessages(t, buf))
}

func TestWrapModel_NestedIndentInLogs(t *testing.T) {
	t.Parallel()

	logger, buf := captureLogger()

	wrapped, err := timing.WrapModel(nestedModel(t), timing.WithLogger(logger))
	require.NoError(t, err)

	buf.Reset()

	_, err = wrapped.Forward(mat.NewDense(1, 2, []float64{1, 1}))
	require.NoError(t, err)

	msgs := logMessages(t, buf)
	require.Len(t, msgs, 5)

	// Invocation order is bottom-up within each branch; deeper layers log
	// with deeper indents.
	assert.Regexp(t, `^\t\t\tLayer Linear: `, msgs[0])
	assert.Regexp(t, `^\t\t\tLayer ReLU: `, msgs[1])
	assert.Regexp(t, `^\t\tLayer encoder: `, msgs[2])
	assert.Regexp(t, `^\t\tLayer Sigmoid: `, msgs[3])
	assert.Regexp(t, `^\tLayer net: `, msgs[4])
}

func TestReport_ShapeAndDurations(t *testing.T) {
	t.Parallel()

	logger, _ := captureLogger()

	wrapped, err := timing.WrapModel(nestedModel(t), timing.WithLogger(logger))
	require.NoError(t, err)

	_, err = wrapped.Forward(mat.NewDense(1, 2, []float64{1, 1}))
	require.NoError(t, err)

	report := wrapped.Report()

	assert.Equal(t, "net", report.Name)
	require.Len(t, report.Children, 2)

	encoder := report.Children[0]
	assert.Equal(t, "encoder", encoder.Name)
	require.Len(t, encoder.Children, 2)
	assert.Equal(t, "Linear", encoder.Children[0].Name)
	assert.Equal(t, "ReLU", encoder.Children[1].Name)

	head := report.Children[1]
	assert.Equal(t, "Sigmoid", head.Name)
	assert.Empty(t, head.Children)

	for _, row := range report.Flatten() {
		assert.GreaterOrEqual(t, row.DurationMS, 0.0, "duration for %s", row.Name)
	}
}

func TestReport_Flatten(t *testing.T) {
	t.Parallel()

	logger, _ := captureLogger()

	wrapped, err := timing.WrapModel(nestedModel(t), timing.WithLogger(logger))
	require.NoError(t, err)

	rows := wrapped.Report().Flatten()
	require.Len(t, rows, 5)

	names := make([]string, 0, len(rows))
	depths := make([]int, 0, len(rows))

	for _, row := range rows {
		names = append(names, row.Name)
		depths = append(depths, row.Depth)
	}

	assert.Equal(t, []string{"net", "encoder", "Linear", "ReLU", "Sigmoid"}, names)
	assert.Equal(t, []int{0, 1, 2, 2, 1}, depths)
}
