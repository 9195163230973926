package timing_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cezbloch/layertime/nn"
	"github.com/cezbloch/layertime/timing"
)

var errBoom = errors.New("boom")

// boom fails every invocation with the same error value.
type boom struct {
	nn.Base
}

func newBoom() *boom {
	return &boom{Base: nn.NewBase("Boom")}
}

func (b *boom) Forward(*mat.Dense) (*mat.Dense, error) {
	return nil, errBoom
}

// fakeClock is a manually advanced wall clock.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

// clockBarrier models a device barrier whose wait takes a known amount of
// fake time.
type clockBarrier struct {
	clk   *fakeClock
	delay time.Duration
}

func (b *clockBarrier) Synchronize() {
	b.clk.Advance(b.delay)
}

// asyncLayer models a module that dispatches device work: Forward returns
// immediately and Synchronize accounts for the remaining fake time.
type asyncLayer struct {
	nn.Base

	clk     *fakeClock
	pending time.Duration
}

func (l *asyncLayer) Forward(x *mat.Dense) (*mat.Dense, error) {
	return x, nil
}

func (l *asyncLayer) Synchronize() {
	l.clk.Advance(l.pending)
}

// captureLogger returns a debug-level logger whose messages can be read back
// with logMessages.
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	return slog.New(handler), buf
}

func logMessages(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()

	var msgs []string

	dec := json.NewDecoder(buf)
	for dec.More() {
		var entry struct {
			Msg string `json:"msg"`
		}

		require.NoError(t, dec.Decode(&entry))

		msgs = append(msgs, entry.Msg)
	}

	return msgs
}

// twoLayerModel builds a fresh fc+act model with fixed weights.
func twoLayerModel(t *testing.T) *nn.Sequential {
	t.Helper()

	fc := nn.NewLinear(2, 2)

	err := fc.SetWeights(
		mat.NewDense(2, 2, []float64{
			1, 0,
			0, -1,
		}),
		mat.NewVecDense(2, []float64{1, 1}),
	)
	require.NoError(t, err)

	return nn.NewSequential("mlp",
		nn.Child{Name: "fc", Module: fc},
		nn.Child{Name: "act", Module: nn.NewReLU()},
	)
}

func TestNew_Preconditions(t *testing.T) {
	t.Parallel()

	t.Run("nil module", func(t *testing.T) {
		t.Parallel()

		_, err := timing.New(nil)
		require.ErrorIs(t, err, timing.ErrNilModule)
	})

	t.Run("double wrap", func(t *testing.T) {
		t.Parallel()

		proxy, err := timing.New(nn.NewReLU())
		require.NoError(t, err)

		_, err = timing.New(proxy)
		require.ErrorIs(t, err, timing.ErrAlreadyWrapped)
	})
}

func TestTimedLayer_Transparency(t *testing.T) {
	t.Parallel()

	logger, _ := captureLogger()
	input := mat.NewDense(1, 2, []float64{3, 5})

	want, err := twoLayerModel(t).Forward(input)
	require.NoError(t, err)

	wrapped, err := timing.WrapModel(twoLayerModel(t), timing.WithLogger(logger))
	require.NoError(t, err)

	got, err := wrapped.Forward(input)
	require.NoError(t, err)

	assert.True(t, mat.EqualApprox(want, got, 1e-12),
		"wrapped model output %v, want %v", got, want)
}

func TestTimedLayer_ErrorPropagation(t *testing.T) {
	t.Parallel()

	logger, _ := captureLogger()

	proxy, err := timing.New(newBoom(), timing.WithLogger(logger))
	require.NoError(t, err)

	_, err = proxy.Forward(mat.NewDense(1, 1, nil))
	require.Error(t, err)

	// The exact error value passes through, not a wrapped copy.
	assert.Equal(t, errBoom, err) //nolint:testifylint // value identity is the point
	require.ErrorIs(t, err, errBoom)
}

func TestTimedLayer_CapabilityForwarding(t *testing.T) {
	t.Parallel()

	model := twoLayerModel(t)

	proxy, err := timing.New(model)
	require.NoError(t, err)

	assert.Equal(t, "mlp", proxy.Name())
	assert.Equal(t, 2, proxy.Len())
	assert.Len(t, proxy.Modules(), 2)
	assert.Same(t, model, proxy.Unwrap())

	children := proxy.NamedChildren()
	require.Len(t, children, 2)
	assert.Equal(t, "fc", children[0].Name)

	// ReplaceChild reaches the wrapped module.
	replacement := nn.NewSigmoid()
	require.NoError(t, proxy.ReplaceChild("act", replacement))
	assert.Same(t, replacement, model.Modules()[1])

	require.ErrorIs(t, proxy.ReplaceChild("missing", nn.NewReLU()), nn.ErrChildNotFound)
}

func TestTimedLayer_MostRecentDuration(t *testing.T) {
	t.Parallel()

	logger, _ := captureLogger()
	clk := &fakeClock{t: time.Unix(0, 0)}

	proxy, err := timing.New(
		nn.NewReLU(),
		timing.WithLogger(logger),
		timing.WithClock(clk.Now),
		timing.WithSynchronizer(&clockBarrier{clk: clk, delay: 5 * time.Millisecond}),
	)
	require.NoError(t, err)

	input := mat.NewDense(1, 1, []float64{1})

	_, err = proxy.Forward(input)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Millisecond, proxy.LastDuration())

	// A second call overwrites rather than accumulates.
	_, err = proxy.Forward(input)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Millisecond, proxy.LastDuration())
	assert.InDelta(t, 5.0, proxy.DurationMS(), 1e-9)
}

func TestTimedLayer_SyncWaitInclusion(t *testing.T) {
	t.Parallel()

	const delay = 250 * time.Millisecond

	logger, _ := captureLogger()
	clk := &fakeClock{t: time.Unix(0, 0)}

	tcs := map[string]struct {
		build func() (*timing.TimedLayer, error)
	}{
		"explicit barrier option": {
			build: func() (*timing.TimedLayer, error) {
				return timing.New(
					nn.NewReLU(),
					timing.WithLogger(logger),
					timing.WithClock(clk.Now),
					timing.WithSynchronizer(&clockBarrier{clk: clk, delay: delay}),
				)
			},
		},
		"module's own synchronizer": {
			build: func() (*timing.TimedLayer, error) {
				layer := &asyncLayer{
					Base:    nn.NewBase("AsyncLayer"),
					clk:     clk,
					pending: delay,
				}

				return timing.New(layer,
					timing.WithLogger(logger),
					timing.WithClock(clk.Now),
				)
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			proxy, err := tc.build()
			require.NoError(t, err)

			_, err = proxy.Forward(mat.NewDense(1, 1, []float64{1}))
			require.NoError(t, err)

			assert.GreaterOrEqual(t, proxy.LastDuration(), delay)
		})
	}
}

func TestTimedLayer_LogLineFormat(t *testing.T) {
	t.Parallel()

	logger, buf := captureLogger()

	proxy, err := timing.New(nn.NewReLU(), timing.WithLogger(logger))
	require.NoError(t, err)

	_, err = proxy.Forward(mat.NewDense(1, 1, []float64{1}))
	require.NoError(t, err)

	msgs := logMessages(t, buf)
	require.Len(t, msgs, 1)
	assert.Regexp(t, regexp.MustCompile(`^\tLayer ReLU: \d+\.\d{6} ms\.$`), msgs[0])
}
