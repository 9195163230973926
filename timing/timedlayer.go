package timing

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/cezbloch/layertime/nn"
)

var (
	// ErrNilModule indicates an attempt to wrap a nil module.
	ErrNilModule = errors.New("nil module")
	// ErrAlreadyWrapped indicates an attempt to wrap a module that is
	// already a [TimedLayer]. Wrapping operates on clean trees only.
	ErrAlreadyWrapped = errors.New("module is already wrapped")
)

// Option configures a [TimedLayer] or a [WrapModel] pass.
type Option func(*settings)

// settings carries the shared proxy configuration. WrapModel hands one
// instance down the tree, varying only the indent per depth.
type settings struct {
	logger *slog.Logger
	now    func() time.Time
	sync   nn.Synchronizer
	indent string
}

func newSettings(opts []Option) settings {
	s := settings{
		logger: slog.Default(),
		now:    time.Now,
		indent: "\t",
	}

	for _, opt := range opts {
		opt(&s)
	}

	return s
}

// WithIndent sets the indent prefix used in log lines. WrapModel appends one
// tab per tree depth on top of it.
func WithIndent(indent string) Option {
	return func(s *settings) {
		s.indent = indent
	}
}

// WithLogger sets the logger that receives per-invocation timing lines.
// Defaults to [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithClock overrides the wall-clock source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// WithSynchronizer sets the device barrier awaited after each delegated
// Forward. It takes precedence over a [nn.Synchronizer] implemented by the
// wrapped module itself.
func WithSynchronizer(sync nn.Synchronizer) Option {
	return func(s *settings) {
		s.sync = sync
	}
}

// TimedLayer is a transparent timing proxy around a single [nn.Module].
//
// Forward delegates to the wrapped module and records the elapsed wall-clock
// time, including any asynchronous device work the module dispatched. All
// other module capabilities forward verbatim to the wrapped module.
//
// The recorded duration reflects the most recent invocation only. A
// TimedLayer must not be shared across concurrent callers without external
// synchronization.
//
// Create instances with [New] or, for whole trees, [WrapModel].
type TimedLayer struct {
	wrapped      nn.Module
	displayName  string
	lastDuration time.Duration
	settings
}

// New wraps m in a [TimedLayer]. It fails with [ErrNilModule] when m is nil
// and [ErrAlreadyWrapped] when m is already a TimedLayer.
func New(m nn.Module, opts ...Option) (*TimedLayer, error) {
	return newTimed(m, newSettings(opts))
}

func newTimed(m nn.Module, s settings) (*TimedLayer, error) {
	if m == nil {
		return nil, ErrNilModule
	}

	if _, ok := m.(*TimedLayer); ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyWrapped, m.Name())
	}

	return &TimedLayer{
		wrapped:     m,
		displayName: m.Name(),
		settings:    s,
	}, nil
}

// Forward delegates to the wrapped module, waits for outstanding device
// work, and records the elapsed time in milliseconds. The input, output, and
// any error pass through unchanged. Each call overwrites the previously
// recorded duration and logs one line:
//
//	{indent}Layer {name}: {duration:.6f} ms.
func (t *TimedLayer) Forward(x *mat.Dense) (*mat.Dense, error) {
	start := t.now()

	y, err := t.wrapped.Forward(x)

	t.synchronize()

	t.lastDuration = t.now().Sub(start)
	t.logger.Info(fmt.Sprintf("%sLayer %s: %.6f ms.", t.indent, t.displayName, t.DurationMS()))

	return y, err
}

// synchronize blocks until dispatched device work is complete. The explicit
// barrier from [WithSynchronizer] wins; otherwise the wrapped module's own
// [nn.Synchronizer] capability is used when present.
func (t *TimedLayer) synchronize() {
	if t.sync != nil {
		t.sync.Synchronize()
		return
	}

	if s, ok := t.wrapped.(nn.Synchronizer); ok {
		s.Synchronize()
	}
}

// LastDuration returns the duration recorded by the most recent Forward, or
// zero before the first invocation.
func (t *TimedLayer) LastDuration() time.Duration {
	return t.lastDuration
}

// DurationMS returns [TimedLayer.LastDuration] in milliseconds.
func (t *TimedLayer) DurationMS() float64 {
	return float64(t.lastDuration) / float64(time.Millisecond)
}

// Unwrap returns the wrapped module.
func (t *TimedLayer) Unwrap() nn.Module {
	return t.wrapped
}

// Name returns the wrapped module's identity, captured at wrap time.
func (t *TimedLayer) Name() string {
	return t.displayName
}

// NamedChildren forwards to the wrapped module.
func (t *TimedLayer) NamedChildren() []nn.Child {
	return t.wrapped.NamedChildren()
}

// ReplaceChild forwards to the wrapped module.
func (t *TimedLayer) ReplaceChild(name string, m nn.Module) error {
	return t.wrapped.ReplaceChild(name, m)
}

// Len forwards to the wrapped module.
func (t *TimedLayer) Len() int {
	return t.wrapped.Len()
}

// Modules forwards to the wrapped module.
func (t *TimedLayer) Modules() []nn.Module {
	return t.wrapped.Modules()
}

// Synchronize forwards to the wrapped module's barrier when it has one.
func (t *TimedLayer) Synchronize() {
	t.synchronize()
}
