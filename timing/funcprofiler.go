package timing

import (
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"strings"
	"time"
)

// ProfileFunc wraps f in an equivalent function that logs the elapsed
// wall-clock time of each call:
//
//	Function '{name}' executed in {elapsed:.4f} ms.
//
// The returned function forwards arguments and result unchanged and performs
// no device-synchronization wait. The logged name is recovered from f's
// runtime symbol, so the wrapper keeps the callable's identity for
// introspection. A nil logger falls back to [slog.Default].
func ProfileFunc[In, Out any](logger *slog.Logger, f func(In) Out) func(In) Out {
	name := funcName(f)

	return func(in In) Out {
		start := time.Now()
		out := f(in)
		logCall(logger, name, time.Since(start))

		return out
	}
}

// ProfileFuncErr is [ProfileFunc] for error-returning functions. The error
// passes through unchanged; the call is logged whether or not it failed.
func ProfileFuncErr[In, Out any](logger *slog.Logger, f func(In) (Out, error)) func(In) (Out, error) {
	name := funcName(f)

	return func(in In) (Out, error) {
		start := time.Now()
		out, err := f(in)
		logCall(logger, name, time.Since(start))

		return out, err
	}
}

// ProfileCall times a single invocation of f under the given name and
// returns its error unchanged.
func ProfileCall(logger *slog.Logger, name string, f func() error) error {
	start := time.Now()
	err := f()
	logCall(logger, name, time.Since(start))

	return err
}

func logCall(logger *slog.Logger, name string, elapsed time.Duration) {
	if logger == nil {
		logger = slog.Default()
	}

	ms := float64(elapsed) / float64(time.Millisecond)
	logger.Info(fmt.Sprintf("Function '%s' executed in %.4f ms.", name, ms))
}

// funcName resolves the bare symbol name of f, stripping the package path
// and method-value suffixes.
func funcName(f any) string {
	pc := reflect.ValueOf(f).Pointer()

	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}

	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}

	return strings.TrimSuffix(name, "-fm")
}
