// Package timing measures per-layer wall-clock latency of [nn.Module] trees
// without changing their behavior.
//
// A [TimedLayer] transparently proxies a single module: Forward delegates to
// the wrapped module, waits for any outstanding device work, records the
// elapsed time, and logs one line per invocation. Every other capability of
// the module contract forwards verbatim to the wrapped module, so a wrapped
// model remains a drop-in replacement for the original.
//
// [WrapModel] applies the proxy recursively, bottom-up, so that every node
// reachable from the root is timed:
//
//	wrapped, err := timing.WrapModel(model, timing.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//
//	out, err := wrapped.Forward(input)
//	if err != nil {
//	    return err
//	}
//
//	report := wrapped.Report() // nested durations, mirrors the tree
//
// Durations are most-recent-only: each Forward overwrites the previous
// measurement. A TimedLayer is not safe for concurrent callers without
// external synchronization.
//
// [ProfileFunc] and [ProfileFuncErr] wrap arbitrary functions the same way,
// minus the device-synchronization wait.
package timing
