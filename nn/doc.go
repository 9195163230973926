// Package nn provides a minimal neural-network module abstraction for CPU
// inference, built on [gonum.org/v1/gonum/mat].
//
// A [Module] is a node in a model's composition tree: it can be invoked via
// [Module.Forward], reports its identity via [Module.Name], and exposes its
// direct children through [Module.NamedChildren], [Module.Modules], and
// [Module.Len]. Children are replaced via [Module.ReplaceChild], which is the
// only supported way to rewrite a live tree.
//
// Leaf layers embed [Base] to inherit the childless defaults:
//
//	type Linear struct {
//	    nn.Base
//	    // ...
//	}
//
// Containers like [Sequential] implement the child operations themselves.
//
// Modules that dispatch asynchronous device work additionally implement
// [Synchronizer]; callers that need wall-clock completeness must call
// [Synchronizer.Synchronize] before reading results or timestamps. The layers
// in this package run synchronously on the CPU and do not implement it.
package nn
