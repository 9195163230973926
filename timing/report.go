package timing

// Report is a nested snapshot of recorded durations mirroring the wrapped
// model's tree shape. Field names follow the original profiling log schema.
type Report struct {
	Name       string   `json:"module_name"   yaml:"module_name"`
	DurationMS float64  `json:"total_time_ms" yaml:"total_time_ms"`
	Children   []Report `json:"sub_modules"   yaml:"sub_modules"`
}

// Report builds a snapshot of the most recent durations for this proxy and
// every proxied descendant. It is constructed lazily on each call; invoking
// the model again and re-querying yields fresh numbers.
//
// Children that are not proxies are omitted. After [WrapModel] every child
// is a proxy, so in practice the report covers the full tree.
func (t *TimedLayer) Report() Report {
	r := Report{
		Name:       t.displayName,
		DurationMS: t.DurationMS(),
		Children:   []Report{},
	}

	for _, c := range t.wrapped.NamedChildren() {
		if child, ok := c.Module.(*TimedLayer); ok {
			r.Children = append(r.Children, child.Report())
		}
	}

	return r
}

// Flatten returns the report and all descendants in depth-first order, with
// each row's depth recorded. Useful for tabular or indented rendering.
func (r Report) Flatten() []FlatTiming {
	return r.flatten(0, nil)
}

func (r Report) flatten(depth int, out []FlatTiming) []FlatTiming {
	out = append(out, FlatTiming{
		Name:       r.Name,
		DurationMS: r.DurationMS,
		Depth:      depth,
	})

	for _, c := range r.Children {
		out = c.flatten(depth+1, out)
	}

	return out
}

// FlatTiming is one row of a depth-first flattening of a [Report].
type FlatTiming struct {
	Name       string
	DurationMS float64
	Depth      int
}
