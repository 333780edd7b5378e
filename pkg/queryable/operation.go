// Package queryable holds the operation record and the immutable
// builder application code chains to accumulate a query before handing
// it to the engine.
package queryable

// OpTag names one kind of chain step.
type OpTag string

const (
	OpFilter   OpTag = "filter"
	OpMap      OpTag = "map"
	OpSkip     OpTag = "skip"
	OpTake     OpTag = "take"
	OpOrder    OpTag = "order"
	OpDistinct OpTag = "distinct"
	OpInclude  OpTag = "include"
)

// Direction is an ORDER BY sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Callback carries a filter/map/order function alongside the source
// text of the inline literal it was called with. The function value
// itself is never invoked — the translator works from Source — but is
// kept so callers get a compile-time signature check on what they
// wrote. CaptureErr holds a failure to locate or render that source
// text; it's a Callback-shaped error rather than a returned one
// because capture happens at accept time (the chain call), while
// translation errors must surface from the terminal call, before any
// database interaction.
type Callback struct {
	Fn         any
	Source     string
	CaptureErr error
}

// Operation is one step of the accumulated chain: exactly one tagged
// variant per filter/map/skip/take/order/distinct/include call.
type Operation struct {
	Tag OpTag

	Callback  Callback  // filter, map, order(selector func)
	FieldName string    // order(field name string), include(relation field)
	Direction Direction // order
	Count     int       // skip, take
}
