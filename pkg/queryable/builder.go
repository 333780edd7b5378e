package queryable

import (
	"context"
	"reflect"

	"github.com/marshallshelly/arrowquery/pkg/schema"
	"github.com/marshallshelly/arrowquery/pkg/translate"
)

// State is the snapshot the builder hands to the engine: the query
// root, the ordered operation list, and the scope bag.
type State struct {
	EntityType reflect.Type
	Operations []Operation
	Scope      map[string]any
}

// Engine is the terminal-call collaborator a Builder was constructed
// with: it composes State into SQL, executes it, and rehydrates rows.
// Defined here rather than imported from pkg/engine to keep this
// package free of a dependency on the composer/translator/database
// stack — pkg/engine depends on pkg/queryable, not the other way
// around.
type Engine interface {
	ToArray(ctx context.Context, state State) ([]map[string]any, error)
	Count(ctx context.Context, state State) (int, error)
}

// Builder is the immutable, chainable query accumulator. Every
// non-terminal method returns a fresh Builder; the receiver is never
// mutated.
type Builder struct {
	engine     Engine
	registry   *schema.Registry
	entityType reflect.Type
	ops        []Operation
	scope      map[string]any
}

// New starts a query rooted at ctor's entity, backed by engine for its
// eventual terminal call and registry for schema lookups the composer
// will need.
func New(engine Engine, registry *schema.Registry, ctor any) *Builder {
	t := reflect.TypeOf(ctor)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return &Builder{engine: engine, registry: registry, entityType: t}
}

func (b *Builder) clone(ops []Operation, scope map[string]any) *Builder {
	return &Builder{
		engine:     b.engine,
		registry:   b.registry,
		entityType: b.entityType,
		ops:        ops,
		scope:      scope,
	}
}

func (b *Builder) copyOps(extra ...Operation) []Operation {
	ops := make([]Operation, len(b.ops)+len(extra))
	copy(ops, b.ops)
	copy(ops[len(b.ops):], extra)
	return ops
}

func (b *Builder) copyScope() map[string]any {
	scope := make(map[string]any, len(b.scope))
	for k, v := range b.scope {
		scope[k] = v
	}
	return scope
}

// Filter appends a WHERE conjunct. predicate must be an inline
// `func(row *Entity) bool { return ... }` literal — its source text is
// captured at this call site for the translator.
func (b *Builder) Filter(predicate any) *Builder {
	source, err := translate.CaptureCallerSource("Filter")
	op := Operation{Tag: OpFilter, Callback: Callback{Fn: predicate, Source: source, CaptureErr: err}}
	return b.clone(b.copyOps(op), b.copyScope())
}

// Map replaces the current projection. projector must be an inline
// `func(row *Entity) any { return map[string]any{...} }` (or a struct
// literal) whose keys become output aliases.
func (b *Builder) Map(projector any) *Builder {
	source, err := translate.CaptureCallerSource("Map")
	op := Operation{Tag: OpMap, Callback: Callback{Fn: projector, Source: source, CaptureErr: err}}
	return b.clone(b.copyOps(op), b.copyScope())
}

// Skip sets OFFSET.
func (b *Builder) Skip(n int) *Builder {
	return b.clone(b.copyOps(Operation{Tag: OpSkip, Count: n}), b.copyScope())
}

// Take sets LIMIT.
func (b *Builder) Take(n int) *Builder {
	return b.clone(b.copyOps(Operation{Tag: OpTake, Count: n}), b.copyScope())
}

// OrderBy appends an ascending ORDER BY entry. selector is either a
// field name string (resolved by name against the current projection)
// or an inline `func(row *Entity) any { return row.Field }` literal.
func (b *Builder) OrderBy(selector any) *Builder {
	if _, ok := selector.(string); ok {
		return b.order(selector, Asc, "", nil)
	}
	source, err := translate.CaptureCallerSource("OrderBy")
	return b.order(selector, Asc, source, err)
}

// OrderByDescending appends a descending ORDER BY entry.
func (b *Builder) OrderByDescending(selector any) *Builder {
	if _, ok := selector.(string); ok {
		return b.order(selector, Desc, "", nil)
	}
	source, err := translate.CaptureCallerSource("OrderByDescending")
	return b.order(selector, Desc, source, err)
}

// order builds the ORDER BY operation. A selector literal's source is
// captured by the exported method itself, since CaptureCallerSource
// must be called directly from the chain method application code calls.
func (b *Builder) order(selector any, dir Direction, source string, captureErr error) *Builder {
	if name, ok := selector.(string); ok {
		op := Operation{Tag: OpOrder, Direction: dir, FieldName: name}
		return b.clone(b.copyOps(op), b.copyScope())
	}
	op := Operation{Tag: OpOrder, Direction: dir, Callback: Callback{Fn: selector, Source: source, CaptureErr: captureErr}}
	return b.clone(b.copyOps(op), b.copyScope())
}

// Distinct sets DISTINCT on the current group's SELECT.
func (b *Builder) Distinct() *Builder {
	return b.clone(b.copyOps(Operation{Tag: OpDistinct}), b.copyScope())
}

// Include adds a JOIN to relationField's related table and widens the
// projection with its dot-prefixed columns. Only meaningful before any
// map has collapsed the entity root into a sub-query.
func (b *Builder) Include(relationField string) *Builder {
	op := Operation{Tag: OpInclude, FieldName: relationField}
	return b.clone(b.copyOps(op), b.copyScope())
}

// Scope shallow-merges bag into the query's scope. Later Scope calls
// win on key conflict.
func (b *Builder) Scope(bag map[string]any) *Builder {
	scope := b.copyScope()
	for k, v := range bag {
		scope[k] = v
	}
	return b.clone(b.copyOps(), scope)
}

// GetState returns an independent snapshot of the accumulated chain.
func (b *Builder) GetState() State {
	return State{EntityType: b.entityType, Operations: b.copyOps(), Scope: b.copyScope()}
}

// ToArray is the terminal call that compiles and executes the chain.
func (b *Builder) ToArray(ctx context.Context) ([]map[string]any, error) {
	return b.engine.ToArray(ctx, b.GetState())
}

// First is equivalent to Take(1).ToArray()[0], returning nil if the
// result set is empty.
func (b *Builder) First(ctx context.Context) (map[string]any, error) {
	rows, err := b.Take(1).ToArray(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Count hands the chain to the engine's Count. pkg/engine's Count is a
// materializing fallback: it runs ToArray and returns the row count
// rather than emitting SELECT COUNT(*). See DESIGN.md for why this is
// kept rather than optimized into its own aggregate query.
func (b *Builder) Count(ctx context.Context) (int, error) {
	return b.engine.Count(ctx, b.GetState())
}
