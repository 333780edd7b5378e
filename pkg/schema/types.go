package schema

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// JoinKind identifies how a relation is joined into a query.
type JoinKind string

const (
	// JoinLeft is the default join kind for a HasMany relation.
	JoinLeft JoinKind = "LEFT JOIN"
	// JoinInner restricts rows to those with a matching related row.
	JoinInner JoinKind = "INNER JOIN"
	// JoinRight keeps every related row even without a matching root row.
	JoinRight JoinKind = "RIGHT JOIN"
)

// RelationType names the shape of a relation between two entities.
// Only HasMany is realized by the query composer (see doc.go); the
// others are parsed and stored so the schema surface still declares
// them, but attempting to `Include` one that isn't HasMany is a
// SchemaError.
type RelationType string

const (
	BelongsTo  RelationType = "belongsTo"
	HasOne     RelationType = "hasOne"
	HasMany    RelationType = "hasMany"
	ManyToMany RelationType = "manyToMany"
)

// TableDescriptor names the SQL table backing an entity.
type TableDescriptor struct {
	TableName      string
	EntityTypeName string
}

// ColumnDescriptor describes one mapped field of an entity.
type ColumnDescriptor struct {
	FieldName  string
	ColumnName string

	SQLType  string
	Nullable bool
	Default  *string
	Unique   bool
	Primary  bool
	Length   int
}

// RelationDescriptor describes a relation from one entity to another.
// Target is a thunk rather than a resolved reflect.Type: relation
// targets are modeled as late-bound so two entities can reference each
// other before either declaration has finished registering. Go's
// compiler already resolves mutually-recursive struct fields at build
// time, so nothing here actually needs to defer type resolution — the
// thunk is kept anyway so RegisterRelation's signature matches the
// registry contract entities are expected to satisfy.
type RelationDescriptor struct {
	FieldName string
	Target    func() reflect.Type

	Type         RelationType
	JoinKind     JoinKind
	ForeignKey   string
	PrincipalKey string
	Nullable     bool
	Eager        bool
}

// TableOptions configures RegisterTable.
type TableOptions struct {
	Name string
}

// ColumnOptions configures RegisterColumn.
type ColumnOptions struct {
	Name     string
	SQLType  string
	Nullable bool
	Default  *string
	Unique   bool
	Primary  bool
	Length   int
}

// RelationOptions configures RegisterRelation.
type RelationOptions struct {
	Target       func() reflect.Type
	Type         RelationType
	JoinKind     JoinKind
	ForeignKey   string
	PrincipalKey string
	Nullable     bool
	Eager        bool
}

// SchemaError reports a missing or malformed schema declaration: an
// entity queried without a registered table, or an Include naming an
// unknown or unrealized relation.
type SchemaError struct {
	EntityType reflect.Type
	Detail     string
}

func (e *SchemaError) Error() string {
	name := "<unknown>"
	if e.EntityType != nil {
		name = e.EntityType.Name()
	}
	return fmt.Sprintf("schema: %s: %s", name, e.Detail)
}

// Registry is a process-wide, thread-safe store of entity descriptors
// keyed by entity constructor (its reflect.Type). Descriptors are
// installed once, at entity declaration time, and are read-only for the
// remainder of the process, so lookups never need to coordinate with a
// writer once declarations have finished running.
type Registry struct {
	mu          sync.RWMutex
	tables      map[reflect.Type]TableDescriptor
	columns     map[reflect.Type]map[string]ColumnDescriptor
	columnOrder map[reflect.Type][]string
	relations   map[reflect.Type]map[string]RelationDescriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tables:      make(map[reflect.Type]TableDescriptor),
		columns:     make(map[reflect.Type]map[string]ColumnDescriptor),
		columnOrder: make(map[reflect.Type][]string),
		relations:   make(map[reflect.Type]map[string]RelationDescriptor),
	}
}

func elemType(ctor any) reflect.Type {
	t := reflect.TypeOf(ctor)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// RegisterTable installs a table descriptor for an entity. Name defaults
// to the lower-cased struct name when opts.Name is empty.
func (r *Registry) RegisterTable(ctor any, opts TableOptions) {
	t := elemType(ctor)

	name := opts.Name
	if name == "" {
		name = strings.ToLower(t.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[t] = TableDescriptor{TableName: name, EntityTypeName: t.Name()}
}

// RegisterColumn installs a column descriptor for a field. Column name
// defaults to fieldName's lowerCamelCase form when opts.Name is empty:
// a defaulted column name should track the exported field name
// verbatim, and the Go-idiomatic rendition of "verbatim" for a field
// name is the exported PascalCase name decapitalized, not a
// snake_case rewrite.
func (r *Registry) RegisterColumn(ctor any, fieldName string, opts ColumnOptions) {
	t := elemType(ctor)

	colName := opts.Name
	if colName == "" {
		colName = lowerCamel(fieldName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.columns[t] == nil {
		r.columns[t] = make(map[string]ColumnDescriptor)
	}
	if _, seen := r.columns[t][fieldName]; !seen {
		r.columnOrder[t] = append(r.columnOrder[t], fieldName)
	}
	r.columns[t][fieldName] = ColumnDescriptor{
		FieldName:  fieldName,
		ColumnName: colName,
		SQLType:    opts.SQLType,
		Nullable:   opts.Nullable,
		Default:    opts.Default,
		Unique:     opts.Unique,
		Primary:    opts.Primary,
		Length:     opts.Length,
	}
}

// RegisterRelation installs a relation descriptor for a field.
func (r *Registry) RegisterRelation(ctor any, fieldName string, opts RelationOptions) {
	t := elemType(ctor)

	joinKind := opts.JoinKind
	if joinKind == "" {
		joinKind = JoinLeft
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.relations[t] == nil {
		r.relations[t] = make(map[string]RelationDescriptor)
	}
	r.relations[t][fieldName] = RelationDescriptor{
		FieldName:    fieldName,
		Target:       opts.Target,
		Type:         opts.Type,
		JoinKind:     joinKind,
		ForeignKey:   opts.ForeignKey,
		PrincipalKey: opts.PrincipalKey,
		Nullable:     opts.Nullable,
		Eager:        opts.Eager,
	}
}

// GetTable returns the table descriptor for ctor, or a SchemaError if
// ctor was never registered as a query root.
func (r *Registry) GetTable(ctor any) (TableDescriptor, error) {
	t := elemType(ctor)

	r.mu.RLock()
	defer r.mu.RUnlock()
	table, ok := r.tables[t]
	if !ok {
		return TableDescriptor{}, &SchemaError{EntityType: t, Detail: "no table descriptor registered"}
	}
	return table, nil
}

// GetColumns returns the column descriptors for ctor keyed by field
// name. An entity with no declared columns yields an empty map, not
// an error — the schema is deliberately less strict here than GetTable.
func (r *Registry) GetColumns(ctor any) map[string]ColumnDescriptor {
	t := elemType(ctor)

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]ColumnDescriptor, len(r.columns[t]))
	for k, v := range r.columns[t] {
		out[k] = v
	}
	return out
}

// GetColumnsOrdered returns ctor's column descriptors in declaration
// order — the order the composer needs to seed a deterministic
// projection, since Go map iteration order is not stable.
func (r *Registry) GetColumnsOrdered(ctor any) []ColumnDescriptor {
	t := elemType(ctor)

	r.mu.RLock()
	defer r.mu.RUnlock()
	order := r.columnOrder[t]
	out := make([]ColumnDescriptor, 0, len(order))
	for _, name := range order {
		out = append(out, r.columns[t][name])
	}
	return out
}

// GetRelations returns the relation descriptors for ctor keyed by field
// name.
func (r *Registry) GetRelations(ctor any) map[string]RelationDescriptor {
	t := elemType(ctor)

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]RelationDescriptor, len(r.relations[t]))
	for k, v := range r.relations[t] {
		out[k] = v
	}
	return out
}

// GetRelation looks up a single relation by field name.
func (r *Registry) GetRelation(ctor any, fieldName string) (RelationDescriptor, bool) {
	t := elemType(ctor)

	r.mu.RLock()
	defer r.mu.RUnlock()
	rel, ok := r.relations[t][fieldName]
	return rel, ok
}

// Default is the process-wide registry entity declarations install
// themselves into. Most callers never need a private Registry
// instance.
var Default = NewRegistry()

// lowerCamel decapitalizes fieldName's first rune, matching the
// composer's own alias-casing convention (see pkg/compose's
// fieldAlias) so a default column name lines up with the default
// output alias for the same field.
func lowerCamel(s string) string {
	if s == "" {
		return s
	}
	if s == strings.ToUpper(s) {
		return strings.ToLower(s)
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] += 'a' - 'A'
	}
	return string(r)
}

func toSnakeCase(s string) string {
	var out []rune
	for i, ch := range s {
		if i > 0 && ch >= 'A' && ch <= 'Z' {
			out = append(out, '_')
		}
		if ch >= 'A' && ch <= 'Z' {
			ch += 'a' - 'A'
		}
		out = append(out, ch)
	}
	return string(out)
}
