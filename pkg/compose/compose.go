// Package compose consumes an entity type, an accumulated operation
// list, and a scope bag, and emits a single layered SQL SELECT
// statement, splitting into nested sub-queries whenever a later stage
// needs to see an earlier stage's projected aliases rather than its
// raw columns.
package compose

import (
	"fmt"
	"reflect"

	"github.com/marshallshelly/arrowquery/pkg/queryable"
	"github.com/marshallshelly/arrowquery/pkg/schema"
	"github.com/marshallshelly/arrowquery/pkg/translate"
)

// CompiledQuery is the composer's output: SQL text ready to execute,
// a reserved slot for positional parameters (see DESIGN.md's note on
// scope-bag literals being inlined rather than parameterized), and the
// ordered list of output column aliases.
type CompiledQuery struct {
	SQL     string
	Params  []any
	Columns []string

	// Relations lists the output-alias prefixes that hold a joined
	// relation's rows: the prefix an Include widened the projection with
	// (e.g. "courses" for a field aliased "courses.id"), or, once a later
	// map has replaced the projection, that map's keys which wrap a
	// dsl.MapEach call (e.g. "c" for "c.cid"). The engine needs this to tell a join-duplicated relation array
	// apart from an ordinary nested object literal in a projection,
	// since both render as dot-flattened aliases.
	Relations []string
}

type composer struct {
	reg       *schema.Registry
	counter   int
	relations []string
}

func (c *composer) nextAlias() string {
	a := fmt.Sprintf("___t%d", c.counter)
	c.counter++
	return a
}

// Compose turns state into a CompiledQuery. Alias counters are private
// to this call, so two independent compilations of equal inputs
// produce textually equal SQL.
func Compose(reg *schema.Registry, state queryable.State) (*CompiledQuery, error) {
	c := &composer{reg: reg}
	groups := splitGroups(state.Operations)

	var sql string
	var proj []projField
	var err error

	for i, group := range groups {
		if i == 0 {
			sql, proj, err = c.composeGroup(state.EntityType, nil, "", group, state.Scope, true)
		} else {
			sql, proj, err = c.composeGroup(nil, proj, sql, group, state.Scope, false)
		}
		if err != nil {
			return nil, err
		}
	}

	columns := make([]string, len(proj))
	for i, f := range proj {
		columns[i] = f.Alias
	}
	return &CompiledQuery{SQL: sql, Columns: columns, Relations: c.relations}, nil
}

// splitGroups partitions ops into layered groups at any point where a
// map is preceded by a skip or a take: that map must see its
// predecessor's projected aliases, and the pagination before it must
// apply in the inner scope, not the outer one.
func splitGroups(ops []queryable.Operation) [][]queryable.Operation {
	var groups [][]queryable.Operation
	var current []queryable.Operation
	for i, op := range ops {
		if op.Tag == queryable.OpMap && i > 0 &&
			(ops[i-1].Tag == queryable.OpSkip || ops[i-1].Tag == queryable.OpTake) {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, op)
	}
	groups = append(groups, current)
	return groups
}

func ctorFor(t reflect.Type) any {
	return reflect.New(t).Interface()
}

func seedProjectionFromColumns(cols []schema.ColumnDescriptor, alias string) []projField {
	fields := make([]projField, len(cols))
	for i, col := range cols {
		fields[i] = projField{
			Alias: fieldAlias(col.FieldName),
			SQL:   fmt.Sprintf(`%s.%s`, quoteIdent(alias), quoteIdent(col.ColumnName)),
		}
	}
	return fields
}

// composeGroup builds one SELECT layer. When root is true it seeds
// from entityType's table and column descriptors (the entity-root
// group); otherwise it wraps priorSQL as a sub-query and seeds from
// priorProj, priorSQL's own output columns.
func (c *composer) composeGroup(
	entityType reflect.Type,
	priorProj []projField,
	priorSQL string,
	ops []queryable.Operation,
	scope map[string]any,
	root bool,
) (string, []projField, error) {
	alias := c.nextAlias()

	var fromSQL string
	var proj []projField
	var rootType reflect.Type

	if root {
		table, err := c.reg.GetTable(ctorFor(entityType))
		if err != nil {
			return "", nil, err
		}
		fromSQL = fmt.Sprintf(`%s AS %s`, quoteIdent(table.TableName), quoteIdent(alias))
		proj = seedProjectionFromColumns(c.reg.GetColumnsOrdered(ctorFor(entityType)), alias)
		rootType = entityType
	} else {
		fromSQL = fmt.Sprintf(`(%s) AS %s`, priorSQL, quoteIdent(alias))
		proj = make([]projField, len(priorProj))
		for i, f := range priorProj {
			proj[i] = projField{Alias: f.Alias, SQL: fmt.Sprintf("%s.%s", quoteIdent(alias), quoteIdent(f.Alias))}
		}
	}

	resolver := &liveResolver{fields: proj}
	var joins []string
	var wheres []string
	var orders []string
	distinct := false
	var offset, limit *int
	collapsed := !root // a sub-query root has already had its entity projection collapsed once

	for _, op := range ops {
		switch op.Tag {
		case queryable.OpInclude:
			if collapsed {
				return "", nil, compositionErrf("include is only meaningful on the entity root, before any map has collapsed the projection")
			}
			rel, ok := c.reg.GetRelation(ctorFor(rootType), op.FieldName)
			if !ok {
				return "", nil, &schema.SchemaError{EntityType: rootType, Detail: fmt.Sprintf("include: relation %q not registered", op.FieldName)}
			}
			if rel.Type != schema.HasMany {
				return "", nil, &schema.SchemaError{EntityType: rootType, Detail: fmt.Sprintf("include: relation %q is %s, only hasMany is realized", op.FieldName, rel.Type)}
			}
			target := rel.Target()
			relTable, err := c.reg.GetTable(ctorFor(target))
			if err != nil {
				return "", nil, err
			}
			relAlias := c.nextAlias()
			joins = append(joins, fmt.Sprintf(`%s %s AS %s ON %s.%s = %s.%s`,
				rel.JoinKind,
				quoteIdent(relTable.TableName), quoteIdent(relAlias),
				quoteIdent(alias), quoteIdent(rel.ForeignKey),
				quoteIdent(relAlias), quoteIdent(rel.PrincipalKey),
			))
			relCols := seedProjectionFromColumns(c.reg.GetColumnsOrdered(ctorFor(target)), relAlias)
			prefix := fieldAlias(op.FieldName)
			for _, rf := range relCols {
				proj = append(proj, projField{Alias: prefix + "." + rf.Alias, SQL: rf.SQL})
			}
			resolver.fields = proj
			c.relations = append(c.relations, prefix)

		case queryable.OpFilter:
			if op.Callback.CaptureErr != nil {
				return "", nil, op.Callback.CaptureErr
			}
			sql, err := translate.TranslateFilter(op.Callback.Source, resolver, scope)
			if err != nil {
				return "", nil, err
			}
			wheres = append(wheres, sql)

		case queryable.OpMap:
			if op.Callback.CaptureErr != nil {
				return "", nil, op.Callback.CaptureErr
			}
			fields, relKeys, err := translate.TranslateProjection(op.Callback.Source, resolver, scope)
			if err != nil {
				return "", nil, err
			}
			if len(fields) == 0 {
				return "", nil, compositionErrf("map produced an empty projection")
			}
			proj = make([]projField, len(fields))
			for i, f := range fields {
				proj[i] = projField{Alias: f.Alias, SQL: f.SQL}
			}
			resolver.fields = proj
			c.relations = relKeys
			collapsed = true

		case queryable.OpOrder:
			sql, err := c.translateOrder(op, resolver, scope)
			if err != nil {
				return "", nil, err
			}
			orders = append(orders, sql)

		case queryable.OpDistinct:
			distinct = true

		case queryable.OpSkip:
			n := op.Count
			offset = &n

		case queryable.OpTake:
			n := op.Count
			limit = &n
		}
	}

	return assembleSQL(distinct, proj, fromSQL, joins, wheres, orders, offset, limit), proj, nil
}

func (c *composer) translateOrder(op queryable.Operation, resolver *liveResolver, scope map[string]any) (string, error) {
	var target string
	if op.FieldName != "" {
		sql, ok := resolver.Resolve(op.FieldName)
		if !ok {
			return "", compositionErrf("order by %q: not in the current projection", op.FieldName)
		}
		target = sql
	} else {
		if op.Callback.CaptureErr != nil {
			return "", op.Callback.CaptureErr
		}
		sql, err := translate.TranslateOrderSelector(op.Callback.Source, resolver, scope)
		if err != nil {
			return "", err
		}
		target = sql
	}
	if op.Direction == queryable.Desc {
		return target + " DESC", nil
	}
	return target + " ASC", nil
}
