// Package engine executes a compiled query against PostgreSQL and
// rehydrates its flat, dot-aliased result rows into nested objects.
package engine

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/marshallshelly/arrowquery/pkg/compose"
	"github.com/marshallshelly/arrowquery/pkg/queryable"
	"github.com/marshallshelly/arrowquery/pkg/runtime"
	"github.com/marshallshelly/arrowquery/pkg/schema"
)

// Engine is the queryable.Engine implementation a Builder's terminal
// call runs against: it compiles state to SQL, executes it over a
// pooled connection, and rehydrates the flat result set.
type Engine struct {
	db  *runtime.DB
	reg *schema.Registry
}

// New builds an Engine backed by db and reg.
func New(db *runtime.DB, reg *schema.Registry) *Engine {
	return &Engine{db: db, reg: reg}
}

var _ queryable.Engine = (*Engine)(nil)

// ToArray compiles state, runs it, and returns the rehydrated rows.
func (e *Engine) ToArray(ctx context.Context, state queryable.State) ([]map[string]any, error) {
	q, err := compose.Compose(e.reg, state)
	if err != nil {
		return nil, err
	}

	conn, err := e.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, q.SQL)
	if err != nil {
		return nil, &ExecutionError{SQL: q.SQL, Err: err}
	}
	defer rows.Close()

	raw, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, &ExecutionError{SQL: q.SQL, Err: err}
	}

	return Rehydrate(raw, q.Columns, q.Relations), nil
}

// Count materializes the query and returns the row count. See
// DESIGN.md for why this doesn't compile a SELECT COUNT(*) instead.
func (e *Engine) Count(ctx context.Context, state queryable.State) (int, error) {
	rows, err := e.ToArray(ctx, state)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
