package queryable

import (
	"context"
	"strings"
	"testing"

	"github.com/marshallshelly/arrowquery/pkg/schema"
)

type stubEngine struct {
	lastState State
	rows      []map[string]any
}

func (s *stubEngine) ToArray(ctx context.Context, state State) ([]map[string]any, error) {
	s.lastState = state
	return s.rows, nil
}

func (s *stubEngine) Count(ctx context.Context, state State) (int, error) {
	s.lastState = state
	return len(s.rows), nil
}

type qUser struct {
	ID       string `col:"id,primary"`
	Username string `col:"username"`
}

func TestBuilder_Immutability(t *testing.T) {
	eng := &stubEngine{}
	reg := schema.NewRegistry()
	b := New(eng, reg, qUser{})

	b2 := b.Skip(5)
	if len(b.GetState().Operations) != 0 {
		t.Fatalf("original builder mutated: %d operations", len(b.GetState().Operations))
	}
	if len(b2.GetState().Operations) != 1 {
		t.Fatalf("b2 should carry one operation, got %d", len(b2.GetState().Operations))
	}
}

func TestBuilder_OperationOrderPreserved(t *testing.T) {
	eng := &stubEngine{}
	reg := schema.NewRegistry()
	b := New(eng, reg, qUser{}).Skip(1).Take(2).Distinct()

	ops := b.GetState().Operations
	if len(ops) != 3 {
		t.Fatalf("len(ops) = %d, want 3", len(ops))
	}
	wantTags := []OpTag{OpSkip, OpTake, OpDistinct}
	for i, tag := range wantTags {
		if ops[i].Tag != tag {
			t.Errorf("ops[%d].Tag = %q, want %q", i, ops[i].Tag, tag)
		}
	}
}

func TestBuilder_ScopeMerge(t *testing.T) {
	eng := &stubEngine{}
	reg := schema.NewRegistry()
	b := New(eng, reg, qUser{}).Scope(map[string]any{"a": 1}).Scope(map[string]any{"a": 2, "b": 3})

	state := b.GetState()
	if state.Scope["a"] != 2 {
		t.Errorf("scope[a] = %v, want 2 (later Scope call should win)", state.Scope["a"])
	}
	if state.Scope["b"] != 3 {
		t.Errorf("scope[b] = %v, want 3", state.Scope["b"])
	}
}

func TestBuilder_OrderByFieldName(t *testing.T) {
	eng := &stubEngine{}
	reg := schema.NewRegistry()
	b := New(eng, reg, qUser{}).OrderBy("username").OrderByDescending("id")

	ops := b.GetState().Operations
	if len(ops) != 2 {
		t.Fatalf("len(ops) = %d, want 2", len(ops))
	}
	if ops[0].FieldName != "username" || ops[0].Direction != Asc {
		t.Errorf("ops[0] = %+v", ops[0])
	}
	if ops[1].FieldName != "id" || ops[1].Direction != Desc {
		t.Errorf("ops[1] = %+v", ops[1])
	}
}

func TestBuilder_ToArray_PassesState(t *testing.T) {
	eng := &stubEngine{rows: []map[string]any{{"id": "1"}}}
	reg := schema.NewRegistry()
	b := New(eng, reg, qUser{}).Take(5)

	rows, err := b.ToArray(context.Background())
	if err != nil {
		t.Fatalf("ToArray: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if len(eng.lastState.Operations) != 1 {
		t.Fatalf("engine did not receive the accumulated operations")
	}
}

func TestBuilder_Filter_CapturesCallbackSource(t *testing.T) {
	eng := &stubEngine{}
	reg := schema.NewRegistry()

	// Written the way the repo's own examples write chains: the method
	// sits on a line below the receiver, which is what previously broke
	// capture (it matched the chain-head line, not this one).
	b := New(eng, reg, qUser{}).
		Filter(func(u *qUser) bool { return u.Username == "alice" })

	ops := b.GetState().Operations
	if len(ops) != 1 {
		t.Fatalf("len(ops) = %d, want 1", len(ops))
	}
	cb := ops[0].Callback
	if cb.CaptureErr != nil {
		t.Fatalf("CaptureErr = %v, want nil", cb.CaptureErr)
	}
	if !strings.Contains(cb.Source, `u.Username == "alice"`) {
		t.Errorf("Source = %q, want it to contain the predicate body", cb.Source)
	}
}

func TestBuilder_Map_CapturesCallbackSource(t *testing.T) {
	eng := &stubEngine{}
	reg := schema.NewRegistry()

	b := New(eng, reg, qUser{}).
		Map(func(u *qUser) any {
			return map[string]any{"name": u.Username}
		})

	ops := b.GetState().Operations
	if len(ops) != 1 {
		t.Fatalf("len(ops) = %d, want 1", len(ops))
	}
	cb := ops[0].Callback
	if cb.CaptureErr != nil {
		t.Fatalf("CaptureErr = %v, want nil", cb.CaptureErr)
	}
	if !strings.Contains(cb.Source, `"name": u.Username`) {
		t.Errorf("Source = %q, want it to contain the projection body", cb.Source)
	}
}

func TestBuilder_First_AppendsTakeOne(t *testing.T) {
	eng := &stubEngine{rows: []map[string]any{{"id": "1"}}}
	reg := schema.NewRegistry()
	b := New(eng, reg, qUser{})

	row, err := b.First(context.Background())
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if row["id"] != "1" {
		t.Errorf("row = %v", row)
	}
	last := eng.lastState.Operations[len(eng.lastState.Operations)-1]
	if last.Tag != OpTake || last.Count != 1 {
		t.Errorf("First did not append take=1: %+v", last)
	}
}
