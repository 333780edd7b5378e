package engine

import (
	"reflect"
	"testing"
)

func TestRehydrate_FlatRowsUnchanged(t *testing.T) {
	rows := []map[string]any{
		{"id": "1", "username": "ada"},
		{"id": "2", "username": "grace"},
	}
	got := Rehydrate(rows, []string{"id", "username"}, nil)
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("Rehydrate = %v, want unchanged %v", got, rows)
	}
}

func TestRehydrate_NestedProjectionWithoutRelation(t *testing.T) {
	rows := []map[string]any{
		{"id": "1", "profile.bio": "hi"},
	}
	got := Rehydrate(rows, []string{"id", "profile.bio"}, nil)
	want := []map[string]any{
		{"id": "1", "profile": map[string]any{"bio": "hi"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rehydrate = %v, want %v", got, want)
	}
}

func TestRehydrate_GroupsIncludedHasMany(t *testing.T) {
	rows := []map[string]any{
		{"id": "1", "c.cid": "c1"},
		{"id": "1", "c.cid": "c2"},
		{"id": "2", "c.cid": nil},
	}
	got := Rehydrate(rows, []string{"id", "c.cid"}, []string{"c"})

	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if got[0]["id"] != "1" {
		t.Errorf("got[0][id] = %v, want 1", got[0]["id"])
	}
	courses, ok := got[0]["c"].([]any)
	if !ok || len(courses) != 2 {
		t.Fatalf("got[0][c] = %v, want two entries", got[0]["c"])
	}
	if courses[0].(map[string]any)["cid"] != "c1" || courses[1].(map[string]any)["cid"] != "c2" {
		t.Errorf("courses = %v, want cid c1 then c2", courses)
	}

	if got[1]["id"] != "2" {
		t.Errorf("got[1][id] = %v, want 2", got[1]["id"])
	}
	emptyCourses, ok := got[1]["c"].([]any)
	if !ok || len(emptyCourses) != 0 {
		t.Errorf("got[1][c] = %v, want an empty slice for an unmatched left join", got[1]["c"])
	}
}

func TestRehydrate_EmptyResultSet(t *testing.T) {
	got := Rehydrate(nil, []string{"id"}, nil)
	if len(got) != 0 {
		t.Errorf("Rehydrate(nil) = %v, want empty", got)
	}
}
