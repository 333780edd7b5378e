package translate

import "testing"

type mapResolver map[string]string

func (m mapResolver) Resolve(path string) (string, bool) {
	sql, ok := m[path]
	return sql, ok
}

func TestTranslateFilter_Comparison(t *testing.T) {
	resolver := mapResolver{"ID": `"___t0"."id"`}
	sql, err := TranslateFilter(`func(u *User) bool { return u.ID > 10 }`, resolver, nil)
	if err != nil {
		t.Fatalf("TranslateFilter: %v", err)
	}
	if want := `"___t0"."id" > 10`; sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
}

func TestTranslateFilter_StartsWith(t *testing.T) {
	resolver := mapResolver{"Username": `"___t0"."username"`}
	sql, err := TranslateFilter(`func(u *User) bool { return dsl.StartsWith(u.Username, "A") }`, resolver, nil)
	if err != nil {
		t.Fatalf("TranslateFilter: %v", err)
	}
	if want := `"___t0"."username" LIKE 'A%'`; sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
}

func TestTranslateFilter_NullCheck(t *testing.T) {
	resolver := mapResolver{"DeletedAt": `"___t0"."deletedAt"`}
	sql, err := TranslateFilter(`func(u *User) bool { return u.DeletedAt == nil }`, resolver, nil)
	if err != nil {
		t.Fatalf("TranslateFilter: %v", err)
	}
	if want := `"___t0"."deletedAt" IS NULL`; sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
}

func TestTranslateFilter_UnresolvedPath(t *testing.T) {
	resolver := mapResolver{}
	_, err := TranslateFilter(`func(u *User) bool { return u.ID > 10 }`, resolver, nil)
	if err == nil {
		t.Fatalf("expected translation error for unresolved path")
	}
	if _, ok := err.(*TranslationError); !ok {
		t.Errorf("error type = %T, want *TranslationError", err)
	}
}

func TestTranslateProjection_Arithmetic(t *testing.T) {
	resolver := mapResolver{"ID": `"___t0"."id"`}
	fields, _, err := TranslateProjection(
		`func(u *User) any { return map[string]any{"id": u.ID, "idx": u.ID * 8} }`,
		resolver, nil,
	)
	if err != nil {
		t.Fatalf("TranslateProjection: %v", err)
	}
	got := map[string]string{}
	for _, f := range fields {
		got[f.Alias] = f.SQL
	}
	if got["id"] != `"___t0"."id"` {
		t.Errorf("id = %q", got["id"])
	}
	if got["idx"] != `("___t0"."id" * 8)` {
		t.Errorf("idx = %q", got["idx"])
	}
}

func TestTranslateProjection_ScopeMultiplication(t *testing.T) {
	resolver := mapResolver{"ID": `"___t0"."id"`}
	scope := ScopeBag{"foo": 1}
	fields, _, err := TranslateProjection(
		`func(u *User) any { return map[string]any{"id": u.ID, "z": u.ID * foo} }`,
		resolver, scope,
	)
	if err != nil {
		t.Fatalf("TranslateProjection: %v", err)
	}
	var z string
	for _, f := range fields {
		if f.Alias == "z" {
			z = f.SQL
		}
	}
	if want := `("___t0"."id" * 1)`; z != want {
		t.Errorf("z = %q, want %q", z, want)
	}
}

func TestTranslateProjection_MapEach(t *testing.T) {
	resolver := mapResolver{
		"ID":         `"___t0"."id"`,
		"Courses.ID": `"___t1"."id"`,
	}
	fields, relations, err := TranslateProjection(
		`func(u *User) any {
			return map[string]any{
				"id": u.ID,
				"c":  dsl.MapEach(u.Courses, func(c *Course) any {
					return map[string]any{"cid": c.ID}
				}),
			}
		}`,
		resolver, nil,
	)
	if err != nil {
		t.Fatalf("TranslateProjection: %v", err)
	}
	got := map[string]string{}
	for _, f := range fields {
		got[f.Alias] = f.SQL
	}
	if got["c.cid"] != `"___t1"."id"` {
		t.Errorf(`c.cid = %q, want "___t1"."id"`, got["c.cid"])
	}
	if len(relations) != 1 || relations[0] != "c" {
		t.Errorf("relations = %v, want [c]", relations)
	}
}

func TestTranslateOrderSelector(t *testing.T) {
	resolver := mapResolver{"Username": `"___t0"."username"`}
	sql, err := TranslateOrderSelector(`func(u *User) any { return u.Username }`, resolver, nil)
	if err != nil {
		t.Fatalf("TranslateOrderSelector: %v", err)
	}
	if want := `"___t0"."username"`; sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
}

func TestTranslateOrderSelector_StringConcatFallback(t *testing.T) {
	resolver := mapResolver{"FirstName": `"___t0"."firstName"`}
	sql, err := TranslateOrderSelector(
		`func(u *User) any { return u.FirstName + "!" }`,
		resolver, nil,
	)
	if err != nil {
		t.Fatalf("TranslateOrderSelector: %v", err)
	}
	if want := `("___t0"."firstName")::text || ('!')::text`; sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
}
