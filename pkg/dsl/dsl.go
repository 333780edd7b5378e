// Package dsl provides the vocabulary that filter, map, and order
// callbacks call into to express operations the query compiler
// recognizes: string and date functions Go's plain string and
// time.Time types don't carry as methods, and a marker for projecting
// an included relation's rows.
//
// None of these functions ever run. A callback passed to a queryable
// chain is never invoked against an in-memory row — its body is parsed
// as source text and translated into SQL — so every function here
// panics if called directly. They exist purely as call targets the
// translator's AST walk recognizes.
package dsl

// Lower renders as SQL LOWER(s).
func Lower(s string) string { panic("dsl: not executable, translated to SQL") }

// Upper renders as SQL UPPER(s).
func Upper(s string) string { panic("dsl: not executable, translated to SQL") }

// Trim renders as SQL TRIM(s).
func Trim(s string) string { panic("dsl: not executable, translated to SQL") }

// Substring renders as SQL SUBSTRING(s FROM start+1).
func Substring(s string, start int) string { panic("dsl: not executable, translated to SQL") }

// SubstringLen renders as SQL SUBSTRING(s FROM start+1 FOR length).
func SubstringLen(s string, start, length int) string {
	panic("dsl: not executable, translated to SQL")
}

// StartsWith renders as SQL s LIKE 'prefix%'.
func StartsWith(s, prefix string) bool { panic("dsl: not executable, translated to SQL") }

// EndsWith renders as SQL s LIKE '%suffix'.
func EndsWith(s, suffix string) bool { panic("dsl: not executable, translated to SQL") }

// Contains renders as SQL s LIKE '%substr%'.
func Contains(s, substr string) bool { panic("dsl: not executable, translated to SQL") }

// Replace renders as SQL REPLACE(s, 'old', 'new').
func Replace(s, old, new string) string { panic("dsl: not executable, translated to SQL") }

// Round renders as SQL ROUND(f, n).
func Round(f float64, n int) float64 { panic("dsl: not executable, translated to SQL") }

// ToText renders as SQL CAST(v AS TEXT).
func ToText(v any) string { panic("dsl: not executable, translated to SQL") }

// Year renders as SQL EXTRACT(YEAR FROM t).
func Year(t any) int { panic("dsl: not executable, translated to SQL") }

// Month renders as SQL EXTRACT(MONTH FROM t) minus one, matching a
// zero-based calendar month.
func Month(t any) int { panic("dsl: not executable, translated to SQL") }

// Day renders as SQL EXTRACT(DAY FROM t).
func Day(t any) int { panic("dsl: not executable, translated to SQL") }

// Hour renders as SQL EXTRACT(HOUR FROM t).
func Hour(t any) int { panic("dsl: not executable, translated to SQL") }

// Minute renders as SQL EXTRACT(MINUTE FROM t).
func Minute(t any) int { panic("dsl: not executable, translated to SQL") }

// Second renders as SQL EXTRACT(SECOND FROM t).
func Second(t any) int { panic("dsl: not executable, translated to SQL") }

// In renders as SQL v = ANY(ARRAY[...set]).
func In[T comparable](v T, set []T) bool { panic("dsl: not executable, translated to SQL") }

// MapEach marks a projection of an included relation's rows: the
// translator recognizes a call of this shape inside a map body,
// binds project's parameter to items's dot-path, and recurses to
// build the nested alias set. Grounded on the "recognized nested
// .map() inside an object expression" rule for include projections.
func MapEach[T any, R any](items []T, project func(T) R) []R {
	panic("dsl: not executable, translated to SQL")
}
