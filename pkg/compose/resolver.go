package compose

import "strings"

// projField is one entry of a layer's current projection: an output
// alias and the SQL expression it targets in that layer's own FROM
// scope.
type projField struct {
	Alias string
	SQL   string
}

// liveResolver answers translate.AliasResolver against whatever
// projection the composer has built up so far for the group currently
// being assembled. It's swapped to a fresh set of fields after each
// map collapses the projection.
type liveResolver struct {
	fields []projField
}

func (r *liveResolver) Resolve(path string) (string, bool) {
	target := canonicalAlias(path)
	for _, f := range r.fields {
		if canonicalAlias(f.Alias) == target {
			return f.SQL, true
		}
	}
	return "", false
}

// canonicalAlias normalizes each dot-segment of a path with fieldAlias
// so that a callback written against a Go struct's exported PascalCase
// field (u.FullName) resolves against a projection alias already in
// lowerCamelCase form ("fullName"), whichever side introduced the
// casing.
func canonicalAlias(path string) string {
	segs := strings.Split(path, ".")
	for i, seg := range segs {
		segs[i] = fieldAlias(seg)
	}
	return strings.Join(segs, ".")
}
