package translate

// AliasResolver answers whether a dot-path (relative to the callback's
// row parameter, e.g. "courses.name") names a column currently in
// scope — either a seed column off the table or an alias produced by
// an earlier map — and if so what SQL expression to substitute.
//
// The composer supplies one resolver per translated callback, built
// from that callback's position in the operation list: it knows the
// current projection set (and, once a relation has been joined, the
// dot-prefixed columns that relation exposes).
type AliasResolver interface {
	Resolve(dotPath string) (sql string, ok bool)
}

// ScopeBag is the caller-supplied mapping of names, or dot-paths for
// nested values, to primitive Go values. It is the only channel
// through which values from outside the row reach a callback.
type ScopeBag map[string]any

// prefixResolver rebinds an inner projector's parameter (e.g. the "c"
// in u.courses.map(c => ...)) onto a dot-path prefix in the outer
// resolver, so identifiers inside a nested include projection resolve
// against the joined relation's own columns.
type prefixResolver struct {
	base   AliasResolver
	prefix string
}

func (p prefixResolver) Resolve(path string) (string, bool) {
	full := p.prefix
	if path != "" {
		full = p.prefix + "." + path
	}
	return p.base.Resolve(full)
}

func scopeLookup(scope ScopeBag, path string) (any, bool) {
	if scope == nil {
		return nil, false
	}
	segs := splitDot(path)
	var cur any = map[string]any(scope)
	for _, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[seg]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func splitDot(path string) []string {
	if path == "" {
		return nil
	}
	var segs []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			segs = append(segs, path[start:i])
			start = i + 1
		}
	}
	segs = append(segs, path[start:])
	return segs
}
