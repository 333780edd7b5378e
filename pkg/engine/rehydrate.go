package engine

import (
	"fmt"
	"strings"
)

// Rehydrate turns the composer's flat, dot-aliased rows back into
// nested objects. columns preserves the compiled projection's output
// order; relations names which dot-prefixes came from an Include join
// rather than an ordinary nested projection literal — only those need
// grouping, since only a join can duplicate a root row.
//
// A row set with no dot-aliases at all comes back unchanged: the
// entity root case, no Include, no nested projection.
func Rehydrate(rows []map[string]any, columns []string, relations []string) []map[string]any {
	if len(rows) == 0 {
		return []map[string]any{}
	}

	hasDot := false
	for _, c := range columns {
		if strings.Contains(c, ".") {
			hasDot = true
			break
		}
	}
	if !hasDot {
		return rows
	}

	relSet := make(map[string]bool, len(relations))
	for _, r := range relations {
		relSet[r] = true
	}
	if len(relSet) == 0 {
		out := make([]map[string]any, len(rows))
		for i, row := range rows {
			out[i] = nestRow(row)
		}
		return out
	}

	var scalarCols, relCols []string
	for _, c := range columns {
		if relSet[topSegment(c)] {
			relCols = append(relCols, c)
		} else {
			scalarCols = append(scalarCols, c)
		}
	}

	type group struct {
		obj map[string]any
		rel map[string][]map[string]any
	}

	var order []string
	groups := make(map[string]*group)

	for _, row := range rows {
		parts := make([]string, len(scalarCols))
		for i, c := range scalarCols {
			parts[i] = fmt.Sprintf("%v", row[c])
		}
		key := strings.Join(parts, "\x1f")

		g, ok := groups[key]
		if !ok {
			obj := make(map[string]any, len(scalarCols))
			for _, c := range scalarCols {
				obj[c] = row[c]
			}
			g = &group{obj: obj, rel: make(map[string][]map[string]any)}
			for prefix := range relSet {
				g.rel[prefix] = []map[string]any{}
			}
			groups[key] = g
			order = append(order, key)
		}

		for prefix := range relSet {
			sub := make(map[string]any)
			allNil := true
			for _, c := range relCols {
				p, rest := splitFirstDot(c)
				if p != prefix {
					continue
				}
				v := row[c]
				if v != nil {
					allNil = false
				}
				setNested(sub, rest, v)
			}
			if !allNil {
				g.rel[prefix] = append(g.rel[prefix], sub)
			}
		}
	}

	out := make([]map[string]any, len(order))
	for i, key := range order {
		g := groups[key]
		obj := make(map[string]any, len(g.obj)+len(g.rel))
		for k, v := range g.obj {
			obj[k] = v
		}
		for prefix, items := range g.rel {
			arr := make([]any, len(items))
			for j, it := range items {
				arr[j] = it
			}
			obj[prefix] = arr
		}
		out[i] = obj
	}
	return out
}

func topSegment(col string) string {
	if i := strings.IndexByte(col, '.'); i >= 0 {
		return col[:i]
	}
	return col
}

func splitFirstDot(col string) (prefix, rest string) {
	i := strings.IndexByte(col, '.')
	if i < 0 {
		return col, ""
	}
	return col[:i], col[i+1:]
}

// nestRow splits every dot-aliased key of row into a nested object
// tree, with no cross-row grouping — used when a projection nests
// object literals without an accompanying Include.
func nestRow(row map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range row {
		setNested(out, k, v)
	}
	return out
}

func setNested(m map[string]any, dotted string, v any) {
	segs := strings.Split(dotted, ".")
	cur := m
	for i, seg := range segs {
		if i == len(segs)-1 {
			cur[seg] = v
			return
		}
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
}
