package compose

import (
	"fmt"
	"strings"
	"unicode"
)

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// fieldAlias derives an output alias from a Go struct field name: the
// field's first rune is lowercased, matching lowerCamelCase output
// keys such as "id" or "fullName". An all-caps field name like "ID"
// lowercases entirely rather than producing the ungainly "iD".
func fieldAlias(fieldName string) string {
	if fieldName == "" {
		return fieldName
	}
	if fieldName == strings.ToUpper(fieldName) {
		return strings.ToLower(fieldName)
	}
	r := []rune(fieldName)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// assembleSQL renders one SELECT layer in a fixed clause order:
// SELECT [DISTINCT] projection FROM source [JOINs] [WHERE ...]
// [ORDER BY ...] [OFFSET n] [LIMIT n].
func assembleSQL(distinct bool, proj []projField, fromSQL string, joins, wheres, orders []string, offset, limit *int) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if distinct {
		b.WriteString("DISTINCT ")
	}

	parts := make([]string, len(proj))
	for i, f := range proj {
		parts[i] = fmt.Sprintf(`%s AS "%s"`, f.SQL, f.Alias)
	}
	b.WriteString(strings.Join(parts, ", "))

	b.WriteString(" FROM ")
	b.WriteString(fromSQL)

	for _, j := range joins {
		b.WriteString(" ")
		b.WriteString(j)
	}

	if len(wheres) > 0 {
		wrapped := make([]string, len(wheres))
		for i, w := range wheres {
			wrapped[i] = "(" + w + ")"
		}
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(wrapped, " AND "))
	}

	if len(orders) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(orders, ", "))
	}

	if offset != nil {
		b.WriteString(fmt.Sprintf(" OFFSET %d", *offset))
	}
	if limit != nil {
		b.WriteString(fmt.Sprintf(" LIMIT %d", *limit))
	}

	return b.String()
}
