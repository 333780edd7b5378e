package schema

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// StructTagKey is the struct tag holding column options.
const StructTagKey = "col"

// RelationTagKey is the struct tag holding relation options.
const RelationTagKey = "rel"

// Declare parses a struct type's tags and installs its table, column,
// and relation descriptors into reg. It is idempotent: calling it twice
// for the same entity is a no-op the second time.
//
// A `// table_name: foo` comment directly above the struct wins over
// the default lower-cased struct name.
func Declare(reg *Registry, ctor any) error {
	t := elemType(ctor)
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("schema.Declare: %s is not a struct", t)
	}

	if _, err := reg.GetTable(ctor); err == nil {
		return nil // already declared
	}

	tableName := tableNameFromComment(t)
	if tableName == "" {
		tableName = strings.ToLower(t.Name())
	}
	reg.RegisterTable(ctor, TableOptions{Name: tableName})

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		if relTag, ok := field.Tag.Lookup(RelationTagKey); ok {
			opts, err := parseRelationTag(field, relTag)
			if err != nil {
				return fmt.Errorf("schema.Declare: field %s: %w", field.Name, err)
			}
			reg.RegisterRelation(ctor, field.Name, opts)
			continue
		}

		colTag, ok := field.Tag.Lookup(StructTagKey)
		if !ok {
			continue
		}
		opts := parseColumnTag(field.Name, colTag)
		reg.RegisterColumn(ctor, field.Name, opts)
	}

	return nil
}

// parseColumnTag parses a `col:"name,opt1,opt2(value)"` tag into
// ColumnOptions.
func parseColumnTag(fieldName, tag string) ColumnOptions {
	parts := splitTag(tag)
	opts := ColumnOptions{}
	if len(parts) > 0 && parts[0] != "" {
		opts.Name = parts[0]
	}

	for _, part := range parts[minInt(1, len(parts)):] {
		key, val := splitOption(part)
		switch key {
		case "notNull":
			opts.Nullable = false
		case "nullable":
			opts.Nullable = true
		case "unique":
			opts.Unique = true
		case "primary", "primaryKey":
			opts.Primary = true
		case "default":
			d := val
			opts.Default = &d
		case "length":
			if n, err := strconv.Atoi(val); err == nil {
				opts.Length = n
			}
		case "":
			// bare token; ignore
		default:
			// treat as an explicit SQL type, e.g. varchar(255), uuid, jsonb
			if val != "" {
				opts.SQLType = fmt.Sprintf("%s(%s)", key, val)
			} else {
				opts.SQLType = key
			}
		}
	}
	// Nullable defaults to true unless the column is a primary key or
	// explicitly marked notNull.
	if !opts.Primary {
		hasNotNull := strings.Contains(tag, "notNull")
		opts.Nullable = !hasNotNull
	}
	_ = fieldName
	return opts
}

// parseRelationTag parses a
// `rel:"hasMany,target:Course,foreignKey:userId,principalKey:id,joinKind:left,nullable,eager"`
// tag into RelationOptions. The target entity is looked up by name
// against the field's own Go type (slice element for hasMany/manyToMany,
// pointer/value element otherwise) — Go already knows the full type
// graph at compile time, so no forward-declared registration order is
// required.
func parseRelationTag(field reflect.StructField, tag string) (RelationOptions, error) {
	parts := splitTag(tag)
	if len(parts) == 0 {
		return RelationOptions{}, fmt.Errorf("empty relation tag")
	}

	opts := RelationOptions{JoinKind: JoinLeft, PrincipalKey: "id"}
	switch parts[0] {
	case "belongsTo":
		opts.Type = BelongsTo
	case "hasOne":
		opts.Type = HasOne
	case "hasMany":
		opts.Type = HasMany
	case "manyToMany":
		opts.Type = ManyToMany
	default:
		return RelationOptions{}, fmt.Errorf("unknown relation kind %q", parts[0])
	}

	targetType := field.Type
	for targetType.Kind() == reflect.Slice || targetType.Kind() == reflect.Ptr {
		targetType = targetType.Elem()
	}
	captured := targetType
	opts.Target = func() reflect.Type { return captured }

	for _, part := range parts[1:] {
		key, val := splitOption(part)
		switch key {
		case "foreignKey":
			opts.ForeignKey = val
		case "principalKey", "references":
			opts.PrincipalKey = val
		case "joinKind":
			switch strings.ToLower(val) {
			case "inner":
				opts.JoinKind = JoinInner
			case "right":
				opts.JoinKind = JoinRight
			default:
				opts.JoinKind = JoinLeft
			}
		case "nullable":
			opts.Nullable = true
		case "eager":
			opts.Eager = true
		case "target":
			// Informational only: the Go field type is authoritative.
		}
	}

	if opts.ForeignKey == "" {
		opts.ForeignKey = toSnakeCase(field.Name) + "_id"
	}

	return opts, nil
}

func splitOption(part string) (key, val string) {
	if idx := strings.Index(part, ":"); idx != -1 {
		return part[:idx], part[idx+1:]
	}
	if idx := strings.Index(part, "("); idx != -1 && strings.HasSuffix(part, ")") {
		return part[:idx], part[idx+1 : len(part)-1]
	}
	return part, ""
}

// splitTag splits a tag value on commas, respecting nested parentheses.
func splitTag(tag string) []string {
	var parts []string
	var cur strings.Builder
	depth := 0
	for _, ch := range tag {
		switch ch {
		case '(':
			depth++
			cur.WriteRune(ch)
		case ')':
			depth--
			cur.WriteRune(ch)
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(cur.String()))
				cur.Reset()
				continue
			}
			cur.WriteRune(ch)
		default:
			cur.WriteRune(ch)
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, strings.TrimSpace(cur.String()))
	}
	return parts
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

var tableNameCommentRE = regexp.MustCompile(`table_name:\s*([a-zA-Z0-9_]+)`)

// tableNameFromComment locates the source file declaring t (by walking
// the caller's build directory, the same trick the parser uses to find
// callback source text in package translate) and extracts a
// `// table_name: foo` directive above the struct declaration, if any.
func tableNameFromComment(t reflect.Type) string {
	file := findDeclaringFile(t.PkgPath(), t.Name())
	if file == "" {
		return ""
	}

	fset := token.NewFileSet()
	astFile, err := parser.ParseFile(fset, file, nil, parser.ParseComments)
	if err != nil {
		return ""
	}

	for _, decl := range astFile.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok || typeSpec.Name.Name != t.Name() {
				continue
			}
			if _, ok := typeSpec.Type.(*ast.StructType); !ok {
				continue
			}
			if genDecl.Doc != nil {
				for _, c := range genDecl.Doc.List {
					if m := tableNameCommentRE.FindStringSubmatch(c.Text); m != nil {
						return m[1]
					}
				}
			}
		}
	}
	return ""
}

// findDeclaringFile searches directories that plausibly hold pkgPath's
// source for a file defining "type <structName> struct".
func findDeclaringFile(pkgPath, structName string) string {
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if _, file, _, ok := runtime.Caller(0); ok {
		dirs = append(dirs, filepath.Dir(file))
	}
	if gopath := os.Getenv("GOPATH"); gopath != "" && pkgPath != "" {
		dirs = append(dirs, filepath.Join(gopath, "src", pkgPath))
	}

	needle := "type " + structName + " struct"
	for _, dir := range dirs {
		matches, err := filepath.Glob(filepath.Join(dir, "*.go"))
		if err != nil {
			continue
		}
		for _, m := range matches {
			content, err := os.ReadFile(m)
			if err != nil {
				continue
			}
			if strings.Contains(string(content), needle) {
				return m
			}
		}
	}
	return ""
}
