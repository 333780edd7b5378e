// Package translate walks the parsed AST of a filter, projection, or
// order callback and emits SQL text, consulting an alias resolver for
// row-relative identifier paths and a scope bag for everything else.
package translate

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
)

// ProjectionField is one output column of a map's object-expression
// projection: a dot-flattened alias and the SQL expression it targets.
type ProjectionField struct {
	Alias string
	SQL   string
}

// TranslateFilter translates a predicate callback's body into a raw
// SQL boolean expression, unparenthesized — the composer parenthesizes
// each WHERE conjunct itself.
func TranslateFilter(source string, resolver AliasResolver, scope ScopeBag) (string, error) {
	_, paramName, expr, err := parseCallback(source)
	if err != nil {
		return "", err
	}
	return exprToSQL(expr, paramName, resolver, scope)
}

// TranslateOrderSelector translates an order-by selector callback's
// body into the SQL expression the ORDER BY entry sorts on.
func TranslateOrderSelector(source string, resolver AliasResolver, scope ScopeBag) (string, error) {
	_, paramName, expr, err := parseCallback(source)
	if err != nil {
		return "", err
	}
	return exprToSQL(expr, paramName, resolver, scope)
}

// TranslateProjection translates a map callback's object/struct
// literal return value into the ordered set of output aliases and
// their SQL targets, plus the list of top-level keys that wrap a
// dsl.MapEach call — those, and only those, need row-grouping at
// rehydration time, since only a relation join can duplicate rows.
func TranslateProjection(source string, resolver AliasResolver, scope ScopeBag) ([]ProjectionField, []string, error) {
	_, paramName, expr, err := parseCallback(source)
	if err != nil {
		return nil, nil, err
	}
	lit, ok := expr.(*ast.CompositeLit)
	if !ok {
		return nil, nil, errf("map callback must return an object or struct literal projection")
	}

	var relationKeys []string
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		call, ok := kv.Value.(*ast.CallExpr)
		if !ok || !isMapEachCall(call) {
			continue
		}
		key, err := compositeKeyName(kv.Key)
		if err != nil {
			return nil, nil, err
		}
		relationKeys = append(relationKeys, key)
	}

	fields, err := walkComposite(lit, paramName, resolver, scope)
	if err != nil {
		return nil, nil, err
	}
	return fields, relationKeys, nil
}

// parseCallback parses source (an inline `func(row T) R { ... }`
// literal rendered back to text by CaptureCallerSource) and returns
// its row parameter name and the single expression its body returns.
// A block body containing anything other than one return statement is
// a translation error, matching the single-return-or-expression-body
// rule filter/map/order callbacks must follow.
func parseCallback(source string) (*ast.FuncLit, string, ast.Expr, error) {
	wrapped := "package p\n\nvar _ = " + source + "\n"
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "callback.go", wrapped, 0)
	if err != nil {
		return nil, "", nil, errf("parsing callback source: %v", err)
	}
	if len(f.Decls) == 0 {
		return nil, "", nil, errf("empty callback source")
	}
	genDecl, ok := f.Decls[0].(*ast.GenDecl)
	if !ok || len(genDecl.Specs) == 0 {
		return nil, "", nil, errf("callback source is not a function literal")
	}
	valueSpec, ok := genDecl.Specs[0].(*ast.ValueSpec)
	if !ok || len(valueSpec.Values) == 0 {
		return nil, "", nil, errf("callback source is not a function literal")
	}
	lit, ok := valueSpec.Values[0].(*ast.FuncLit)
	if !ok {
		return nil, "", nil, errf("callback source is not a function literal")
	}
	if lit.Type.Params == nil || len(lit.Type.Params.List) == 0 || len(lit.Type.Params.List[0].Names) == 0 {
		return nil, "", nil, errf("callback must take a single named row parameter")
	}
	paramName := lit.Type.Params.List[0].Names[0].Name

	if lit.Body == nil || len(lit.Body.List) != 1 {
		return nil, "", nil, errf("callback body must be a single return statement")
	}
	ret, ok := lit.Body.List[0].(*ast.ReturnStmt)
	if !ok || len(ret.Results) != 1 {
		return nil, "", nil, errf("callback body must be a single return statement")
	}
	return lit, paramName, ret.Results[0], nil
}

func walkComposite(lit *ast.CompositeLit, paramName string, resolver AliasResolver, scope ScopeBag) ([]ProjectionField, error) {
	var fields []ProjectionField
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			return nil, errf("projection element must be a key: value pair")
		}
		key, err := compositeKeyName(kv.Key)
		if err != nil {
			return nil, err
		}

		switch v := kv.Value.(type) {
		case *ast.CompositeLit:
			nested, err := walkComposite(v, paramName, resolver, scope)
			if err != nil {
				return nil, err
			}
			for _, nf := range nested {
				fields = append(fields, ProjectionField{Alias: key + "." + nf.Alias, SQL: nf.SQL})
			}
		case *ast.CallExpr:
			if isMapEachCall(v) {
				nested, err := walkMapEach(v, paramName, resolver, scope)
				if err != nil {
					return nil, err
				}
				for _, nf := range nested {
					fields = append(fields, ProjectionField{Alias: key + "." + nf.Alias, SQL: nf.SQL})
				}
				continue
			}
			sql, err := exprToSQL(v, paramName, resolver, scope)
			if err != nil {
				return nil, err
			}
			fields = append(fields, ProjectionField{Alias: key, SQL: sql})
		default:
			sql, err := exprToSQL(v, paramName, resolver, scope)
			if err != nil {
				return nil, err
			}
			fields = append(fields, ProjectionField{Alias: key, SQL: sql})
		}
	}
	return fields, nil
}

func compositeKeyName(key ast.Expr) (string, error) {
	switch k := key.(type) {
	case *ast.Ident:
		return k.Name, nil
	case *ast.BasicLit:
		if k.Kind == token.STRING {
			return strconv.Unquote(k.Value)
		}
	}
	return "", errf("unsupported projection key %T", key)
}

func isMapEachCall(call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	pkgIdent, ok := sel.X.(*ast.Ident)
	return ok && pkgIdent.Name == "dsl" && sel.Sel.Name == "MapEach"
}

// walkMapEach recurses into a `dsl.MapEach(row.Relation, func(inner) R
// { ... })` call inside a projection, binding inner's parameter to the
// relation's dot-path prefix in a fresh resolver — the recursive
// handling a nested `.map()` call needs inside an object expression.
func walkMapEach(call *ast.CallExpr, paramName string, resolver AliasResolver, scope ScopeBag) ([]ProjectionField, error) {
	if len(call.Args) != 2 {
		return nil, errf("dsl.MapEach requires two arguments")
	}
	segs, err := flattenSelector(call.Args[0])
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 || segs[0] != paramName {
		return nil, errf("dsl.MapEach's first argument must be a relation path on the row")
	}
	itemsPath := strings.Join(segs[1:], ".")

	innerLit, ok := call.Args[1].(*ast.FuncLit)
	if !ok {
		return nil, errf("dsl.MapEach's second argument must be an inline function literal")
	}
	if innerLit.Type.Params == nil || len(innerLit.Type.Params.List) == 0 || len(innerLit.Type.Params.List[0].Names) == 0 {
		return nil, errf("dsl.MapEach projector must take a single named parameter")
	}
	innerParam := innerLit.Type.Params.List[0].Names[0].Name
	if innerLit.Body == nil || len(innerLit.Body.List) != 1 {
		return nil, errf("dsl.MapEach projector body must be a single return statement")
	}
	innerRet, ok := innerLit.Body.List[0].(*ast.ReturnStmt)
	if !ok || len(innerRet.Results) != 1 {
		return nil, errf("dsl.MapEach projector body must be a single return statement")
	}
	innerCompLit, ok := innerRet.Results[0].(*ast.CompositeLit)
	if !ok {
		return nil, errf("dsl.MapEach projector must return an object or struct literal")
	}

	innerResolver := prefixResolver{base: resolver, prefix: itemsPath}
	return walkComposite(innerCompLit, innerParam, innerResolver, scope)
}

func exprToSQL(expr ast.Expr, paramName string, resolver AliasResolver, scope ScopeBag) (string, error) {
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return exprToSQL(e.X, paramName, resolver, scope)
	case *ast.UnaryExpr:
		if e.Op == token.SUB {
			inner, err := exprToSQL(e.X, paramName, resolver, scope)
			if err != nil {
				return "", err
			}
			return "-" + inner, nil
		}
		return "", errf("unsupported unary operator %s", e.Op)
	case *ast.Ident:
		switch e.Name {
		case "true":
			return "TRUE", nil
		case "false":
			return "FALSE", nil
		case "nil":
			return "NULL", nil
		}
		if e.Name == paramName {
			return "", errf("bare row reference %q is not a valid expression", e.Name)
		}
		v, ok := scopeLookup(scope, e.Name)
		if !ok {
			return "", errf("unresolved identifier %q", e.Name)
		}
		return literalFromValue(v)
	case *ast.SelectorExpr:
		segs, err := flattenSelector(e)
		if err != nil {
			return "", err
		}
		return resolvePath(segs, paramName, resolver, scope)
	case *ast.BasicLit:
		sql, _, err := literalSQL(e)
		return sql, err
	case *ast.BinaryExpr:
		return binaryToSQL(e, paramName, resolver, scope)
	case *ast.CallExpr:
		return callToSQL(e, paramName, resolver, scope)
	default:
		return "", errf("unsupported expression node %T", expr)
	}
}

func resolvePath(segs []string, paramName string, resolver AliasResolver, scope ScopeBag) (string, error) {
	if len(segs) == 0 {
		return "", errf("empty selector path")
	}
	if segs[0] == paramName {
		path := strings.Join(segs[1:], ".")
		if sql, ok := resolver.Resolve(path); ok {
			return sql, nil
		}
		return "", errf("unresolved path %q", path)
	}
	path := strings.Join(segs, ".")
	if v, ok := scopeLookup(scope, path); ok {
		return literalFromValue(v)
	}
	return "", errf("unresolved identifier path %q", path)
}

func flattenSelector(expr ast.Expr) ([]string, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		return []string{e.Name}, nil
	case *ast.SelectorExpr:
		segs, err := flattenSelector(e.X)
		if err != nil {
			return nil, err
		}
		return append(segs, e.Sel.Name), nil
	default:
		return nil, errf("unsupported selector base %T", expr)
	}
}

func binaryToSQL(be *ast.BinaryExpr, paramName string, resolver AliasResolver, scope ScopeBag) (string, error) {
	switch be.Op {
	case token.LAND, token.LOR:
		l, err := exprToSQL(be.X, paramName, resolver, scope)
		if err != nil {
			return "", err
		}
		r, err := exprToSQL(be.Y, paramName, resolver, scope)
		if err != nil {
			return "", err
		}
		op := "AND"
		if be.Op == token.LOR {
			op = "OR"
		}
		return fmt.Sprintf("(%s %s %s)", l, op, r), nil

	case token.EQL, token.NEQ:
		if isNilIdent(be.X) || isNilIdent(be.Y) {
			other := be.X
			if isNilIdent(be.X) {
				other = be.Y
			}
			o, err := exprToSQL(other, paramName, resolver, scope)
			if err != nil {
				return "", err
			}
			if be.Op == token.EQL {
				return o + " IS NULL", nil
			}
			return o + " IS NOT NULL", nil
		}
		l, err := exprToSQL(be.X, paramName, resolver, scope)
		if err != nil {
			return "", err
		}
		r, err := exprToSQL(be.Y, paramName, resolver, scope)
		if err != nil {
			return "", err
		}
		op := "="
		if be.Op == token.NEQ {
			op = "<>"
		}
		return fmt.Sprintf("%s %s %s", l, op, r), nil

	case token.LSS, token.LEQ, token.GTR, token.GEQ:
		l, err := exprToSQL(be.X, paramName, resolver, scope)
		if err != nil {
			return "", err
		}
		r, err := exprToSQL(be.Y, paramName, resolver, scope)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", l, be.Op.String(), r), nil

	case token.SUB, token.MUL, token.QUO, token.REM:
		l, err := exprToSQL(be.X, paramName, resolver, scope)
		if err != nil {
			return "", err
		}
		r, err := exprToSQL(be.Y, paramName, resolver, scope)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", l, be.Op.String(), r), nil

	case token.ADD:
		if isNumericLiteral(be.X) && isNumericLiteral(be.Y) {
			l, err := exprToSQL(be.X, paramName, resolver, scope)
			if err != nil {
				return "", err
			}
			r, err := exprToSQL(be.Y, paramName, resolver, scope)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("(%s) + (%s)", l, r), nil
		}
		l, err := exprToSQL(be.X, paramName, resolver, scope)
		if err != nil {
			return "", err
		}
		r, err := exprToSQL(be.Y, paramName, resolver, scope)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s)::text || (%s)::text", l, r), nil

	default:
		return "", errf("unsupported binary operator %s", be.Op)
	}
}

func isNilIdent(e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == "nil"
}

func isNumericLiteral(e ast.Expr) bool {
	for {
		if p, ok := e.(*ast.ParenExpr); ok {
			e = p.X
			continue
		}
		break
	}
	if u, ok := e.(*ast.UnaryExpr); ok && u.Op == token.SUB {
		e = u.X
	}
	lit, ok := e.(*ast.BasicLit)
	return ok && (lit.Kind == token.INT || lit.Kind == token.FLOAT)
}

func literalSQL(lit *ast.BasicLit) (sql string, isNumeric bool, err error) {
	switch lit.Kind {
	case token.INT, token.FLOAT:
		return lit.Value, true, nil
	case token.STRING:
		s, err := strconv.Unquote(lit.Value)
		if err != nil {
			return "", false, errf("invalid string literal %s: %v", lit.Value, err)
		}
		return "'" + strings.ReplaceAll(s, "'", "''") + "'", false, nil
	default:
		return "", false, errf("unsupported literal kind %s", lit.Kind)
	}
}

func literalFromValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'", nil
	case bool:
		if val {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int, int32, int64, float32, float64:
		return fmt.Sprintf("%v", val), nil
	default:
		return "", errf("unsupported scope value type %T", v)
	}
}

func callToSQL(call *ast.CallExpr, paramName string, resolver AliasResolver, scope ScopeBag) (string, error) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return "", errf("unsupported call expression")
	}
	pkgIdent, ok := sel.X.(*ast.Ident)
	if !ok || pkgIdent.Name != "dsl" {
		return "", errf("unsupported call to %s", sel.Sel.Name)
	}

	render := func(i int) (string, error) {
		if i >= len(call.Args) {
			return "", errf("dsl.%s: missing argument %d", sel.Sel.Name, i)
		}
		return exprToSQL(call.Args[i], paramName, resolver, scope)
	}

	switch sel.Sel.Name {
	case "Lower":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("LOWER(%s)", o), nil
	case "Upper":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("UPPER(%s)", o), nil
	case "Trim":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("TRIM(%s)", o), nil
	case "Substring":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		s, err := render(1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("SUBSTRING(%s FROM %s + 1)", o, s), nil
	case "SubstringLen":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		s, err := render(1)
		if err != nil {
			return "", err
		}
		l, err := render(2)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("SUBSTRING(%s FROM %s + 1 FOR %s)", o, s, l), nil
	case "StartsWith":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		pat, err := likeLiteral(call.Args[1], paramName, scope, false, true)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s LIKE %s", o, pat), nil
	case "EndsWith":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		pat, err := likeLiteral(call.Args[1], paramName, scope, true, false)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s LIKE %s", o, pat), nil
	case "Contains":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		pat, err := likeLiteral(call.Args[1], paramName, scope, true, true)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s LIKE %s", o, pat), nil
	case "Replace":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		a, err := render(1)
		if err != nil {
			return "", err
		}
		b, err := render(2)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("REPLACE(%s, %s, %s)", o, a, b), nil
	case "Round":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		n, err := render(1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("ROUND(%s, %s)", o, n), nil
	case "ToText":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("CAST(%s AS TEXT)", o), nil
	case "Year":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("EXTRACT(YEAR FROM %s)", o), nil
	case "Month":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(EXTRACT(MONTH FROM %s) - 1)", o), nil
	case "Day":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("EXTRACT(DAY FROM %s)", o), nil
	case "Hour":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("EXTRACT(HOUR FROM %s)", o), nil
	case "Minute":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("EXTRACT(MINUTE FROM %s)", o), nil
	case "Second":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("EXTRACT(SECOND FROM %s)", o), nil
	case "In":
		o, err := render(0)
		if err != nil {
			return "", err
		}
		items, err := arrayLiteral(call.Args[1], paramName, resolver, scope)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = ANY(ARRAY[%s])", o, items), nil
	default:
		return "", errf("unrecognized dsl call %s", sel.Sel.Name)
	}
}

// likeLiteral renders argExpr — a string literal or a scope-resolved
// string — as a quoted SQL LIKE pattern with wildcards added on the
// requested sides.
func likeLiteral(argExpr ast.Expr, paramName string, scope ScopeBag, leadingWildcard, trailingWildcard bool) (string, error) {
	raw, err := literalText(argExpr, paramName, scope)
	if err != nil {
		return "", err
	}
	pattern := raw
	if leadingWildcard {
		pattern = "%" + pattern
	}
	if trailingWildcard {
		pattern = pattern + "%"
	}
	return "'" + strings.ReplaceAll(pattern, "'", "''") + "'", nil
}

func literalText(expr ast.Expr, paramName string, scope ScopeBag) (string, error) {
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind != token.STRING {
			return "", errf("expected a string literal")
		}
		return strconv.Unquote(e.Value)
	case *ast.Ident, *ast.SelectorExpr:
		segs, err := flattenSelector(e)
		if err != nil {
			return "", err
		}
		if len(segs) > 0 && segs[0] == paramName {
			return "", errf("LIKE pattern must be a literal or scope value, not a row column")
		}
		path := strings.Join(segs, ".")
		v, ok := scopeLookup(scope, path)
		if !ok {
			return "", errf("unresolved identifier path %q", path)
		}
		s, ok := v.(string)
		if !ok {
			return "", errf("scope value at %q is not a string", path)
		}
		return s, nil
	default:
		return "", errf("unsupported LIKE pattern expression %T", expr)
	}
}

func arrayLiteral(expr ast.Expr, paramName string, resolver AliasResolver, scope ScopeBag) (string, error) {
	lit, ok := expr.(*ast.CompositeLit)
	if !ok {
		return "", errf("dsl.In requires an array literal as its second argument")
	}
	parts := make([]string, len(lit.Elts))
	for i, el := range lit.Elts {
		sql, err := exprToSQL(el, paramName, resolver, scope)
		if err != nil {
			return "", err
		}
		parts[i] = sql
	}
	return strings.Join(parts, ", "), nil
}
