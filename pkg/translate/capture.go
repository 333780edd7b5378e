package translate

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"runtime"
)

// CaptureCallerSource locates the inline function literal passed to
// one of methodNames at the call site two frames up the stack, and
// renders it back to source text.
//
// This is the same trick pkg/schema uses to recover a `table_name`
// comment from a struct declaration: since Go gives no way to turn a
// func value back into its source, the call site is found via
// runtime.Caller and re-parsed with go/parser. Skip depth is fixed at
// 2 because this is always called directly from a queryable.Builder
// chain method (Filter, Map, OrderBy, OrderByDescending), which is in
// turn always called directly from application code — 0 is this
// function's own frame, 1 is the builder method, 2 is the caller that
// wrote the literal.
func CaptureCallerSource(methodNames ...string) (string, error) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "", errf("could not determine call site for callback capture")
	}

	fset := token.NewFileSet()
	astFile, err := parser.ParseFile(fset, file, nil, 0)
	if err != nil {
		return "", errf("parsing %s: %v", file, err)
	}

	var found *ast.FuncLit
	ast.Inspect(astFile, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok || !containsName(methodNames, sel.Sel.Name) {
			return true
		}
		// call.Pos() delegates to call.Fun.Pos(), which for a fluent
		// chain resolves all the way down to the receiver at the head
		// of the chain, not the line this particular method sits on.
		// The method name itself (sel.Sel) is what runtime.Caller
		// reports, so match against that instead.
		if fset.Position(sel.Sel.Pos()).Line != line {
			return true
		}
		for _, arg := range call.Args {
			if lit, ok := arg.(*ast.FuncLit); ok {
				found = lit
				return false
			}
		}
		return true
	})
	if found == nil {
		return "", errf("%s:%d: no inline function literal argument found for %v", file, line, methodNames)
	}

	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, found); err != nil {
		return "", errf("rendering callback source: %v", err)
	}
	return buf.String(), nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
