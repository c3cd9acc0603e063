package rule

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// When is a compiled form-state expression. It is the escape hatch for
// conditions the triple operators cannot express (arithmetic, cross-field
// comparison). Compiled once at normalization time, evaluated on every pass.
type When struct {
	source  string
	program *vm.Program
	refs    []string
}

// CompileWhen compiles an expression against an open form-state
// environment. Field names are plain identifiers in the expression, e.g.
//
//	discount_type == "percentage" && float(discount_amount) > 10
func CompileWhen(expression string) (*When, error) {
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile when %q: %w", expression, err)
	}

	refs, err := identifiers(expression)
	if err != nil {
		return nil, fmt.Errorf("compile when %q: %w", expression, err)
	}

	return &When{source: expression, program: program, refs: refs}, nil
}

// Eval runs the expression against the form state and coerces the result
// to a boolean.
func (w *When) Eval(state FormState) (bool, error) {
	env := make(map[string]any, len(state))
	for k, v := range state {
		env[k] = v
	}

	out, err := expr.Run(w.program, env)
	if err != nil {
		return false, fmt.Errorf("eval when %q: %w", w.source, err)
	}

	return truthy(out), nil
}

// Refs returns the field names the expression reads.
func (w *When) Refs() []string {
	return w.refs
}

// Source returns the original expression text.
func (w *When) Source() string {
	return w.source
}

// identifiers collects the variable names referenced by an expression.
// Call callees (builtins like float, len) are not variables and are
// excluded.
func identifiers(expression string) ([]string, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, err
	}

	v := &identVisitor{seen: make(map[string]bool), callees: make(map[string]bool)}
	ast.Walk(&tree.Node, v)

	var names []string
	for _, name := range v.order {
		if !v.callees[name] {
			names = append(names, name)
		}
	}
	return names, nil
}

type identVisitor struct {
	seen    map[string]bool
	callees map[string]bool
	order   []string
}

func (v *identVisitor) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.CallNode:
		if ident, ok := n.Callee.(*ast.IdentifierNode); ok {
			v.callees[ident.Value] = true
		}
	case *ast.IdentifierNode:
		if !v.seen[n.Value] {
			v.seen[n.Value] = true
			v.order = append(v.order, n.Value)
		}
	}
}

// truthy coerces an expression result to the rule system's notion of truth.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	case string:
		return t != "" && t != "0"
	default:
		if f, ok := toFloat(v); ok {
			return f != 0
		}
		return !isEmpty(v)
	}
}
