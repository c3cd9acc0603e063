// Package rule implements conditional-visibility rules: parsing raw rule
// expressions into canonical condition lists, evaluating them against form
// state, and applying show/hide transitions.
//
// A rule is a conjunction of (field, operator, value) conditions. There is
// no OR primitive; compound OR must be expressed by duplicating fields.
package rule

import (
	"fmt"
)

// Op is a comparison operator in a condition.
type Op string

const (
	OpEq          Op = "="
	OpEqAlias     Op = "=="
	OpStrictEq    Op = "==="
	OpNeq         Op = "!="
	OpStrictNeq   Op = "!=="
	OpGt          Op = ">"
	OpGte         Op = ">="
	OpLt          Op = "<"
	OpLte         Op = "<="
	OpIn          Op = "in"
	OpNotIn       Op = "not_in"
	OpContains    Op = "contains"
	OpNotContains Op = "not_contains"
	OpEmpty       Op = "empty"
	OpNotEmpty    Op = "not_empty"
)

// Condition is one (field, operator, value) triple.
type Condition struct {
	Field string `json:"field" yaml:"field"`
	Op    Op     `json:"op" yaml:"op"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Parse converts a raw rule expression into its canonical ordered condition
// list. Accepted forms:
//
//	"other_field"                      → [{other_field not_empty}]
//	{field: value, ...}                → equality condition per pair, ANDed
//	{field: f, op: o, value: v}        → single condition
//	[{field, op, value}, ...]          → ordered condition list
//
// Parse is called once per field at normalization time.
func Parse(raw any) ([]Condition, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil

	case string:
		if v == "" {
			return nil, fmt.Errorf("rule: empty field name")
		}
		return []Condition{{Field: v, Op: OpNotEmpty}}, nil

	case Condition:
		return parseOne(map[string]any{"field": v.Field, "op": string(v.Op), "value": v.Value})

	case []Condition:
		out := make([]Condition, 0, len(v))
		for _, c := range v {
			parsed, err := parseOne(map[string]any{"field": c.Field, "op": string(c.Op), "value": c.Value})
			if err != nil {
				return nil, err
			}
			out = append(out, parsed...)
		}
		return out, nil

	case map[string]any:
		return parseMap(v)

	case []any:
		out := make([]Condition, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("rule: condition %d: expected a map, got %T", i, item)
			}
			conds, err := parseOne(m)
			if err != nil {
				return nil, fmt.Errorf("rule: condition %d: %w", i, err)
			}
			out = append(out, conds...)
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("rule: empty condition list")
		}
		return out, nil

	default:
		return nil, fmt.Errorf("rule: unsupported expression type %T", raw)
	}
}

// parseMap handles both the single-triple form ({field, op, value}) and the
// field→value shorthand map.
func parseMap(m map[string]any) ([]Condition, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("rule: empty map")
	}

	if isTriple(m) {
		return parseOne(m)
	}

	// Shorthand: every pair is an equality check. Map iteration order is
	// not significant here since all conditions are ANDed.
	out := make([]Condition, 0, len(m))
	for field, expected := range m {
		out = append(out, Condition{Field: field, Op: OpEq, Value: expected})
	}
	return out, nil
}

// isTriple reports whether a map looks like an explicit {field, op, value}
// condition rather than a field→value shorthand.
func isTriple(m map[string]any) bool {
	if _, ok := m["field"]; !ok {
		return false
	}
	_, hasOp := m["op"]
	_, hasValue := m["value"]
	return hasOp || hasValue
}

func parseOne(m map[string]any) ([]Condition, error) {
	field, _ := m["field"].(string)
	if field == "" {
		return nil, fmt.Errorf("rule: condition is missing a field")
	}

	op := OpEq
	if rawOp, ok := m["op"]; ok {
		s, ok := rawOp.(string)
		if !ok {
			return nil, fmt.Errorf("rule: field %q: operator must be a string, got %T", field, rawOp)
		}
		op = Op(s)
	}

	return []Condition{{Field: field, Op: op, Value: m["value"]}}, nil
}

// Fields returns the distinct field names a condition list references, in
// first-appearance order.
func Fields(conds []Condition) []string {
	seen := make(map[string]bool, len(conds))
	var out []string
	for _, c := range conds {
		if !seen[c.Field] {
			seen[c.Field] = true
			out = append(out, c.Field)
		}
	}
	return out
}
