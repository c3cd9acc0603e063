package rule

import (
	"fmt"
	"strconv"
	"strings"
)

// Evaluate reports whether every condition in the list is satisfied by the
// form state. An empty condition list is vacuously true. Evaluation is pure:
// the same state always yields the same result.
func Evaluate(conds []Condition, state FormState) bool {
	for _, c := range conds {
		if !satisfies(c, state.Get(c.Field)) {
			return false
		}
	}
	return true
}

// satisfies checks one condition against the current value of its field.
func satisfies(c Condition, current any) bool {
	switch c.Op {
	case OpEq, OpEqAlias:
		return looseEqual(current, c.Value)
	case OpStrictEq:
		return strictEqual(current, c.Value)
	case OpNeq:
		return !looseEqual(current, c.Value)
	case OpStrictNeq:
		return !strictEqual(current, c.Value)
	case OpGt:
		return numericCompare(current, c.Value, func(a, b float64) bool { return a > b })
	case OpGte:
		return numericCompare(current, c.Value, func(a, b float64) bool { return a >= b })
	case OpLt:
		return numericCompare(current, c.Value, func(a, b float64) bool { return a < b })
	case OpLte:
		return numericCompare(current, c.Value, func(a, b float64) bool { return a <= b })
	case OpIn:
		return memberOf(current, c.Value)
	case OpNotIn:
		return !memberOf(current, c.Value)
	case OpContains:
		return containsValue(current, c.Value)
	case OpNotContains:
		return !containsValue(current, c.Value)
	case OpEmpty:
		return isEmpty(current)
	case OpNotEmpty:
		return !isEmpty(current)
	default:
		// Legacy behavior: an unrecognized operator falls back to loose
		// equality rather than failing closed. Kept as-is pending product
		// confirmation; see DESIGN.md.
		return looseEqual(current, c.Value)
	}
}

// looseEqual compares two values with numeric-string tolerance: "5" equals
// 5 and 5.0. nil coerces to the empty string.
func looseEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}

	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}

	return stringify(a) == stringify(b)
}

// strictEqual requires both type class and value to match: a number never
// equals its string form.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	_, aStr := a.(string)
	_, bStr := b.(string)
	if aStr != bStr {
		return false
	}
	if aStr {
		return a.(string) == b.(string)
	}

	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return stringify(a) == stringify(b)
}

func numericCompare(a, b any, cmp func(x, y float64) bool) bool {
	// Both sides coerce to float; anything non-numeric coerces to 0.
	af, _ := toFloat(a)
	bf, _ := toFloat(b)
	return cmp(af, bf)
}

// memberOf treats expected as a set and reports whether current loosely
// equals any member. A scalar expected value degrades to a one-element set.
func memberOf(current, expected any) bool {
	for _, member := range toList(expected) {
		if looseEqual(current, member) {
			return true
		}
	}
	return false
}

// containsValue: if current is a list, membership check; otherwise substring
// check on the string forms.
func containsValue(current, expected any) bool {
	if list, ok := asList(current); ok {
		for _, member := range list {
			if looseEqual(member, expected) {
				return true
			}
		}
		return false
	}
	return strings.Contains(stringify(current), stringify(expected))
}

// isEmpty reports the rule system's notion of empty: nil, "", the string
// "0", or an empty list. Nothing else counts, matching the client
// evaluator exactly.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == "" || t == "0"
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// toList coerces a value to a list, wrapping scalars.
func toList(v any) []any {
	if list, ok := asList(v); ok {
		return list
	}
	if v == nil {
		return nil
	}
	return []any{v}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case uint:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}
