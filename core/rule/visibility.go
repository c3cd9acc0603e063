package rule

// Dependent pairs a field with its visibility rule. A field with no
// conditions and no When expression is unconditionally visible and should
// not appear in the dependent list.
type Dependent struct {
	// Name is the field's data-binding name.
	Name string

	// Kind determines how the field's value is cleared on hide.
	Kind InputKind

	// Conditions is the canonical ANDed condition list.
	Conditions []Condition

	// When is an optional compiled expression ANDed with Conditions.
	When *When
}

// Visible evaluates the full rule (conditions ANDed with the When
// expression) for one dependent, without mutating the state.
func (d Dependent) Visible(state FormState) bool {
	if !Evaluate(d.Conditions, state) {
		return false
	}
	if d.When != nil {
		ok, err := d.When.Eval(state)
		if err != nil {
			// A failing expression hides the field rather than leaking an
			// unevaluated one into the form.
			return false
		}
		return ok
	}
	return true
}

// Apply evaluates every dependent field against the state and transitions
// each one to visible-enabled or hidden-disabled-cleared. Hiding clears the
// field's value in the state (destructive: showing it again does not
// restore it). Because clearing one field can change the outcome for
// another, evaluation cascades until no transition occurs, mirroring the
// chain of change events a client-side pass produces.
//
// The returned map holds the final visibility per dependent field name.
func Apply(deps []Dependent, state FormState) map[string]bool {
	visible := make(map[string]bool, len(deps))

	for range deps {
		changed := false

		for _, d := range deps {
			v := d.Visible(state)
			prev, seen := visible[d.Name]
			if !seen || prev != v {
				visible[d.Name] = v
				changed = true
			}
			if !v {
				if clearValue(state, d.Name, d.Kind) {
					changed = true
				}
			}
		}

		if !changed {
			break
		}
	}

	return visible
}

// clearValue resets a hidden field's state value and reports whether the
// state actually changed.
func clearValue(state FormState, name string, kind InputKind) bool {
	switch kind {
	case KindMulti:
		if cur, ok := state[name].([]string); ok && len(cur) == 0 {
			return false
		}
		state[name] = []string{}
	case KindChoice:
		if state[name] == nil {
			return false
		}
		state[name] = nil
	case KindToggle:
		if state[name] == "0" {
			return false
		}
		state[name] = "0"
	default:
		if state[name] == "" {
			return false
		}
		state[name] = ""
	}
	return true
}
