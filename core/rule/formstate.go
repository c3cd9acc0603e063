package rule

import (
	"net/url"
	"strings"
)

// FormState maps field names to their current raw values. Values are either
// a scalar string or a []string for multi-valued inputs. It is rebuilt from
// submitted form data on every evaluation pass and never persisted.
type FormState map[string]any

// Get returns the current value of a field, or nil when absent.
func (s FormState) Get(name string) any {
	v, ok := s[name]
	if !ok {
		return nil
	}
	return v
}

// Set records a field value.
func (s FormState) Set(name string, value any) {
	s[name] = value
}

// Clone returns a shallow copy of the state.
func (s FormState) Clone() FormState {
	out := make(FormState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// InputKind classifies how a field's submitted data is extracted. Getting
// array-vs-scalar semantics right matters: visibility rules on checkbox
// groups see []string, rules on radios and everything else see a scalar.
type InputKind int

const (
	// KindScalar covers text-like inputs and single selects.
	KindScalar InputKind = iota

	// KindMulti covers checkbox groups, multi-selects and list components:
	// the value is the list of checked/selected entries.
	KindMulti

	// KindChoice covers radio groups: the single selected value, or nil
	// when nothing is selected.
	KindChoice

	// KindToggle covers single on/off checkboxes: "1" when checked,
	// "0" otherwise.
	KindToggle
)

// StateFromValues extracts a FormState from posted form values, using the
// per-field input kind to decide array-vs-scalar shape. Multi-valued field
// names may arrive with a trailing "[]" suffix; both spellings are read.
func StateFromValues(vals url.Values, kinds map[string]InputKind) FormState {
	state := make(FormState, len(kinds))

	for name, kind := range kinds {
		raw, ok := lookup(vals, name)

		switch kind {
		case KindMulti:
			if !ok {
				state[name] = []string{}
				continue
			}
			state[name] = raw

		case KindChoice:
			if !ok || len(raw) == 0 {
				state[name] = nil
				continue
			}
			state[name] = raw[0]

		case KindToggle:
			if ok && len(raw) > 0 && raw[0] != "" && raw[0] != "0" {
				state[name] = "1"
			} else {
				state[name] = "0"
			}

		default:
			if !ok || len(raw) == 0 {
				state[name] = nil
				continue
			}
			state[name] = raw[0]
		}
	}

	return state
}

// lookup finds a form value under name or name[].
func lookup(vals url.Values, name string) ([]string, bool) {
	if v, ok := vals[name]; ok {
		return v, true
	}
	if v, ok := vals[name+"[]"]; ok {
		return v, true
	}
	return nil, false
}

// TrimBracket strips a trailing "[]" from a submitted field name.
func TrimBracket(name string) string {
	return strings.TrimSuffix(name, "[]")
}
