// Package resolve locates a field's current value in an arbitrary data
// source. Sources advertise capabilities through small interfaces; an
// ordered strategy list tries each capability in a fixed priority order, so
// the lookup contract is explicit rather than reflective.
package resolve

import "strings"

// DataProvider exposes per-field loader callables. It is the highest
// priority capability: a source that provides a thunk for a name wins over
// every other strategy, regardless of what those would return.
type DataProvider interface {
	// FieldData returns a thunk producing the value for name, and whether
	// one exists.
	FieldData(name string) (func() any, bool)
}

// Getter exposes named getters (the get_{name} form).
type Getter interface {
	Get(name string) (any, bool)
}

// Attributer exposes plain attributes/properties.
type Attributer interface {
	Attr(name string) (any, bool)
}

// Methoder exposes named callables. It is consulted last, first with the
// declared name and then, for underscored names, with the camelCase form.
type Methoder interface {
	Method(name string) (func() any, bool)
}

// Strategy is one resolution attempt against a source.
type Strategy func(source any, name string) (any, bool)

// Strategies returns the default ordered strategy list. First match wins.
func Strategies() []Strategy {
	return []Strategy{
		fromDataProvider,
		fromMap,
		fromGetter,
		fromAttribute,
		fromMethod,
		fromCamelMethod,
	}
}

// Resolve returns the field's current value from the source, or nil when no
// strategy matches. The source is never mutated. Panics raised inside
// caller-supplied thunks propagate: they indicate a bug in the host's load
// callback and must surface as a load failure, not a silent default.
func Resolve(source any, name string) any {
	for _, s := range Strategies() {
		if v, ok := s(source, name); ok {
			return v
		}
	}
	return nil
}

func fromDataProvider(source any, name string) (any, bool) {
	p, ok := source.(DataProvider)
	if !ok {
		return nil, false
	}
	thunk, ok := p.FieldData(name)
	if !ok {
		return nil, false
	}
	return thunk(), true
}

func fromMap(source any, name string) (any, bool) {
	m, ok := source.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[name]
	return v, ok
}

func fromGetter(source any, name string) (any, bool) {
	g, ok := source.(Getter)
	if !ok {
		return nil, false
	}
	return g.Get(name)
}

func fromAttribute(source any, name string) (any, bool) {
	a, ok := source.(Attributer)
	if !ok {
		return nil, false
	}
	return a.Attr(name)
}

func fromMethod(source any, name string) (any, bool) {
	m, ok := source.(Methoder)
	if !ok {
		return nil, false
	}
	thunk, ok := m.Method(name)
	if !ok {
		return nil, false
	}
	return thunk(), true
}

func fromCamelMethod(source any, name string) (any, bool) {
	if !strings.Contains(name, "_") {
		return nil, false
	}
	return fromMethod(source, CamelCase(name))
}

// CamelCase converts an underscored name to its camelCase form:
// user_name → userName.
func CamelCase(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
