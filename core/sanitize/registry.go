// Package sanitize maps raw submitted values to clean, typed, persist-ready
// values. Sanitizers are pure and total: malformed input degrades to the
// type's empty value so one bad field can never abort a form save.
package sanitize

import (
	"sync"

	"github.com/panelkit/flyout/core/convention"
	"github.com/panelkit/flyout/core/schema"
)

// Registry holds sanitizers keyed by type name. Field types and component
// types share the namespace, so a caller can override either uniformly.
// Construct one per rendering service; there is no process-wide registry.
type Registry struct {
	mu  sync.RWMutex
	fns map[schema.FieldType]schema.SanitizerFunc
}

// NewRegistry returns a registry pre-loaded with the built-in sanitizers.
func NewRegistry() *Registry {
	r := &Registry{fns: make(map[schema.FieldType]schema.SanitizerFunc)}

	r.Register(schema.TypeText, Text)
	r.Register(schema.TypeHidden, Text)
	r.Register(schema.TypeTextarea, Textarea)
	r.Register(schema.TypeEmail, Email)
	r.Register(schema.TypeURL, URL)
	r.Register(schema.TypeNumber, Number)
	r.Register(schema.TypeToggle, Toggle)
	r.Register(schema.TypeRadio, Choice)
	r.Register(schema.TypeSelect, Choice)
	r.Register(schema.TypeAjaxSelect, IDList)
	r.Register(schema.TypeTags, ScalarList)
	r.Register(schema.TypeFeatureList, ScalarList)
	r.Register(schema.TypeKeyValue, KeyValueList)
	r.Register(schema.TypePrice, Price)

	return r
}

// Register adds or replaces the sanitizer for a type. Registrations are
// expected during initialization, before form submissions flow.
func (r *Registry) Register(t schema.FieldType, fn schema.SanitizerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns[t] = fn
}

// Sanitize cleans one raw value using the type's sanitizer. Unregistered
// types degrade to text sanitization.
func (r *Registry) Sanitize(t schema.FieldType, raw any, field schema.Declaration) any {
	r.mu.RLock()
	fn, ok := r.fns[t]
	r.mu.RUnlock()

	if !ok {
		return Text(raw, field)
	}
	return fn(raw, field)
}

// SanitizeForm cleans a raw submitted map against a normalized field list.
// Iteration is over the declared fields, not the raw map: undeclared keys
// are dropped (default-deny), and declared-but-absent fields resolve to the
// sanitizer's empty value. Display-only fields produce no output.
func (r *Registry) SanitizeForm(raw map[string]any, fields []convention.Field) map[string]any {
	clean := make(map[string]any, len(fields))

	for _, f := range fields {
		if schema.Display(f.Type) {
			continue
		}

		value := raw[f.Name]

		if f.Source.Sanitizer != nil {
			clean[f.Name] = f.Source.Sanitizer(value, f.Source)
			continue
		}

		clean[f.Name] = r.Sanitize(f.Type, value, f.Source)
	}

	return clean
}
