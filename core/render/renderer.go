// Package render walks a normalized field list and assembles the panel's
// HTML: values resolved, dependency metadata embedded for the client
// evaluator, and each field dispatched to its type's render function.
//
// The built-in types are dispatched exhaustively; hosts extend the set by
// registering render functions for their own type names.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/rs/zerolog"

	"github.com/panelkit/flyout/core/convention"
	"github.com/panelkit/flyout/core/resolve"
	"github.com/panelkit/flyout/core/rule"
	"github.com/panelkit/flyout/core/schema"
	"github.com/panelkit/flyout/core/search"
)

// Func renders one field into HTML body markup (the inside of the field
// wrapper). The resolved value is passed in; render functions never resolve
// values themselves.
type Func func(ctx context.Context, f convention.Field, value any) (string, error)

// Renderer dispatches normalized fields to render functions.
type Renderer struct {
	custom    map[schema.FieldType]Func
	callbacks *search.Callbacks
	logger    zerolog.Logger
}

// New creates a renderer. callbacks supplies search functions for
// ajax_select hydration and may be nil when no panel uses searchable
// selects.
func New(callbacks *search.Callbacks, logger zerolog.Logger) *Renderer {
	return &Renderer{
		custom:    make(map[schema.FieldType]Func),
		callbacks: callbacks,
		logger:    logger,
	}
}

// RegisterType adds or replaces the render function for a type name.
// Host registrations overlay the built-in dispatch.
func (r *Renderer) RegisterType(t schema.FieldType, fn Func) {
	r.custom[t] = fn
}

// Known reports whether the renderer can dispatch a type.
func (r *Renderer) Known(t schema.FieldType) bool {
	if _, ok := r.custom[t]; ok {
		return true
	}
	return schema.Builtin(t) && !schema.Derivative(t)
}

// CustomTypes returns the host-registered type names.
func (r *Renderer) CustomTypes() []schema.FieldType {
	out := make([]schema.FieldType, 0, len(r.custom))
	for t := range r.custom {
		out = append(out, t)
	}
	return out
}

// Render resolves each field's value and concatenates the rendered fields
// in declaration order. Fields with a visibility rule get their initial
// state decided here, against the resolved values: the rule is evaluated
// server-side and the wrapper is hidden only when it fails. The embedded
// metadata lets the client evaluator take over for subsequent edits.
func (r *Renderer) Render(ctx context.Context, fields []convention.Field, source any) (template.HTML, error) {
	values := make([]any, len(fields))
	state := make(rule.FormState, len(fields))
	for i, f := range fields {
		values[i] = r.resolveValue(f, source)
		state[f.Name] = stateValue(f.Kind, values[i])
	}

	var b strings.Builder

	for i, f := range fields {
		body, err := r.dispatch(ctx, f, values[i])
		if err != nil {
			return "", fmt.Errorf("render field %q: %w", f.Key, err)
		}

		hidden := f.Dependent() && !f.Rule().Visible(state)

		wrapper, err := wrapField(f, body, hidden)
		if err != nil {
			return "", fmt.Errorf("render field %q: %w", f.Key, err)
		}

		b.WriteString(wrapper)
	}

	return template.HTML(b.String()), nil
}

// stateValue coerces a resolved value into the form-state shape the rule
// evaluator expects for the field's input kind, matching what a submission
// of the same values would produce.
func stateValue(kind rule.InputKind, value any) any {
	switch kind {
	case rule.KindMulti:
		if list := valList(value); list != nil {
			return list
		}
		return []string{}
	case rule.KindToggle:
		if s := valStr(value); s != "" && s != "0" {
			return "1"
		}
		return "0"
	default:
		if value == nil {
			return nil
		}
		return valStr(value)
	}
}

// resolveValue applies the value precedence: an explicit declared value
// wins, then resolution from the data source by name, then the declared
// default. Components pull structured data through the same chain keyed by
// their data field.
func (r *Renderer) resolveValue(f convention.Field, source any) any {
	if f.Source.Value != nil {
		return f.Source.Value
	}

	name := f.Name
	if schema.Display(f.Type) || f.DataField != f.Name {
		name = f.DataField
	}

	if source != nil {
		if v := resolve.Resolve(source, name); v != nil {
			return v
		}
	}

	return f.Source.Default
}

// dispatch selects the render function: host-registered overlay first,
// then the built-in set.
func (r *Renderer) dispatch(ctx context.Context, f convention.Field, value any) (string, error) {
	if fn, ok := r.custom[f.Type]; ok {
		return fn(ctx, f, value)
	}

	switch f.Type {
	case schema.TypeText, schema.TypeEmail, schema.TypeURL, schema.TypeNumber:
		return renderInput(f, value), nil
	case schema.TypeHidden:
		return renderHidden(f, value), nil
	case schema.TypeTextarea:
		return renderTextarea(f, value), nil
	case schema.TypeToggle:
		return renderToggle(f, value), nil
	case schema.TypeRadio:
		return renderRadio(f, value), nil
	case schema.TypeSelect:
		return renderSelect(f, value), nil
	case schema.TypeAjaxSelect:
		return r.renderAjaxSelect(ctx, f, value)
	case schema.TypeTags, schema.TypeFeatureList:
		return renderScalarList(f, value), nil
	case schema.TypeKeyValue:
		return renderKeyValue(f, value), nil
	case schema.TypePrice:
		return renderPrice(f, value), nil
	case schema.TypeHTML:
		return renderHTML(f, value), nil
	case schema.TypeHeading:
		return renderHeading(f, value), nil
	default:
		return "", fmt.Errorf("no renderer for type %q", f.Type)
	}
}

// wrapField emits the field wrapper with embedded dependency metadata.
func wrapField(f convention.Field, body string, hidden bool) (string, error) {
	var b strings.Builder

	classes := "flyout-field flyout-field-" + string(f.Type)
	style := ""
	if f.Dependent() {
		classes += " flyout-dependent"
	}
	if hidden {
		style = ` style="display:none"`
	}

	b.WriteString(`<div class="` + classes + `"`)
	b.WriteString(` data-key="` + esc(f.Key) + `"`)
	b.WriteString(` data-name="` + esc(f.Name) + `"`)

	if len(f.Conditions) > 0 {
		deps, err := json.Marshal(f.Conditions)
		if err != nil {
			return "", fmt.Errorf("serialize rule: %w", err)
		}
		b.WriteString(` data-deps="` + esc(string(deps)) + `"`)
	}
	if f.When != nil {
		b.WriteString(` data-when="` + esc(f.When.Source()) + `"`)
	}

	b.WriteString(style)
	b.WriteString(`>`)
	b.WriteString(body)
	b.WriteString(`</div>`)

	return b.String(), nil
}

func esc(s string) string {
	return template.HTMLEscapeString(s)
}
