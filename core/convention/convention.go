// Package convention expands shorthand field declarations into fully
// normalized fields: keys and names defaulted, derivative types rewritten,
// rules parsed into canonical conditions, and the dependency index built.
// Normalization runs once per registration; malformed declarations fail
// loudly here because they are programming mistakes, not user input.
package convention

import (
	"fmt"
	"strconv"

	"github.com/panelkit/flyout/core/rule"
	"github.com/panelkit/flyout/core/schema"
)

// Field is a fully-normalized field.
type Field struct {
	// Key is the registration/render identifier, unique within the panel.
	Key string

	// Name is the data-binding key used for value resolution and
	// sanitized-output assembly. Two fields share a name only when
	// intentionally aliasing the same data.
	Name string

	// Type is the resolved type. Derivative shortcuts are already
	// rewritten to ajax_select by the time this is set.
	Type schema.FieldType

	// Kind classifies submitted-data extraction for this field.
	Kind rule.InputKind

	// Conditions is the parsed visibility rule, nil when unconditional.
	Conditions []rule.Condition

	// When is the optional compiled expression rule.
	When *rule.When

	// SearchKind records the original derivative type ("post", "taxonomy",
	// "user") for fields rewritten to ajax_select, empty otherwise.
	SearchKind string

	// SearchTarget is the declared post type, taxonomy or role the
	// built-in search is scoped to.
	SearchTarget string

	// DataField is the resolver key for a component's structured data.
	DataField string

	// Source is the declaration with defaults applied; renderers and
	// sanitizers read type-specific attributes from it.
	Source schema.Declaration
}

// Dependent reports whether the field has a visibility rule.
func (f Field) Dependent() bool {
	return len(f.Conditions) > 0 || f.When != nil
}

// Rule returns the field's visibility rule in the evaluator's shape.
func (f Field) Rule() rule.Dependent {
	return rule.Dependent{
		Name:       f.Name,
		Kind:       f.Kind,
		Conditions: f.Conditions,
		When:       f.When,
	}
}

// Normalized is the fully-expanded form of a panel's field list.
type Normalized struct {
	// Fields in declaration order.
	Fields []Field

	// Dependents holds the rule view of every conditional field, in
	// declaration order.
	Dependents []rule.Dependent

	// Index maps field names to the dependents their changes affect.
	Index *rule.Index

	// Kinds maps field names to their input kinds for form-state
	// extraction.
	Kinds map[string]rule.InputKind
}

// Option adjusts normalization.
type Option func(*options)

type options struct {
	extraTypes map[schema.FieldType]bool
}

// WithTypes allows host-registered custom types to pass the unknown-type
// check.
func WithTypes(types ...schema.FieldType) Option {
	return func(o *options) {
		for _, t := range types {
			o.extraTypes[t] = true
		}
	}
}

// Normalize expands a declaration list into normalized fields. Declaration
// order is preserved exactly: it is significant for layout.
func Normalize(decls []schema.Declaration, opts ...Option) (Normalized, error) {
	o := &options{extraTypes: make(map[schema.FieldType]bool)}
	for _, opt := range opts {
		opt(o)
	}

	n := Normalized{
		Fields: make([]Field, 0, len(decls)),
		Kinds:  make(map[string]rule.InputKind, len(decls)),
	}

	seenKeys := make(map[string]bool, len(decls))

	for i, d := range decls {
		if !schema.Builtin(d.Type) && !o.extraTypes[d.Type] {
			return Normalized{}, fmt.Errorf("field %q: unknown type %q", keyOrIndex(d, i), d.Type)
		}

		f := Field{Source: d}

		f.Key = normalizeKey(d, i, seenKeys)
		seenKeys[f.Key] = true
		f.Source.Key = f.Key

		f.Name = d.Name
		if f.Name == "" {
			f.Name = f.Key
		}
		f.Source.Name = f.Name

		f.Type = d.Type
		if schema.Derivative(d.Type) {
			// Rewrite to the generic searchable select, keeping every
			// other declared attribute.
			f.Type = schema.TypeAjaxSelect
			f.SearchKind = string(d.Type)
			f.SearchTarget = d.Target
			f.Source.Type = schema.TypeAjaxSelect
		}

		f.DataField = d.DataField
		if f.DataField == "" {
			f.DataField = f.Name
		}

		f.Kind = inputKind(f.Type, d)

		if d.DependsOn != nil {
			conds, err := rule.Parse(d.DependsOn)
			if err != nil {
				return Normalized{}, fmt.Errorf("field %q: %w", f.Key, err)
			}
			f.Conditions = conds
		}

		if d.When != "" {
			w, err := rule.CompileWhen(d.When)
			if err != nil {
				return Normalized{}, fmt.Errorf("field %q: %w", f.Key, err)
			}
			f.When = w
		}

		n.Fields = append(n.Fields, f)
	}

	if err := checkRuleTargets(n.Fields); err != nil {
		return Normalized{}, err
	}

	for _, f := range n.Fields {
		n.Kinds[f.Name] = f.Kind
		if f.Dependent() {
			n.Dependents = append(n.Dependents, f.Rule())
		}
	}

	n.Index = rule.BuildIndex(n.Dependents)

	return n, nil
}

// normalizeKey replaces numeric/positional keys: declarations built
// programmatically with list semantics would otherwise collide. The name
// wins when present; a synthesized field_{index} key is the fallback, made
// unique against earlier keys.
func normalizeKey(d schema.Declaration, index int, seen map[string]bool) string {
	key := d.Key
	if key == "" || isNumeric(key) {
		if d.Name != "" {
			key = d.Name
		} else {
			key = "field_" + strconv.Itoa(index)
		}
	}

	base := key
	for n := 2; seen[key]; n++ {
		key = base + "_" + strconv.Itoa(n)
	}

	return key
}

// checkRuleTargets verifies every rule references a declared field name.
func checkRuleTargets(fields []Field) error {
	names := make(map[string]bool, len(fields))
	for _, f := range fields {
		names[f.Name] = true
	}

	for _, f := range fields {
		for _, target := range rule.Fields(f.Conditions) {
			if !names[target] {
				return fmt.Errorf("field %q: rule references unknown field %q", f.Key, target)
			}
		}
		if f.When != nil {
			for _, target := range f.When.Refs() {
				if !names[target] {
					return fmt.Errorf("field %q: when expression references unknown field %q", f.Key, target)
				}
			}
		}
	}

	return nil
}

// inputKind classifies a field for form-state extraction.
func inputKind(t schema.FieldType, d schema.Declaration) rule.InputKind {
	switch t {
	case schema.TypeToggle:
		return rule.KindToggle
	case schema.TypeRadio:
		return rule.KindChoice
	case schema.TypeTags, schema.TypeFeatureList, schema.TypeKeyValue:
		return rule.KindMulti
	case schema.TypeSelect, schema.TypeAjaxSelect:
		if d.Multiple {
			return rule.KindMulti
		}
		return rule.KindScalar
	default:
		return rule.KindScalar
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func keyOrIndex(d schema.Declaration, i int) string {
	if d.Key != "" {
		return d.Key
	}
	return strconv.Itoa(i)
}
