package schema

import "context"

// Declaration describes one field or component as the host declared it,
// before normalization. Shorthand forms (missing name, derivative types,
// string rules) are expanded by the convention package.
type Declaration struct {
	// Key is the registration identifier, unique within a panel.
	// Filled from the map key when declarations are parsed from YAML.
	Key string `yaml:"key,omitempty"`

	// Type selects the renderer and sanitizer. See FieldType constants.
	Type FieldType `yaml:"type"`

	// Name is the data-binding key. Defaults to Key.
	Name string `yaml:"name,omitempty"`

	// Label shown next to the input.
	Label string `yaml:"label,omitempty"`

	// Description shown under the input.
	Description string `yaml:"description,omitempty"`

	// Placeholder for text-like inputs.
	Placeholder string `yaml:"placeholder,omitempty"`

	// Value, when set, skips render-time resolution.
	Value any `yaml:"value,omitempty"`

	// Default used when resolution yields nothing.
	Default any `yaml:"default,omitempty"`

	Required bool `yaml:"required,omitempty"`
	Readonly bool `yaml:"readonly,omitempty"`
	Disabled bool `yaml:"disabled,omitempty"`

	// Options for select/radio/checkbox-group types, declaration order kept.
	Options []Option `yaml:"options,omitempty"`

	// Multiple allows multi-select for select and ajax_select.
	Multiple bool `yaml:"multiple,omitempty"`

	// Min, Max and Step hint numeric fields. A fractional step switches the
	// number sanitizer to float parsing.
	Min  string `yaml:"min,omitempty"`
	Max  string `yaml:"max,omitempty"`
	Step string `yaml:"step,omitempty"`

	// Target parameterizes derivative types: the post type, taxonomy or
	// role the built-in search is scoped to.
	Target string `yaml:"target,omitempty"`

	// DataField names the resolver key a component pulls structured data
	// from. Defaults to Name.
	DataField string `yaml:"data_field,omitempty"`

	// DependsOn is a raw rule expression: a bare field name, a field→value
	// map, a single condition, or a list of conditions.
	DependsOn any `yaml:"depends_on,omitempty"`

	// When is an optional expression evaluated against form state and
	// ANDed with DependsOn.
	When string `yaml:"when,omitempty"`

	// Sanitizer overrides the type's sanitizer when set programmatically.
	Sanitizer SanitizerFunc `yaml:"-"`

	// Search overrides the built-in search callback for ajax_select.
	Search SearchFunc `yaml:"-"`
}

// Option is one choice of a select/radio/checkbox-group field.
type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// SanitizerFunc maps a raw submitted value to a clean, persist-ready value.
// It must be total: malformed input yields the type's empty value.
type SanitizerFunc func(raw any, field Declaration) any

// SearchFunc resolves labels for a searchable select. Exactly one of term
// and ids is set: a non-empty term for user typing, a non-nil id list for
// hydrating previously saved selections.
type SearchFunc func(ctx context.Context, term string, ids []string) (map[string]string, error)

// FieldType tags a field or component kind.
type FieldType string

const (
	// Scalar input types
	TypeText     FieldType = "text"
	TypeTextarea FieldType = "textarea"
	TypeEmail    FieldType = "email"
	TypeURL      FieldType = "url"
	TypeHidden   FieldType = "hidden"
	TypeNumber   FieldType = "number"
	TypeToggle   FieldType = "toggle"

	// Choice types
	TypeRadio      FieldType = "radio"
	TypeSelect     FieldType = "select"
	TypeAjaxSelect FieldType = "ajax_select"

	// List components
	TypeTags        FieldType = "tags"
	TypeFeatureList FieldType = "feature_list"
	TypeKeyValue    FieldType = "key_value"

	// Money/price configuration
	TypePrice FieldType = "price"

	// Display components
	TypeHTML    FieldType = "html"
	TypeHeading FieldType = "heading"

	// Derivative shortcut types, rewritten to ajax_select at normalization.
	TypePost     FieldType = "post"
	TypeTaxonomy FieldType = "taxonomy"
	TypeUser     FieldType = "user"
)

// Builtin reports whether t is one of the built-in types, including the
// derivative shortcuts.
func Builtin(t FieldType) bool {
	switch t {
	case TypeText, TypeTextarea, TypeEmail, TypeURL, TypeHidden, TypeNumber,
		TypeToggle, TypeRadio, TypeSelect, TypeAjaxSelect,
		TypeTags, TypeFeatureList, TypeKeyValue, TypePrice,
		TypeHTML, TypeHeading,
		TypePost, TypeTaxonomy, TypeUser:
		return true
	default:
		return false
	}
}

// Derivative reports whether t is a shortcut type that normalization
// rewrites to ajax_select.
func Derivative(t FieldType) bool {
	return t == TypePost || t == TypeTaxonomy || t == TypeUser
}

// Display reports whether t renders read-only content and takes no input.
func Display(t FieldType) bool {
	return t == TypeHTML || t == TypeHeading
}

// FloatStep reports whether a step hint calls for float parsing.
func FloatStep(step string) bool {
	for _, c := range step {
		if c == '.' {
			return true
		}
	}
	return false
}
