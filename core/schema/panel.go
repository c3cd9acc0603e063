// Package schema defines the declarative types for flyout panels.
// A panel is a slide-out form bound to one record's data: an ordered list
// of field declarations plus lifecycle callbacks supplied by the host.
package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Panel is the root definition of a flyout.
type Panel struct {
	// Name identifies the panel (e.g. "edit-product").
	Name string `yaml:"panel"`

	// Title shown in the panel header.
	Title string `yaml:"title,omitempty"`

	// Fields are the declared fields in declaration order.
	Fields FieldList `yaml:"fields"`

	// Meta contains optional metadata.
	Meta PanelMeta `yaml:"meta,omitempty"`
}

// PanelMeta contains optional panel metadata.
type PanelMeta struct {
	Version     string `yaml:"version,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// FieldList is an ordered list of declarations. In YAML it is written as a
// mapping of key→field; declaration order is significant for layout and is
// preserved, which is why a plain map cannot be used.
type FieldList []Declaration

// UnmarshalYAML decodes a YAML mapping into an ordered declaration list,
// filling each Declaration's Key from the mapping key. Numeric keys are
// allowed; the convention package replaces them during normalization.
func (l *FieldList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("fields: expected a mapping, got %s", nodeKind(node))
	}

	out := make(FieldList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]

		var d Declaration
		if err := valNode.Decode(&d); err != nil {
			return fmt.Errorf("field %q: %w", keyNode.Value, err)
		}
		d.Key = keyNode.Value
		out = append(out, d)
	}

	*l = out
	return nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "document"
	}
}

// Parse parses a panel definition from YAML bytes.
func Parse(data []byte) (Panel, error) {
	var p Panel
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Panel{}, fmt.Errorf("parse yaml: %w", err)
	}

	if err := Validate(p); err != nil {
		return Panel{}, fmt.Errorf("validate panel %q: %w", p.Name, err)
	}

	return p, nil
}

// Validate checks the structural shape of a panel definition. Type-level
// checks (unknown type, bad rule target) happen at normalization, where the
// full type table is known.
func Validate(p Panel) error {
	var errs []string

	if p.Name == "" {
		errs = append(errs, "panel name is required")
	}

	if !isValidIdentifier(p.Name) {
		errs = append(errs, fmt.Sprintf("panel name %q is not a valid identifier", p.Name))
	}

	if len(p.Fields) == 0 {
		errs = append(errs, "panel must declare at least one field")
	}

	for _, f := range p.Fields {
		if f.Type == "" {
			errs = append(errs, fmt.Sprintf("field %q: type is required", f.Key))
		}
		if f.Name != "" && !isValidIdentifier(f.Name) {
			errs = append(errs, fmt.Sprintf("field %q: name %q is not a valid identifier", f.Key, f.Name))
		}
		if Derivative(f.Type) && f.Target == "" {
			errs = append(errs, fmt.Sprintf("field %q: %s type requires a target", f.Key, f.Type))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", joinErrs(errs))
	}

	return nil
}

func joinErrs(errs []string) string {
	out := errs[0]
	for _, e := range errs[1:] {
		out += "\n  - " + e
	}
	return out
}

// isValidIdentifier checks if a string is a valid identifier. Panel and
// field names allow dashes in addition to underscores.
func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		if i == 0 {
			if !isLetter(c) && c != '_' {
				return false
			}
		} else {
			if !isLetter(c) && !isDigit(c) && c != '_' && c != '-' {
				return false
			}
		}
	}

	return true
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}
