// Package search wires searchable-select fields to their label sources:
// the host's per-field callback when declared, or a built-in callback
// parameterized by the field's derivative kind and target.
package search

import (
	"context"
	"fmt"

	"github.com/panelkit/flyout/core/convention"
	"github.com/panelkit/flyout/core/schema"
	"github.com/panelkit/flyout/ports"
)

// Callbacks resolves the search function for a field.
type Callbacks struct {
	dir ports.Directory
}

// New creates the callback resolver. dir may be nil when no panel uses
// derivative field types.
func New(dir ports.Directory) *Callbacks {
	return &Callbacks{dir: dir}
}

// For returns the search callback for a field: the declared override wins,
// then the built-in directory search for rewritten derivative types.
// Returns nil for fields that are not searchable.
func (c *Callbacks) For(field convention.Field) schema.SearchFunc {
	if field.Source.Search != nil {
		return field.Source.Search
	}

	if field.SearchKind == "" {
		return nil
	}

	kind, target := field.SearchKind, field.SearchTarget
	return func(ctx context.Context, term string, ids []string) (map[string]string, error) {
		if c.dir == nil {
			return nil, fmt.Errorf("search %s/%s: no directory configured", kind, target)
		}
		if ids != nil {
			return c.dir.Labels(ctx, kind, target, ids)
		}
		return c.dir.Search(ctx, kind, target, term)
	}
}

// Hydrate resolves labels for previously saved ID values: the callback is
// invoked with an empty term and the id list, never both. Used at render
// time to populate ajax_select options before first paint.
func Hydrate(ctx context.Context, fn schema.SearchFunc, ids []string) (map[string]string, error) {
	if fn == nil {
		return nil, fmt.Errorf("hydrate: field has no search callback")
	}
	if ids == nil {
		ids = []string{}
	}
	return fn(ctx, "", ids)
}
