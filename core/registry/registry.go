// Package registry manages panel registration. It normalizes declarations
// at registration time, detects duplicate names, and provides lookup for
// the runtime. Registration failures are loud: a malformed panel is a
// programming mistake, not user input.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/panelkit/flyout/core/convention"
	"github.com/panelkit/flyout/core/schema"
)

// LoadFunc loads the record a panel instance is bound to and returns a data
// source for value resolution (typically a map[string]any or a type
// implementing the resolve capabilities).
type LoadFunc func(ctx context.Context, id string) (any, error)

// SaveFunc persists a sanitized form map.
type SaveFunc func(ctx context.Context, id string, clean map[string]any) error

// DeleteFunc removes the bound record.
type DeleteFunc func(ctx context.Context, id string) error

// ValidateFunc checks a sanitized form map before save. A non-nil error is
// surfaced verbatim to the end user and aborts the save.
type ValidateFunc func(ctx context.Context, clean map[string]any) error

// Callbacks are the host-supplied lifecycle hooks of a panel. Any of them
// may be nil; the service substitutes record-store defaults.
type Callbacks struct {
	Load     LoadFunc
	Save     SaveFunc
	Delete   DeleteFunc
	Validate ValidateFunc
}

// Registration is a registered panel with its normalized field list.
type Registration struct {
	Panel      schema.Panel
	Normalized convention.Normalized
	Callbacks  Callbacks
}

// Registry manages registered panels.
type Registry struct {
	mu     sync.RWMutex
	panels map[string]Registration
}

// New creates a new registry.
func New() *Registry {
	return &Registry{panels: make(map[string]Registration)}
}

// Register validates, normalizes and stores a panel definition. Returns an
// error on duplicate names or malformed declarations. opts are forwarded to
// normalization (e.g. convention.WithTypes for host-registered types).
func (r *Registry) Register(p schema.Panel, cb Callbacks, opts ...convention.Option) error {
	if err := schema.Validate(p); err != nil {
		return fmt.Errorf("register panel %q: %w", p.Name, err)
	}

	normalized, err := convention.Normalize(p.Fields, opts...)
	if err != nil {
		return fmt.Errorf("register panel %q: %w", p.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.panels[p.Name]; exists {
		return fmt.Errorf("panel %q already registered", p.Name)
	}

	r.panels[p.Name] = Registration{Panel: p, Normalized: normalized, Callbacks: cb}
	return nil
}

// Replace re-registers a panel, overwriting any existing registration.
// Used by definition hot reload.
func (r *Registry) Replace(p schema.Panel, cb Callbacks, opts ...convention.Option) error {
	if err := schema.Validate(p); err != nil {
		return fmt.Errorf("replace panel %q: %w", p.Name, err)
	}

	normalized, err := convention.Normalize(p.Fields, opts...)
	if err != nil {
		return fmt.Errorf("replace panel %q: %w", p.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.panels[p.Name] = Registration{Panel: p, Normalized: normalized, Callbacks: cb}
	return nil
}

// Unregister removes a panel from the registry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.panels[name]; !exists {
		return fmt.Errorf("panel %q not registered", name)
	}

	delete(r.panels, name)
	return nil
}

// Get returns a registered panel by name.
func (r *Registry) Get(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.panels[name]
	return reg, ok
}

// List returns all registered panels sorted by name.
func (r *Registry) List() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Registration, 0, len(r.panels))
	for _, reg := range r.panels {
		out = append(out, reg)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Panel.Name < out[j].Panel.Name
	})

	return out
}
