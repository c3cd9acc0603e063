// Package app provides the flyout service: it orchestrates panel
// registration, rendering, form submission and search across the core
// packages, and owns the error taxonomy at the user boundary.
package app

import (
	"context"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/panelkit/flyout/core/convention"
	"github.com/panelkit/flyout/core/registry"
	"github.com/panelkit/flyout/core/render"
	"github.com/panelkit/flyout/core/rule"
	"github.com/panelkit/flyout/core/sanitize"
	"github.com/panelkit/flyout/core/schema"
	"github.com/panelkit/flyout/core/search"
	"github.com/panelkit/flyout/ports"
)

// Metrics records service-level observations. The prometheus adapter
// implements it; tests use the no-op.
type Metrics interface {
	ObserveRender(panel string, d time.Duration)
	ObserveSubmit(panel string, ok bool)
	ObserveSearch(panel string)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveRender(string, time.Duration) {}
func (NopMetrics) ObserveSubmit(string, bool)          {}
func (NopMetrics) ObserveSearch(string)                {}

// Service is the flyout runtime.
type Service struct {
	registry   *registry.Registry
	renderer   *render.Renderer
	sanitizers *sanitize.Registry
	callbacks  *search.Callbacks
	records    ports.RecordStore
	ids        ports.IDGenerator
	clock      ports.Clock
	metrics    Metrics
	logger     zerolog.Logger
}

// Deps contains dependencies for the service.
type Deps struct {
	Records ports.RecordStore // default load/save/delete backend; may be nil
	Dir     ports.Directory   // derivative-type search backend; may be nil
	IDs     ports.IDGenerator // id source for create submissions; may be nil
	Clock   ports.Clock
	Metrics Metrics
	Logger  zerolog.Logger
}

// New creates the service with built-in types and sanitizers loaded.
func New(deps Deps) *Service {
	if deps.Metrics == nil {
		deps.Metrics = NopMetrics{}
	}

	callbacks := search.New(deps.Dir)

	return &Service{
		registry:   registry.New(),
		renderer:   render.New(callbacks, deps.Logger),
		sanitizers: sanitize.NewRegistry(),
		callbacks:  callbacks,
		records:    deps.Records,
		ids:        deps.IDs,
		clock:      deps.Clock,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Sanitizers exposes the service's sanitizer registry for host overrides.
func (s *Service) Sanitizers() *sanitize.Registry {
	return s.sanitizers
}

// RegisterType adds a custom field type: its render function and sanitizer
// share one type name, so overriding either is uniform.
func (s *Service) RegisterType(t schema.FieldType, renderFn render.Func, sanitizeFn schema.SanitizerFunc) {
	s.renderer.RegisterType(t, renderFn)
	if sanitizeFn != nil {
		s.sanitizers.Register(t, sanitizeFn)
	}
}

// Register registers a panel definition. Malformed definitions fail here,
// loudly, before any rendering happens.
func (s *Service) Register(p schema.Panel, cb registry.Callbacks) error {
	err := s.registry.Register(p, cb, convention.WithTypes(s.renderer.CustomTypes()...))
	if err != nil {
		return err
	}

	s.logger.Info().Str("panel", p.Name).Int("fields", len(p.Fields)).Msg("panel registered")
	return nil
}

// Replace re-registers a panel (hot reload).
func (s *Service) Replace(p schema.Panel, cb registry.Callbacks) error {
	return s.registry.Replace(p, cb, convention.WithTypes(s.renderer.CustomTypes()...))
}

// Panels returns the registered panels.
func (s *Service) Panels() []registry.Registration {
	return s.registry.List()
}

// OpenResult is a rendered panel instance.
type OpenResult struct {
	Panel string
	Title string
	HTML  template.HTML
}

// Open loads the record bound to a panel instance and renders the field
// list. Load failures propagate: a failing load callback is surfaced as
// "failed to load", never silently defaulted. Unknown panels and missing
// records wrap ports.ErrNotFound so callers can tell them from render
// failures.
func (s *Service) Open(ctx context.Context, panel, id string) (OpenResult, error) {
	reg, ok := s.registry.Get(panel)
	if !ok {
		return OpenResult{}, fmt.Errorf("panel %q not registered: %w", panel, ports.ErrNotFound)
	}

	start := s.now()

	source, err := s.load(ctx, reg, id)
	if err != nil {
		return OpenResult{}, fmt.Errorf("panel %q: failed to load record %q: %w", panel, id, err)
	}

	html, err := s.renderer.Render(ctx, reg.Normalized.Fields, source)
	if err != nil {
		return OpenResult{}, fmt.Errorf("panel %q: %w", panel, err)
	}

	s.metrics.ObserveRender(panel, s.since(start))

	return OpenResult{Panel: panel, Title: reg.Panel.Title, HTML: html}, nil
}

// Result is the outcome of a submit or delete crossing the user boundary.
// Failures carry the callback's message verbatim.
type Result struct {
	OK      bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

func fail(format string, args ...any) Result {
	return Result{OK: false, Message: fmt.Sprintf(format, args...)}
}

// Submit runs the submission pipeline: decode raw form data, re-evaluate
// visibility rules server-side (hidden fields are cleared, never saved
// stale), sanitize against the declared field list, validate, then persist.
// Sanitization edge cases degrade silently per field; validation and
// persistence failures are returned as user-visible results.
func (s *Service) Submit(ctx context.Context, panel, id string, form url.Values) Result {
	reg, ok := s.registry.Get(panel)
	if !ok {
		return fail("panel %q not registered", panel)
	}

	n := reg.Normalized

	state := rule.StateFromValues(form, n.Kinds)
	visible := rule.Apply(n.Dependents, state)

	raw := DecodeForm(form)
	for name, vis := range visible {
		if !vis {
			// A hidden field never submits stale data: dropping it here
			// makes the sanitizer produce the type's empty value.
			delete(raw, name)
		}
	}

	clean := s.sanitizers.SanitizeForm(raw, n.Fields)

	if reg.Callbacks.Validate != nil {
		if err := reg.Callbacks.Validate(ctx, clean); err != nil {
			s.metrics.ObserveSubmit(panel, false)
			return Result{OK: false, Message: err.Error()}
		}
	}

	// An empty id is a create instance: mint the record id here so the
	// client learns it from the response.
	if id == "" && s.ids != nil {
		id = s.ids.New()
	}

	if err := s.save(ctx, reg, id, clean); err != nil {
		s.metrics.ObserveSubmit(panel, false)
		s.logger.Error().Err(err).Str("panel", panel).Str("id", id).Msg("save failed")
		return Result{OK: false, Message: err.Error()}
	}

	s.metrics.ObserveSubmit(panel, true)

	data := make(map[string]any, len(clean)+1)
	for k, v := range clean {
		data[k] = v
	}
	data["_id"] = id

	return Result{OK: true, Data: data}
}

// Delete removes the record bound to a panel instance.
func (s *Service) Delete(ctx context.Context, panel, id string) Result {
	reg, ok := s.registry.Get(panel)
	if !ok {
		return fail("panel %q not registered", panel)
	}

	var err error
	switch {
	case reg.Callbacks.Delete != nil:
		err = reg.Callbacks.Delete(ctx, id)
	case s.records != nil:
		err = s.records.Delete(ctx, panel, id)
	default:
		err = fmt.Errorf("panel %q has no delete callback", panel)
	}

	if err != nil {
		s.logger.Error().Err(err).Str("panel", panel).Str("id", id).Msg("delete failed")
		return Result{OK: false, Message: err.Error()}
	}

	return Result{OK: true}
}

// Search runs a field's search callback: a non-empty term for typing, a
// non-nil id list for hydration, never both.
func (s *Service) Search(ctx context.Context, panel, fieldKey, term string, ids []string) (map[string]string, error) {
	reg, ok := s.registry.Get(panel)
	if !ok {
		return nil, fmt.Errorf("panel %q not registered", panel)
	}

	var field *convention.Field
	for i := range reg.Normalized.Fields {
		if reg.Normalized.Fields[i].Key == fieldKey {
			field = &reg.Normalized.Fields[i]
			break
		}
	}
	if field == nil {
		return nil, fmt.Errorf("panel %q has no field %q", panel, fieldKey)
	}

	fn := s.callbacks.For(*field)
	if fn == nil {
		return nil, fmt.Errorf("field %q is not searchable", fieldKey)
	}

	s.metrics.ObserveSearch(panel)

	if ids != nil {
		return fn(ctx, "", ids)
	}
	return fn(ctx, term, nil)
}

// load picks the panel's load callback, falling back to the record store.
// A missing record is not an error for a "create" instance (empty id).
func (s *Service) load(ctx context.Context, reg registry.Registration, id string) (any, error) {
	if reg.Callbacks.Load != nil {
		return reg.Callbacks.Load(ctx, id)
	}

	if s.records == nil || id == "" {
		return nil, nil
	}

	data, err := s.records.Get(ctx, reg.Panel.Name, id)
	if err == ports.ErrNotFound {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Service) save(ctx context.Context, reg registry.Registration, id string, clean map[string]any) error {
	if reg.Callbacks.Save != nil {
		return reg.Callbacks.Save(ctx, id, clean)
	}
	if s.records != nil {
		return s.records.Save(ctx, reg.Panel.Name, id, clean)
	}
	return fmt.Errorf("panel %q has no save callback", reg.Panel.Name)
}

func (s *Service) now() time.Time {
	if s.clock != nil {
		return s.clock.Now()
	}
	return time.Now()
}

func (s *Service) since(start time.Time) time.Duration {
	return s.now().Sub(start)
}
