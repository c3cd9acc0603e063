package render_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/panelkit/flyout/core/convention"
	"github.com/panelkit/flyout/core/render"
	"github.com/panelkit/flyout/core/schema"
	"github.com/panelkit/flyout/core/search"
)

func normalize(t *testing.T, decls []schema.Declaration, opts ...convention.Option) []convention.Field {
	t.Helper()
	n, err := convention.Normalize(decls, opts...)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return n.Fields
}

func newRenderer(dir *stubDirectory) *render.Renderer {
	var cb *search.Callbacks
	if dir != nil {
		cb = search.New(dir)
	}
	return render.New(cb, zerolog.Nop())
}

// stubDirectory records hydration calls.
type stubDirectory struct {
	labels     map[string]string
	lastIDs    []string
	lastTerm   string
	lastMethod string
}

func (d *stubDirectory) Search(_ context.Context, kind, target, term string) (map[string]string, error) {
	d.lastMethod, d.lastTerm = "search", term
	return d.labels, nil
}

func (d *stubDirectory) Labels(_ context.Context, kind, target string, ids []string) (map[string]string, error) {
	d.lastMethod, d.lastIDs = "labels", ids
	return d.labels, nil
}

func TestRender_DeclarationOrder(t *testing.T) {
	fields := normalize(t, []schema.Declaration{
		{Key: "zeta", Type: schema.TypeText},
		{Key: "alpha", Type: schema.TypeText},
	})

	html, err := newRenderer(nil).Render(context.Background(), fields, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := string(html)
	if strings.Index(s, `data-key="zeta"`) > strings.Index(s, `data-key="alpha"`) {
		t.Error("fields rendered out of declaration order")
	}
}

func TestRender_ValuePrecedence(t *testing.T) {
	fields := normalize(t, []schema.Declaration{
		{Key: "explicit", Type: schema.TypeText, Value: "declared"},
		{Key: "resolved", Type: schema.TypeText, Default: "fallback"},
		{Key: "defaulted", Type: schema.TypeText, Default: "fallback"},
	})

	source := map[string]any{
		"explicit": "from-source",
		"resolved": "from-source",
	}

	html, err := newRenderer(nil).Render(context.Background(), fields, source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := string(html)
	if !strings.Contains(s, `value="declared"`) {
		t.Error("explicit value must win over the source")
	}
	if !strings.Contains(s, `value="from-source"`) {
		t.Error("resolved value missing")
	}
	if !strings.Contains(s, `value="fallback"`) {
		t.Error("default must apply when resolution misses")
	}
}

func TestRender_DependentWrapper(t *testing.T) {
	fields := normalize(t, []schema.Declaration{
		{Key: "gate", Type: schema.TypeToggle},
		{Key: "amount", Type: schema.TypeNumber, DependsOn: map[string]any{"gate": "1"}},
	})

	html, err := newRenderer(nil).Render(context.Background(), fields, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(html)

	if !strings.Contains(s, "flyout-dependent") {
		t.Error("dependent field missing flyout-dependent class")
	}
	if !strings.Contains(s, `style="display:none"`) {
		t.Error("dependent field must render initially hidden")
	}
	if !strings.Contains(s, "data-deps=") {
		t.Error("dependency metadata not embedded")
	}
	// The serialized rule must carry the canonical triple fields.
	if !strings.Contains(s, "&#34;field&#34;:&#34;gate&#34;") {
		t.Errorf("serialized rule missing field reference: %s", s)
	}
}

func TestRender_UnconditionalFieldNotHidden(t *testing.T) {
	fields := normalize(t, []schema.Declaration{
		{Key: "title", Type: schema.TypeText},
	})

	html, err := newRenderer(nil).Render(context.Background(), fields, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(html), "display:none") {
		t.Error("unconditional field must not be hidden")
	}
}

func TestRender_WhenAttribute(t *testing.T) {
	fields := normalize(t, []schema.Declaration{
		{Key: "qty", Type: schema.TypeNumber},
		{Key: "warning", Type: schema.TypeHTML, When: "float(qty) > 10"},
	})

	html, err := newRenderer(nil).Render(context.Background(), fields, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(html), `data-when="float(qty) &gt; 10"`) {
		t.Errorf("when expression not embedded: %s", html)
	}
}

// The initial visibility of a rule-governed field is decided here, against
// the resolved values, so the client never shows a field the server would
// hide and clear on submit.
func TestRender_WhenDecidesInitialVisibility(t *testing.T) {
	fields := normalize(t, []schema.Declaration{
		{Key: "a", Type: schema.TypeText},
		{Key: "b", Type: schema.TypeText, When: `a == "x"`},
	})

	html, err := newRenderer(nil).Render(context.Background(), fields, map[string]any{"a": "y", "b": "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(html), `style="display:none"`) {
		t.Errorf("unsatisfied expression must render hidden: %s", html)
	}

	html, err = newRenderer(nil).Render(context.Background(), fields, map[string]any{"a": "x", "b": "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(html), "display:none") {
		t.Errorf("satisfied expression must render visible: %s", html)
	}
}

func TestRender_SatisfiedConditionRenderedVisible(t *testing.T) {
	fields := normalize(t, []schema.Declaration{
		{Key: "gate", Type: schema.TypeToggle},
		{Key: "amount", Type: schema.TypeNumber, DependsOn: map[string]any{"gate": "1"}},
	})

	html, err := newRenderer(nil).Render(context.Background(), fields, map[string]any{"gate": "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(html)
	if !strings.Contains(s, "flyout-dependent") {
		t.Error("dependent field missing flyout-dependent class")
	}
	if strings.Contains(s, "display:none") {
		t.Errorf("satisfied rule must render visible: %s", s)
	}
}

// Saved ajax_select values hydrate through the search callback with an empty
// term and the saved ids, so options carry labels instead of bare IDs.
func TestRender_AjaxSelectHydration(t *testing.T) {
	dir := &stubDirectory{labels: map[string]string{"3": "Blue Shirt", "7": "Red Hat"}}

	fields := normalize(t, []schema.Declaration{
		{Key: "related", Type: schema.TypePost, Target: "product", Multiple: true},
	})

	source := map[string]any{"related": []string{"3", "7"}}
	html, err := newRenderer(dir).Render(context.Background(), fields, source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir.lastMethod != "labels" {
		t.Errorf("hydration must use label lookup, got %q", dir.lastMethod)
	}
	if len(dir.lastIDs) != 2 {
		t.Errorf("hydrated ids = %v", dir.lastIDs)
	}

	s := string(html)
	if !strings.Contains(s, `<option value="3" selected>Blue Shirt</option>`) {
		t.Errorf("hydrated option missing: %s", s)
	}
	if !strings.Contains(s, `data-search-kind="post"`) || !strings.Contains(s, `data-search-target="product"`) {
		t.Error("search metadata missing from ajax select")
	}
	if !strings.Contains(s, `name="related[]"`) {
		t.Error("multi-select must submit under a bracketed name")
	}
}

func TestRender_AjaxSelectNoValuesSkipsHydration(t *testing.T) {
	dir := &stubDirectory{labels: map[string]string{}}

	fields := normalize(t, []schema.Declaration{
		{Key: "related", Type: schema.TypePost, Target: "product"},
	})

	_, err := newRenderer(dir).Render(context.Background(), fields, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir.lastMethod != "" {
		t.Errorf("no saved values, directory must not be called; got %q", dir.lastMethod)
	}
}

func TestRender_CustomTypeOverlay(t *testing.T) {
	r := newRenderer(nil)
	r.RegisterType("star_rating", func(_ context.Context, f convention.Field, value any) (string, error) {
		s, _ := value.(string)
		return `<span class="stars">` + s + `</span>`, nil
	})

	fields := normalize(t,
		[]schema.Declaration{{Key: "rating", Type: "star_rating", Value: "4"}},
		convention.WithTypes("star_rating"),
	)

	html, err := r.Render(context.Background(), fields, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(html), `<span class="stars">4</span>`) {
		t.Errorf("custom renderer not dispatched: %s", html)
	}
}

func TestRender_EscapesValues(t *testing.T) {
	fields := normalize(t, []schema.Declaration{
		{Key: "title", Type: schema.TypeText, Value: `"><script>`},
	})

	html, err := newRenderer(nil).Render(context.Background(), fields, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(html), "<script>") {
		t.Error("value not escaped")
	}
}

func TestRender_PriceFromStoredCents(t *testing.T) {
	fields := normalize(t, []schema.Declaration{
		{Key: "price", Type: schema.TypePrice},
	})

	source := map[string]any{"price": map[string]any{
		"amount":   int64(1999),
		"currency": "USD",
		"interval": "month",
	}}

	html, err := newRenderer(nil).Render(context.Background(), fields, source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := string(html)
	if !strings.Contains(s, `name="price[amount]" value="19.99"`) {
		t.Errorf("stored cents must render as decimal: %s", s)
	}
	if !strings.Contains(s, `name="price[currency]" value="USD"`) {
		t.Errorf("currency missing: %s", s)
	}
}

func TestKnown(t *testing.T) {
	r := newRenderer(nil)

	if !r.Known(schema.TypeText) {
		t.Error("built-in type must be known")
	}
	if r.Known(schema.TypePost) {
		t.Error("derivative types are rewritten before render and must not be known")
	}
	if r.Known("star_rating") {
		t.Error("unregistered custom type must not be known")
	}

	r.RegisterType("star_rating", func(context.Context, convention.Field, any) (string, error) {
		return "", nil
	})
	if !r.Known("star_rating") {
		t.Error("registered custom type must be known")
	}
}
