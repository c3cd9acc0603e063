package render

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/panelkit/flyout/core/convention"
	"github.com/panelkit/flyout/core/schema"
	"github.com/panelkit/flyout/core/search"
)

// renderLabel emits the shared label + description prologue.
func renderLabel(f convention.Field) string {
	var b strings.Builder
	if f.Source.Label != "" {
		b.WriteString(`<label for="` + esc(f.Key) + `">` + esc(f.Source.Label))
		if f.Source.Required {
			b.WriteString(`<span class="required">*</span>`)
		}
		b.WriteString(`</label>`)
	}
	return b.String()
}

func renderDescription(f convention.Field) string {
	if f.Source.Description == "" {
		return ""
	}
	return `<p class="description">` + esc(f.Source.Description) + `</p>`
}

// inputAttrs emits the attributes shared by input-like controls.
func inputAttrs(f convention.Field) string {
	var b strings.Builder
	b.WriteString(` id="` + esc(f.Key) + `" name="` + esc(f.Name) + `"`)
	if f.Source.Placeholder != "" {
		b.WriteString(` placeholder="` + esc(f.Source.Placeholder) + `"`)
	}
	if f.Source.Required {
		b.WriteString(` required`)
	}
	if f.Source.Readonly {
		b.WriteString(` readonly`)
	}
	if f.Source.Disabled {
		b.WriteString(` disabled`)
	}
	return b.String()
}

func renderInput(f convention.Field, value any) string {
	kind := "text"
	switch f.Type {
	case schema.TypeEmail:
		kind = "email"
	case schema.TypeURL:
		kind = "url"
	case schema.TypeNumber:
		kind = "number"
	}

	var b strings.Builder
	b.WriteString(renderLabel(f))
	b.WriteString(`<input type="` + kind + `"` + inputAttrs(f))
	b.WriteString(` value="` + esc(valStr(value)) + `"`)
	if f.Type == schema.TypeNumber {
		if f.Source.Min != "" {
			b.WriteString(` min="` + esc(f.Source.Min) + `"`)
		}
		if f.Source.Max != "" {
			b.WriteString(` max="` + esc(f.Source.Max) + `"`)
		}
		if f.Source.Step != "" {
			b.WriteString(` step="` + esc(f.Source.Step) + `"`)
		}
	}
	b.WriteString(`/>`)
	b.WriteString(renderDescription(f))
	return b.String()
}

func renderHidden(f convention.Field, value any) string {
	return `<input type="hidden" id="` + esc(f.Key) + `" name="` + esc(f.Name) +
		`" value="` + esc(valStr(value)) + `"/>`
}

func renderTextarea(f convention.Field, value any) string {
	var b strings.Builder
	b.WriteString(renderLabel(f))
	b.WriteString(`<textarea` + inputAttrs(f) + `>` + esc(valStr(value)) + `</textarea>`)
	b.WriteString(renderDescription(f))
	return b.String()
}

func renderToggle(f convention.Field, value any) string {
	checked := ""
	if s := valStr(value); s != "" && s != "0" {
		checked = ` checked`
	}

	var b strings.Builder
	b.WriteString(`<label class="flyout-toggle">`)
	b.WriteString(`<input type="checkbox" id="` + esc(f.Key) + `" name="` + esc(f.Name) + `" value="1"` + checked + `/>`)
	b.WriteString(esc(f.Source.Label))
	b.WriteString(`</label>`)
	b.WriteString(renderDescription(f))
	return b.String()
}

func renderRadio(f convention.Field, value any) string {
	current := valStr(value)

	var b strings.Builder
	b.WriteString(renderLabel(f))
	b.WriteString(`<fieldset class="flyout-radio-group">`)
	for i, opt := range f.Source.Options {
		id := f.Key + "_" + strconv.Itoa(i)
		checked := ""
		if opt.Value == current && current != "" {
			checked = ` checked`
		}
		b.WriteString(`<label for="` + esc(id) + `">`)
		b.WriteString(`<input type="radio" id="` + esc(id) + `" name="` + esc(f.Name) +
			`" value="` + esc(opt.Value) + `"` + checked + `/>`)
		b.WriteString(esc(opt.Label))
		b.WriteString(`</label>`)
	}
	b.WriteString(`</fieldset>`)
	b.WriteString(renderDescription(f))
	return b.String()
}

func renderSelect(f convention.Field, value any) string {
	return selectMarkup(f, f.Source.Options, valList(value))
}

// renderAjaxSelect renders a searchable select. Saved values with no
// declared options are hydrated through the field's search callback before
// first paint, so the control never shows bare IDs.
func (r *Renderer) renderAjaxSelect(ctx context.Context, f convention.Field, value any) (string, error) {
	selected := valList(value)
	options := f.Source.Options

	if len(options) == 0 && len(selected) > 0 && r.callbacks != nil {
		fn := r.callbacks.For(f)
		if fn != nil {
			labels, err := search.Hydrate(ctx, fn, selected)
			if err != nil {
				return "", fmt.Errorf("hydrate %q: %w", f.Name, err)
			}
			options = optionsFromLabels(labels)
		}
	}

	var b strings.Builder
	b.WriteString(selectMarkupClass(f, options, selected, "flyout-ajax-select",
		` data-search="1" data-search-kind="`+esc(f.SearchKind)+`" data-search-target="`+esc(f.SearchTarget)+`"`))
	return b.String(), nil
}

func selectMarkup(f convention.Field, options []schema.Option, selected []string) string {
	return selectMarkupClass(f, options, selected, "flyout-select", "")
}

func selectMarkupClass(f convention.Field, options []schema.Option, selected []string, class, extra string) string {
	name := f.Name
	multiple := ""
	if f.Source.Multiple {
		name += "[]"
		multiple = ` multiple`
	}

	isSelected := make(map[string]bool, len(selected))
	for _, s := range selected {
		isSelected[s] = true
	}

	var b strings.Builder
	b.WriteString(renderLabel(f))
	b.WriteString(`<select class="` + class + `" id="` + esc(f.Key) + `" name="` + esc(name) + `"` + multiple + extra)
	if f.Source.Disabled {
		b.WriteString(` disabled`)
	}
	b.WriteString(`>`)
	if !f.Source.Multiple && !f.Source.Required {
		b.WriteString(`<option value=""></option>`)
	}
	for _, opt := range options {
		sel := ""
		if isSelected[opt.Value] {
			sel = ` selected`
		}
		b.WriteString(`<option value="` + esc(opt.Value) + `"` + sel + `>` + esc(opt.Label) + `</option>`)
	}
	b.WriteString(`</select>`)
	b.WriteString(renderDescription(f))
	return b.String()
}

func renderScalarList(f convention.Field, value any) string {
	items := valList(value)

	var b strings.Builder
	b.WriteString(renderLabel(f))
	b.WriteString(`<ul class="flyout-list" data-input="` + esc(f.Name) + `">`)
	for _, item := range items {
		b.WriteString(`<li><input type="text" name="` + esc(f.Name) + `[]" value="` + esc(item) + `"/></li>`)
	}
	b.WriteString(`<li><input type="text" name="` + esc(f.Name) + `[]" value=""/></li>`)
	b.WriteString(`</ul>`)
	b.WriteString(renderDescription(f))
	return b.String()
}

func renderKeyValue(f convention.Field, value any) string {
	rows := keyValuePairs(value)

	var b strings.Builder
	b.WriteString(renderLabel(f))
	b.WriteString(`<table class="flyout-key-value" data-input="` + esc(f.Name) + `"><tbody>`)
	for _, row := range rows {
		b.WriteString(`<tr>`)
		b.WriteString(`<td><input type="text" name="` + esc(f.Name) + `[key][]" value="` + esc(row[0]) + `"/></td>`)
		b.WriteString(`<td><input type="text" name="` + esc(f.Name) + `[value][]" value="` + esc(row[1]) + `"/></td>`)
		b.WriteString(`</tr>`)
	}
	b.WriteString(`<tr>`)
	b.WriteString(`<td><input type="text" name="` + esc(f.Name) + `[key][]" value=""/></td>`)
	b.WriteString(`<td><input type="text" name="` + esc(f.Name) + `[value][]" value=""/></td>`)
	b.WriteString(`</tr>`)
	b.WriteString(`</tbody></table>`)
	b.WriteString(renderDescription(f))
	return b.String()
}

func renderPrice(f convention.Field, value any) string {
	amount, currency, interval := priceParts(value)

	var b strings.Builder
	b.WriteString(renderLabel(f))
	b.WriteString(`<div class="flyout-price">`)
	b.WriteString(`<input type="text" inputmode="decimal" id="` + esc(f.Key) + `" name="` + esc(f.Name) +
		`[amount]" value="` + esc(amount) + `"/>`)
	b.WriteString(`<input type="text" name="` + esc(f.Name) + `[currency]" value="` + esc(currency) + `" maxlength="3"/>`)
	b.WriteString(`<input type="text" name="` + esc(f.Name) + `[interval]" value="` + esc(interval) + `"/>`)
	b.WriteString(`</div>`)
	b.WriteString(renderDescription(f))
	return b.String()
}

// renderHTML emits host-provided markup verbatim. The host owns escaping
// for this display type.
func renderHTML(f convention.Field, value any) string {
	return valStr(value)
}

func renderHeading(f convention.Field, value any) string {
	text := f.Source.Label
	if text == "" {
		text = valStr(value)
	}
	return `<h3 class="flyout-heading">` + esc(text) + `</h3>`
}

// optionsFromLabels converts a hydration result into options sorted by
// label for stable output.
func optionsFromLabels(labels map[string]string) []schema.Option {
	out := make([]schema.Option, 0, len(labels))
	for id, label := range labels {
		out = append(out, schema.Option{Value: id, Label: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// valStr coerces a resolved value to its scalar string form.
func valStr(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []string:
		if len(t) == 0 {
			return ""
		}
		return t[0]
	default:
		return fmt.Sprintf("%v", v)
	}
}

// valList coerces a resolved value to a list of scalar strings.
func valList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, valStr(item))
		}
		return out
	case []int:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, strconv.Itoa(item))
		}
		return out
	default:
		if s := valStr(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

// keyValuePairs coerces structured key-value data into [key, value] rows.
func keyValuePairs(v any) [][2]string {
	switch t := v.(type) {
	case map[string]string:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([][2]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, [2]string{k, t[k]})
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([][2]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, [2]string{k, valStr(t[k])})
		}
		return out
	case []any:
		var out [][2]string
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, [2]string{valStr(m["key"]), valStr(m["value"])})
			}
		}
		return out
	default:
		return nil
	}
}

// priceParts splits a stored price value into its form inputs. Stored
// amounts are integer cents.
func priceParts(v any) (amount, currency, interval string) {
	switch t := v.(type) {
	case nil:
		return "", "", ""
	case map[string]any:
		return centsToDecimal(t["amount"]), valStr(t["currency"]), valStr(t["interval"])
	case int64:
		return centsToDecimal(t), "", ""
	case int:
		return centsToDecimal(t), "", ""
	case float64:
		return centsToDecimal(t), "", ""
	case string:
		return t, "", ""
	default:
		return valStr(v), "", ""
	}
}

func centsToDecimal(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatFloat(float64(t)/100, 'f', 2, 64)
	case int:
		return strconv.FormatFloat(float64(t)/100, 'f', 2, 64)
	case float64:
		return strconv.FormatFloat(t/100, 'f', 2, 64)
	case string:
		return t
	default:
		return ""
	}
}
