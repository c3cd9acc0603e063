package sanitize

import (
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/panelkit/flyout/core/schema"
)

var (
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	controlPattern = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	spacesPattern  = regexp.MustCompile(`[ \t]+`)
	slugPattern    = regexp.MustCompile(`[^a-z0-9_\-]+`)
)

// Text cleans a scalar text value: markup stripped, control characters
// removed, runs of spaces collapsed, whitespace trimmed.
func Text(raw any, _ schema.Declaration) any {
	s := scalarString(raw)
	s = tagPattern.ReplaceAllString(s, "")
	s = controlPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = spacesPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Textarea cleans multi-line text, preserving newlines.
func Textarea(raw any, _ schema.Declaration) any {
	s := scalarString(raw)
	s = tagPattern.ReplaceAllString(s, "")
	s = controlPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Email validates and normalizes an email address. Invalid input yields "".
func Email(raw any, field schema.Declaration) any {
	s, _ := Text(raw, field).(string)
	if s == "" {
		return ""
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return ""
	}
	return strings.ToLower(addr.Address)
}

// URL validates an absolute http(s) URL. Invalid input yields "".
func URL(raw any, field schema.Declaration) any {
	s, _ := Text(raw, field).(string)
	if s == "" {
		return ""
	}
	u, err := url.ParseRequestURI(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.String()
}

// Number parses a numeric value. A fractional step hint on the field
// selects float parsing, otherwise the value is an integer. Invalid input
// yields the numeric zero of the selected kind.
func Number(raw any, field schema.Declaration) any {
	s := strings.TrimSpace(scalarString(raw))

	if schema.FloatStep(field.Step) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return float64(0)
		}
		return f
	}

	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Accept float-form input for integer fields by truncating.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return int64(0)
		}
		return int64(f)
	}
	return i
}

// Toggle canonicalizes an on/off indicator: any truthy submitted value
// becomes "1", absence or falsy becomes "0".
func Toggle(raw any, _ schema.Declaration) any {
	switch v := raw.(type) {
	case nil:
		return "0"
	case bool:
		if v {
			return "1"
		}
		return "0"
	case string:
		s := strings.TrimSpace(strings.ToLower(v))
		if s == "" || s == "0" || s == "false" || s == "no" || s == "off" {
			return "0"
		}
		return "1"
	default:
		if s := scalarString(raw); s != "" && s != "0" {
			return "1"
		}
		return "0"
	}
}

// Choice validates a selected value against the field's declared options.
// Unknown selections are nulled out. Multi-selects clean each entry.
func Choice(raw any, field schema.Declaration) any {
	if field.Multiple {
		var out []string
		for _, v := range stringList(raw) {
			s, _ := Text(v, field).(string)
			if s != "" && allowedOption(s, field.Options) {
				out = append(out, s)
			}
		}
		if out == nil {
			out = []string{}
		}
		return out
	}

	s, _ := Text(raw, field).(string)
	if !allowedOption(s, field.Options) {
		return ""
	}
	return s
}

// IDList cleans the opaque IDs of a searchable select. IDs are text
// sanitized; blank entries are dropped.
func IDList(raw any, field schema.Declaration) any {
	if !field.Multiple {
		s, _ := Text(raw, field).(string)
		return s
	}

	var out []string
	for _, v := range stringList(raw) {
		s, _ := Text(v, field).(string)
		if s != "" {
			out = append(out, s)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// ScalarList cleans a list of scalars (tags, feature lists): blank entries
// dropped, each survivor sanitized independently.
func ScalarList(raw any, field schema.Declaration) any {
	var out []string
	for _, v := range stringList(raw) {
		s, _ := Text(v, field).(string)
		if s != "" {
			out = append(out, s)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// KeyValue is one cleaned row of a key-value list component.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// KeyValueList cleans a key-value list: rows with a blank key are dropped,
// keys are slug-sanitized, values are text-sanitized.
func KeyValueList(raw any, field schema.Declaration) any {
	rows := keyValueRows(raw)

	out := make([]KeyValue, 0, len(rows))
	for _, row := range rows {
		key := Slug(row.Key)
		if key == "" {
			continue
		}
		value, _ := Text(row.Value, field).(string)
		out = append(out, KeyValue{Key: key, Value: value})
	}

	return out
}

// keyValueRows accepts the shapes a key-value component can submit:
// a list of {key, value} maps, or a plain map.
func keyValueRows(raw any) []KeyValue {
	switch v := raw.(type) {
	case []KeyValue:
		return v
	case []any:
		var out []KeyValue
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, KeyValue{
				Key:   scalarString(m["key"]),
				Value: scalarString(m["value"]),
			})
		}
		return out
	case map[string]any:
		// Parallel-list form from bracketed form names:
		// {key: [k1, k2], value: [v1, v2]}.
		if keys, ok := v["key"]; ok {
			if values, hasValues := v["value"]; hasValues {
				ks, vs := stringList(keys), stringList(values)
				out := make([]KeyValue, 0, len(ks))
				for i, k := range ks {
					row := KeyValue{Key: k}
					if i < len(vs) {
						row.Value = vs[i]
					}
					out = append(out, row)
				}
				return out
			}
		}
		out := make([]KeyValue, 0, len(v))
		for k, val := range v {
			out = append(out, KeyValue{Key: k, Value: scalarString(val)})
		}
		return out
	case map[string]string:
		out := make([]KeyValue, 0, len(v))
		for k, val := range v {
			out = append(out, KeyValue{Key: k, Value: val})
		}
		return out
	default:
		return nil
	}
}

// Slug lowercases and reduces a string to letters, digits, dashes and
// underscores; spaces become dashes.
func Slug(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "-")
	s = slugPattern.ReplaceAllString(s, "")
	s = strings.Trim(s, "-")
	return s
}

// scalarString coerces a raw scalar to a string. Lists coerce to their
// first element; structurally foreign values coerce to "".
func scalarString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		if len(v) == 0 {
			return ""
		}
		return v[0]
	case []any:
		if len(v) == 0 {
			return ""
		}
		return scalarString(v[0])
	case bool:
		if v {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// stringList coerces raw input to a list of strings, wrapping scalars.
func stringList(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, scalarString(item))
		}
		return out
	case string:
		return []string{v}
	default:
		if s := scalarString(raw); s != "" {
			return []string{s}
		}
		return nil
	}
}

func allowedOption(value string, options []schema.Option) bool {
	if len(options) == 0 {
		return value != ""
	}
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}
