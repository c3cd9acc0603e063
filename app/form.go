package app

import (
	"net/url"
	"strings"
)

// DecodeForm converts flat form-encoded pairs into the raw map the
// sanitizer consumes. Bracket syntax in field names expresses structure:
//
//	name=x                 → "name": "x"
//	tags[]=a&tags[]=b      → "tags": ["a", "b"]
//	price[amount]=19.99    → "price": {"amount": "19.99"}
//	meta[key][]=k          → "meta": {"key": ["k"]}
func DecodeForm(vals url.Values) map[string]any {
	out := make(map[string]any, len(vals))

	for key, values := range vals {
		base, segs := parseBrackets(key)
		if base == "" {
			continue
		}

		switch {
		case len(segs) == 0:
			if len(values) > 0 {
				out[base] = values[0]
			}

		case len(segs) == 1 && segs[0] == "":
			out[base] = append([]string(nil), values...)

		case len(segs) == 1:
			sub(out, base)[segs[0]] = first(values)

		case len(segs) == 2 && segs[1] == "":
			sub(out, base)[segs[0]] = append([]string(nil), values...)

		default:
			// Deeper nesting is not part of any built-in type's contract;
			// keep the last flat value so custom sanitizers can opt in.
			sub(out, base)[strings.Join(segs, ".")] = first(values)
		}
	}

	return out
}

// parseBrackets splits "name[a][b][]" into base "name" and segments
// ["a", "b", ""].
func parseBrackets(key string) (string, []string) {
	i := strings.IndexByte(key, '[')
	if i < 0 {
		return key, nil
	}

	base := key[:i]
	rest := key[i:]

	var segs []string
	for len(rest) > 0 && rest[0] == '[' {
		j := strings.IndexByte(rest, ']')
		if j < 0 {
			break
		}
		segs = append(segs, rest[1:j])
		rest = rest[j+1:]
	}

	return base, segs
}

// sub returns the nested map at out[base], creating it when needed. A
// scalar already stored under base is displaced: structured syntax wins.
func sub(out map[string]any, base string) map[string]any {
	if m, ok := out[base].(map[string]any); ok {
		return m
	}
	m := make(map[string]any)
	out[base] = m
	return m
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
