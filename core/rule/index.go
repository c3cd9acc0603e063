package rule

// Index maps a field name to the dependents whose rules reference it, so a
// change event re-evaluates only the affected rules instead of scanning all
// of them. Built once at normalization time.
type Index struct {
	byField map[string][]string
}

// BuildIndex constructs the dependency index for a set of dependents.
func BuildIndex(deps []Dependent) *Index {
	idx := &Index{byField: make(map[string][]string)}

	for _, d := range deps {
		for _, field := range Fields(d.Conditions) {
			idx.byField[field] = append(idx.byField[field], d.Name)
		}
		if d.When != nil {
			for _, field := range d.When.Refs() {
				idx.byField[field] = append(idx.byField[field], d.Name)
			}
		}
	}

	return idx
}

// Affected returns the dependent field names whose rules reference the
// changed field, in registration order, without duplicates.
func (i *Index) Affected(changed string) []string {
	names := i.byField[changed]
	if len(names) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// Watched returns every field name referenced by at least one rule.
func (i *Index) Watched() []string {
	out := make([]string, 0, len(i.byField))
	for field := range i.byField {
		out = append(out, field)
	}
	return out
}
