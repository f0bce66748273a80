package attractions

import "regexp"

// rule pairs a pattern with a validator that turns its capture groups into a
// value. Rules are evaluated in slice order by firstValid.
type rule[T any] struct {
	name    string
	pattern *regexp.Regexp
	// scanAll makes firstValid try every match of the pattern, in text order,
	// instead of only the leftmost one.
	scanAll bool
	accept  func(groups []string) (T, bool)
}

// firstValid returns the value of the first match that its rule accepts.
// A rule that does not match, or whose match is rejected, falls through to
// the next rule.
func firstValid[T any](rules []rule[T], text string) (T, bool) {
	for _, r := range rules {
		if r.scanAll {
			for _, groups := range r.pattern.FindAllStringSubmatch(text, -1) {
				if v, ok := r.accept(groups); ok {
					return v, true
				}
			}
			continue
		}
		groups := r.pattern.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		if v, ok := r.accept(groups); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
