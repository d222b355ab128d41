package extraction

import (
	"regexp"
	"strconv"
)

// rule is one entry of an ordered extraction table: when pattern matches,
// build turns the submatches into a value and reports whether it is acceptable.
type rule[T any] struct {
	name    string
	pattern *regexp.Regexp
	build   func(m []string) (T, bool)
}

// firstMatch walks the table in order and returns the first acceptable value
func firstMatch[T any](rules []rule[T], text string) (T, string, bool) {
	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := r.build(m); ok {
			return v, r.name, true
		}
	}
	var zero T
	return zero, "", false
}

// allMatches collects group 1 of every match of every pattern, in table order
func allMatches(patterns []*regexp.Regexp, text string) []string {
	var out []string
	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			out = append(out, m[1])
		}
	}
	return out
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func inRange(n, lo, hi int) bool {
	return n >= lo && n <= hi
}

var integerPattern = regexp.MustCompile(`\d+`)
