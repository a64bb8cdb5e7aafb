// Package textmatch implements the literal, case-insensitive substring test
// used by every search path. Terms are never compiled as patterns.
package textmatch

import "strings"

// Matcher holds a case-folded term.
type Matcher struct {
	term string
}

// New returns a Matcher for term. Surrounding whitespace is trimmed.
func New(term string) Matcher {
	return Matcher{term: strings.ToLower(strings.TrimSpace(term))}
}

// Term returns the folded term.
func (m Matcher) Term() string {
	return m.term
}

// In reports whether s contains the term. A blank term matches nothing.
func (m Matcher) In(s string) bool {
	if m.term == "" || s == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), m.term)
}

// Any reports whether any element of values contains the term.
func (m Matcher) Any(values []string) bool {
	for _, v := range values {
		if m.In(v) {
			return true
		}
	}
	return false
}
