// Package matching implements the lexical core of the matcher: term
// normalization, resume/job scoring, top-N selection and skill-gap analysis.
package matching

import "strings"

// TermSet is a set of lowercase whitespace-delimited terms.
type TermSet map[string]struct{}

// Normalize lowercases text and splits it on whitespace. Punctuation stays
// attached to its term; duplicates collapse.
func Normalize(text string) TermSet {
	fields := strings.Fields(strings.ToLower(text))
	set := make(TermSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Has reports whether term is in the set.
func (s TermSet) Has(term string) bool {
	_, ok := s[term]
	return ok
}

// Intersect returns the number of terms present in both sets.
func (s TermSet) Intersect(other TermSet) int {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for t := range small {
		if large.Has(t) {
			n++
		}
	}
	return n
}
