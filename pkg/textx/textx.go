// Package textx provides small text utilities shared by the extractors,
// the summarizer and the resume handlers.
package textx

import (
	"strings"
	"unicode/utf8"
)

// SanitizeText drops control characters other than tab, newline and CR,
// then trims surrounding whitespace.
func SanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == utf8.RuneError {
			continue
		}
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// SplitList splits a comma or newline separated list, trimming items and
// dropping empty ones. Order is preserved.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(f), "-*•"))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
