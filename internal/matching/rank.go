package matching

import "sort"

// Scored pairs an item with its live score.
type Scored[T any] struct {
	Item  T
	Score float64
}

// ScoreAll scores every item against resumeText using text to pick each
// item's scoring text. Input order is preserved.
func ScoreAll[T any](s Scorer, resumeText string, items []T, text func(T) string) []Scored[T] {
	out := make([]Scored[T], len(items))
	for i, it := range items {
		out[i] = Scored[T]{Item: it, Score: s.Score(resumeText, text(it))}
	}
	return out
}

// TopN returns the n highest scored entries, score descending. Ties keep the
// input order. n <= 0 returns nil; the input slice is not modified.
func TopN[T any](scored []Scored[T], n int) []Scored[T] {
	if n <= 0 || len(scored) == 0 {
		return nil
	}
	out := make([]Scored[T], len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if n < len(out) {
		out = out[:n]
	}
	return out
}
