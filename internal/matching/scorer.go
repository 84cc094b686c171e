package matching

import "math"

// Scorer computes a similarity score in [0,1] between a resume and a job text.
type Scorer interface {
	Score(resumeText, jobText string) float64
}

// LexicalScorer scores the fraction of the job's distinct terms that also
// appear in the resume. It is asymmetric on purpose: extra resume terms never
// lower the score.
type LexicalScorer struct{}

// NewLexicalScorer returns the default scorer.
func NewLexicalScorer() LexicalScorer { return LexicalScorer{} }

// Score returns round(|R ∩ J| / |J|, 3), or 0 when the job has no terms.
func (LexicalScorer) Score(resumeText, jobText string) float64 {
	job := Normalize(jobText)
	if len(job) == 0 {
		return 0
	}
	resume := Normalize(resumeText)
	return Round3(float64(resume.Intersect(job)) / float64(len(job)))
}

// Round3 rounds to three decimals, ties to even.
func Round3(v float64) float64 {
	return math.RoundToEven(v*1000) / 1000
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(resumeText, jobText string) float64

func (f ScorerFunc) Score(resumeText, jobText string) float64 { return f(resumeText, jobText) }
