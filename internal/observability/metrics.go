package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	MatchScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_score",
			Help:    "Distribution of persisted match scores (normalized fraction [0,1])",
			Buckets: []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)
	MatchesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "matches_created_total",
			Help: "Total number of match records created",
		},
	)
	MatchConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "match_conflicts_total",
			Help: "Concurrent first-time matches resolved by re-fetching the winner",
		},
	)
	RecommendationsScoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendations_scored_total",
			Help: "Jobs scored live by the recommend path",
		},
	)
	SummariesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summaries_total",
			Help: "Resume summarization attempts by outcome",
		},
		[]string{"status"},
	)
)

// MatchCollectors returns the collectors owned by this package for registration.
func MatchCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		MatchScoreHistogram,
		MatchesCreatedTotal,
		MatchConflictsTotal,
		RecommendationsScoredTotal,
		SummariesTotal,
	}
}

// ObserveMatchCreated records a newly persisted match.
func ObserveMatchCreated(score float64) {
	MatchesCreatedTotal.Inc()
	if score >= 0 && score <= 1 {
		MatchScoreHistogram.Observe(score)
	}
}

// ObserveMatchConflict records a lost insert race.
func ObserveMatchConflict() { MatchConflictsTotal.Inc() }

// ObserveRecommendations records n live-scored jobs.
func ObserveRecommendations(n int) { RecommendationsScoredTotal.Add(float64(n)) }

// ObserveSummary records a summarization outcome ("ok", "error", "skipped").
func ObserveSummary(status string) { SummariesTotal.WithLabelValues(status).Inc() }
