// Package metrics owns the Prometheus collectors for HTTP traffic and
// progression events.
//
// Collectors are registered on an explicit Registerer rather than the
// global default so tests can build as many instances as they like.
// All recording methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	questsCompleted      prometheus.Counter
	duplicateSubmissions prometheus.Counter
	rankUps              *prometheus.CounterVec
	aiFallbacks          *prometheus.CounterVec
	challengesSolved     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg. If reg is also a
// Gatherer (a *prometheus.Registry is both) Handler serves from it.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
		questsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shadowrank_quests_completed_total",
			Help: "Accepted quest submissions",
		}),
		duplicateSubmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shadowrank_duplicate_submissions_total",
			Help: "Quest submissions rejected as duplicates",
		}),
		rankUps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shadowrank_rank_ups_total",
			Help: "Rank promotions by new rank",
		}, []string{"rank"}),
		aiFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shadowrank_ai_fallbacks_total",
			Help: "Times deterministic fallback content replaced AI output",
		}, []string{"task"}),
		challengesSolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shadowrank_challenges_solved_total",
			Help: "Skill activities completed by skill",
		}, []string{"skill"}),
	}

	reg.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.questsCompleted,
		m.duplicateSubmissions,
		m.rankUps,
		m.aiFallbacks,
		m.challengesSolved,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Handler serves the registered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) QuestCompleted() {
	if m == nil {
		return
	}
	m.questsCompleted.Inc()
}

func (m *Metrics) DuplicateSubmission() {
	if m == nil {
		return
	}
	m.duplicateSubmissions.Inc()
}

func (m *Metrics) RankUp(rank string) {
	if m == nil {
		return
	}
	m.rankUps.WithLabelValues(rank).Inc()
}

func (m *Metrics) AIFallback(task string) {
	if m == nil {
		return
	}
	m.aiFallbacks.WithLabelValues(task).Inc()
}

func (m *Metrics) SkillActivity(skill string) {
	if m == nil {
		return
	}
	m.challengesSolved.WithLabelValues(skill).Inc()
}
