package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.QuestCompleted()
	m.QuestCompleted()
	m.DuplicateSubmission()
	m.RankUp("D")
	m.AIFallback("quest")
	m.SkillActivity("Debugging")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.questsCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.duplicateSubmissions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rankUps.WithLabelValues("D")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiFallbacks.WithLabelValues("quest")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.challengesSolved.WithLabelValues("Debugging")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.QuestCompleted()
		m.DuplicateSubmission()
		m.RankUp("A")
		m.AIFallback("awaken")
		m.SkillActivity("Debugging")
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.QuestCompleted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shadowrank_quests_completed_total 1")
}
