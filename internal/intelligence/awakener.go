// Package intelligence turns profile facts into ranks and quests.
//
// Every entry point has a deterministic fallback: AI output is treated as a
// best-effort enhancement and any failure (unconfigured, timeout, bad JSON,
// missing field) silently switches to the fixed templates in fallback.go.
package intelligence

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/sakif/shadow-rank/internal/llm"
	"github.com/sakif/shadow-rank/internal/metrics"
	"github.com/sakif/shadow-rank/internal/model"
)

// Awakener produces the initial assessment of a new hunter.
type Awakener struct {
	client  llm.Client // nil means no AI configured
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewAwakener(client llm.Client, m *metrics.Metrics, logger *slog.Logger) *Awakener {
	return &Awakener{client: client, metrics: m, logger: logger}
}

// Awaken asks the AI for an assessment and returns the fallback result on
// any failure. It never returns an error.
func (a *Awakener) Awaken(ctx context.Context, data model.ResumeData) model.AwakeningResult {
	if a.client == nil {
		return a.fallback("ai not configured", nil)
	}

	resp, err := a.client.Generate(ctx, llm.Request{
		Task:         llm.TaskAwaken,
		SystemPrompt: SystemPrompt,
		UserPrompt:   AwakeningPrompt(data),
	})
	if err != nil {
		return a.fallback("ai call failed", err)
	}

	out, err := llm.Decode(resp.Text, validateAwakening)
	if err != nil {
		return a.fallback("ai output rejected", err)
	}

	quest := freshQuest(*out.Quest)
	return model.AwakeningResult{
		Rank:          model.Rank(out.Rank),
		RankReasoning: strings.TrimSpace(out.RankReasoning),
		Gaps:          out.Gaps,
		Quest:         quest,
		Message:       strings.TrimSpace(out.Message),
	}
}

func (a *Awakener) fallback(reason string, err error) model.AwakeningResult {
	if err != nil {
		a.logger.Warn("awakening fallback", "reason", reason, "error", err)
	} else {
		a.logger.Info("awakening fallback", "reason", reason)
	}
	a.metrics.AIFallback(string(llm.TaskAwaken))
	return FallbackAwakening()
}

// freshQuest readies an AI quest for assignment: it gets an id and loses
// any submission state the model invented.
func freshQuest(q model.Quest) model.Quest {
	ensureQuestID(&q)
	q.RepoURL = ""
	q.CompletedAt = nil
	return q
}

// ensureQuestID gives AI quests a readable unique id when they lack one.
func ensureQuestID(q *model.Quest) {
	if strings.TrimSpace(q.ID) != "" {
		return
	}
	q.ID = slug.Make(q.Title) + "-" + uuid.NewString()[:8]
}
