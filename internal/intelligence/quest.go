package intelligence

import (
	"context"
	"log/slog"
	"sort"

	"github.com/sakif/shadow-rank/internal/llm"
	"github.com/sakif/shadow-rank/internal/metrics"
	"github.com/sakif/shadow-rank/internal/model"
)

// QuestContext is everything quest generation may take into account.
type QuestContext struct {
	Rank            model.Rank
	CompletedTitles []string
	Skills          []model.Skill
	Goal            string
}

// gaps turns the weakest skills into prompt gaps. With no skills on record
// a generic project-building gap is used.
func (qc QuestContext) gaps() []model.SkillGap {
	skills := append([]model.Skill(nil), qc.Skills...)
	sort.SliceStable(skills, func(i, j int) bool { return skills[i].Level < skills[j].Level })

	var gaps []model.SkillGap
	for _, s := range skills {
		if len(gaps) == 3 {
			break
		}
		if s.Level >= 7 {
			continue
		}
		current, priority := "beginner", "high"
		if s.Level >= 4 {
			current, priority = "intermediate", "medium"
		}
		gaps = append(gaps, model.SkillGap{
			Skill:            s.Name,
			CurrentLevel:     current,
			RecommendedLevel: "advanced",
			Priority:         priority,
		})
	}
	if len(gaps) == 0 {
		gaps = append(gaps, model.SkillGap{
			Skill:            "Project Building",
			CurrentLevel:     "beginner",
			RecommendedLevel: "intermediate",
			Priority:         "high",
		})
	}
	return gaps
}

// QuestGenerator selects the next quest for a rank.
type QuestGenerator struct {
	client  llm.Client // nil means no AI configured
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewQuestGenerator(client llm.Client, m *metrics.Metrics, logger *slog.Logger) *QuestGenerator {
	return &QuestGenerator{client: client, metrics: m, logger: logger}
}

// Next returns nil at the terminal rank. Otherwise it returns an AI quest
// when one can be generated and validated, or the rank's fallback quest.
func (g *QuestGenerator) Next(ctx context.Context, qc QuestContext) *model.Quest {
	if qc.Rank.Terminal() || !qc.Rank.Valid() {
		return nil
	}
	if g.client == nil {
		return FallbackQuest(qc.Rank)
	}

	resp, err := g.client.Generate(ctx, llm.Request{
		Task:         llm.TaskQuest,
		SystemPrompt: SystemPrompt,
		UserPrompt:   NextQuestPrompt(qc),
	})
	if err != nil {
		g.logger.Warn("quest fallback", "rank", qc.Rank, "reason", "ai call failed", "error", err)
		g.metrics.AIFallback(string(llm.TaskQuest))
		return FallbackQuest(qc.Rank)
	}

	out, err := llm.Decode(resp.Text, validateQuestOutput)
	if err != nil {
		g.logger.Warn("quest fallback", "rank", qc.Rank, "reason", "ai output rejected", "error", err)
		g.metrics.AIFallback(string(llm.TaskQuest))
		return FallbackQuest(qc.Rank)
	}

	quest := freshQuest(*out.Quest)
	return &quest
}
