package intelligence

import (
	"fmt"
	"strings"

	"github.com/sakif/shadow-rank/internal/model"
)

// SystemPrompt frames every generation call.
const SystemPrompt = `You are the Shadow Monarch System, an AI that evaluates hunters (developers) and assigns them ranks based on their skills and experience. You speak in a dramatic, game-like manner inspired by Solo Leveling.

Your task is to analyze a hunter's resume/profile data and determine:
1. Their starting Rank (E, D, C, B, or A)
2. Their skill gaps
3. A personalized Main Quest to help them level up

Rank Criteria:
- E-Rank: Complete beginner, no projects, limited experience
- D-Rank: Some basic projects, 1-2 years experience, foundational knowledge
- C-Rank: Solid projects, 2-4 years experience, good fundamentals
- B-Rank: Strong portfolio, 4-7 years experience, leadership/mentoring
- A-Rank: Expert level, 7+ years, significant impact, thought leadership

Quest Requirements:
- All quests MUST require GitHub repository submission for verification
- Quests should address the hunter's biggest skill gap
- Quests should be achievable within 1-2 weeks
- Be specific about what the project should demonstrate

Response Format: JSON only, no markdown.`

const questJSONShape = `{
    "id": "unique-quest-id",
    "title": "Quest title (dramatic, game-like)",
    "description": "Detailed quest description explaining what to build and why",
    "requirements": ["requirement 1", "requirement 2"],
    "xp_reward": 50,
    "skill_focus": "primary skill this quest develops",
    "difficulty": "easy|medium|hard"
  }`

// AwakeningPrompt asks for a rank, gaps, a first quest and a message.
func AwakeningPrompt(data model.ResumeData) string {
	return fmt.Sprintf(`Analyze this hunter's profile and determine their rank:

%s

Respond with JSON in this exact format:
{
  "rank": "E|D|C|B|A",
  "rank_reasoning": "Brief explanation of why this rank was assigned",
  "gaps": [
    {
      "skill": "skill name",
      "current_level": "none|beginner|intermediate|advanced",
      "recommended_level": "beginner|intermediate|advanced|expert",
      "priority": "low|medium|high"
    }
  ],
  "quest": %s,
  "message": "Dramatic awakening message for the hunter"
}`, FormatResume(data), questJSONShape)
}

// FormatResume renders resume data as the plain-text profile summary.
func FormatResume(data model.ResumeData) string {
	var b strings.Builder

	source := "Resume"
	if data.Source == model.SourceGitHub {
		source = "GitHub Profile"
	}
	fmt.Fprintf(&b, "Source: %s\n", source)

	if len(data.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(data.Skills, ", "))
	}
	if len(data.Languages) > 0 {
		fmt.Fprintf(&b, "Programming Languages: %s\n", strings.Join(data.Languages, ", "))
	}
	if len(data.Experience) > 0 {
		b.WriteString("Experience:\n")
		for _, e := range data.Experience {
			fmt.Fprintf(&b, "- %s at %s (%s)\n", e.Title, e.Company, e.Duration)
			if e.Description != "" {
				fmt.Fprintf(&b, "  %s\n", e.Description)
			}
		}
	}
	if len(data.Projects) > 0 {
		b.WriteString("Projects:\n")
		for _, p := range data.Projects {
			fmt.Fprintf(&b, "- %s: %s\n", p.Name, p.Description)
			if len(p.Technologies) > 0 {
				fmt.Fprintf(&b, "  Technologies: %s\n", strings.Join(p.Technologies, ", "))
			}
		}
	}
	if len(data.Education) > 0 {
		b.WriteString("Education:\n")
		for _, e := range data.Education {
			fmt.Fprintf(&b, "- %s from %s (%s)\n", e.Degree, e.Institution, e.Year)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// NextQuestPrompt asks for the next main quest for a hunter at rank.
func NextQuestPrompt(qc QuestContext) string {
	completed := strings.Join(qc.CompletedTitles, ", ")
	if completed == "" {
		completed = "None"
	}

	var gaps strings.Builder
	for _, g := range qc.gaps() {
		fmt.Fprintf(&gaps, "- %s: %s → %s (%s priority)\n", g.Skill, g.CurrentLevel, g.RecommendedLevel, g.Priority)
	}

	goal := ""
	if qc.Goal != "" {
		goal = fmt.Sprintf("\nThe hunter's stated goal: %s\n", qc.Goal)
	}

	return fmt.Sprintf(`The hunter is currently %s-rank.

Previously completed quests: %s

Current skill gaps:
%s%s
Generate the next Main Quest that:
1. Addresses their highest priority skill gap
2. Is appropriately challenging for a %s-rank hunter
3. Requires GitHub repository submission
4. Builds on their previous progress

Respond with JSON:
{
  "quest": %s
}`, qc.Rank, completed, gaps.String(), goal, qc.Rank, questJSONShape)
}
