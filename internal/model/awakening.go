package model

// ResumeSource records where profile facts came from.
type ResumeSource string

const (
	SourceResume ResumeSource = "resume"
	SourceGitHub ResumeSource = "github"
)

// ResumeData is the structured profile facts fed into awakening.
type ResumeData struct {
	Source     ResumeSource `json:"source"`
	RawText    string       `json:"raw_text,omitempty"`
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
	Projects   []Project    `json:"projects"`
	Education  []Education  `json:"education"`
	Languages  []string     `json:"languages"`
}

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url,omitempty"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// SkillGap is one weakness identified during awakening.
type SkillGap struct {
	Skill            string `json:"skill"`
	CurrentLevel     string `json:"current_level"`     // none|beginner|intermediate|advanced
	RecommendedLevel string `json:"recommended_level"` // beginner|intermediate|advanced|expert
	Priority         string `json:"priority"`          // low|medium|high
}

// AwakeningResult is the initial assessment of a new hunter.
type AwakeningResult struct {
	Rank          Rank       `json:"rank"`
	RankReasoning string     `json:"rank_reasoning"`
	Gaps          []SkillGap `json:"gaps"`
	Quest         Quest      `json:"quest"`
	Message       string     `json:"message"`
}
