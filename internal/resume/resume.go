// Package resume extracts structured facts from plain-text or markdown
// resume content with a deterministic keyword scan.
package resume

import (
	"regexp"
	"strings"

	"github.com/sakif/shadow-rank/internal/model"
	"github.com/sakif/shadow-rank/internal/progression"
)

// MaxTextBytes bounds how much resume text is accepted and stored.
const MaxTextBytes = 64 << 10

var skillKeywords = []string{
	"JavaScript", "TypeScript", "Python", "Java", "C++", "C#", "Go", "Rust",
	"React", "Vue", "Angular", "Node.js", "Express", "Next.js", "Django", "Flask",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "GraphQL", "REST",
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "CI/CD",
	"Git", "Linux", "Agile", "Scrum",
	"Machine Learning", "AI", "Data Science", "TensorFlow", "PyTorch",
}

var languageKeywords = []string{
	"JavaScript", "TypeScript", "Python", "Java", "C++", "C#", "Go", "Rust",
	"Ruby", "PHP", "Swift", "Kotlin", "Scala", "R", "MATLAB",
}

// evidence maps each canonical skill to the keywords that count toward it.
var evidence = map[string][]string{
	progression.SkillFrontend:     {"JavaScript", "TypeScript", "React", "Vue", "Angular", "Next.js", "HTML", "CSS", "Tailwind", "Svelte"},
	progression.SkillBackend:      {"Node.js", "Express", "Django", "Flask", "Spring", "Go", "Java", "Rust", "C#", "GraphQL", "REST", "gRPC"},
	progression.SkillDebugging:    {"debugging", "troubleshooting", "profiling", "root cause"},
	progression.SkillDevOps:       {"AWS", "Azure", "GCP", "Docker", "Kubernetes", "CI/CD", "Terraform", "Linux", "GitHub Actions"},
	progression.SkillTesting:      {"unit test", "unit tests", "integration test", "TDD", "Jest", "Cypress", "pytest", "Playwright", "Selenium"},
	progression.SkillDatabase:     {"PostgreSQL", "MySQL", "MongoDB", "Redis", "SQL", "SQLite", "DynamoDB"},
	progression.SkillSystemDesign: {"microservices", "distributed systems", "system design", "architecture", "scalability", "Kafka", "event-driven"},
}

var matchers = map[string]*regexp.Regexp{}

func init() {
	add := func(kw string) {
		if _, ok := matchers[kw]; ok {
			return
		}
		flags := "(?i)"
		// Short keywords like Go, R, AI and C# only match their exact casing.
		if len(kw) <= 2 {
			flags = ""
		}
		matchers[kw] = regexp.MustCompile(flags + `(^|[^\w+#.])` + regexp.QuoteMeta(kw) + `($|[^\w+#])`)
	}
	for _, kw := range skillKeywords {
		add(kw)
	}
	for _, kw := range languageKeywords {
		add(kw)
	}
	for _, kws := range evidence {
		for _, kw := range kws {
			add(kw)
		}
	}
}

func contains(text, keyword string) bool {
	return matchers[keyword].MatchString(text)
}

func found(text string, keywords []string) []string {
	out := []string{}
	for _, kw := range keywords {
		if contains(text, kw) {
			out = append(out, kw)
		}
	}
	return out
}

// Parse scans text and returns resume facts plus one parsed skill per
// canonical skill with any keyword evidence. Skills without evidence are
// omitted so a later merge leaves them untouched.
func Parse(text string) (model.ResumeData, []model.ParsedSkill) {
	if len(text) > MaxTextBytes {
		text = text[:MaxTextBytes]
	}

	data := model.ResumeData{
		Source:     model.SourceResume,
		RawText:    text,
		Skills:     found(text, skillKeywords),
		Experience: []model.Experience{},
		Projects:   []model.Project{},
		Education:  []model.Education{},
		Languages:  found(text, languageKeywords),
	}

	var parsed []model.ParsedSkill
	for _, name := range progression.SkillNames {
		hits := len(found(text, evidence[name]))
		if hits == 0 {
			continue
		}
		parsed = append(parsed, model.ParsedSkill{
			Name:       name,
			Level:      progression.ClampLevel(1 + 2*hits),
			Confidence: min(1.0, 0.4+0.15*float64(hits)),
		})
	}
	return data, parsed
}

// Empty reports whether text has nothing worth parsing.
func Empty(text string) bool {
	return strings.TrimSpace(text) == ""
}
