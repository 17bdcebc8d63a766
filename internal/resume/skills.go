package resume

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/interview-coach/internal/types"
)

// SkillCategory is one named group of the curated skill vocabulary.
type SkillCategory struct {
	Name   string
	Skills []string
}

// SkillCatalog is the curated vocabulary matched by ExtractSkills.
var SkillCatalog = []SkillCategory{
	{Name: "Programming Languages", Skills: []string{
		"Python", "Java", "JavaScript", "TypeScript", "C++", "C#", "Go", "Rust",
		"Ruby", "PHP", "Swift", "Kotlin", "Scala", "R", "MATLAB", "SQL",
	}},
	{Name: "Web Technologies", Skills: []string{
		"React", "Angular", "Vue.js", "Node.js", "Express", "Django", "Flask",
		"Spring Boot", "HTML", "CSS", "REST API", "GraphQL", "WebSockets",
	}},
	{Name: "Cloud & DevOps", Skills: []string{
		"AWS", "Azure", "Google Cloud", "Docker", "Kubernetes", "Jenkins",
		"GitLab CI", "GitHub Actions", "Terraform", "Ansible", "CircleCI",
	}},
	{Name: "Databases", Skills: []string{
		"MySQL", "PostgreSQL", "MongoDB", "Redis", "DynamoDB", "Cassandra",
		"Oracle", "SQL Server", "Elasticsearch", "Neo4j",
	}},
	{Name: "Data & ML", Skills: []string{
		"Machine Learning", "Deep Learning", "TensorFlow", "PyTorch", "Scikit-learn",
		"Pandas", "NumPy", "Data Analysis", "Data Science", "NLP", "Computer Vision",
	}},
	{Name: "Soft Skills", Skills: []string{
		"Leadership", "Project Management", "Communication", "Team Collaboration",
		"Problem Solving", "Critical Thinking", "Agile", "Scrum",
	}},
}

type skillMatcher struct {
	category string
	skill    string
	re       *regexp.Regexp
}

var skillMatchers = compileSkills(SkillCatalog)

func compileSkills(catalog []SkillCategory) []skillMatcher {
	var out []skillMatcher
	for _, cat := range catalog {
		for _, s := range cat.Skills {
			out = append(out, skillMatcher{category: cat.Name, skill: s, re: wholeWord(s)})
		}
	}
	return out
}

// wholeWord builds a case-insensitive pattern for term bounded by non-word characters.
// \b only applies next to a word character, so terms like "C++" or "C#" use an explicit
// non-word-or-edge guard on their symbol side instead.
func wholeWord(term string) *regexp.Regexp {
	first, _ := utf8.DecodeRuneInString(term)
	last, _ := utf8.DecodeLastRuneInString(term)

	prefix := `(?:^|\W)`
	if isWordRune(first) {
		prefix = `\b`
	}
	suffix := `(?:\W|$)`
	if isWordRune(last) {
		suffix = `\b`
	}
	return regexp.MustCompile(`(?i)` + prefix + regexp.QuoteMeta(term) + suffix)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ExtractSkills matches the curated vocabulary against text and groups hits by category.
// Categories without hits are omitted.
func ExtractSkills(text string) (*types.SkillsResult, error) {
	if err := CheckText(text); err != nil {
		return nil, err
	}

	result := &types.SkillsResult{SkillsByCategory: map[string][]string{}}
	for _, m := range skillMatchers {
		if m.re.MatchString(text) {
			result.SkillsByCategory[m.category] = append(result.SkillsByCategory[m.category], m.skill)
			result.TotalSkillsFound++
		}
	}
	return result, nil
}
