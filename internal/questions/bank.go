// Package questions holds the interview question bank and builds the frozen per-session list.
package questions

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/interview-coach/internal/types"
)

// Entry is one bank question for a type.
type Entry struct {
	Question         string `yaml:"question" json:"question"`
	Competency       string `yaml:"competency" json:"competency"`
	ExpectedDuration string `yaml:"expected_duration" json:"expected_duration"`
}

// Bank maps a question type tag to its ordered entries.
type Bank map[string][]Entry

// DefaultBank returns the built-in question table.
func DefaultBank() Bank {
	return Bank{
		types.QuestionTypeBehavioral: {
			{
				Question:         "Tell me about a time when you were asked to do something you had never done before. How did you react? What did you learn?",
				Competency:       "adaptability",
				ExpectedDuration: "2-3 minutes",
			},
			{
				Question:         "Describe a situation where you needed to persuade someone to see things your way. What steps did you take? What were the results?",
				Competency:       "communication",
				ExpectedDuration: "2-3 minutes",
			},
			{
				Question:         "Tell me about a time when you had to juggle several projects at the same time. How did you organize your time? What was the result?",
				Competency:       "time_management",
				ExpectedDuration: "2-3 minutes",
			},
			{
				Question:         "Give an example of when you had to work with someone who was difficult to get along with. How did you handle interactions with that person?",
				Competency:       "conflict_resolution",
				ExpectedDuration: "2-3 minutes",
			},
			{
				Question:         "Tell me about the last time something significant didn't go according to plan at work. What was your role? What was the outcome?",
				Competency:       "problem_solving",
				ExpectedDuration: "2-3 minutes",
			},
		},
		types.QuestionTypeTellMeAbout: {
			{
				Question:         "Tell me about yourself.",
				Competency:       "self_presentation",
				ExpectedDuration: "1-2 minutes",
			},
		},
		types.QuestionTypeWhyThisJob: {
			{
				Question:         "Why do you want this job?",
				Competency:       "motivation",
				ExpectedDuration: "1-2 minutes",
			},
			{
				Question:         "Why should we hire you?",
				Competency:       "value_proposition",
				ExpectedDuration: "1-2 minutes",
			},
		},
	}
}

// Supports reports whether qtype has at least one entry.
func (b Bank) Supports(qtype string) bool {
	return len(b[qtype]) > 0
}

// Types returns the supported type tags, sorted.
func (b Bank) Types() []string {
	out := make([]string, 0, len(b))
	for k, v := range b {
		if len(v) > 0 {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Count returns the number of entries across the given types.
func (b Bank) Count(qtypes []string) int {
	n := 0
	for _, t := range qtypes {
		n += len(b[t])
	}
	return n
}

// bankFile is the YAML layout of a bank override file.
type bankFile struct {
	Questions map[string][]Entry `yaml:"questions"`
}

// LoadBankFile reads a YAML override and merges it over base. A type present in the file
// replaces that type's entries; new types are added.
func LoadBankFile(path string, base Bank) (Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("failed to read %s", path), Cause: err}
	}

	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("failed to parse %s", path), Cause: err}
	}

	merged := make(Bank, len(base)+len(file.Questions))
	for k, v := range base {
		merged[k] = append([]Entry(nil), v...)
	}
	for qtype, entries := range file.Questions {
		for i, e := range entries {
			if e.Question == "" || e.Competency == "" {
				return nil, &LoadError{Message: fmt.Sprintf("%s: questions.%s[%d] needs question and competency", path, qtype, i)}
			}
			if e.ExpectedDuration == "" {
				entries[i].ExpectedDuration = "2-3 minutes"
			}
		}
		merged[qtype] = entries
	}
	return merged, nil
}
