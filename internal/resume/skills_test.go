package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSkills_GroupsByCategory(t *testing.T) {
	result, err := ExtractSkills("Built services in Go and Python on AWS with Docker. Strong leadership.")
	require.NoError(t, err)

	assert.Equal(t, []string{"Python", "Go"}, result.SkillsByCategory["Programming Languages"])
	assert.Equal(t, []string{"AWS", "Docker"}, result.SkillsByCategory["Cloud & DevOps"])
	assert.Equal(t, []string{"Leadership"}, result.SkillsByCategory["Soft Skills"])
	assert.Equal(t, 5, result.TotalSkillsFound)
	assert.NotContains(t, result.SkillsByCategory, "Databases")
}

func TestExtractSkills_WholeWordOnly(t *testing.T) {
	result, err := ExtractSkills("Javanese cuisine and a reactive mindset")
	require.NoError(t, err)

	assert.Equal(t, 0, result.TotalSkillsFound)
	assert.Empty(t, result.SkillsByCategory)
}

func TestExtractSkills_SymbolTerms(t *testing.T) {
	result, err := ExtractSkills("Worked in C++ and C# daily, plus Node.js.")
	require.NoError(t, err)

	assert.Contains(t, result.SkillsByCategory["Programming Languages"], "C++")
	assert.Contains(t, result.SkillsByCategory["Programming Languages"], "C#")
	assert.Contains(t, result.SkillsByCategory["Web Technologies"], "Node.js")
}

func TestExtractSkills_CaseInsensitive(t *testing.T) {
	result, err := ExtractSkills("KUBERNETES and terraform")
	require.NoError(t, err)

	assert.Equal(t, []string{"Kubernetes", "Terraform"}, result.SkillsByCategory["Cloud & DevOps"])
}

func TestExtractSkills_RejectsEmpty(t *testing.T) {
	_, err := ExtractSkills("")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestExtractText_PlainText(t *testing.T) {
	text, err := ExtractText([]byte("Skills\nGo\n"))
	require.NoError(t, err)
	assert.Equal(t, "Skills\nGo\n", text)
}

func TestExtractText_Rejects(t *testing.T) {
	_, err := ExtractText(nil)
	var ee *ExtractError
	assert.ErrorAs(t, err, &ee)

	_, err = ExtractText([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a})
	assert.ErrorAs(t, err, &ee)

	_, err = ExtractText([]byte("%PDF-1.4 not really a pdf"))
	assert.ErrorAs(t, err, &ee)
}
