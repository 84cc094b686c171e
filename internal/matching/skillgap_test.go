package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkillGap(t *testing.T) {
	assert.Empty(t, SkillGap("python, sql", "python, sql"))
	assert.Equal(t, []string{"docker", "python", "sql"}, SkillGap("", "SQL, python , docker"))
	assert.Equal(t, []string{"docker"}, SkillGap("Python,SQL", "python, sql, docker, docker"))
	assert.Empty(t, SkillGap("go", ""))
	assert.Empty(t, SkillGap("go", " , ,"))
}

func TestSkillGap_EmptyKnownYieldsRequired(t *testing.T) {
	required := "react, machine learning, go"
	assert.ElementsMatch(t, SplitSkills(required), SkillGap("", required))
}

func TestRecommendTrainings(t *testing.T) {
	got := RecommendTrainings([]string{"python", "rust"})
	assert.Equal(t, []string{
		"Python: Python Fundamentals at Dicoding",
		"Rust: no training available for Rust",
	}, got)
}

func TestRecommendTrainings_CaseInsensitiveAndMultiWord(t *testing.T) {
	got := RecommendTrainings([]string{"Machine Learning", "DOCKER", "kubernetes"})
	assert.Equal(t, []string{
		"Machine Learning: Machine Learning by Stanford - Coursera",
		"Docker: Docker from Zero - YouTube Open Class",
		"Kubernetes: no training available for Kubernetes",
	}, got)
	assert.Empty(t, RecommendTrainings(nil))
}
