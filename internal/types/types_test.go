package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreBandVerdict(t *testing.T) {
	assert.Equal(t, "Strong Resume", BandStrong.Verdict())
	assert.Equal(t, "Moderate Resume - improve further", BandModerate.Verdict())
	assert.Equal(t, "Weak Resume", BandWeak.Verdict())
}

func TestSuggestionBody(t *testing.T) {
	ok := Suggestion{Skill: "airflow", Text: "Level: Intermediate"}
	assert.False(t, ok.Failed())
	assert.Equal(t, "AIRFLOW", ok.Heading())
	assert.Equal(t, "Level: Intermediate", ok.Body())

	failed := Suggestion{Skill: "spark", Error: "quota exceeded"}
	assert.True(t, failed.Failed())
	assert.Equal(t, "SPARK", failed.Heading())
	assert.Equal(t, "Error for spark: quota exceeded", failed.Body())
}
