package matching

import (
	"testing"

	"github.com/Abraxas-365/bolsa/placement/profile"
	"github.com/stretchr/testify/assert"
)

func TestCompareCompetencies(t *testing.T) {
	tests := []struct {
		name     string
		worker   []string
		required []string
		expected CompetencyComparison
	}{
		{
			name:     "no requirements",
			worker:   []string{"go"},
			required: nil,
			expected: CompetencyComparison{Matched: []string{}, Missing: []string{}, Percentage: 100},
		},
		{
			name:     "partial",
			worker:   []string{"Go", "SQL"},
			required: []string{"go", "docker", "sql"},
			expected: CompetencyComparison{Matched: []string{"go", "sql"}, Missing: []string{"docker"}, Percentage: 67},
		},
		{
			name:     "none",
			worker:   nil,
			required: []string{"rust"},
			expected: CompetencyComparison{Matched: []string{}, Missing: []string{"rust"}, Percentage: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CompareCompetencies(tt.worker, tt.required))
		})
	}
}

func TestCompareLevels(t *testing.T) {
	assert.Equal(t, LevelComparison{Meets: true, WorkerLevel: 3, RequiredLevel: 2, Difference: 1}, CompareLevels("Senior", "mid-level"))
	assert.Equal(t, LevelComparison{Meets: false, WorkerLevel: 1, RequiredLevel: 2, Difference: -1}, CompareLevels("junior", "Mid Level"))
	assert.Equal(t, LevelComparison{Meets: true, WorkerLevel: 0, RequiredLevel: 0, Difference: 0}, CompareLevels("", "lead"))
}

func TestAnalyze(t *testing.T) {
	w := &profile.Worker{Competencies: []string{"liderazgo"}, Skills: []string{"excel"}, Seniority: "junior"}
	v := &profile.Vacancy{RequiredCompetencies: []string{"Excel", "SAP"}, RequiredSeniority: "senior"}

	a := Analyze(w, v)

	assert.Equal(t, []string{"excel"}, a.Competencies.Matched)
	assert.Equal(t, []string{"sap"}, a.Competencies.Missing)
	assert.Equal(t, 50, a.Competencies.Percentage)
	assert.Equal(t, -2, a.Level.Difference)
	assert.False(t, a.Level.Meets)
}
