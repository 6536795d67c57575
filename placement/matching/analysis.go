package matching

import (
	"math"
	"strings"

	"github.com/Abraxas-365/bolsa/placement/profile"
)

// CompetencyComparison lists covered and missing requirements
type CompetencyComparison struct {
	Matched    []string `json:"matched"`
	Missing    []string `json:"missing"`
	Percentage int      `json:"percentage"`
}

// LevelComparison compares seniority labels on a 1-based scale, 0 meaning unknown
type LevelComparison struct {
	Meets         bool `json:"meets"`
	WorkerLevel   int  `json:"workerLevel"`
	RequiredLevel int  `json:"requiredLevel"`
	Difference    int  `json:"difference"`
}

// Analysis is the detailed comparison returned by calculate
type Analysis struct {
	Competencies CompetencyComparison `json:"competencies"`
	Level        LevelComparison      `json:"level"`
}

var levelRanks = map[string]int{
	"junior":    1,
	"mid-level": 2,
	"mid level": 2,
	"senior":    3,
}

// Analyze compares a worker against a vacancy requirement by requirement
func Analyze(w *profile.Worker, v *profile.Vacancy) Analysis {
	if w == nil {
		w = &profile.Worker{}
	}
	if v == nil {
		v = &profile.Vacancy{}
	}
	return Analysis{
		Competencies: CompareCompetencies(w.AllCompetencies(), v.RequiredCompetencies),
		Level:        CompareLevels(w.Seniority, v.RequiredSeniority),
	}
}

// CompareCompetencies splits requirements into matched and missing
func CompareCompetencies(worker, required []string) CompetencyComparison {
	normalizedWorker := normalizeAll(worker)
	normalizedRequired := normalizeAll(required)

	cmp := CompetencyComparison{
		Matched:    []string{},
		Missing:    []string{},
		Percentage: 100,
	}
	for _, req := range normalizedRequired {
		if containsEither(normalizedWorker, req) {
			cmp.Matched = append(cmp.Matched, req)
		} else {
			cmp.Missing = append(cmp.Missing, req)
		}
	}
	if len(normalizedRequired) > 0 {
		cmp.Percentage = int(math.Round(float64(len(cmp.Matched)) / float64(len(normalizedRequired)) * 100))
	}
	return cmp
}

// CompareLevels looks labels up exactly, unlike the scorer's substring match
func CompareLevels(workerLevel, requiredLevel string) LevelComparison {
	w := levelRanks[strings.ToLower(strings.TrimSpace(workerLevel))]
	r := levelRanks[strings.ToLower(strings.TrimSpace(requiredLevel))]
	return LevelComparison{
		Meets:         w >= r,
		WorkerLevel:   w,
		RequiredLevel: r,
		Difference:    w - r,
	}
}
