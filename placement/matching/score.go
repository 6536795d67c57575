package matching

import (
	"math"
	"strings"
	"time"

	"github.com/Abraxas-365/bolsa/placement/profile"
)

// Factor weights and neutral contributions
const (
	competencyWeight  = 50.0
	competencyNeutral = 25.0

	seniorityFull    = 25.0
	seniorityPartial = 15.0
	seniorityLow     = 5.0
	seniorityNeutral = 12.5

	experienceFull    = 15.0
	experiencePartial = 10.0
	experienceLow     = 5.0

	locationFull = 10.0
	locationLow  = 5.0

	MaxScore = 100.0
)

// Seniority ordinals used by the scorer
const (
	levelUnknown = -1
	levelJunior  = 0
	levelMid     = 1
	levelSenior  = 2
)

// ScoreResult is the output of ComputeScore
type ScoreResult struct {
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// ComputeScore scores a worker against a vacancy. It is pure: the only
// input besides the profiles is now, used for experience derived from work
// history.
func ComputeScore(w *profile.Worker, v *profile.Vacancy, now time.Time) ScoreResult {
	if w == nil {
		w = &profile.Worker{}
	}
	if v == nil {
		v = &profile.Vacancy{}
	}

	var score float64
	breakdown := Breakdown{MatchedCompetencies: []string{}}

	// 1. Competencies (50%)
	required := normalizeAll(v.RequiredCompetencies)
	if len(required) == 0 {
		score += competencyNeutral
	} else {
		breakdown.MatchedCompetencies = matchCompetencies(normalizeAll(w.AllCompetencies()), required)
		score += float64(len(breakdown.MatchedCompetencies)) / float64(len(required)) * competencyWeight
	}

	// 2. Seniority (25%)
	workerLevel := classifySeniority(w.Seniority)
	requiredLevel := classifySeniority(v.RequiredSeniority)
	switch {
	case workerLevel == levelUnknown || requiredLevel == levelUnknown:
		score += seniorityNeutral
	case workerLevel >= requiredLevel:
		score += seniorityFull
		breakdown.MeetsSeniority = true
	case workerLevel == requiredLevel-1:
		score += seniorityPartial
	default:
		score += seniorityLow
	}

	// 3. Experience (15%)
	workerYears := w.Experience(now)
	switch {
	case workerYears >= v.RequiredExperience:
		score += experienceFull
		breakdown.MeetsExperience = true
	case workerYears >= v.RequiredExperience-1:
		score += experiencePartial
	default:
		score += experienceLow
	}

	// 4. Location (10%)
	if w.Address.Contains(v.Location.PrimaryToken()) {
		score += locationFull
		breakdown.MeetsLocation = true
	} else {
		score += locationLow
	}

	return ScoreResult{
		Score:     Round2(math.Min(score, MaxScore)),
		Breakdown: breakdown,
	}
}

// Round2 rounds half away from zero to two decimals
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func normalizeAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if n := strings.ToLower(strings.TrimSpace(item)); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// matchCompetencies returns the required entries covered by any worker entry.
// Containment runs both ways so "java" covers "javascript" and vice versa.
func matchCompetencies(worker, required []string) []string {
	matched := make([]string, 0, len(required))
	for _, req := range required {
		if containsEither(worker, req) {
			matched = append(matched, req)
		}
	}
	return matched
}

func containsEither(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.Contains(h, needle) || strings.Contains(needle, h) {
			return true
		}
	}
	return false
}

// classifySeniority maps free text onto the ordinal scale. Senior is checked
// first so "semi-senior" style labels never degrade to junior.
func classifySeniority(text string) int {
	t := strings.ToLower(text)
	switch {
	case t == "":
		return levelUnknown
	case strings.Contains(t, "senior"):
		return levelSenior
	case strings.Contains(t, "mid-level"), strings.Contains(t, "mid level"):
		return levelMid
	case strings.Contains(t, "junior"):
		return levelJunior
	default:
		return levelUnknown
	}
}
