package matching

// RecommendationType tags an advisory message
type RecommendationType string

const (
	RecommendationExcellent    RecommendationType = "excellent"
	RecommendationGood         RecommendationType = "good"
	RecommendationModerate     RecommendationType = "moderate"
	RecommendationLow          RecommendationType = "low"
	RecommendationSeniority    RecommendationType = "seniority"
	RecommendationExperience   RecommendationType = "experience"
	RecommendationCompetencies RecommendationType = "competencies"
)

// Score tiers shared by recommendations and statistics
const (
	TierExcellent = 80.0
	TierGood      = 60.0
	TierModerate  = 40.0
)

type Recommendation struct {
	Type    RecommendationType `json:"type"`
	Message string             `json:"message"`
}

// Recommend derives advisory messages from a score and its breakdown: the
// tier message first, then seniority, experience and competency warnings.
func Recommend(score float64, b Breakdown) []Recommendation {
	recs := make([]Recommendation, 0, 4)

	switch {
	case score >= TierExcellent:
		recs = append(recs, Recommendation{RecommendationExcellent, "Excellent match. Proceed with an interview."})
	case score >= TierGood:
		recs = append(recs, Recommendation{RecommendationGood, "Good match. Review missing competencies before contacting the candidate."})
	case score >= TierModerate:
		recs = append(recs, Recommendation{RecommendationModerate, "Moderate match. Assess whether the candidate can acquire the missing competencies."})
	default:
		recs = append(recs, Recommendation{RecommendationLow, "Low match. Consider other candidates or review the vacancy requirements."})
	}

	if !b.MeetsSeniority {
		recs = append(recs, Recommendation{RecommendationSeniority, "The candidate's seniority is below the required level."})
	}
	if !b.MeetsExperience {
		recs = append(recs, Recommendation{RecommendationExperience, "The candidate has less experience than required."})
	}
	if len(b.MatchedCompetencies) == 0 {
		recs = append(recs, Recommendation{RecommendationCompetencies, "No key competencies match."})
	}

	return recs
}

// RecommendFor is Recommend applied to a stored match
func RecommendFor(m *Match) []Recommendation {
	return Recommend(m.Score, m.Breakdown)
}
