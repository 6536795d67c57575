package matching

import (
	"github.com/Abraxas-365/bolsa/pkg/kernel"
)

// Defaults for list and generation queries
const (
	DefaultGenerateMinScore = 30.0
	DefaultGenerateLimit    = 20
	MaxGenerateLimit        = 200
	DefaultTopLimit         = 10
	DefaultTopMinScore      = 70.0
	MaxTopLimit             = 100
	DefaultPendingLimit     = 50
)

// ============================================================================
// Requests
// ============================================================================

type CreateMatchRequest struct {
	ID               kernel.MatchID     `json:"id,omitempty"`
	WorkerID         kernel.WorkerID    `json:"workerId"`
	VacancyID        kernel.VacancyID   `json:"vacancyId"`
	Status           MatchStatus        `json:"status,omitempty"`
	Observations     string             `json:"observations,omitempty"`
	LinkedProposalID *kernel.ProposalID `json:"linkedProposalId,omitempty"`
}

// Validate checks required fields
func (r CreateMatchRequest) Validate() error {
	if r.WorkerID.IsEmpty() {
		return ErrWorkerRequired()
	}
	if r.VacancyID.IsEmpty() {
		return ErrVacancyRequired()
	}
	if r.Status != "" && !r.Status.IsValid() {
		return ErrInvalidStatus().WithDetail("status", r.Status)
	}
	return nil
}

// UpdateMatchRequest carries the patchable fields
type UpdateMatchRequest struct {
	Status           *MatchStatus       `json:"status,omitempty"`
	Observations     *string            `json:"observations,omitempty"`
	LinkedProposalID *kernel.ProposalID `json:"linkedProposalId,omitempty"`
}

// IsEmpty checks if no field was supplied
func (r UpdateMatchRequest) IsEmpty() bool {
	return r.Status == nil && r.Observations == nil && r.LinkedProposalID == nil
}

type UpdateStatusRequest struct {
	Status       MatchStatus `json:"status"`
	Observations *string     `json:"observations,omitempty"`
}

type LinkProposalRequest struct {
	ProposalID kernel.ProposalID `json:"proposalId"`
}

type CalculateRequest struct {
	WorkerID  kernel.WorkerID  `json:"workerId"`
	VacancyID kernel.VacancyID `json:"vacancyId"`
}

// Validate checks required fields
func (r CalculateRequest) Validate() error {
	if r.WorkerID.IsEmpty() {
		return ErrWorkerRequired()
	}
	if r.VacancyID.IsEmpty() {
		return ErrVacancyRequired()
	}
	return nil
}

// ListFilter narrows match listings. Statuses takes precedence over Status.
type ListFilter struct {
	Status    MatchStatus
	Statuses  []MatchStatus
	CompanyID kernel.CompanyID
	WorkerID  kernel.WorkerID
	VacancyID kernel.VacancyID
	MinScore  *float64
	Limit     int
}

// Validate checks enum and range values
func (f ListFilter) Validate() error {
	if f.Status != "" && !f.Status.IsValid() {
		return ErrInvalidStatus().WithDetail("status", f.Status)
	}
	for _, s := range f.Statuses {
		if !s.IsValid() {
			return ErrInvalidStatus().WithDetail("status", s)
		}
	}
	if f.MinScore != nil && (*f.MinScore < 0 || *f.MinScore > MaxScore) {
		return ErrInvalidMinScore().WithDetail("minScore", *f.MinScore)
	}
	if f.Limit < 0 {
		return ErrInvalidLimit().WithDetail("limit", f.Limit)
	}
	return nil
}

// GenerateRequest is the optional body of the generate endpoints
type GenerateRequest struct {
	MinScore *float64 `json:"minScore,omitempty"`
	Limit    *int     `json:"limit,omitempty"`
	Persist  *bool    `json:"persist,omitempty"`
}

// GenerateOptions are resolved generation parameters
type GenerateOptions struct {
	MinScore float64 `json:"minScore"`
	Limit    int     `json:"limit"`
	Persist  bool    `json:"persist"`
}

// DefaultGenerateOptions returns minScore 30, limit 20, no persistence
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		MinScore: DefaultGenerateMinScore,
		Limit:    DefaultGenerateLimit,
	}
}

// Resolve fills unset fields from defaults
func (r GenerateRequest) Resolve(defaults GenerateOptions) GenerateOptions {
	opts := defaults
	if r.MinScore != nil {
		opts.MinScore = *r.MinScore
	}
	if r.Limit != nil {
		opts.Limit = *r.Limit
	}
	if r.Persist != nil {
		opts.Persist = *r.Persist
	}
	return opts
}

// Validate checks option ranges
func (o GenerateOptions) Validate() error {
	if o.MinScore < 0 || o.MinScore > MaxScore {
		return ErrInvalidMinScore().WithDetail("minScore", o.MinScore)
	}
	if o.Limit < 1 || o.Limit > MaxGenerateLimit {
		return ErrInvalidLimit().
			WithDetail("limit", o.Limit).
			WithDetail("max", MaxGenerateLimit)
	}
	return nil
}

// ============================================================================
// Responses
// ============================================================================

// MatchResponse is a match enriched with recommendations
type MatchResponse struct {
	Match
	Recommendations []Recommendation `json:"recommendations"`
}

// NewMatchResponse attaches fresh recommendations to m
func NewMatchResponse(m *Match) *MatchResponse {
	return &MatchResponse{
		Match:           *m,
		Recommendations: RecommendFor(m),
	}
}

// MatchListResponse wraps a score-ordered listing
type MatchListResponse struct {
	Matches []Match `json:"matches"`
	Total   int     `json:"total"`
}

// NewMatchListResponse never renders a null list
func NewMatchListResponse(matches []Match) *MatchListResponse {
	if matches == nil {
		matches = []Match{}
	}
	return &MatchListResponse{Matches: matches, Total: len(matches)}
}

type CalculateResponse struct {
	WorkerID        kernel.WorkerID     `json:"workerId"`
	WorkerName      kernel.PersonName   `json:"workerName"`
	VacancyID       kernel.VacancyID    `json:"vacancyId"`
	VacancyTitle    kernel.VacancyTitle `json:"vacancyTitle"`
	CompanyID       kernel.CompanyID    `json:"companyId"`
	Score           float64             `json:"score"`
	Breakdown       Breakdown           `json:"breakdown"`
	Recommendations []Recommendation    `json:"recommendations"`
	Analysis        Analysis            `json:"analysis"`
}

// AnchorKind names the side a generation runs from
type AnchorKind string

const (
	AnchorVacancy AnchorKind = "vacancy"
	AnchorWorker  AnchorKind = "worker"
)

// IsValid checks the anchor kind
func (k AnchorKind) IsValid() bool {
	return k == AnchorVacancy || k == AnchorWorker
}

// Candidate is one scored pair produced by bulk generation
type Candidate struct {
	WorkerID        kernel.WorkerID     `json:"workerId"`
	WorkerName      kernel.PersonName   `json:"workerName"`
	VacancyID       kernel.VacancyID    `json:"vacancyId"`
	VacancyTitle    kernel.VacancyTitle `json:"vacancyTitle"`
	CompanyID       kernel.CompanyID    `json:"companyId"`
	Score           float64             `json:"score"`
	Breakdown       Breakdown           `json:"breakdown"`
	Recommendations []Recommendation    `json:"recommendations"`
	MatchID         *kernel.MatchID     `json:"matchId,omitempty"`
	Persisted       bool                `json:"persisted"`
	AlreadyExisted  bool                `json:"alreadyExisted"`
}

type GenerateResult struct {
	AnchorKind AnchorKind      `json:"anchorKind"`
	AnchorID   string          `json:"anchorId"`
	Options    GenerateOptions `json:"options"`
	Candidates []Candidate     `json:"candidates"`
	TotalFound int             `json:"totalFound"`
	Persisted  int             `json:"persisted"`
	Skipped    int             `json:"skipped"`
}

// ScoreBuckets is the score histogram
type ScoreBuckets struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Moderate  int `json:"moderate"`
	Low       int `json:"low"`
}

// Add counts score into its bucket
func (b *ScoreBuckets) Add(score float64) {
	switch {
	case score >= TierExcellent:
		b.Excellent++
	case score >= TierGood:
		b.Good++
	case score >= TierModerate:
		b.Moderate++
	default:
		b.Low++
	}
}

type Statistics struct {
	Total        int                 `json:"total"`
	ByStatus     map[MatchStatus]int `json:"byStatus"`
	AverageScore float64             `json:"averageScore"`
	MaxScore     float64             `json:"maxScore"`
	MinScore     float64             `json:"minScore"`
	Buckets      ScoreBuckets        `json:"buckets"`
}

type CompanySummary struct {
	CompanyID    kernel.CompanyID    `json:"companyId"`
	Total        int                 `json:"total"`
	ByStatus     map[MatchStatus]int `json:"byStatus"`
	AverageScore float64             `json:"averageScore"`
	BestMatch    *Match              `json:"bestMatch,omitempty"`
}
