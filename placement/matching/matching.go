package matching

import (
	"slices"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/kernel"
)

// MatchStatus represents the lifecycle status of a match
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"   // Created, awaiting review
	MatchStatusApproved  MatchStatus = "approved"  // Accepted by the company
	MatchStatusRejected  MatchStatus = "rejected"  // Discarded
	MatchStatusHired     MatchStatus = "hired"     // Worker placed in the vacancy
	MatchStatusPreloaded MatchStatus = "preloaded" // System-suggested, not yet reviewed
)

// AllStatuses lists every accepted status
var AllStatuses = []MatchStatus{
	MatchStatusPending,
	MatchStatusApproved,
	MatchStatusRejected,
	MatchStatusHired,
	MatchStatusPreloaded,
}

// IsValid checks the status against the enumerated set
func (s MatchStatus) IsValid() bool {
	return slices.Contains(AllStatuses, s)
}

// IsAwaitingReview groups pending with preloaded
func (s MatchStatus) IsAwaitingReview() bool {
	return s == MatchStatusPending || s == MatchStatusPreloaded
}

// Breakdown explains how a score was reached
type Breakdown struct {
	MatchedCompetencies []string `json:"matchedCompetencies"`
	MeetsSeniority      bool     `json:"meetsSeniority"`
	MeetsExperience     bool     `json:"meetsExperience"`
	MeetsLocation       bool     `json:"meetsLocation"`
}

// Normalize guarantees a non-nil competency list
func (b Breakdown) Normalize() Breakdown {
	if b.MatchedCompetencies == nil {
		b.MatchedCompetencies = []string{}
	}
	return b
}

type Match struct {
	ID               kernel.MatchID      `db:"id" json:"id"`
	WorkerID         kernel.WorkerID     `db:"worker_id" json:"workerId"`
	VacancyID        kernel.VacancyID    `db:"vacancy_id" json:"vacancyId"`
	CompanyID        kernel.CompanyID    `db:"company_id" json:"companyId"`
	WorkerName       kernel.PersonName   `db:"worker_name" json:"workerName"`
	VacancyTitle     kernel.VacancyTitle `db:"vacancy_title" json:"vacancyTitle"`
	Score            float64             `db:"score" json:"score"`
	Breakdown        Breakdown           `db:"breakdown" json:"breakdown"`
	Status           MatchStatus         `db:"status" json:"status"`
	Observations     string              `db:"observations" json:"observations"`
	LinkedProposalID *kernel.ProposalID  `db:"linked_proposal_id" json:"linkedProposalId,omitempty"`
	ApprovedAt       *time.Time          `db:"approved_at" json:"approvedAt,omitempty"`
	HiredAt          *time.Time          `db:"hired_at" json:"hiredAt,omitempty"`
	CreatedAt        time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time           `db:"updated_at" json:"updatedAt"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// IsTerminal checks if the match can no longer change status
func (m *Match) IsTerminal() bool {
	return m.Status == MatchStatusRejected || m.Status == MatchStatusHired
}

// CanBeDeleted checks if the match is still untouched
func (m *Match) CanBeDeleted() bool {
	return m.Status == MatchStatusPending
}

// HasProposal checks if a downstream proposal is attached
func (m *Match) HasProposal() bool {
	return m.LinkedProposalID != nil && !m.LinkedProposalID.IsEmpty()
}

// CanUpdateStatus checks if the transition to newStatus is allowed
func (m *Match) CanUpdateStatus(newStatus MatchStatus) bool {
	if newStatus == m.Status {
		return true
	}

	validTransitions := map[MatchStatus][]MatchStatus{
		MatchStatusPreloaded: {
			MatchStatusPending,
			MatchStatusApproved,
			MatchStatusRejected,
			MatchStatusHired,
		},
		MatchStatusPending: {
			MatchStatusPreloaded,
			MatchStatusApproved,
			MatchStatusRejected,
			MatchStatusHired,
		},
		MatchStatusApproved: {
			MatchStatusHired,
			MatchStatusRejected,
		},
	}

	allowedStatuses, ok := validTransitions[m.Status]
	if !ok {
		return false
	}

	return slices.Contains(allowedStatuses, newStatus)
}

// UpdateStatus moves the match to newStatus and stamps transition timestamps.
// Invalid input leaves the match untouched.
func (m *Match) UpdateStatus(newStatus MatchStatus, observations *string, now time.Time) error {
	if !newStatus.IsValid() {
		return ErrInvalidStatus().
			WithDetail("status", newStatus).
			WithDetail("allowed", AllStatuses)
	}

	if !m.CanUpdateStatus(newStatus) {
		return ErrInvalidStatusTransition().
			WithDetail("current_status", m.Status).
			WithDetail("new_status", newStatus)
	}

	if newStatus != m.Status {
		switch newStatus {
		case MatchStatusApproved:
			m.ApprovedAt = &now
		case MatchStatusHired:
			m.HiredAt = &now
		}
	}
	m.Status = newStatus
	if observations != nil {
		m.Observations = *observations
	}
	m.UpdatedAt = now
	return nil
}

// LinkProposal attaches a proposal and forces the match to approved. A hired
// match keeps its status.
func (m *Match) LinkProposal(proposalID kernel.ProposalID, now time.Time) error {
	if proposalID.IsEmpty() {
		return ErrProposalRequired()
	}

	m.LinkedProposalID = &proposalID
	if m.Status != MatchStatusHired {
		m.Status = MatchStatusApproved
		if m.ApprovedAt == nil {
			m.ApprovedAt = &now
		}
	}
	m.UpdatedAt = now
	return nil
}

// Less orders by score descending, then creation time, then id
func Less(a, b *Match) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// SortByScore sorts matches in place using Less
func SortByScore(matches []Match) {
	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case Less(&a, &b):
			return -1
		case Less(&b, &a):
			return 1
		default:
			return 0
		}
	})
}
