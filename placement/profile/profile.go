package profile

import (
	"strings"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/kernel"
)

// PublicationStatus represents whether a worker profile is visible to companies
type PublicationStatus string

const (
	PublicationStatusPublished   PublicationStatus = "published"   // Visible, eligible for matching
	PublicationStatusUnpublished PublicationStatus = "unpublished" // Hidden
)

// VacancyStatus represents the status of a vacancy
type VacancyStatus string

const (
	VacancyStatusActive    VacancyStatus = "active"    // Open, eligible for matching
	VacancyStatusPaused    VacancyStatus = "paused"    // Temporarily closed
	VacancyStatusClosed    VacancyStatus = "closed"    // Filled
	VacancyStatusCancelled VacancyStatus = "cancelled" // Withdrawn by company
)

const hoursPerYear = 24 * 365

type WorkHistoryEntry struct {
	Company   string     `db:"company" json:"company"`
	Position  string     `db:"position" json:"position"`
	StartDate time.Time  `db:"start_date" json:"startDate"`
	EndDate   *time.Time `db:"end_date" json:"endDate,omitempty"`
}

type Worker struct {
	ID                kernel.WorkerID    `db:"id" json:"id"`
	FirstName         string             `db:"first_name" json:"firstName"`
	LastName          string             `db:"last_name" json:"lastName"`
	Skills            []string           `db:"skills" json:"skills"`
	Competencies      []string           `db:"competencies" json:"competencies"`
	Seniority         string             `db:"seniority" json:"seniority"`
	YearsOfExperience float64            `db:"years_of_experience" json:"yearsOfExperience"`
	WorkHistory       []WorkHistoryEntry `db:"-" json:"workHistory,omitempty"`
	Address           kernel.Address     `db:"address" json:"address"`
	PublicationStatus PublicationStatus  `db:"publication_status" json:"publicationStatus"`
	CreatedAt         time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time          `db:"updated_at" json:"updatedAt"`
}

type Vacancy struct {
	ID                   kernel.VacancyID    `db:"id" json:"id"`
	Title                kernel.VacancyTitle `db:"title" json:"title"`
	RequiredCompetencies []string            `db:"required_competencies" json:"requiredCompetencies"`
	RequiredSeniority    string              `db:"required_seniority" json:"requiredSeniority"`
	RequiredExperience   float64             `db:"required_experience" json:"requiredExperience"`
	Location             kernel.Location     `db:"location" json:"location"`
	CompanyID            kernel.CompanyID    `db:"company_id" json:"companyId"`
	CompanyName          string              `db:"company_name" json:"companyName"`
	Status               VacancyStatus       `db:"status" json:"status"`
	ApplicantCount       int                 `db:"applicant_count" json:"applicantCount"`
	CreatedAt            time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time           `db:"updated_at" json:"updatedAt"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// FullName joins first and last names
func (w *Worker) FullName() kernel.PersonName {
	return kernel.PersonName(strings.TrimSpace(w.FirstName + " " + w.LastName))
}

// IsPublished checks if the worker can be offered to companies
func (w *Worker) IsPublished() bool {
	return w.PublicationStatus == PublicationStatusPublished
}

// Experience returns the declared years of experience, falling back to the
// summed work history. Open entries run until now.
func (w *Worker) Experience(now time.Time) float64 {
	if w.YearsOfExperience > 0 {
		return w.YearsOfExperience
	}

	var years float64
	for _, entry := range w.WorkHistory {
		if entry.StartDate.IsZero() {
			continue
		}
		end := now
		if entry.EndDate != nil {
			end = *entry.EndDate
		}
		if end.Before(entry.StartDate) {
			continue
		}
		years += end.Sub(entry.StartDate).Hours() / hoursPerYear
	}
	return years
}

// AllCompetencies returns competencies followed by skills
func (w *Worker) AllCompetencies() []string {
	all := make([]string, 0, len(w.Competencies)+len(w.Skills))
	all = append(all, w.Competencies...)
	all = append(all, w.Skills...)
	return all
}

// IsActive checks if the vacancy is open for matching
func (v *Vacancy) IsActive() bool {
	return v.Status == VacancyStatusActive
}
