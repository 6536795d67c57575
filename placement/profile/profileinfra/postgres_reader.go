package profileinfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/kernel"
	"github.com/Abraxas-365/bolsa/placement/profile"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresReader implements profile.Reader using PostgreSQL
type PostgresReader struct {
	db *sqlx.DB
}

// NewPostgresReader creates a new PostgreSQL profile reader
func NewPostgresReader(db *sqlx.DB) *PostgresReader {
	return &PostgresReader{db: db}
}

// ============================================================================
// Database Models
// ============================================================================

type workerModel struct {
	ID                string          `db:"id"`
	FirstName         string          `db:"first_name"`
	LastName          string          `db:"last_name"`
	Skills            pq.StringArray  `db:"skills"`
	Competencies      pq.StringArray  `db:"competencies"`
	Seniority         sql.NullString  `db:"seniority"`
	YearsOfExperience sql.NullFloat64 `db:"years_of_experience"`
	Address           sql.NullString  `db:"address"`
	PublicationStatus string          `db:"publication_status"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

type workHistoryModel struct {
	WorkerID  string         `db:"worker_id"`
	Company   sql.NullString `db:"company"`
	Position  sql.NullString `db:"position"`
	StartDate time.Time      `db:"start_date"`
	EndDate   *time.Time     `db:"end_date"`
}

type vacancyModel struct {
	ID                   string          `db:"id"`
	Title                string          `db:"title"`
	RequiredCompetencies pq.StringArray  `db:"required_competencies"`
	RequiredSeniority    sql.NullString  `db:"required_seniority"`
	RequiredExperience   sql.NullFloat64 `db:"required_experience"`
	Location             sql.NullString  `db:"location"`
	CompanyID            string          `db:"company_id"`
	CompanyName          sql.NullString  `db:"company_name"`
	Status               string          `db:"status"`
	ApplicantCount       int             `db:"applicant_count"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
}

func (m *workerModel) toEntity(history []profile.WorkHistoryEntry) *profile.Worker {
	return &profile.Worker{
		ID:                kernel.WorkerID(m.ID),
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Skills:            nonNil(m.Skills),
		Competencies:      nonNil(m.Competencies),
		Seniority:         m.Seniority.String,
		YearsOfExperience: m.YearsOfExperience.Float64,
		WorkHistory:       history,
		Address:           kernel.Address(m.Address.String),
		PublicationStatus: profile.PublicationStatus(m.PublicationStatus),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func (m *workHistoryModel) toEntity() profile.WorkHistoryEntry {
	return profile.WorkHistoryEntry{
		Company:   m.Company.String,
		Position:  m.Position.String,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
	}
}

func (m *vacancyModel) toEntity() *profile.Vacancy {
	return &profile.Vacancy{
		ID:                   kernel.VacancyID(m.ID),
		Title:                kernel.VacancyTitle(m.Title),
		RequiredCompetencies: nonNil(m.RequiredCompetencies),
		RequiredSeniority:    m.RequiredSeniority.String,
		RequiredExperience:   m.RequiredExperience.Float64,
		Location:             kernel.Location(m.Location.String),
		CompanyID:            kernel.CompanyID(m.CompanyID),
		CompanyName:          m.CompanyName.String,
		Status:               profile.VacancyStatus(m.Status),
		ApplicantCount:       m.ApplicantCount,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func nonNil(a pq.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}

const workerColumns = `
	id, first_name, last_name, skills, competencies, seniority,
	years_of_experience, address, publication_status, created_at, updated_at`

const vacancyColumns = `
	id, title, required_competencies, required_seniority, required_experience,
	location, company_id, company_name, status, applicant_count, created_at, updated_at`

// ============================================================================
// Reader Implementation
// ============================================================================

// GetWorker retrieves a worker with its work history
func (r *PostgresReader) GetWorker(ctx context.Context, id kernel.WorkerID) (*profile.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE id = $1`

	var model workerModel
	if err := r.db.GetContext(ctx, &model, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, profile.ErrWorkerNotFound().WithDetail("worker_id", id.String())
		}
		return nil, fmt.Errorf("failed to get worker by id: %w", err)
	}

	histories, err := r.loadWorkHistory(ctx, []string{model.ID})
	if err != nil {
		return nil, err
	}

	return model.toEntity(histories[model.ID]), nil
}

// GetVacancy retrieves a vacancy by ID
func (r *PostgresReader) GetVacancy(ctx context.Context, id kernel.VacancyID) (*profile.Vacancy, error) {
	query := `SELECT ` + vacancyColumns + ` FROM vacancies WHERE id = $1`

	var model vacancyModel
	if err := r.db.GetContext(ctx, &model, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, profile.ErrVacancyNotFound().WithDetail("vacancy_id", id.String())
		}
		return nil, fmt.Errorf("failed to get vacancy by id: %w", err)
	}

	return model.toEntity(), nil
}

// ListPublishedWorkers retrieves published workers with their work history
func (r *PostgresReader) ListPublishedWorkers(ctx context.Context) ([]profile.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE publication_status = $1 ORDER BY id`

	var models []workerModel
	if err := r.db.SelectContext(ctx, &models, query, string(profile.PublicationStatusPublished)); err != nil {
		return nil, fmt.Errorf("failed to list published workers: %w", err)
	}
	if len(models) == 0 {
		return []profile.Worker{}, nil
	}

	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	histories, err := r.loadWorkHistory(ctx, ids)
	if err != nil {
		return nil, err
	}

	workers := make([]profile.Worker, 0, len(models))
	for _, m := range models {
		workers = append(workers, *m.toEntity(histories[m.ID]))
	}
	return workers, nil
}

// ListActiveVacancies retrieves active vacancies
func (r *PostgresReader) ListActiveVacancies(ctx context.Context) ([]profile.Vacancy, error) {
	query := `SELECT ` + vacancyColumns + ` FROM vacancies WHERE status = $1 ORDER BY id`

	var models []vacancyModel
	if err := r.db.SelectContext(ctx, &models, query, string(profile.VacancyStatusActive)); err != nil {
		return nil, fmt.Errorf("failed to list active vacancies: %w", err)
	}

	vacancies := make([]profile.Vacancy, 0, len(models))
	for _, m := range models {
		vacancies = append(vacancies, *m.toEntity())
	}
	return vacancies, nil
}

func (r *PostgresReader) loadWorkHistory(ctx context.Context, workerIDs []string) (map[string][]profile.WorkHistoryEntry, error) {
	query := `
		SELECT worker_id, company, position, start_date, end_date
		FROM worker_work_history
		WHERE worker_id = ANY($1)
		ORDER BY worker_id, start_date
	`

	var models []workHistoryModel
	if err := r.db.SelectContext(ctx, &models, query, pq.Array(workerIDs)); err != nil {
		return nil, fmt.Errorf("failed to load work history: %w", err)
	}

	byWorker := make(map[string][]profile.WorkHistoryEntry, len(workerIDs))
	for _, m := range models {
		byWorker[m.WorkerID] = append(byWorker[m.WorkerID], m.toEntity())
	}
	return byWorker, nil
}
