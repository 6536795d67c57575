package matchinginfra

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/kernel"
	"github.com/Abraxas-365/bolsa/placement/matching"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	uniqueViolation   = "23505"
	matchesPrimaryKey = "matches_pkey"

	// attempts at a fresh id when a generated one is already taken
	maxIDAttempts = 3
)

// PostgresMatchRepository implements matching.Repository using PostgreSQL
type PostgresMatchRepository struct {
	db *sqlx.DB
}

// NewPostgresMatchRepository creates a new PostgreSQL match repository
func NewPostgresMatchRepository(db *sqlx.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{
		db: db,
	}
}

// ============================================================================
// Database Models
// ============================================================================

// breakdownColumn stores a breakdown as JSONB
type breakdownColumn matching.Breakdown

func (b breakdownColumn) Value() (driver.Value, error) {
	data, err := json.Marshal(matching.Breakdown(b).Normalize())
	if err != nil {
		return nil, fmt.Errorf("marshal breakdown: %w", err)
	}
	return data, nil
}

func (b *breakdownColumn) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*b = breakdownColumn(matching.Breakdown{}.Normalize())
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported breakdown type %T", src)
	}

	var bd matching.Breakdown
	if err := json.Unmarshal(data, &bd); err != nil {
		return fmt.Errorf("unmarshal breakdown: %w", err)
	}
	*b = breakdownColumn(bd.Normalize())
	return nil
}

type matchModel struct {
	ID               string          `db:"id"`
	WorkerID         string          `db:"worker_id"`
	VacancyID        string          `db:"vacancy_id"`
	CompanyID        string          `db:"company_id"`
	WorkerName       string          `db:"worker_name"`
	VacancyTitle     string          `db:"vacancy_title"`
	Score            float64         `db:"score"`
	Breakdown        breakdownColumn `db:"breakdown"`
	Status           string          `db:"status"`
	Observations     string          `db:"observations"`
	LinkedProposalID *string         `db:"linked_proposal_id"`
	ApprovedAt       *time.Time      `db:"approved_at"`
	HiredAt          *time.Time      `db:"hired_at"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// toEntity converts database model to domain entity
func (m *matchModel) toEntity() *matching.Match {
	var proposalID *kernel.ProposalID
	if m.LinkedProposalID != nil {
		pid := kernel.ProposalID(*m.LinkedProposalID)
		proposalID = &pid
	}

	return &matching.Match{
		ID:               kernel.MatchID(m.ID),
		WorkerID:         kernel.WorkerID(m.WorkerID),
		VacancyID:        kernel.VacancyID(m.VacancyID),
		CompanyID:        kernel.CompanyID(m.CompanyID),
		WorkerName:       kernel.PersonName(m.WorkerName),
		VacancyTitle:     kernel.VacancyTitle(m.VacancyTitle),
		Score:            m.Score,
		Breakdown:        matching.Breakdown(m.Breakdown),
		Status:           matching.MatchStatus(m.Status),
		Observations:     m.Observations,
		LinkedProposalID: proposalID,
		ApprovedAt:       m.ApprovedAt,
		HiredAt:          m.HiredAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// fromEntity converts domain entity to database model
func fromEntity(m *matching.Match) *matchModel {
	var proposalID *string
	if m.LinkedProposalID != nil {
		pid := m.LinkedProposalID.String()
		proposalID = &pid
	}

	return &matchModel{
		ID:               m.ID.String(),
		WorkerID:         m.WorkerID.String(),
		VacancyID:        m.VacancyID.String(),
		CompanyID:        m.CompanyID.String(),
		WorkerName:       string(m.WorkerName),
		VacancyTitle:     string(m.VacancyTitle),
		Score:            m.Score,
		Breakdown:        breakdownColumn(m.Breakdown),
		Status:           string(m.Status),
		Observations:     m.Observations,
		LinkedProposalID: proposalID,
		ApprovedAt:       m.ApprovedAt,
		HiredAt:          m.HiredAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

const matchColumns = `
	id, worker_id, vacancy_id, company_id, worker_name, vacancy_title,
	score, breakdown, status, observations, linked_proposal_id,
	approved_at, hired_at, created_at, updated_at`

const insertMatch = `
	INSERT INTO matches (` + matchColumns + `
	) VALUES (
		:id, :worker_id, :vacancy_id, :company_id, :worker_name, :vacancy_title,
		:score, :breakdown, :status, :observations, :linked_proposal_id,
		:approved_at, :hired_at, :created_at, :updated_at
	)`

const pairExistsQuery = `SELECT EXISTS(SELECT 1 FROM matches WHERE worker_id = $1 AND vacancy_id = $2)`

// ============================================================================
// Repository Implementation
// ============================================================================

// Create creates a new match
func (r *PostgresMatchRepository) Create(ctx context.Context, m *matching.Match) error {
	_, err := r.db.NamedExecContext(ctx, insertMatch, fromEntity(m))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if pqErr.Constraint == matchesPrimaryKey {
				return matching.ErrMatchIDTaken().WithDetail("id", m.ID.String())
			}
			return matching.ErrMatchAlreadyExists().
				WithDetail("worker_id", m.WorkerID.String()).
				WithDetail("vacancy_id", m.VacancyID.String())
		}
		return fmt.Errorf("failed to create match: %w", err)
	}

	return nil
}

// CreateBatch inserts matches in a single transaction. Pairs already present
// are skipped. A match whose id is taken gets a fresh id, written back into
// the slice.
func (r *PostgresMatchRepository) CreateBatch(ctx context.Context, matches []matching.Match) (ids []kernel.MatchID, err error) {
	if len(matches) == 0 {
		return []kernel.MatchID{}, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ids = make([]kernel.MatchID, 0, len(matches))
	for i := range matches {
		inserted, insertErr := insertBatchRow(ctx, tx, &matches[i])
		if insertErr != nil {
			return nil, insertErr
		}
		if inserted {
			ids = append(ids, matches[i].ID)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit batch: %w", err)
	}
	return ids, nil
}

// insertBatchRow inserts one match, reporting false when its pair exists
func insertBatchRow(ctx context.Context, tx *sqlx.Tx, m *matching.Match) (bool, error) {
	query := insertMatch + ` ON CONFLICT DO NOTHING`

	for range maxIDAttempts {
		result, err := tx.NamedExecContext(ctx, query, fromEntity(m))
		if err != nil {
			return false, fmt.Errorf("failed to insert match %s: %w", m.ID, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows > 0 {
			return true, nil
		}

		var pairExists bool
		if err := tx.GetContext(ctx, &pairExists, pairExistsQuery, m.WorkerID.String(), m.VacancyID.String()); err != nil {
			return false, fmt.Errorf("failed to check match pair: %w", err)
		}
		if pairExists {
			return false, nil
		}

		m.ID = matching.NewMatchID(m.CreatedAt)
	}

	return false, matching.ErrMatchIDTaken().WithDetail("id", m.ID.String())
}

// GetByID retrieves a match by ID
func (r *PostgresMatchRepository) GetByID(ctx context.Context, id kernel.MatchID) (*matching.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	var model matchModel
	if err := r.db.GetContext(ctx, &model, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, matching.ErrMatchNotFound().WithDetail("id", id.String())
		}
		return nil, fmt.Errorf("failed to get match by id: %w", err)
	}

	return model.toEntity(), nil
}

// Update updates the mutable fields of a match
func (r *PostgresMatchRepository) Update(ctx context.Context, m *matching.Match) error {
	query := `
		UPDATE matches SET
			status = :status,
			observations = :observations,
			linked_proposal_id = :linked_proposal_id,
			approved_at = :approved_at,
			hired_at = :hired_at,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, fromEntity(m))
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return matching.ErrMatchNotFound().WithDetail("id", m.ID.String())
	}

	return nil
}

// Delete deletes a match by ID
func (r *PostgresMatchRepository) Delete(ctx context.Context, id kernel.MatchID) error {
	query := `DELETE FROM matches WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return matching.ErrMatchNotFound().WithDetail("id", id.String())
	}

	return nil
}

// List retrieves matches by equality filters ordered by score descending.
// MinScore is left to the caller.
func (r *PostgresMatchRepository) List(ctx context.Context, filter matching.ListFilter) ([]matching.Match, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	switch {
	case len(filter.Statuses) > 0:
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		add("status = ANY($%d)", pq.Array(statuses))
	case filter.Status != "":
		add("status = $%d", string(filter.Status))
	}
	if !filter.CompanyID.IsEmpty() {
		add("company_id = $%d", filter.CompanyID.String())
	}
	if !filter.WorkerID.IsEmpty() {
		add("worker_id = $%d", filter.WorkerID.String())
	}
	if !filter.VacancyID.IsEmpty() {
		add("vacancy_id = $%d", filter.VacancyID.String())
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + matchColumns + ` FROM matches`)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY score DESC, created_at ASC, id ASC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	var models []matchModel
	if err := r.db.SelectContext(ctx, &models, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	return toEntities(models), nil
}

// Top retrieves the best scored matches
func (r *PostgresMatchRepository) Top(ctx context.Context, minScore float64, limit int) ([]matching.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE score >= $1
		ORDER BY score DESC, created_at ASC, id ASC
		LIMIT $2
	`

	var models []matchModel
	if err := r.db.SelectContext(ctx, &models, query, minScore, limit); err != nil {
		return nil, fmt.Errorf("failed to list top matches: %w", err)
	}

	return toEntities(models), nil
}

// ExistsByPair checks if a match exists for a worker and vacancy
func (r *PostgresMatchRepository) ExistsByPair(ctx context.Context, workerID kernel.WorkerID, vacancyID kernel.VacancyID) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, pairExistsQuery, workerID.String(), vacancyID.String()); err != nil {
		return false, fmt.Errorf("failed to check match pair: %w", err)
	}

	return exists, nil
}

func toEntities(models []matchModel) []matching.Match {
	entities := make([]matching.Match, 0, len(models))
	for _, model := range models {
		entities = append(entities, *model.toEntity())
	}
	return entities
}
