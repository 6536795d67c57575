package matchingsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/errx"
	"github.com/Abraxas-365/bolsa/pkg/kernel"
	"github.com/Abraxas-365/bolsa/placement/matching"
	"github.com/Abraxas-365/bolsa/placement/profile"
)

// maxGeneratedIDAttempts bounds redraws of a generated id that is taken
const maxGeneratedIDAttempts = 3

// Service provides business operations for matches
type Service struct {
	repo      matching.Repository
	profiles  profile.Reader
	publisher matching.EventPublisher
	now       func() time.Time
}

// NewService creates a new instance of the matching service
func NewService(
	repo matching.Repository,
	profiles profile.Reader,
	publisher matching.EventPublisher,
) *Service {
	if publisher == nil {
		publisher = matching.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		profiles:  profiles,
		publisher: publisher,
		now:       time.Now,
	}
}

// Create scores a worker/vacancy pair and persists the match
func (s *Service) Create(ctx context.Context, req matching.CreateMatchRequest) (*matching.MatchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	worker, err := s.profiles.GetWorker(ctx, req.WorkerID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to load worker", errx.TypeInternal)
	}

	vacancy, err := s.profiles.GetVacancy(ctx, req.VacancyID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to load vacancy", errx.TypeInternal)
	}

	// Business rule: one match per worker and vacancy
	exists, err := s.repo.ExistsByPair(ctx, req.WorkerID, req.VacancyID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to check duplicate match", errx.TypeInternal)
	}
	if exists {
		return nil, matching.ErrMatchAlreadyExists().
			WithDetail("worker_id", req.WorkerID.String()).
			WithDetail("vacancy_id", req.VacancyID.String())
	}

	now := s.now()
	result := matching.ComputeScore(worker, vacancy, now)

	id := req.ID
	if id.IsEmpty() {
		id = matching.NewMatchID(now)
	}

	status := req.Status
	if status == "" {
		status = matching.MatchStatusPending
	}

	m := &matching.Match{
		ID:           id,
		WorkerID:     worker.ID,
		VacancyID:    vacancy.ID,
		CompanyID:    vacancy.CompanyID,
		WorkerName:   worker.FullName(),
		VacancyTitle: vacancy.Title,
		Score:        result.Score,
		Breakdown:    result.Breakdown,
		Status:       status,
		Observations: req.Observations,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch status {
	case matching.MatchStatusApproved:
		m.ApprovedAt = &now
	case matching.MatchStatusHired:
		m.HiredAt = &now
	}

	if req.LinkedProposalID != nil && !req.LinkedProposalID.IsEmpty() {
		if err := m.LinkProposal(*req.LinkedProposalID, now); err != nil {
			return nil, err
		}
	}

	if err := s.insert(ctx, m, req.ID.IsEmpty()); err != nil {
		return nil, errx.Wrap(err, "failed to create match", errx.TypeInternal)
	}

	s.publish(matching.EventMatchCreated, m, "")
	if m.Status == matching.MatchStatusHired {
		s.publish(matching.EventMatchHired, m, "")
	}

	return matching.NewMatchResponse(m), nil
}

// insert stores m, drawing a new id when a generated one is already taken
func (s *Service) insert(ctx context.Context, m *matching.Match, generatedID bool) error {
	for attempt := 1; ; attempt++ {
		err := s.repo.Create(ctx, m)
		if err == nil || !generatedID || attempt == maxGeneratedIDAttempts || !errx.IsCode(err, matching.CodeMatchIDTaken) {
			return err
		}
		m.ID = matching.NewMatchID(m.CreatedAt)
	}
}

// Get retrieves a match with fresh recommendations
func (s *Service) Get(ctx context.Context, id kernel.MatchID) (*matching.MatchResponse, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errx.Wrap(err, "failed to get match", errx.TypeInternal)
	}

	return matching.NewMatchResponse(m), nil
}

// List retrieves matches ordered by score. MinScore is applied after the
// store query, so Limit is applied here too when it is set.
func (s *Service) List(ctx context.Context, filter matching.ListFilter) ([]matching.Match, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query := filter
	if filter.MinScore != nil {
		query.MinScore = nil
		query.Limit = 0
	}

	matches, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list matches", errx.TypeInternal)
	}

	if filter.MinScore != nil {
		kept := matches[:0]
		for _, m := range matches {
			if m.Score >= *filter.MinScore {
				kept = append(kept, m)
			}
		}
		matches = kept
		if filter.Limit > 0 && len(matches) > filter.Limit {
			matches = matches[:filter.Limit]
		}
	}

	matching.SortByScore(matches)
	return matches, nil
}

// ListByWorker retrieves all matches of a worker
func (s *Service) ListByWorker(ctx context.Context, workerID kernel.WorkerID) ([]matching.Match, error) {
	if workerID.IsEmpty() {
		return nil, matching.ErrWorkerRequired()
	}
	return s.List(ctx, matching.ListFilter{WorkerID: workerID})
}

// ListByVacancy retrieves all matches of a vacancy
func (s *Service) ListByVacancy(ctx context.Context, vacancyID kernel.VacancyID) ([]matching.Match, error) {
	if vacancyID.IsEmpty() {
		return nil, matching.ErrVacancyRequired()
	}
	return s.List(ctx, matching.ListFilter{VacancyID: vacancyID})
}

// ListByCompany retrieves all matches of a company
func (s *Service) ListByCompany(ctx context.Context, companyID kernel.CompanyID) ([]matching.Match, error) {
	if companyID.IsEmpty() {
		return nil, matching.ErrCompanyRequired()
	}
	return s.List(ctx, matching.ListFilter{CompanyID: companyID})
}

// ListPending retrieves matches awaiting review, pending and preloaded
func (s *Service) ListPending(ctx context.Context, companyID kernel.CompanyID, limit int) ([]matching.Match, error) {
	if limit <= 0 {
		limit = matching.DefaultPendingLimit
	}

	return s.List(ctx, matching.ListFilter{
		Statuses:  []matching.MatchStatus{matching.MatchStatusPending, matching.MatchStatusPreloaded},
		CompanyID: companyID,
		Limit:     limit,
	})
}

// Update applies PATCH semantics to a match
func (s *Service) Update(ctx context.Context, id kernel.MatchID, req matching.UpdateMatchRequest) (*matching.MatchResponse, error) {
	if req.IsEmpty() {
		return nil, matching.ErrInvalidRequest().WithDetail("reason", "no fields to update")
	}
	if req.Status != nil && !req.Status.IsValid() {
		return nil, matching.ErrInvalidStatus().
			WithDetail("status", *req.Status).
			WithDetail("allowed", matching.AllStatuses)
	}
	if req.LinkedProposalID != nil && req.LinkedProposalID.IsEmpty() {
		return nil, matching.ErrProposalRequired()
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errx.Wrap(err, "failed to get match", errx.TypeInternal)
	}

	previous := m.Status
	now := s.now()

	switch {
	case req.Status != nil:
		if err := m.UpdateStatus(*req.Status, req.Observations, now); err != nil {
			return nil, err
		}
	case req.Observations != nil:
		m.Observations = *req.Observations
		m.UpdatedAt = now
	}

	if req.LinkedProposalID != nil {
		if err := m.LinkProposal(*req.LinkedProposalID, now); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, errx.Wrap(err, "failed to update match", errx.TypeInternal)
	}

	s.publishTransition(m, previous)
	return matching.NewMatchResponse(m), nil
}

// UpdateStatus moves a match through the state machine
func (s *Service) UpdateStatus(ctx context.Context, id kernel.MatchID, req matching.UpdateStatusRequest) (*matching.MatchResponse, error) {
	if !req.Status.IsValid() {
		return nil, matching.ErrInvalidStatus().
			WithDetail("status", req.Status).
			WithDetail("allowed", matching.AllStatuses)
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errx.Wrap(err, "failed to get match", errx.TypeInternal)
	}

	previous := m.Status
	if err := m.UpdateStatus(req.Status, req.Observations, s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, errx.Wrap(err, "failed to update match status", errx.TypeInternal)
	}

	s.publishTransition(m, previous)
	return matching.NewMatchResponse(m), nil
}

// Delete removes a match that is still pending
func (s *Service) Delete(ctx context.Context, id kernel.MatchID) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return errx.Wrap(err, "failed to get match", errx.TypeInternal)
	}

	if !m.CanBeDeleted() {
		return matching.ErrMatchNotDeletable().
			WithDetail("match_id", id.String()).
			WithDetail("status", m.Status)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return errx.Wrap(err, "failed to delete match", errx.TypeInternal)
	}

	s.publish(matching.EventMatchDeleted, m, "")
	return nil
}

// LinkProposal attaches a downstream proposal and approves the match
func (s *Service) LinkProposal(ctx context.Context, id kernel.MatchID, proposalID kernel.ProposalID) (*matching.MatchResponse, error) {
	if proposalID.IsEmpty() {
		return nil, matching.ErrProposalRequired()
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errx.Wrap(err, "failed to get match", errx.TypeInternal)
	}

	previous := m.Status
	if err := m.LinkProposal(proposalID, s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, errx.Wrap(err, "failed to link proposal", errx.TypeInternal)
	}

	s.publishTransition(m, previous)
	return matching.NewMatchResponse(m), nil
}

// Calculate scores a pair without persisting anything
func (s *Service) Calculate(ctx context.Context, req matching.CalculateRequest) (*matching.CalculateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	worker, err := s.profiles.GetWorker(ctx, req.WorkerID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to load worker", errx.TypeInternal)
	}

	vacancy, err := s.profiles.GetVacancy(ctx, req.VacancyID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to load vacancy", errx.TypeInternal)
	}

	result := matching.ComputeScore(worker, vacancy, s.now())

	return &matching.CalculateResponse{
		WorkerID:        worker.ID,
		WorkerName:      worker.FullName(),
		VacancyID:       vacancy.ID,
		VacancyTitle:    vacancy.Title,
		CompanyID:       vacancy.CompanyID,
		Score:           result.Score,
		Breakdown:       result.Breakdown,
		Recommendations: matching.Recommend(result.Score, result.Breakdown),
		Analysis:        matching.Analyze(worker, vacancy),
	}, nil
}

// Top retrieves the best scored matches. Zero values select the defaults.
func (s *Service) Top(ctx context.Context, limit int, minScore *float64) ([]matching.Match, error) {
	if limit == 0 {
		limit = matching.DefaultTopLimit
	}
	if limit < 0 || limit > matching.MaxTopLimit {
		return nil, matching.ErrInvalidLimit().
			WithDetail("limit", limit).
			WithDetail("max", matching.MaxTopLimit)
	}

	threshold := matching.DefaultTopMinScore
	if minScore != nil {
		threshold = *minScore
	}
	if threshold < 0 || threshold > matching.MaxScore {
		return nil, matching.ErrInvalidMinScore().WithDetail("minScore", threshold)
	}

	matches, err := s.repo.Top(ctx, threshold, limit)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list top matches", errx.TypeInternal)
	}

	matching.SortByScore(matches)
	return matches, nil
}

// ============================================================================
// Events
// ============================================================================

func (s *Service) publish(eventType matching.EventType, m *matching.Match, previous matching.MatchStatus) {
	s.publisher.Publish(matching.Event{
		Type:           eventType,
		Match:          *m,
		PreviousStatus: previous,
		OccurredAt:     m.UpdatedAt,
	})
}

// publishTransition emits status_changed, plus hired when the match was just placed
func (s *Service) publishTransition(m *matching.Match, previous matching.MatchStatus) {
	if m.Status == previous {
		return
	}

	s.publish(matching.EventMatchStatusChanged, m, previous)
	if m.Status == matching.MatchStatusHired {
		s.publish(matching.EventMatchHired, m, previous)
	}
}
