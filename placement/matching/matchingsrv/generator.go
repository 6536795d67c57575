package matchingsrv

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/errx"
	"github.com/Abraxas-365/bolsa/pkg/kernel"
	"github.com/Abraxas-365/bolsa/pkg/logx"
	"github.com/Abraxas-365/bolsa/placement/matching"
	"github.com/Abraxas-365/bolsa/placement/profile"
)

// DefaultLockTTL bounds how long a persisting generation holds its anchor
const DefaultLockTTL = 30 * time.Second

// Generator scores an anchor against its whole candidate pool
type Generator struct {
	repo      matching.Repository
	profiles  profile.Reader
	locker    matching.Locker
	publisher matching.EventPublisher
	lockTTL   time.Duration
	now       func() time.Time
}

// NewGenerator creates a bulk generator. A nil locker disables anchor locking.
func NewGenerator(
	repo matching.Repository,
	profiles profile.Reader,
	locker matching.Locker,
	publisher matching.EventPublisher,
	lockTTL time.Duration,
) *Generator {
	if publisher == nil {
		publisher = matching.NopPublisher{}
	}
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &Generator{
		repo:      repo,
		profiles:  profiles,
		locker:    locker,
		publisher: publisher,
		lockTTL:   lockTTL,
		now:       time.Now,
	}
}

// GenerateForVacancy ranks published workers against a vacancy
func (g *Generator) GenerateForVacancy(ctx context.Context, vacancyID kernel.VacancyID, opts matching.GenerateOptions) (*matching.GenerateResult, error) {
	if vacancyID.IsEmpty() {
		return nil, matching.ErrVacancyRequired()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	vacancy, err := g.profiles.GetVacancy(ctx, vacancyID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to load vacancy", errx.TypeInternal)
	}

	run := func(ctx context.Context) (*matching.GenerateResult, error) {
		workers, err := g.profiles.ListPublishedWorkers(ctx)
		if err != nil {
			return nil, errx.Wrap(err, "failed to load workers", errx.TypeInternal)
		}

		now := g.now()
		candidates := make([]matching.Candidate, 0, len(workers))
		for i := range workers {
			w := &workers[i]
			candidates = append(candidates, newCandidate(w, vacancy, matching.ComputeScore(w, vacancy, now)))
		}
		return g.finish(ctx, matching.AnchorVacancy, vacancyID.String(), opts, candidates)
	}

	return g.withAnchorLock(ctx, matching.AnchorVacancy, vacancyID.String(), opts, run)
}

// GenerateForWorker ranks active vacancies against a worker
func (g *Generator) GenerateForWorker(ctx context.Context, workerID kernel.WorkerID, opts matching.GenerateOptions) (*matching.GenerateResult, error) {
	if workerID.IsEmpty() {
		return nil, matching.ErrWorkerRequired()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	worker, err := g.profiles.GetWorker(ctx, workerID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to load worker", errx.TypeInternal)
	}

	run := func(ctx context.Context) (*matching.GenerateResult, error) {
		vacancies, err := g.profiles.ListActiveVacancies(ctx)
		if err != nil {
			return nil, errx.Wrap(err, "failed to load vacancies", errx.TypeInternal)
		}

		now := g.now()
		candidates := make([]matching.Candidate, 0, len(vacancies))
		for i := range vacancies {
			v := &vacancies[i]
			candidates = append(candidates, newCandidate(worker, v, matching.ComputeScore(worker, v, now)))
		}
		return g.finish(ctx, matching.AnchorWorker, workerID.String(), opts, candidates)
	}

	return g.withAnchorLock(ctx, matching.AnchorWorker, workerID.String(), opts, run)
}

// Generate dispatches on the anchor kind
func (g *Generator) Generate(ctx context.Context, kind matching.AnchorKind, anchorID string, opts matching.GenerateOptions) (*matching.GenerateResult, error) {
	switch kind {
	case matching.AnchorVacancy:
		return g.GenerateForVacancy(ctx, kernel.VacancyID(anchorID), opts)
	case matching.AnchorWorker:
		return g.GenerateForWorker(ctx, kernel.WorkerID(anchorID), opts)
	default:
		return nil, matching.ErrInvalidRequest().WithDetail("kind", kind)
	}
}

// AnchorExists checks that the anchor can be loaded
func (g *Generator) AnchorExists(ctx context.Context, kind matching.AnchorKind, anchorID string) error {
	var err error
	switch kind {
	case matching.AnchorVacancy:
		_, err = g.profiles.GetVacancy(ctx, kernel.VacancyID(anchorID))
	case matching.AnchorWorker:
		_, err = g.profiles.GetWorker(ctx, kernel.WorkerID(anchorID))
	default:
		return matching.ErrInvalidRequest().WithDetail("kind", kind)
	}
	if err != nil {
		return errx.Wrap(err, "failed to load anchor", errx.TypeInternal)
	}
	return nil
}

func lockKey(kind matching.AnchorKind, anchorID string) string {
	return fmt.Sprintf("matching:generate:%s:%s", kind, anchorID)
}

func (g *Generator) withAnchorLock(
	ctx context.Context,
	kind matching.AnchorKind,
	anchorID string,
	opts matching.GenerateOptions,
	run func(context.Context) (*matching.GenerateResult, error),
) (*matching.GenerateResult, error) {
	if !opts.Persist || g.locker == nil {
		return run(ctx)
	}

	key := lockKey(kind, anchorID)
	token, ok, err := g.locker.TryLock(ctx, key, g.lockTTL)
	if err != nil {
		return nil, errx.Wrap(err, "failed to acquire generation lock", errx.TypeInternal)
	}
	if !ok {
		return nil, matching.ErrGenerationInProgress().
			WithDetail("anchor_kind", kind).
			WithDetail("anchor_id", anchorID)
	}
	defer func() {
		if err := g.locker.Unlock(context.Background(), key, token); err != nil {
			logx.Warnw("failed to release generation lock", "key", key, "error", err)
		}
	}()

	return run(ctx)
}

func newCandidate(w *profile.Worker, v *profile.Vacancy, result matching.ScoreResult) matching.Candidate {
	return matching.Candidate{
		WorkerID:        w.ID,
		WorkerName:      w.FullName(),
		VacancyID:       v.ID,
		VacancyTitle:    v.Title,
		CompanyID:       v.CompanyID,
		Score:           result.Score,
		Breakdown:       result.Breakdown,
		Recommendations: matching.Recommend(result.Score, result.Breakdown),
	}
}

// finish filters, ranks, truncates and optionally persists candidates
func (g *Generator) finish(
	ctx context.Context,
	kind matching.AnchorKind,
	anchorID string,
	opts matching.GenerateOptions,
	scored []matching.Candidate,
) (*matching.GenerateResult, error) {
	kept := make([]matching.Candidate, 0, len(scored))
	for _, c := range scored {
		if c.Score >= opts.MinScore {
			kept = append(kept, c)
		}
	}

	slices.SortStableFunc(kept, func(a, b matching.Candidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	result := &matching.GenerateResult{
		AnchorKind: kind,
		AnchorID:   anchorID,
		Options:    opts,
		TotalFound: len(kept),
	}

	if len(kept) > opts.Limit {
		kept = kept[:opts.Limit]
	}
	result.Candidates = kept

	if opts.Persist {
		if err := g.persist(ctx, result); err != nil {
			return nil, err
		}
	}

	logx.Infow("matches generated",
		"anchor_kind", kind,
		"anchor_id", anchorID,
		"scored", len(scored),
		"returned", len(result.Candidates),
		"persisted", result.Persisted,
	)
	return result, nil
}

// persist stores new pairs as preloaded matches in a single batch
func (g *Generator) persist(ctx context.Context, result *matching.GenerateResult) error {
	now := g.now()
	pending := make([]matching.Match, 0, len(result.Candidates))
	positions := make([]int, 0, len(result.Candidates))

	for i := range result.Candidates {
		c := &result.Candidates[i]

		exists, err := g.repo.ExistsByPair(ctx, c.WorkerID, c.VacancyID)
		if err != nil {
			return errx.Wrap(err, "failed to check existing match", errx.TypeInternal)
		}
		if exists {
			c.AlreadyExisted = true
			result.Skipped++
			continue
		}

		m := matching.Match{
			ID:           matching.NewMatchID(now),
			WorkerID:     c.WorkerID,
			VacancyID:    c.VacancyID,
			CompanyID:    c.CompanyID,
			WorkerName:   c.WorkerName,
			VacancyTitle: c.VacancyTitle,
			Score:        c.Score,
			Breakdown:    c.Breakdown,
			Status:       matching.MatchStatusPreloaded,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		positions = append(positions, i)
		pending = append(pending, m)
	}

	if len(pending) == 0 {
		return nil
	}

	inserted, err := g.repo.CreateBatch(ctx, pending)
	if err != nil {
		return errx.Wrap(err, "failed to persist generated matches", errx.TypeInternal)
	}

	created := make(map[kernel.MatchID]struct{}, len(inserted))
	for _, id := range inserted {
		created[id] = struct{}{}
	}

	for j, m := range pending {
		c := &result.Candidates[positions[j]]
		if _, ok := created[m.ID]; !ok {
			// lost the pair to a concurrent writer
			c.AlreadyExisted = true
			result.Skipped++
			continue
		}

		id := m.ID
		c.MatchID = &id
		c.Persisted = true
		result.Persisted++

		g.publisher.Publish(matching.Event{
			Type:       matching.EventMatchCreated,
			Match:      m,
			OccurredAt: now,
		})
	}

	return nil
}
