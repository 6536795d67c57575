package matchingsrv

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/kernel"
	"github.com/Abraxas-365/bolsa/placement/matching"
	"github.com/Abraxas-365/bolsa/placement/profile"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type mockRepository struct {
	CreateFunc       func(ctx context.Context, m *matching.Match) error
	CreateBatchFunc  func(ctx context.Context, matches []matching.Match) ([]kernel.MatchID, error)
	GetByIDFunc      func(ctx context.Context, id kernel.MatchID) (*matching.Match, error)
	UpdateFunc       func(ctx context.Context, m *matching.Match) error
	DeleteFunc       func(ctx context.Context, id kernel.MatchID) error
	ListFunc         func(ctx context.Context, filter matching.ListFilter) ([]matching.Match, error)
	TopFunc          func(ctx context.Context, minScore float64, limit int) ([]matching.Match, error)
	ExistsByPairFunc func(ctx context.Context, workerID kernel.WorkerID, vacancyID kernel.VacancyID) (bool, error)
}

func (m *mockRepository) Create(ctx context.Context, match *matching.Match) error {
	if m.CreateFunc == nil {
		return nil
	}
	return m.CreateFunc(ctx, match)
}

func (m *mockRepository) CreateBatch(ctx context.Context, matches []matching.Match) ([]kernel.MatchID, error) {
	if m.CreateBatchFunc == nil {
		ids := make([]kernel.MatchID, 0, len(matches))
		for _, match := range matches {
			ids = append(ids, match.ID)
		}
		return ids, nil
	}
	return m.CreateBatchFunc(ctx, matches)
}

func (m *mockRepository) GetByID(ctx context.Context, id kernel.MatchID) (*matching.Match, error) {
	if m.GetByIDFunc == nil {
		return nil, matching.ErrMatchNotFound()
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *mockRepository) Update(ctx context.Context, match *matching.Match) error {
	if m.UpdateFunc == nil {
		return nil
	}
	return m.UpdateFunc(ctx, match)
}

func (m *mockRepository) Delete(ctx context.Context, id kernel.MatchID) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, id)
}

func (m *mockRepository) List(ctx context.Context, filter matching.ListFilter) ([]matching.Match, error) {
	if m.ListFunc == nil {
		return []matching.Match{}, nil
	}
	return m.ListFunc(ctx, filter)
}

func (m *mockRepository) Top(ctx context.Context, minScore float64, limit int) ([]matching.Match, error) {
	if m.TopFunc == nil {
		return []matching.Match{}, nil
	}
	return m.TopFunc(ctx, minScore, limit)
}

func (m *mockRepository) ExistsByPair(ctx context.Context, workerID kernel.WorkerID, vacancyID kernel.VacancyID) (bool, error) {
	if m.ExistsByPairFunc == nil {
		return false, nil
	}
	return m.ExistsByPairFunc(ctx, workerID, vacancyID)
}

// stubReader serves profiles from memory
type stubReader struct {
	workers   map[kernel.WorkerID]profile.Worker
	vacancies map[kernel.VacancyID]profile.Vacancy
	listErr   error
}

func newStubReader(workers []profile.Worker, vacancies []profile.Vacancy) *stubReader {
	r := &stubReader{
		workers:   make(map[kernel.WorkerID]profile.Worker),
		vacancies: make(map[kernel.VacancyID]profile.Vacancy),
	}
	for _, w := range workers {
		r.workers[w.ID] = w
	}
	for _, v := range vacancies {
		r.vacancies[v.ID] = v
	}
	return r
}

func (r *stubReader) GetWorker(_ context.Context, id kernel.WorkerID) (*profile.Worker, error) {
	w, ok := r.workers[id]
	if !ok {
		return nil, profile.ErrWorkerNotFound().WithDetail("worker_id", id.String())
	}
	return &w, nil
}

func (r *stubReader) GetVacancy(_ context.Context, id kernel.VacancyID) (*profile.Vacancy, error) {
	v, ok := r.vacancies[id]
	if !ok {
		return nil, profile.ErrVacancyNotFound().WithDetail("vacancy_id", id.String())
	}
	return &v, nil
}

func (r *stubReader) ListPublishedWorkers(context.Context) ([]profile.Worker, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]profile.Worker, 0, len(r.workers))
	for _, w := range r.workers {
		if w.IsPublished() {
			out = append(out, w)
		}
	}
	slices.SortFunc(out, func(a, b profile.Worker) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *stubReader) ListActiveVacancies(context.Context) ([]profile.Vacancy, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]profile.Vacancy, 0, len(r.vacancies))
	for _, v := range r.vacancies {
		if v.IsActive() {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b profile.Vacancy) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []matching.Event
}

func (p *recordingPublisher) Publish(event matching.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []matching.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]matching.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type mockLocker struct {
	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	unlocked    []string
}

func (l *mockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l.TryLockFunc == nil {
		return "token", true, nil
	}
	return l.TryLockFunc(ctx, key, ttl)
}

func (l *mockLocker) Unlock(_ context.Context, key, _ string) error {
	l.unlocked = append(l.unlocked, key)
	return nil
}

type mockQueue struct {
	EnqueueFunc        func(ctx context.Context, task *matching.GenerationTask) error
	EnqueueDelayedFunc func(ctx context.Context, task *matching.GenerationTask, delay time.Duration) error

	enqueued []matching.GenerationTask
	delayed  []time.Duration
	statuses map[kernel.TaskID]matching.GenerationTask
}

func newMockQueue() *mockQueue {
	return &mockQueue{statuses: make(map[kernel.TaskID]matching.GenerationTask)}
}

func (q *mockQueue) Enqueue(ctx context.Context, task *matching.GenerationTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if q.EnqueueFunc != nil {
		if err := q.EnqueueFunc(ctx, task); err != nil {
			return err
		}
	}
	q.enqueued = append(q.enqueued, *task)
	return nil
}

func (q *mockQueue) Dequeue(context.Context, time.Duration) ([]byte, error) {
	return nil, nil
}

func (q *mockQueue) EnqueueDelayed(ctx context.Context, task *matching.GenerationTask, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if q.EnqueueDelayedFunc != nil {
		return q.EnqueueDelayedFunc(ctx, task, delay)
	}
	q.delayed = append(q.delayed, delay)
	return nil
}

func (q *mockQueue) MoveDelayedToReady(context.Context) (int, error) {
	return 0, nil
}

func (q *mockQueue) SaveStatus(ctx context.Context, task *matching.GenerationTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.statuses[task.ID] = *task
	return nil
}

func (q *mockQueue) GetStatus(_ context.Context, id kernel.TaskID) (*matching.GenerationTask, error) {
	task, ok := q.statuses[id]
	if !ok {
		return nil, matching.ErrTaskNotFound()
	}
	return &task, nil
}
