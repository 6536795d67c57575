package matching

import (
	"context"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/kernel"
)

type Repository interface {
	// Create persists a new match
	Create(ctx context.Context, match *Match) error

	// CreateBatch persists matches in one transaction, skipping pairs that
	// already exist, and returns the ids actually inserted. Ids that collide
	// with stored matches are regenerated in place.
	CreateBatch(ctx context.Context, matches []Match) ([]kernel.MatchID, error)

	// GetByID retrieves a match by ID
	GetByID(ctx context.Context, id kernel.MatchID) (*Match, error)

	// Update saves status, observations, proposal link and timestamps
	Update(ctx context.Context, match *Match) error

	// Delete deletes a match by ID
	Delete(ctx context.Context, id kernel.MatchID) error

	// List retrieves matches matching the equality filters, score descending
	List(ctx context.Context, filter ListFilter) ([]Match, error)

	// Top retrieves the best scored matches at or above minScore
	Top(ctx context.Context, minScore float64, limit int) ([]Match, error)

	// ExistsByPair checks if a match exists for a worker and vacancy
	ExistsByPair(ctx context.Context, workerID kernel.WorkerID, vacancyID kernel.VacancyID) (bool, error)
}

// EventPublisher emits lifecycle events. Implementations must not block.
type EventPublisher interface {
	Publish(event Event)
}

// Locker provides short-lived mutual exclusion across instances
type Locker interface {
	// TryLock acquires key for ttl, returning a token when acquired
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)

	// Unlock releases key if it is still held with token
	Unlock(ctx context.Context, key, token string) error
}

type TaskQueue interface {
	// Enqueue adds a task to the ready queue
	Enqueue(ctx context.Context, task *GenerationTask) error

	// Dequeue pops a raw task, returning nil when timeout elapses
	Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error)

	// EnqueueDelayed schedules a task for a later retry
	EnqueueDelayed(ctx context.Context, task *GenerationTask, delay time.Duration) error

	// MoveDelayedToReady moves due tasks to the ready queue
	MoveDelayedToReady(ctx context.Context) (int, error)

	// SaveStatus records the latest task state
	SaveStatus(ctx context.Context, task *GenerationTask) error

	// GetStatus retrieves the latest task state
	GetStatus(ctx context.Context, id kernel.TaskID) (*GenerationTask, error)
}
