package matching

import (
	"time"

	"github.com/Abraxas-365/bolsa/pkg/kernel"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

const DefaultTaskMaxAttempts = 3

// GenerationTask is a queued bulk generation that always persists
type GenerationTask struct {
	ID           kernel.TaskID   `json:"id"`
	Kind         AnchorKind      `json:"kind"`
	AnchorID     string          `json:"anchorId"`
	Options      GenerateOptions `json:"options"`
	Status       TaskStatus      `json:"status"`
	AttemptCount int             `json:"attemptCount"`
	MaxAttempts  int             `json:"maxAttempts"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	Persisted    int             `json:"persisted"`
	TotalFound   int             `json:"totalFound"`
	CreatedAt    time.Time       `json:"createdAt"`
	StartedAt    *time.Time      `json:"startedAt,omitempty"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
	NextRetryAt  *time.Time      `json:"nextRetryAt,omitempty"`
}

// CanRetry checks if another attempt is allowed
func (t *GenerationTask) CanRetry() bool {
	return t.AttemptCount < t.MaxAttempts
}

// MarkProcessing records the start of an attempt
func (t *GenerationTask) MarkProcessing(now time.Time) {
	t.Status = TaskStatusProcessing
	t.AttemptCount++
	t.StartedAt = &now
	t.NextRetryAt = nil
}

// MarkCompleted records a successful run
func (t *GenerationTask) MarkCompleted(result *GenerateResult, now time.Time) {
	t.Status = TaskStatusCompleted
	t.Persisted = result.Persisted
	t.TotalFound = result.TotalFound
	t.ErrorMessage = ""
	t.CompletedAt = &now
}

// MarkInterrupted returns a task to pending without counting the attempt
func (t *GenerationTask) MarkInterrupted() {
	t.Status = TaskStatusPending
	if t.AttemptCount > 0 {
		t.AttemptCount--
	}
	t.StartedAt = nil
	t.NextRetryAt = nil
}

// MarkRetry schedules another attempt
func (t *GenerationTask) MarkRetry(err error, at time.Time) {
	t.Status = TaskStatusPending
	t.ErrorMessage = err.Error()
	t.NextRetryAt = &at
}

// MarkFailed records a final failure
func (t *GenerationTask) MarkFailed(err error, now time.Time) {
	t.Status = TaskStatusFailed
	t.ErrorMessage = err.Error()
	t.CompletedAt = &now
}
