package matchingsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/errx"
	"github.com/Abraxas-365/bolsa/pkg/kernel"
	"github.com/Abraxas-365/bolsa/pkg/logx"
	"github.com/Abraxas-365/bolsa/placement/matching"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// Retry schedule for failed generation tasks
const (
	retryInitialInterval = 30 * time.Second
	retryMaxInterval     = 10 * time.Minute

	// bounds queue writes made after the worker context is cancelled
	shutdownWriteTimeout = 5 * time.Second
)

// AsyncGenerator queues persisting generations for the background workers
type AsyncGenerator struct {
	generator *Generator
	queue     matching.TaskQueue
	now       func() time.Time
}

// NewAsyncGenerator wires the generator to a task queue
func NewAsyncGenerator(generator *Generator, queue matching.TaskQueue) *AsyncGenerator {
	return &AsyncGenerator{
		generator: generator,
		queue:     queue,
		now:       time.Now,
	}
}

// Enqueue validates the request and queues a generation task
func (a *AsyncGenerator) Enqueue(ctx context.Context, kind matching.AnchorKind, anchorID string, opts matching.GenerateOptions) (*matching.GenerationTask, error) {
	if !kind.IsValid() {
		return nil, matching.ErrInvalidRequest().WithDetail("kind", kind)
	}
	if anchorID == "" {
		if kind == matching.AnchorVacancy {
			return nil, matching.ErrVacancyRequired()
		}
		return nil, matching.ErrWorkerRequired()
	}

	opts.Persist = true
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	// Missing anchors fail now rather than in the worker
	if err := a.generator.AnchorExists(ctx, kind, anchorID); err != nil {
		return nil, err
	}

	task := &matching.GenerationTask{
		ID:          kernel.NewTaskID(uuid.NewString()),
		Kind:        kind,
		AnchorID:    anchorID,
		Options:     opts,
		Status:      matching.TaskStatusPending,
		MaxAttempts: matching.DefaultTaskMaxAttempts,
		CreatedAt:   a.now(),
	}

	if err := a.queue.SaveStatus(ctx, task); err != nil {
		return nil, matching.ErrRegistry.NewWithCause(matching.CodeQueueEnqueueFailed, err).
			WithDetail("task_id", task.ID)
	}

	if err := a.queue.Enqueue(ctx, task); err != nil {
		task.MarkFailed(err, a.now())
		_ = a.queue.SaveStatus(ctx, task)

		return nil, matching.ErrRegistry.NewWithCause(matching.CodeQueueEnqueueFailed, err).
			WithDetail("task_id", task.ID).
			WithDetail("anchor_kind", kind).
			WithDetail("anchor_id", anchorID)
	}

	logx.Infof("Generation task queued: TaskID=%s, Anchor=%s:%s", task.ID, kind, anchorID)
	return task, nil
}

// GetTask retrieves the latest state of a task
func (a *AsyncGenerator) GetTask(ctx context.Context, id kernel.TaskID) (*matching.GenerationTask, error) {
	task, err := a.queue.GetStatus(ctx, id)
	if err != nil {
		return nil, errx.Wrap(err, "failed to get generation task", errx.TypeInternal)
	}
	return task, nil
}

// Process runs one attempt of a task, rescheduling transient failures
func (a *AsyncGenerator) Process(ctx context.Context, task *matching.GenerationTask) error {
	logx.Infof("Processing generation task: TaskID=%s, Attempt=%d/%d", task.ID, task.AttemptCount+1, task.MaxAttempts)

	task.MarkProcessing(a.now())
	if err := a.queue.SaveStatus(ctx, task); err != nil {
		logx.Warnf("Failed to save task status: TaskID=%s, Error=%v", task.ID, err)
	}

	result, err := a.generator.Generate(ctx, task.Kind, task.AnchorID, task.Options)
	if err != nil {
		return a.handleFailure(ctx, task, err)
	}

	task.MarkCompleted(result, a.now())
	if err := a.queue.SaveStatus(ctx, task); err != nil {
		logx.Errorf("Failed to mark task as completed: TaskID=%s, Error=%v", task.ID, err)
	}

	logx.Infof("Generation task completed: TaskID=%s, Persisted=%d", task.ID, result.Persisted)
	return nil
}

func (a *AsyncGenerator) handleFailure(ctx context.Context, task *matching.GenerationTask, err error) error {
	if ctx.Err() != nil {
		return a.requeueInterrupted(ctx, task, err)
	}

	if !isRetryable(err) || !task.CanRetry() {
		task.MarkFailed(err, a.now())
		if saveErr := a.queue.SaveStatus(ctx, task); saveErr != nil {
			logx.Errorf("Failed to mark task as failed: TaskID=%s, Error=%v", task.ID, saveErr)
		}
		logx.Errorf("Generation task failed: TaskID=%s, Attempt=%d/%d, Error=%v", task.ID, task.AttemptCount, task.MaxAttempts, err)
		return err
	}

	delay := RetryDelay(task.AttemptCount)
	task.MarkRetry(err, a.now().Add(delay))

	logx.Warnf("Generation task failed, will retry: TaskID=%s, Attempt=%d/%d, Delay=%s, Error=%v",
		task.ID, task.AttemptCount, task.MaxAttempts, delay, err)

	if queueErr := a.queue.EnqueueDelayed(ctx, task, delay); queueErr != nil {
		task.MarkFailed(queueErr, a.now())
		_ = a.queue.SaveStatus(ctx, task)
		return matching.ErrRegistry.NewWithCause(matching.CodeQueueEnqueueFailed, queueErr).
			WithDetail("task_id", task.ID)
	}

	if saveErr := a.queue.SaveStatus(ctx, task); saveErr != nil {
		logx.Warnf("Failed to save task status: TaskID=%s, Error=%v", task.ID, saveErr)
	}
	return err
}

// requeueInterrupted pushes a task cut short by shutdown back to the ready
// queue. The queue writes run detached from the cancelled context.
func (a *AsyncGenerator) requeueInterrupted(ctx context.Context, task *matching.GenerationTask, cause error) error {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownWriteTimeout)
	defer cancel()

	task.MarkInterrupted()
	if err := a.queue.Enqueue(writeCtx, task); err != nil {
		task.MarkFailed(err, a.now())
		_ = a.queue.SaveStatus(writeCtx, task)
		logx.Errorf("Failed to requeue interrupted task: TaskID=%s, Error=%v", task.ID, err)
		return matching.ErrRegistry.NewWithCause(matching.CodeQueueEnqueueFailed, err).
			WithDetail("task_id", task.ID)
	}

	if err := a.queue.SaveStatus(writeCtx, task); err != nil {
		logx.Warnf("Failed to save task status: TaskID=%s, Error=%v", task.ID, err)
	}

	logx.Warnf("Generation task interrupted, requeued: TaskID=%s, Error=%v", task.ID, cause)
	return cause
}

// isRetryable excludes failures that another attempt cannot fix
func isRetryable(err error) bool {
	return !errx.IsType(err, errx.TypeValidation) &&
		!errx.IsType(err, errx.TypeNotFound) &&
		!errx.IsType(err, errx.TypeBusiness)
}

// RetryDelay is the wait before attempt+1, doubling from 30s up to 10m
func RetryDelay(attempt int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	delay := retryInitialInterval
	for range max(attempt, 1) {
		delay = b.NextBackOff()
	}
	return delay
}
