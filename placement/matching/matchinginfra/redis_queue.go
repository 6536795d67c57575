package matchinginfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/kernel"
	"github.com/Abraxas-365/bolsa/placement/matching"
	"github.com/redis/go-redis/v9"
)

// DefaultStatusTTL keeps finished task states around for polling
const DefaultStatusTTL = 24 * time.Hour

// RedisTaskQueue implements matching.TaskQueue using Redis
type RedisTaskQueue struct {
	client    *redis.Client
	queueName string
	statusTTL time.Duration
	now       func() time.Time
}

// NewRedisTaskQueue creates a new Redis-based generation queue
func NewRedisTaskQueue(client *redis.Client, queueName string, statusTTL time.Duration) *RedisTaskQueue {
	if statusTTL <= 0 {
		statusTTL = DefaultStatusTTL
	}
	return &RedisTaskQueue{
		client:    client,
		queueName: queueName,
		statusTTL: statusTTL,
		now:       time.Now,
	}
}

func (q *RedisTaskQueue) delayedQueue() string {
	return q.queueName + ":delayed"
}

func (q *RedisTaskQueue) statusKey(id kernel.TaskID) string {
	return q.queueName + ":status:" + id.String()
}

// Enqueue adds a task to the ready queue
func (q *RedisTaskQueue) Enqueue(ctx context.Context, task *matching.GenerationTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", task.ID, err)
	}

	if err := q.client.LPush(ctx, q.queueName, data).Err(); err != nil {
		return fmt.Errorf("enqueue task %s: %w", task.ID, err)
	}

	return nil
}

// Dequeue gets a task from the queue (blocking with timeout)
func (q *RedisTaskQueue) Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue task: %w", err)
	}

	if len(result) < 2 {
		return nil, fmt.Errorf("invalid result from queue: expected 2 elements, got %d", len(result))
	}

	return []byte(result[1]), nil
}

// EnqueueDelayed schedules a task for a later retry
func (q *RedisTaskQueue) EnqueueDelayed(ctx context.Context, task *matching.GenerationTask, delay time.Duration) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal delayed task %s: %w", task.ID, err)
	}

	score := float64(q.now().Add(delay).Unix())
	if err := q.client.ZAdd(ctx, q.delayedQueue(), redis.Z{
		Score:  score,
		Member: data,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue delayed task %s: %w", task.ID, err)
	}

	return nil
}

// MoveDelayedToReady moves due tasks to the ready queue
func (q *RedisTaskQueue) MoveDelayedToReady(ctx context.Context) (int, error) {
	tasks, err := q.client.ZRangeByScore(ctx, q.delayedQueue(), &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", q.now().Unix()),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("get delayed tasks: %w", err)
	}

	if len(tasks) == 0 {
		return 0, nil
	}

	pipe := q.client.TxPipeline()
	for _, task := range tasks {
		pipe.LPush(ctx, q.queueName, task)
		pipe.ZRem(ctx, q.delayedQueue(), task)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("move delayed tasks to ready: %w", err)
	}

	return len(tasks), nil
}

// SaveStatus records the latest task state
func (q *RedisTaskQueue) SaveStatus(ctx context.Context, task *matching.GenerationTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task status %s: %w", task.ID, err)
	}

	if err := q.client.Set(ctx, q.statusKey(task.ID), data, q.statusTTL).Err(); err != nil {
		return fmt.Errorf("save task status %s: %w", task.ID, err)
	}

	return nil
}

// GetStatus retrieves the latest task state
func (q *RedisTaskQueue) GetStatus(ctx context.Context, id kernel.TaskID) (*matching.GenerationTask, error) {
	data, err := q.client.Get(ctx, q.statusKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, matching.ErrTaskNotFound().WithDetail("task_id", id.String())
		}
		return nil, fmt.Errorf("get task status %s: %w", id, err)
	}

	var task matching.GenerationTask
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("unmarshal task status %s: %w", id, err)
	}

	return &task, nil
}

// Stats returns ready and delayed queue sizes
func (q *RedisTaskQueue) Stats(ctx context.Context) (ready, delayed int64, err error) {
	pipe := q.client.Pipeline()
	readyCmd := pipe.LLen(ctx, q.queueName)
	delayedCmd := pipe.ZCard(ctx, q.delayedQueue())

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("get queue stats: %w", err)
	}

	return readyCmd.Val(), delayedCmd.Val(), nil
}

// Ping checks if Redis connection is alive
func (q *RedisTaskQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}
