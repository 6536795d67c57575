package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/logx"
	"github.com/Abraxas-365/bolsa/placement/matching"
)

// Processor runs a single generation task attempt
type Processor interface {
	Process(ctx context.Context, task *matching.GenerationTask) error
}

// Config tunes the worker pool
type Config struct {
	Workers         int           `mapstructure:"workers"`
	DequeueTimeout  time.Duration `mapstructure:"dequeue_timeout"`
	DelayedInterval time.Duration `mapstructure:"delayed_interval"`
}

// DefaultConfig returns 2 workers, 5s dequeue timeout and a 30s delayed mover
func DefaultConfig() Config {
	return Config{
		Workers:         2,
		DequeueTimeout:  5 * time.Second,
		DelayedInterval: 30 * time.Second,
	}
}

type GenerationWorker struct {
	processor Processor
	queue     matching.TaskQueue
	cfg       Config
	wg        sync.WaitGroup
}

func NewGenerationWorker(processor Processor, queue matching.TaskQueue, cfg Config) *GenerationWorker {
	defaults := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.DequeueTimeout <= 0 {
		cfg.DequeueTimeout = defaults.DequeueTimeout
	}
	if cfg.DelayedInterval <= 0 {
		cfg.DelayedInterval = defaults.DelayedInterval
	}
	return &GenerationWorker{
		processor: processor,
		queue:     queue,
		cfg:       cfg,
	}
}

// Start launches the pool and the delayed task mover. They stop when ctx is done.
func (w *GenerationWorker) Start(ctx context.Context) {
	logx.Infof("Starting %d generation workers", w.cfg.Workers)

	w.wg.Add(1)
	go w.moveDelayedTasks(ctx)

	for i := 0; i < w.cfg.Workers; i++ {
		w.wg.Add(1)
		go w.processTasks(ctx, i)
	}
}

// Wait blocks until every goroutine started by Start has returned
func (w *GenerationWorker) Wait() {
	w.wg.Wait()
}

func (w *GenerationWorker) processTasks(ctx context.Context, workerID int) {
	defer w.wg.Done()
	logx.Infof("Worker %d started", workerID)

	for {
		select {
		case <-ctx.Done():
			logx.Infof("Worker %d stopping", workerID)
			return
		default:
			w.processNext(ctx, workerID)
		}
	}
}

// processNext handles at most one task
func (w *GenerationWorker) processNext(ctx context.Context, workerID int) {
	data, err := w.queue.Dequeue(ctx, w.cfg.DequeueTimeout)
	if err != nil {
		if ctx.Err() == nil {
			logx.Errorf("Worker %d dequeue error: %v", workerID, err)
		}
		return
	}

	// queue timeout, no tasks available
	if len(data) == 0 {
		return
	}

	var task matching.GenerationTask
	if err := json.Unmarshal(data, &task); err != nil {
		logx.Errorf("Worker %d unmarshal error: %v (data: %s)", workerID, err, string(data))
		return
	}

	logx.Infof("Worker %d processing task: %s", workerID, task.ID)
	if err := w.processor.Process(ctx, &task); err != nil {
		if ctx.Err() != nil {
			logx.Warnf("Worker %d task interrupted by shutdown: %s", workerID, task.ID)
			return
		}
		logx.Errorf("Worker %d task failed: %v", workerID, err)
	}
}

func (w *GenerationWorker) moveDelayedTasks(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.DelayedInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.moveDelayed(ctx)
		}
	}
}

func (w *GenerationWorker) moveDelayed(ctx context.Context) {
	count, err := w.queue.MoveDelayedToReady(ctx)
	if err != nil {
		logx.Errorf("Failed to move delayed tasks: %v", err)
	} else if count > 0 {
		logx.Infof("Moved %d delayed tasks to ready queue", count)
	}
}
