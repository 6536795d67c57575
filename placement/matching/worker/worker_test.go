package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/kernel"
	"github.com/Abraxas-365/bolsa/pkg/logx"
	"github.com/Abraxas-365/bolsa/placement/matching"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// chanQueue is an in-memory TaskQueue backed by a channel
type chanQueue struct {
	ready      chan []byte
	moved      atomic.Int32
	dequeueErr error
}

func newChanQueue() *chanQueue {
	return &chanQueue{ready: make(chan []byte, 16)}
}

func (q *chanQueue) push(t *testing.T, task matching.GenerationTask) {
	data, err := json.Marshal(task)
	require.NoError(t, err)
	q.ready <- data
}

func (q *chanQueue) Enqueue(context.Context, *matching.GenerationTask) error { return nil }

func (q *chanQueue) Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error) {
	if q.dequeueErr != nil {
		return nil, q.dequeueErr
	}
	select {
	case data := <-q.ready:
		return data, nil
	case <-time.After(timeout):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *chanQueue) EnqueueDelayed(context.Context, *matching.GenerationTask, time.Duration) error {
	return nil
}

func (q *chanQueue) MoveDelayedToReady(context.Context) (int, error) {
	q.moved.Add(1)
	return 0, nil
}

func (q *chanQueue) SaveStatus(context.Context, *matching.GenerationTask) error { return nil }

func (q *chanQueue) GetStatus(context.Context, kernel.TaskID) (*matching.GenerationTask, error) {
	return nil, matching.ErrTaskNotFound()
}

type recordingProcessor struct {
	mu   sync.Mutex
	seen []kernel.TaskID
	done chan struct{}
	err  error
}

func (p *recordingProcessor) Process(_ context.Context, task *matching.GenerationTask) error {
	p.mu.Lock()
	p.seen = append(p.seen, task.ID)
	p.mu.Unlock()
	if p.done != nil {
		p.done <- struct{}{}
	}
	return p.err
}

func TestGenerationWorker_ProcessesQueuedTasks(t *testing.T) {
	queue := newChanQueue()
	processor := &recordingProcessor{done: make(chan struct{}, 4)}
	w := NewGenerationWorker(processor, queue, Config{
		Workers:         2,
		DequeueTimeout:  20 * time.Millisecond,
		DelayedInterval: 10 * time.Millisecond,
	})

	queue.push(t, matching.GenerationTask{ID: "T1", Kind: matching.AnchorVacancy, AnchorID: "VAC-1"})
	queue.push(t, matching.GenerationTask{ID: "T2", Kind: matching.AnchorWorker, AnchorID: "1712345678"})

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	for range 2 {
		select {
		case <-processor.done:
		case <-time.After(2 * time.Second):
			t.Fatal("tasks were not processed")
		}
	}

	require.Eventually(t, func() bool { return queue.moved.Load() > 0 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	w.Wait()

	processor.mu.Lock()
	defer processor.mu.Unlock()
	assert.ElementsMatch(t, []kernel.TaskID{"T1", "T2"}, processor.seen)
}

func TestGenerationWorker_ProcessNext(t *testing.T) {
	t.Run("bad payload is logged and skipped", func(t *testing.T) {
		core, recorded := observer.New(zapcore.ErrorLevel)
		restore := logx.ReplaceLogger(zap.New(core))
		defer restore()

		queue := newChanQueue()
		queue.ready <- []byte("{not json")
		processor := &recordingProcessor{}
		w := NewGenerationWorker(processor, queue, Config{DequeueTimeout: 10 * time.Millisecond})

		w.processNext(context.Background(), 0)

		assert.Empty(t, processor.seen)
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("processor failure is logged", func(t *testing.T) {
		core, recorded := observer.New(zapcore.ErrorLevel)
		restore := logx.ReplaceLogger(zap.New(core))
		defer restore()

		queue := newChanQueue()
		queue.push(t, matching.GenerationTask{ID: "T1"})
		processor := &recordingProcessor{err: errors.New("boom")}
		w := NewGenerationWorker(processor, queue, Config{DequeueTimeout: 10 * time.Millisecond})

		w.processNext(context.Background(), 0)

		assert.Equal(t, []kernel.TaskID{"T1"}, processor.seen)
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("dequeue error is logged", func(t *testing.T) {
		core, recorded := observer.New(zapcore.ErrorLevel)
		restore := logx.ReplaceLogger(zap.New(core))
		defer restore()

		queue := newChanQueue()
		queue.dequeueErr = errors.New("connection reset")
		w := NewGenerationWorker(&recordingProcessor{}, queue, Config{})

		w.processNext(context.Background(), 3)

		assert.Equal(t, 1, recorded.FilterMessage("Worker 3 dequeue error: connection reset").Len())
	})

	t.Run("timeout is silent", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		restore := logx.ReplaceLogger(zap.New(core))
		defer restore()

		w := NewGenerationWorker(&recordingProcessor{}, newChanQueue(), Config{DequeueTimeout: 5 * time.Millisecond})

		w.processNext(context.Background(), 0)

		assert.Zero(t, recorded.Len())
	})
}

func TestNewGenerationWorker_Defaults(t *testing.T) {
	w := NewGenerationWorker(&recordingProcessor{}, newChanQueue(), Config{})

	assert.Equal(t, DefaultConfig(), w.cfg)
}
