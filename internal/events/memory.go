package events

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

// MemoryBus is an in-process Bus backed by a buffered channel and a fixed
// pool of workers.
type MemoryBus struct {
	queue       chan *models.ReportSubmittedEvent
	workers     int
	taskTimeout time.Duration

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewMemoryBus creates a bus with the given number of workers and queue
// capacity. Each handler call gets its own context bounded by taskTimeout.
func NewMemoryBus(workers, queueSize int, taskTimeout time.Duration) *MemoryBus {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &MemoryBus{
		queue:       make(chan *models.ReportSubmittedEvent, queueSize),
		workers:     workers,
		taskTimeout: taskTimeout,
	}
}

// Publish enqueues event. It never blocks: a full queue returns ErrQueueFull.
func (b *MemoryBus) Publish(ctx context.Context, event *models.ReportSubmittedEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case b.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the workers.
func (b *MemoryBus) Start(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started || b.closed {
		return
	}
	b.started = true

	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.work(i, handler)
	}

	log.Info().Int("workers", b.workers).Int("queue_size", cap(b.queue)).Msg("In-memory event bus started")
}

func (b *MemoryBus) work(id int, handler Handler) {
	defer b.wg.Done()
	for event := range b.queue {
		b.dispatch(id, handler, event)
	}
}

func (b *MemoryBus) dispatch(worker int, handler Handler, event *models.ReportSubmittedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), b.taskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			utils.LogPanic(r, debug.Stack())
			log.Error().
				Int("worker", worker).
				Str("event_id", event.EventID).
				Msg("Event handler panicked")
		}
	}()

	handler(ctx, event)
}

// Close stops accepting events and lets the workers drain the queue. If ctx
// expires first, Close returns its error and the workers finish in the
// background.
func (b *MemoryBus) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("In-memory event bus drained")
		return nil
	case <-ctx.Done():
		log.Warn().Int("pending", len(b.queue)).Msg("In-memory event bus closed before draining")
		return ctx.Err()
	}
}
