package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/film-catalog/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrPoolStopped is returned by Do once Stop has been called.
var ErrPoolStopped = errors.New("worker pool: stopped")

type job struct {
	fn   func()
	done chan struct{}
}

// WorkerPool runs CPU-heavy jobs (password hashing) on a fixed number of
// goroutines so a burst of logins cannot saturate every core.
type WorkerPool struct {
	jobs    chan job
	workers int
	log     zerolog.Logger

	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWorkerPool creates a pool with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewWorkerPool(numWorkers int, log zerolog.Logger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &WorkerPool{
		jobs:    make(chan job, channelBuffer),
		workers: numWorkers,
		log:     log.With().Str("component", "hash_pool").Logger(),
	}
}

// Start launches all worker goroutines. They run until Stop is called.
func (p *WorkerPool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}
	p.log.Debug().Int("workers", p.workers).Msg("worker pool started")
}

// Stop refuses new jobs, lets the workers drain everything already queued
// and waits for them to exit. It is safe to call more than once.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.jobs)
		p.mu.Unlock()
	})
	p.wg.Wait()
	p.log.Debug().Msg("worker pool stopped")
}

// Do queues fn and blocks until a worker has run it or ctx is done. When ctx
// ends first, fn may still run later; callers must not rely on its effects.
func (p *WorkerPool) Do(ctx context.Context, fn func()) error {
	j := job{fn: fn, done: make(chan struct{})}

	// The read lock keeps Stop from closing jobs while a send is in flight.
	p.mu.RLock()
	if p.stopped {
		p.mu.RUnlock()
		return ErrPoolStopped
	}
	select {
	case p.jobs <- j:
		metrics.HashQueueDepth.Inc()
	case <-ctx.Done():
		p.mu.RUnlock()
		return fmt.Errorf("worker pool: enqueue: %w", ctx.Err())
	}
	p.mu.RUnlock()

	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker pool: wait: %w", ctx.Err())
	}
}

func (p *WorkerPool) runWorker(id int) {
	defer p.wg.Done()
	for j := range p.jobs {
		metrics.HashQueueDepth.Dec()
		p.run(id, j)
	}
}

func (p *WorkerPool) run(id int, j job) {
	defer close(j.done)
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Int("worker_id", id).Msg("job panicked")
		}
	}()
	j.fn()
}
