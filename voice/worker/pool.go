// Package worker provides an asynchronous worker pool persisting call-log
// patches to a calllog.Store and publishing turn events to an
// eventstream.Publisher.
//
// The pool decouples persistence from the webhook hot path so that a slow or
// failing store never delays or alters the TwiML answer of a turn.
package worker

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/papercomputeco/praxisvoice/pkg/calllog"
	"github.com/papercomputeco/praxisvoice/pkg/eventstream"
	"github.com/papercomputeco/praxisvoice/pkg/logger"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultTimeout           = 5 * time.Second
)

// Job is a unit of work for the worker pool.
type Job struct {
	// CallID keys every write of the job.
	CallID string

	// Patch is upserted into the store unless empty.
	Patch calllog.Patch

	// Event is published when set and a publisher is configured.
	Event *eventstream.TurnProcessedEvent
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Store is the call-log backend.
	Store calllog.Store

	// Publisher is the optional event stream publisher.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the total capacity of the buffered job channels,
	// split evenly across the workers (defaults to 256).
	QueueSize uint

	// Timeout bounds each store upsert and each publish (defaults to 5s).
	Timeout time.Duration

	Logger *slog.Logger
}

// Pool processes call-log jobs asynchronously. Jobs of one call are always
// handled by the same worker, in the order they were enqueued.
type Pool struct {
	config *Config
	queues []chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Store == nil {
		return nil, fmt.Errorf("worker pool requires a call-log store")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	wp := &Pool{
		config: c,
		queues: make([]chan Job, c.NumWorkers),
		logger: c.Logger,
	}

	perWorker := max(1, c.QueueSize/c.NumWorkers)
	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		wp.queues[i] = make(chan Job, perWorker)
		go wp.worker(i, wp.queues[i])
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full or the pool is closed,
// resulting in the job being dropped.
func (p *Pool) Enqueue(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.Error("job not queued, pool closed, job dropped", "call_id", job.CallID)
		return false
	}

	select {
	case p.queues[p.shard(job.CallID)] <- job:
		p.logger.Debug("job queued", "call_id", job.CallID)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped", "call_id", job.CallID)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the voice HTTP server has stopped.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, q := range p.queues {
		close(q)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) shard(callID string) int {
	h := fnv.New32a()
	h.Write([]byte(callID))
	return int(h.Sum32() % uint32(len(p.queues)))
}

func (p *Pool) worker(id uint, queue <-chan Job) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range queue {
		p.processJob(job)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

// processJob upserts the patch and publishes the event of job. Failures are
// logged and swallowed; the upsert and the publish never affect each other.
func (p *Pool) processJob(job Job) {
	if !job.Patch.IsEmpty() {
		if err := p.upsert(job); err != nil {
			p.logger.Error("call log upsert failed",
				"call_id", job.CallID,
				"error", err,
			)
		} else {
			p.logger.Debug("call log upserted", "call_id", job.CallID)
		}
	}

	if job.Event != nil && p.config.Publisher != nil {
		if err := p.publish(job); err != nil {
			p.logger.Warn("turn event publish failed",
				"call_id", job.CallID,
				"event_id", job.Event.EventID,
				"error", err,
			)
		}
	}
}

func (p *Pool) upsert(job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.Timeout)
	defer cancel()
	return p.config.Store.Upsert(ctx, job.CallID, job.Patch)
}

func (p *Pool) publish(job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.Timeout)
	defer cancel()
	return p.config.Publisher.PublishTurn(ctx, job.Event)
}
