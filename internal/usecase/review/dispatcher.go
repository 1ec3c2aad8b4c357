package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
	"github.com/johnquangdev/consult-review/pkg/jobcontext"
	"github.com/johnquangdev/consult-review/pkg/metrics"
)

// releaseTimeout bounds the registry release after a job
const releaseTimeout = 10 * time.Second

// JobRunner runs one review job
type JobRunner interface {
	Run(ctx context.Context, job *entities.ReviewJob) error
}

// DispatcherOptions size the worker pool
type DispatcherOptions struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

// Dispatcher is a bounded job queue drained by a fixed pool of workers.
// Every submitted job releases its registry claim when it finishes,
// whatever the outcome.
type Dispatcher struct {
	runner   JobRunner
	registry Registry
	opts     DispatcherOptions
	metrics  *metrics.Metrics
	logger   *zap.Logger

	queue     chan *entities.ReviewJob
	mu        sync.Mutex
	running   bool
	stopped   bool
	workerWg  sync.WaitGroup
	jobCtx    context.Context
	cancelAll context.CancelFunc
}

// NewDispatcher creates a stopped dispatcher
func NewDispatcher(runner JobRunner, registry Registry, opts DispatcherOptions, m *metrics.Metrics, logger *zap.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		runner:   runner,
		registry: registry,
		opts:     opts,
		metrics:  m,
		logger:   logger,
		queue:    make(chan *entities.ReviewJob, opts.QueueSize),
	}
}

// Start launches the workers. Job contexts derive from ctx, never from an
// inbound request.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return fmt.Errorf("worker pool already running")
	}
	if d.stopped {
		return entities.ErrDispatcherStopped
	}

	d.running = true
	d.jobCtx, d.cancelAll = context.WithCancel(ctx)

	d.logger.Info("🚀 Starting review worker pool",
		zap.Int("worker_count", d.opts.Workers),
		zap.Int("queue_size", d.opts.QueueSize),
	)

	for i := 0; i < d.opts.Workers; i++ {
		d.workerWg.Add(1)
		go d.worker(i)
	}
	return nil
}

// Submit enqueues a job without blocking. The caller must hold the registry
// claim for the job; on error the claim is still the caller's to release.
func (d *Dispatcher) Submit(job *entities.ReviewJob) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return entities.ErrDispatcherStopped
	}
	if !d.running {
		return entities.ErrDispatcherNotStarted
	}

	select {
	case d.queue <- job:
		d.metrics.QueueDepth.Set(float64(len(d.queue)))
		return nil
	default:
		return entities.ErrQueueFull
	}
}

// Stop closes the queue and waits for queued and running jobs. When ctx
// ends first the running jobs are cancelled and Stop still waits for their
// cleanup.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	running := d.running
	d.mu.Unlock()

	if !running {
		for job := range d.queue {
			d.release(job.EntityKey())
		}
		return nil
	}

	d.logger.Info("🛑 Stopping review worker pool...")

	done := make(chan struct{})
	go func() {
		d.workerWg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		d.logger.Warn("⚠️ Shutdown timeout, cancelling running jobs")
		d.cancelAll()
		<-done
		err = ctx.Err()
	}
	d.cancelAll()

	d.logger.Info("✅ Review worker pool stopped")
	return err
}

func (d *Dispatcher) worker(workerID int) {
	defer d.workerWg.Done()

	d.logger.Info("👷 Worker started", zap.Int("worker_id", workerID))

	for job := range d.queue {
		d.metrics.QueueDepth.Set(float64(len(d.queue)))
		d.process(workerID, job)
	}

	d.logger.Info("👷 Worker stopping", zap.Int("worker_id", workerID))
}

func (d *Dispatcher) process(workerID int, job *entities.ReviewJob) {
	entityID := job.EntityKey()
	defer d.release(entityID)

	d.metrics.JobsInFlight.Inc()
	defer d.metrics.JobsInFlight.Dec()

	d.logger.Info("👷 Worker claimed job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("entity_id", entityID),
		zap.String("event", job.Event),
	)

	ctx, cancel := jobcontext.JobBegin(d.jobCtx, job.ID, entityID, workerID, d.opts.JobTimeout)
	defer cancel()

	err := jobcontext.JobEnd(ctx, func(ctx context.Context) error {
		return d.runner.Run(ctx, job)
	})
	if err != nil {
		if !job.IsTerminal() {
			job.MarkAsFailed(err.Error())
		}
		d.logger.Error("❌ Job failed",
			zap.String("job_id", job.ID.String()),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
		return
	}

	d.logger.Info("✅ Job finished",
		zap.String("job_id", job.ID.String()),
		zap.String("entity_id", entityID),
		zap.String("status", string(job.Status)),
	)
}

func (d *Dispatcher) release(entityID string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	if err := d.registry.Release(ctx, entityID); err != nil {
		d.logger.Error("❌ Failed to release entity",
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
	}
}
