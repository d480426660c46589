package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/md2rst/internal/config"
	"github.com/dgallion1/md2rst/internal/convert"
)

// ErrQueueFull is returned by Submit when no queue slot is free.
var ErrQueueFull = errors.New("job queue is full")

// Orchestrator runs batch conversions on a bounded pool of workers.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	convert ConvertFunc
	log     *slog.Logger
	cfg     config.Config

	mu        sync.Mutex
	submitted int64
	completed int64
	failed    int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch the workers.
func NewOrchestrator(cfg config.Config, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		convert: convert.Convert,
		log:     log,
		cfg:     cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.jobs, o.convert, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
					o.record(job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		o.mu.Lock()
		o.submitted++
		o.mu.Unlock()
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

func (o *Orchestrator) record(job *Job) {
	status := job.Snapshot().Status
	o.mu.Lock()
	defer o.mu.Unlock()
	switch status {
	case StatusCompleted:
		o.completed++
	case StatusFailed:
		o.failed++
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// Batch returns the jobs of a batch.
func (o *Orchestrator) Batch(id string) []*Job {
	return o.jobs.Batch(id)
}

// NewBatchID returns an identifier grouping the jobs of one upload.
func (o *Orchestrator) NewBatchID() string {
	return generateULID()
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Counters summarises the work done since start.
type Counters struct {
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Held      int   `json:"held"`
}

// Counters returns job counters.
func (o *Orchestrator) Counters() Counters {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Counters{
		Submitted: o.submitted,
		Completed: o.completed,
		Failed:    o.failed,
		Held:      o.jobs.Len(),
	}
}
