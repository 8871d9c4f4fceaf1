// Package processing runs batch exports on an in-process worker pool for
// deployments without Redis.
package processing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/designexport/internal/model"
)

// BatchExporter is the part of export.Service the runner needs.
type BatchExporter interface {
	BatchExport(ctx context.Context, req model.BatchRequest) (*model.BatchExportResult, error)
}

// Processor consumes batch jobs and tracks their lifecycle in memory.
type Processor struct {
	exporter BatchExporter
	queue    chan string
	workers  int

	mu   sync.RWMutex
	jobs map[string]*model.BatchJob
	now  func() time.Time
}

// New builds a Processor with queue capacity tied to worker count.
func New(exporter BatchExporter, workers int) *Processor {
	if workers <= 0 {
		workers = 1
	}
	return &Processor{
		exporter: exporter,
		queue:    make(chan string, workers*4),
		workers:  workers,
		jobs:     make(map[string]*model.BatchJob),
		now:      time.Now,
	}
}

// Start launches worker goroutines that run until ctx is cancelled.
func (p *Processor) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.worker(ctx)
	}
}

// Enqueue records a job and hands it to the pool. When the queue is full the
// job is kept but marked failed.
func (p *Processor) Enqueue(_ context.Context, req model.BatchRequest) (*model.BatchJob, error) {
	now := p.now().UTC()
	job := &model.BatchJob{
		ID:        uuid.NewString(),
		Request:   req,
		Status:    model.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.mu.Lock()
	p.jobs[job.ID] = job
	p.mu.Unlock()

	select {
	case p.queue <- job.ID:
	default:
		log.Warn().Str("job_id", job.ID).Msg("Processing queue full, dropping batch job")
		p.update(job.ID, model.JobFailed, nil, "processing queue full")
	}
	return p.Job(context.Background(), job.ID)
}

// Job returns a snapshot of a job.
func (p *Processor) Job(_ context.Context, id string) (*model.BatchJob, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	job, ok := p.jobs[id]
	if !ok {
		return nil, fmt.Errorf("batch %s: %w", id, model.ErrNotFound)
	}
	cp := *job
	return &cp, nil
}

func (p *Processor) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-p.queue:
			p.process(ctx, id)
		}
	}
}

func (p *Processor) process(ctx context.Context, id string) {
	job, err := p.Job(ctx, id)
	if err != nil {
		return
	}
	p.update(id, model.JobRunning, nil, "")

	result, err := p.exporter.BatchExport(ctx, job.Request)
	if err != nil {
		log.Error().Err(err).Str("job_id", id).Msg("Batch job failed")
		p.update(id, model.JobFailed, nil, err.Error())
		return
	}
	p.update(id, model.JobCompleted, result, "")
	log.Info().
		Str("job_id", id).
		Int("successful", result.TotalSuccessful).
		Int("failed", result.TotalFailed).
		Msg("Batch job finished")
}

func (p *Processor) update(id string, status model.JobStatus, result *model.BatchExportResult, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	job, ok := p.jobs[id]
	if !ok {
		return
	}
	job.Status = status
	job.Result = result
	job.Message = msg
	job.UpdatedAt = p.now().UTC()
}
