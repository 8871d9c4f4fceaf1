// Package worker runs batch exports taken off the asynq queue.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/designexport/internal/export"
	"github.com/dharsanguruparan/designexport/internal/model"
	"github.com/dharsanguruparan/designexport/internal/queue"
)

// BatchExporter is the part of export.Service the worker needs.
type BatchExporter interface {
	BatchExport(ctx context.Context, req model.BatchRequest) (*model.BatchExportResult, error)
}

// Processor is plugged into the asynq worker loop.
type Processor struct {
	exporter BatchExporter
}

// NewProcessor constructs a worker processor.
func NewProcessor(exporter BatchExporter) *Processor {
	return &Processor{exporter: exporter}
}

// Handler registers the batch export handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.BatchExportTask, p.HandleBatch)
	return mux
}

// HandleBatch runs one batch. Individual item failures are part of the
// result; only a malformed or invalid request fails the task, and those are
// never retried.
func (p *Processor) HandleBatch(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseBatchTask(task.Payload())
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	logger := log.With().Str("job_id", payload.JobID).Str("design_file_id", payload.Request.DesignFileID).Logger()
	logger.Info().Msg("Batch job started")

	result, err := p.exporter.BatchExport(ctx, payload.Request)
	if err != nil {
		logger.Error().Err(err).Msg("Batch job failed")
		if export.IsInputError(err) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	if w := task.ResultWriter(); w != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	logger.Info().
		Int("successful", result.TotalSuccessful).
		Int("failed", result.TotalFailed).
		Msg("Batch job finished")
	return nil
}
