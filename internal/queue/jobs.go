// Package queue carries batch exports over Redis with asynq so that a
// separate worker process can run them.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/dharsanguruparan/designexport/internal/model"
)

const (
	// BatchExportTask is scheduled for each asynchronous batch request.
	BatchExportTask = "asset:batch-export"
	// Queue is the asynq queue batch tasks are placed on.
	Queue = "default"

	maxRetry  = 3
	retention = 24 * time.Hour
)

// BatchPayload is serialized into the task payload.
type BatchPayload struct {
	JobID   string             `json:"job_id"`
	Request model.BatchRequest `json:"request"`
}

// NewBatchTask builds the asynq task for a batch.
func NewBatchTask(jobID string, req model.BatchRequest) (*asynq.Task, error) {
	data, err := json.Marshal(BatchPayload{JobID: jobID, Request: req})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(BatchExportTask, data), nil
}

// ParseBatchTask decodes a task payload.
func ParseBatchTask(payload []byte) (BatchPayload, error) {
	var p BatchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return p, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

// Client enqueues batches and reads their state back from Redis. Completed
// tasks keep their result for a day.
type Client struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

// NewClient connects a Client to Redis.
func NewClient(opt asynq.RedisConnOpt) *Client {
	return &Client{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
	}
}

// Close releases the Redis connections.
func (c *Client) Close() error {
	return errors.Join(c.client.Close(), c.inspector.Close())
}

// Enqueue schedules req and returns the queued job.
func (c *Client) Enqueue(ctx context.Context, req model.BatchRequest) (*model.BatchJob, error) {
	id := uuid.NewString()
	task, err := NewBatchTask(id, req)
	if err != nil {
		return nil, err
	}
	if _, err := c.client.EnqueueContext(ctx, task,
		asynq.TaskID(id),
		asynq.Queue(Queue),
		asynq.MaxRetry(maxRetry),
		asynq.Retention(retention),
	); err != nil {
		return nil, fmt.Errorf("enqueue batch task: %w", err)
	}
	now := time.Now().UTC()
	return &model.BatchJob{ID: id, Request: req, Status: model.JobQueued, CreatedAt: now, UpdatedAt: now}, nil
}

// Job reports the state of a previously enqueued batch.
func (c *Client) Job(_ context.Context, id string) (*model.BatchJob, error) {
	info, err := c.inspector.GetTaskInfo(Queue, id)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			return nil, fmt.Errorf("batch %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("inspect batch %s: %w", id, err)
	}
	return jobFromInfo(info)
}

func jobFromInfo(info *asynq.TaskInfo) (*model.BatchJob, error) {
	payload, err := ParseBatchTask(info.Payload)
	if err != nil {
		return nil, err
	}
	job := &model.BatchJob{ID: info.ID, Request: payload.Request}
	switch info.State {
	case asynq.TaskStateActive:
		job.Status = model.JobRunning
	case asynq.TaskStateCompleted:
		job.Status = model.JobCompleted
		job.UpdatedAt = info.CompletedAt
		if len(info.Result) > 0 {
			var res model.BatchExportResult
			if err := json.Unmarshal(info.Result, &res); err != nil {
				return nil, fmt.Errorf("decode batch result: %w", err)
			}
			job.Result = &res
		}
	case asynq.TaskStateArchived:
		job.Status = model.JobFailed
		job.Message = info.LastErr
		job.UpdatedAt = info.LastFailedAt
	default:
		job.Status = model.JobQueued
		job.Message = info.LastErr
	}
	return job, nil
}
