package processing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/designexport/internal/model"
)

type fakeExporter struct {
	result  *model.BatchExportResult
	err     error
	release chan struct{}
}

func (f *fakeExporter) BatchExport(ctx context.Context, _ model.BatchRequest) (*model.BatchExportResult, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.result, f.err
}

func request() model.BatchRequest {
	return model.BatchRequest{DesignFileID: "df-1", SourceImageURL: "u", BaseName: "hero",
		Formats: []model.Format{model.FormatPNG}, Scales: []model.Scale{model.Scale1x}}
}

func waitForStatus(t *testing.T, p *Processor, id string, want model.JobStatus) *model.BatchJob {
	t.Helper()
	var job *model.BatchJob
	require.Eventually(t, func() bool {
		var err error
		job, err = p.Job(context.Background(), id)
		return err == nil && job.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestProcessorCompletesJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exp := &fakeExporter{result: &model.BatchExportResult{TotalProcessed: 1, TotalSuccessful: 1}, release: make(chan struct{})}
	p := New(exp, 1)
	p.Start(ctx)

	job, err := p.Enqueue(ctx, request())
	require.NoError(t, err)
	assert.Equal(t, model.JobQueued, job.Status)

	waitForStatus(t, p, job.ID, model.JobRunning)
	close(exp.release)

	done := waitForStatus(t, p, job.ID, model.JobCompleted)
	require.NotNil(t, done.Result)
	assert.Equal(t, 1, done.Result.TotalSuccessful)
}

func TestProcessorRecordsFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := New(&fakeExporter{err: errors.New("batch export failed: bad request")}, 2)
	p.Start(ctx)

	job, err := p.Enqueue(ctx, request())
	require.NoError(t, err)
	failed := waitForStatus(t, p, job.ID, model.JobFailed)
	assert.Contains(t, failed.Message, "bad request")
	assert.Nil(t, failed.Result)
}

func TestProcessorQueueFull(t *testing.T) {
	// No workers started, so the buffer of 4 fills up.
	p := New(&fakeExporter{}, 1)
	var last *model.BatchJob
	for i := 0; i < 5; i++ {
		job, err := p.Enqueue(context.Background(), request())
		require.NoError(t, err)
		last = job
	}
	assert.Equal(t, model.JobFailed, last.Status)
	assert.Equal(t, "processing queue full", last.Message)
}

func TestProcessorUnknownJob(t *testing.T) {
	_, err := New(&fakeExporter{}, 1).Job(context.Background(), "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
