package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/designexport/internal/model"
)

func sampleRequest() model.BatchRequest {
	return model.BatchRequest{
		DesignFileID:   "df-1",
		SourceImageURL: "https://cdn.test/hero.png",
		BaseName:       "hero",
		Formats:        []model.Format{model.FormatPNG, model.FormatWebP},
		Scales:         []model.Scale{model.Scale1x, model.Scale2x},
	}
}

func TestBatchTaskRoundTrip(t *testing.T) {
	task, err := NewBatchTask("job-1", sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, BatchExportTask, task.Type())

	p, err := ParseBatchTask(task.Payload())
	require.NoError(t, err)
	assert.Equal(t, "job-1", p.JobID)
	assert.Equal(t, sampleRequest(), p.Request)

	_, err = ParseBatchTask([]byte("{"))
	assert.Error(t, err)
}

func TestJobFromInfo(t *testing.T) {
	task, err := NewBatchTask("job-1", sampleRequest())
	require.NoError(t, err)
	result, err := json.Marshal(model.BatchExportResult{TotalProcessed: 4, TotalSuccessful: 3, TotalFailed: 1})
	require.NoError(t, err)
	done := time.Unix(1_760_000_000, 0)

	cases := []struct {
		name   string
		info   asynq.TaskInfo
		status model.JobStatus
	}{
		{"pending", asynq.TaskInfo{State: asynq.TaskStatePending}, model.JobQueued},
		{"retry", asynq.TaskInfo{State: asynq.TaskStateRetry, LastErr: "boom"}, model.JobQueued},
		{"active", asynq.TaskInfo{State: asynq.TaskStateActive}, model.JobRunning},
		{"completed", asynq.TaskInfo{State: asynq.TaskStateCompleted, Result: result, CompletedAt: done}, model.JobCompleted},
		{"archived", asynq.TaskInfo{State: asynq.TaskStateArchived, LastErr: "boom", LastFailedAt: done}, model.JobFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info := tc.info
			info.ID = "job-1"
			info.Payload = task.Payload()

			job, err := jobFromInfo(&info)
			require.NoError(t, err)
			assert.Equal(t, "job-1", job.ID)
			assert.Equal(t, tc.status, job.Status)
			assert.Equal(t, "hero", job.Request.BaseName)
		})
	}

	info := asynq.TaskInfo{ID: "job-1", Payload: task.Payload(), State: asynq.TaskStateCompleted, Result: result}
	job, err := jobFromInfo(&info)
	require.NoError(t, err)
	require.NotNil(t, job.Result)
	assert.Equal(t, 3, job.Result.TotalSuccessful)

	info = asynq.TaskInfo{ID: "job-1", Payload: task.Payload(), State: asynq.TaskStateArchived, LastErr: "boom"}
	job, err = jobFromInfo(&info)
	require.NoError(t, err)
	assert.Equal(t, "boom", job.Message)
}
