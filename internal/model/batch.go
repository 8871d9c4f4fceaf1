package model

import "time"

// BatchRequest asks for every combination of Formats x Scales.
type BatchRequest struct {
	DesignFileID   string    `json:"designFileId"`
	SourceImageURL string    `json:"sourceImageUrl"`
	BaseName       string    `json:"baseName"`
	Formats        []Format  `json:"formats"`
	Scales         []Scale   `json:"scales"`
	Quality        *float64  `json:"quality,omitempty"`
	CropArea       *CropArea `json:"cropArea,omitempty"`
	CreatedBy      string    `json:"createdBy,omitempty"`
}

// BatchExportConfig is one (format, scale) pair of a batch.
type BatchExportConfig struct {
	Format Format `json:"format"`
	Scale  Scale  `json:"scale"`
}

// FailedExport records a batch item that did not complete.
type FailedExport struct {
	Config       BatchExportConfig `json:"config"`
	ErrorMessage string            `json:"errorMessage"`
}

// BatchExportResult aggregates a batch. TotalSuccessful and TotalFailed always
// equal len(Successful) and len(Failed).
type BatchExportResult struct {
	Successful      []ExportedAsset `json:"successful"`
	Failed          []FailedExport  `json:"failed"`
	TotalProcessed  int             `json:"totalProcessed"`
	TotalSuccessful int             `json:"totalSuccessful"`
	TotalFailed     int             `json:"totalFailed"`
}

// JobStatus describes the lifecycle of an asynchronous batch.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// BatchJob tracks a batch submitted for background execution.
type BatchJob struct {
	ID        string             `json:"id"`
	Request   BatchRequest       `json:"request"`
	Status    JobStatus          `json:"status"`
	Result    *BatchExportResult `json:"result,omitempty"`
	Message   string             `json:"message,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
