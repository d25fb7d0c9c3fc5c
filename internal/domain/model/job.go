package model

import "time"

type JobType string

const (
	JobTypeExtractMoments JobType = "extract_moments"
	JobTypeGimpifyImage   JobType = "gimpify_image"
	JobTypeGenerateVideo  JobType = "generate_video"
)

// ParseJobType maps a queue message string to a known JobType.
func ParseJobType(s string) (JobType, bool) {
	switch JobType(s) {
	case JobTypeExtractMoments, JobTypeGimpifyImage, JobTypeGenerateVideo:
		return JobType(s), true
	}
	return "", false
}

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Job is one attempt-series of asynchronous enrichment work for a
// (report, type) pair. The row is unique per pair and is reused across
// retries; Attempts only ever grows.
type Job struct {
	ID             string    `json:"id"`
	ReportID       string    `json:"report_id"`
	Type           JobType   `json:"type"`
	Status         JobStatus `json:"status"`
	Attempts       int       `json:"attempts"`
	LastError      *string   `json:"last_error"`
	IdempotencyKey *string   `json:"idempotency_key,omitempty"`
	ProviderJobID  *string   `json:"provider_job_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (j *Job) SetError(msg string) {
	j.LastError = &msg
}
