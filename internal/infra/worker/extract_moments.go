// File: internal/infra/worker/extract_moments.go
package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"matchday-reports/internal/domain/model"
	"matchday-reports/internal/domain/ports/adapter"
	"matchday-reports/internal/domain/ports/repository"
	"matchday-reports/internal/infra/metrics"
)

// ExtractMomentsHandler pulls the gimp name and champagne moment out of the
// report text. It is the only retryable handler: a failed model call goes
// back to the queue until the attempt ceiling, then the job and the report
// both fail.
type ExtractMomentsHandler struct {
	extractor      adapter.MomentExtractor
	jobRepo        repository.JobRepository
	reportRepo     repository.ReportRepository
	queue          adapter.JobQueue
	maxAttempts    int
	requestTimeout time.Duration
	log            *zerolog.Logger
}

var _ Handler = (*ExtractMomentsHandler)(nil)

func NewExtractMomentsHandler(
	extractor adapter.MomentExtractor,
	jobRepo repository.JobRepository,
	reportRepo repository.ReportRepository,
	queue adapter.JobQueue,
	maxAttempts int,
	requestTimeout time.Duration,
	log *zerolog.Logger,
) *ExtractMomentsHandler {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &ExtractMomentsHandler{
		extractor:      extractor,
		jobRepo:        jobRepo,
		reportRepo:     reportRepo,
		queue:          queue,
		maxAttempts:    maxAttempts,
		requestTimeout: requestTimeout,
		log:            log,
	}
}

func (h *ExtractMomentsHandler) Run(ctx context.Context, tx repository.Tx, job *model.Job, report *model.Report) error {
	// A redelivered message for a job that already burned its attempts must
	// not restart the cycle.
	if job.Attempts >= h.maxAttempts {
		return h.failBoth(ctx, tx, job, report, "Max attempts exceeded")
	}

	job.Status = model.JobStatusRunning
	job.Attempts++
	if err := h.jobRepo.Update(ctx, tx, job); err != nil {
		return &JobError{Kind: JobErrorInternal, Err: err}
	}

	content := strings.TrimSpace(report.Content)
	if content == "" {
		return h.failBoth(ctx, tx, job, report, "Report content is empty")
	}

	callCtx, cancel := context.WithTimeout(ctx, h.requestTimeout)
	defer cancel()
	moments, err := h.extractor.ExtractMoments(callCtx, content)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "Model request timed out"
		}
		return h.retryOrFail(ctx, tx, job, report, msg)
	}

	report.GimpName = moments.GimpName
	report.ChampagneMoment = moments.ChampagneMoment
	if err := h.reportRepo.Save(ctx, tx, report); err != nil {
		return &JobError{Kind: JobErrorInternal, Err: err}
	}

	job.Status = model.JobStatusSucceeded
	job.LastError = nil
	if err := h.jobRepo.Update(ctx, tx, job); err != nil {
		return &JobError{Kind: JobErrorInternal, Err: err}
	}
	return nil
}

// retryOrFail re-queues the job while attempts remain, otherwise fails the
// job and the report together.
func (h *ExtractMomentsHandler) retryOrFail(ctx context.Context, tx repository.Tx, job *model.Job, report *model.Report, msg string) error {
	job.SetError(msg)
	if job.Attempts < h.maxAttempts {
		job.Status = model.JobStatusQueued
		if err := h.jobRepo.Update(ctx, tx, job); err != nil {
			return &JobError{Kind: JobErrorInternal, Err: err}
		}
		if err := h.queue.Enqueue(ctx, adapter.JobMessage{JobID: job.ID, JobType: string(job.Type)}); err != nil {
			return &JobError{Kind: JobErrorInternal, Err: err}
		}
		metrics.IncJobRequeued(string(job.Type))
		h.log.Warn().Str("job_id", job.ID).Int("attempts", job.Attempts).Str("error", msg).Msg("extraction requeued")
		return nil
	}
	return h.failBoth(ctx, tx, job, report, msg)
}

func (h *ExtractMomentsHandler) failBoth(ctx context.Context, tx repository.Tx, job *model.Job, report *model.Report, msg string) error {
	job.Status = model.JobStatusFailed
	job.SetError(msg)
	if err := h.jobRepo.Update(ctx, tx, job); err != nil {
		return &JobError{Kind: JobErrorInternal, Err: err}
	}
	report.Status = model.ReportStatusFailed
	if err := h.reportRepo.Save(ctx, tx, report); err != nil {
		return &JobError{Kind: JobErrorInternal, Err: err}
	}
	h.log.Warn().Str("job_id", job.ID).Str("report_id", report.ID).Str("error", msg).Msg("extraction failed")
	return nil
}
