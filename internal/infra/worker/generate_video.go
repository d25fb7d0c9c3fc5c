// File: internal/infra/worker/generate_video.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"matchday-reports/internal/domain/model"
	"matchday-reports/internal/domain/ports/adapter"
	"matchday-reports/internal/domain/ports/repository"
	"matchday-reports/internal/infra/metrics"
	"matchday-reports/internal/infra/storage"
)

// GenerateVideoHandler turns the report text into a short highlight video
// via a remote prediction model. Like the image handler, a failed attempt is
// terminal until resubmission; only extraction auto-retries.
type GenerateVideoHandler struct {
	predictions adapter.PredictionClient
	assetRepo   repository.AssetRepository
	jobRepo     repository.JobRepository
	store       adapter.ObjectStorage
	modelID     string
	waitTimeout time.Duration
	pollEvery   time.Duration
	log         *zerolog.Logger
}

var _ Handler = (*GenerateVideoHandler)(nil)

func NewGenerateVideoHandler(
	predictions adapter.PredictionClient,
	assetRepo repository.AssetRepository,
	jobRepo repository.JobRepository,
	store adapter.ObjectStorage,
	modelID string,
	waitTimeout, pollEvery time.Duration,
	log *zerolog.Logger,
) *GenerateVideoHandler {
	if waitTimeout <= 0 {
		waitTimeout = 1800 * time.Second
	}
	if pollEvery <= 0 {
		pollEvery = 5 * time.Second
	}
	return &GenerateVideoHandler{
		predictions: predictions,
		assetRepo:   assetRepo,
		jobRepo:     jobRepo,
		store:       store,
		modelID:     modelID,
		waitTimeout: waitTimeout,
		pollEvery:   pollEvery,
		log:         log,
	}
}

func (h *GenerateVideoHandler) Run(ctx context.Context, tx repository.Tx, job *model.Job, report *model.Report) error {
	job.Status = model.JobStatusRunning
	job.Attempts++
	if err := h.jobRepo.Update(ctx, tx, job); err != nil {
		return &JobError{Kind: JobErrorInternal, Err: err}
	}

	prompt := buildVideoPrompt(report)
	if prompt == "" {
		return h.fail(ctx, tx, job, "Report content is empty")
	}
	if h.modelID == "" {
		return h.fail(ctx, tx, job, "Video model is not configured")
	}

	pred, err := h.predictions.CreatePrediction(ctx, h.modelID, map[string]any{"prompt": prompt})
	if err != nil {
		return &JobError{Kind: JobErrorProvider, Err: err}
	}
	job.ProviderJobID = &pred.ID
	if err := h.jobRepo.Update(ctx, tx, job); err != nil {
		return &JobError{Kind: JobErrorInternal, Err: err}
	}
	h.log.Info().Str("job_id", job.ID).Str("prediction_id", pred.ID).Msg("prediction created")

	start := time.Now()
	done, err := h.predictions.WaitForPrediction(ctx, pred.ID, h.waitTimeout, h.pollEvery)
	metrics.ObservePredictionWait(h.modelID, time.Since(start).Seconds(), err == nil)
	if err != nil {
		var timeoutErr *adapter.WaitTimeoutError
		if errors.As(err, &timeoutErr) {
			return &JobError{Kind: JobErrorTimeout, Err: err}
		}
		return &JobError{Kind: JobErrorProvider, Err: err}
	}

	outputs, err := h.predictions.NormalizeOutputs(ctx, done.Output)
	if err != nil {
		return &JobError{Kind: JobErrorProvider, Err: err}
	}
	if len(outputs) == 0 {
		return h.fail(ctx, tx, job, "Prediction output was empty")
	}
	metrics.AddPredictionOutputBytes(h.modelID, len(outputs[0]))

	const mimeType = "video/mp4"
	path := storage.ObjectKey(report.ID, model.AssetKindVideo, "mp4")
	if err := h.store.Upload(ctx, path, outputs[0], mimeType); err != nil {
		return &JobError{Kind: JobErrorInternal, Err: err}
	}
	err = h.assetRepo.Upsert(ctx, tx, &model.Asset{
		ReportID:    report.ID,
		Kind:        model.AssetKindVideo,
		StoragePath: path,
		MimeType:    mimeType,
		Status:      model.AssetStatusReady,
	})
	if err != nil {
		return &JobError{Kind: JobErrorInternal, Err: err}
	}

	job.Status = model.JobStatusSucceeded
	job.LastError = nil
	if err := h.jobRepo.Update(ctx, tx, job); err != nil {
		return &JobError{Kind: JobErrorInternal, Err: err}
	}
	h.log.Info().Str("job_id", job.ID).Str("path", path).Msg("video generated")
	return nil
}

// buildVideoPrompt assembles the prediction prompt from the report text plus
// the match context lines.
func buildVideoPrompt(report *model.Report) string {
	prompt := strings.TrimSpace(report.Content)
	if prompt == "" {
		return ""
	}
	if report.Opponent != "" {
		prompt = fmt.Sprintf("%s\nOpponent: %s", prompt, report.Opponent)
	}
	if !report.Date.IsZero() {
		prompt = fmt.Sprintf("%s\nDate: %s", prompt, report.Date.Format("2006-01-02"))
	}
	return prompt
}

func (h *GenerateVideoHandler) fail(ctx context.Context, tx repository.Tx, job *model.Job, msg string) error {
	job.Status = model.JobStatusFailed
	job.SetError(msg)
	if err := h.jobRepo.Update(ctx, tx, job); err != nil {
		return &JobError{Kind: JobErrorInternal, Err: err}
	}
	h.log.Warn().Str("job_id", job.ID).Str("error", msg).Msg("video job failed")
	return nil
}
