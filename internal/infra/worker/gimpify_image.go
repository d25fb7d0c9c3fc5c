// File: internal/infra/worker/gimpify_image.go
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"matchday-reports/internal/domain"
	"matchday-reports/internal/domain/model"
	"matchday-reports/internal/domain/ports/adapter"
	"matchday-reports/internal/domain/ports/repository"
	"matchday-reports/internal/infra/metrics"
	"matchday-reports/internal/infra/storage"
)

const gimpifyPrompt = "Make this image gimpish, surreal, high-contrast, British football satire, " +
	"keep subject identity, preserve key details."

// GimpifyImageHandler stylizes the uploaded original through a remote
// prediction model and stores the result as the gimpified_image asset. One
// message is one attempt; a failed prediction is terminal until the author
// resubmits.
type GimpifyImageHandler struct {
	predictions adapter.PredictionClient
	assetRepo   repository.AssetRepository
	jobRepo     repository.JobRepository
	store       adapter.ObjectStorage
	modelID     string
	waitTimeout time.Duration
	pollEvery   time.Duration
	signedTTL   time.Duration
	log         *zerolog.Logger
}

var _ Handler = (*GimpifyImageHandler)(nil)

func NewGimpifyImageHandler(
	predictions adapter.PredictionClient,
	assetRepo repository.AssetRepository,
	jobRepo repository.JobRepository,
	store adapter.ObjectStorage,
	modelID string,
	waitTimeout, pollEvery, signedTTL time.Duration,
	log *zerolog.Logger,
) *GimpifyImageHandler {
	if waitTimeout <= 0 {
		waitTimeout = 900 * time.Second
	}
	if pollEvery <= 0 {
		pollEvery = 2 * time.Second
	}
	if signedTTL <= 0 {
		signedTTL = time.Hour
	}
	return &GimpifyImageHandler{
		predictions: predictions,
		assetRepo:   assetRepo,
		jobRepo:     jobRepo,
		store:       store,
		modelID:     modelID,
		waitTimeout: waitTimeout,
		pollEvery:   pollEvery,
		signedTTL:   signedTTL,
		log:         log,
	}
}

func (h *GimpifyImageHandler) Run(ctx context.Context, tx repository.Tx, job *model.Job, report *model.Report) error {
	job.Status = model.JobStatusRunning
	job.Attempts++
	if err := h.jobRepo.Update(ctx, tx, job); err != nil {
		return &JobError{Kind: JobErrorInternal, Err: err}
	}

	original, err := h.assetRepo.FindByReportAndKind(ctx, tx, report.ID, model.AssetKindGimpOriginal)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return &JobError{Kind: JobErrorInternal, Err: err}
	}
	if original == nil || original.Status != model.AssetStatusReady {
		return h.fail(ctx, tx, job, "Missing gimp_original asset")
	}

	if h.modelID == "" {
		return h.fail(ctx, tx, job, "Image model is not configured")
	}

	signedURL, err := h.store.SignedReadURL(original.StoragePath, h.signedTTL)
	if err != nil {
		return &JobError{Kind: JobErrorInternal, Err: err}
	}

	input := map[string]any{
		"prompt":        gimpifyPrompt,
		"image_input":   []string{signedURL},
		"output_format": "jpg",
	}
	output, perr := h.runPrediction(ctx, tx, job, input)
	if perr != nil {
		return perr
	}
	if output == nil {
		return h.fail(ctx, tx, job, "Prediction output was empty")
	}

	const mimeType = "image/jpeg"
	path := storage.ObjectKey(report.ID, model.AssetKindGimpifiedImage, storage.MimeToExt(mimeType))
	if err := h.store.Upload(ctx, path, output, mimeType); err != nil {
		return &JobError{Kind: JobErrorInternal, Err: err}
	}
	err = h.assetRepo.Upsert(ctx, tx, &model.Asset{
		ReportID:    report.ID,
		Kind:        model.AssetKindGimpifiedImage,
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
	h.log.Info().Str("job_id", job.ID).Str("path", path).Msg("image stylized")
	return nil
}

// runPrediction creates the prediction, persists the provider id right away
// so an operator can find it even if the wait dies, then waits and resolves
// the output. A nil,nil return means the prediction succeeded with no files.
func (h *GimpifyImageHandler) runPrediction(ctx context.Context, tx repository.Tx, job *model.Job, input map[string]any) ([]byte, error) {
	pred, err := h.predictions.CreatePrediction(ctx, h.modelID, input)
	if err != nil {
		return nil, &JobError{Kind: JobErrorProvider, Err: err}
	}
	job.ProviderJobID = &pred.ID
	if err := h.jobRepo.Update(ctx, tx, job); err != nil {
		return nil, &JobError{Kind: JobErrorInternal, Err: err}
	}
	h.log.Info().Str("job_id", job.ID).Str("prediction_id", pred.ID).Msg("prediction created")

	start := time.Now()
	done, err := h.predictions.WaitForPrediction(ctx, pred.ID, h.waitTimeout, h.pollEvery)
	metrics.ObservePredictionWait(h.modelID, time.Since(start).Seconds(), err == nil)
	if err != nil {
		var timeoutErr *adapter.WaitTimeoutError
		if errors.As(err, &timeoutErr) {
			return nil, &JobError{Kind: JobErrorTimeout, Err: err}
		}
		return nil, &JobError{Kind: JobErrorProvider, Err: err}
	}

	outputs, err := h.predictions.NormalizeOutputs(ctx, done.Output)
	if err != nil {
		return nil, &JobError{Kind: JobErrorProvider, Err: err}
	}
	if len(outputs) == 0 {
		return nil, nil
	}
	metrics.AddPredictionOutputBytes(h.modelID, len(outputs[0]))
	return outputs[0], nil
}

func (h *GimpifyImageHandler) fail(ctx context.Context, tx repository.Tx, job *model.Job, msg string) error {
	job.Status = model.JobStatusFailed
	job.SetError(msg)
	if err := h.jobRepo.Update(ctx, tx, job); err != nil {
		return &JobError{Kind: JobErrorInternal, Err: err}
	}
	h.log.Warn().Str("job_id", job.ID).Str("error", msg).Msg("gimpify job failed")
	return nil
}
