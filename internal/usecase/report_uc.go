// File: internal/usecase/report_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"matchday-reports/internal/domain"
	"matchday-reports/internal/domain/model"
	"matchday-reports/internal/domain/ports/adapter"
	"matchday-reports/internal/domain/ports/repository"
)

// jobTypes lists every enrichment job a submitted report gets, in the order
// they are ensured and enqueued.
var jobTypes = []model.JobType{
	model.JobTypeExtractMoments,
	model.JobTypeGimpifyImage,
	model.JobTypeGenerateVideo,
}

// ReportPatch carries the updatable report fields; nil means "leave as is".
type ReportPatch struct {
	Date     *time.Time
	Opponent *string
	Content  *string
}

// ReportUseCase is the single authority over report state transitions. Every
// read-modify-write runs inside one transaction so concurrent submits,
// publishes and job updates see consistent state.
type ReportUseCase struct {
	reportRepo repository.ReportRepository
	assetRepo  repository.AssetRepository
	jobRepo    repository.JobRepository
	queue      adapter.JobQueue
	tm         repository.TransactionManager
	log        *zerolog.Logger
}

func NewReportUseCase(
	reportRepo repository.ReportRepository,
	assetRepo repository.AssetRepository,
	jobRepo repository.JobRepository,
	queue adapter.JobQueue,
	tm repository.TransactionManager,
	log *zerolog.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		reportRepo: reportRepo,
		assetRepo:  assetRepo,
		jobRepo:    jobRepo,
		queue:      queue,
		tm:         tm,
		log:        log,
	}
}

// getOwned loads a report and enforces ownership before any status logic.
func (uc *ReportUseCase) getOwned(ctx context.Context, tx repository.Tx, reportID, authorID string) (*model.Report, error) {
	report, err := uc.reportRepo.FindByID(ctx, tx, reportID)
	if err != nil {
		return nil, err
	}
	if report.AuthorID != authorID {
		return nil, domain.ErrForbidden
	}
	return report, nil
}

func (uc *ReportUseCase) Create(ctx context.Context, authorID string, date time.Time, opponent, content string) (*model.Report, error) {
	if authorID == "" {
		return nil, fmt.Errorf("%w: author id is required", domain.ErrBadRequest)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: match date is required", domain.ErrBadRequest)
	}
	report := &model.Report{
		AuthorID: authorID,
		Date:     date,
		Opponent: opponent,
		Content:  content,
		Status:   model.ReportStatusDraft,
	}
	if err := uc.reportRepo.Save(ctx, nil, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Update edits a Draft or Failed report; any other status is a conflict.
func (uc *ReportUseCase) Update(ctx context.Context, reportID, authorID string, patch ReportPatch) (*model.Report, error) {
	var report *model.Report
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		report, err = uc.getOwned(ctx, tx, reportID, authorID)
		if err != nil {
			return err
		}
		if !report.Editable() {
			return fmt.Errorf("%w: only draft or failed reports can be edited", domain.ErrConflict)
		}
		if patch.Date != nil {
			report.Date = *patch.Date
		}
		if patch.Opponent != nil {
			report.Opponent = *patch.Opponent
		}
		if patch.Content != nil {
			report.Content = *patch.Content
		}
		return uc.reportRepo.Save(ctx, tx, report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (uc *ReportUseCase) Get(ctx context.Context, reportID, authorID string) (*model.Report, error) {
	return uc.getOwned(ctx, nil, reportID, authorID)
}

func (uc *ReportUseCase) List(ctx context.Context, authorID string, filter repository.ReportFilter) ([]*model.Report, error) {
	return uc.reportRepo.ListByAuthor(ctx, nil, authorID, filter)
}

// Submit moves a Draft/Failed report to Processing and idempotently ensures
// one job row per enrichment type. Re-submission returns the existing triad;
// it never duplicates rows. Jobs are enqueued after commit: if enqueuing
// fails the caller is told distinctly via ErrEnqueueFailed, since the rows
// already exist.
func (uc *ReportUseCase) Submit(ctx context.Context, reportID, authorID string) (*model.Report, []*model.Job, error) {
	var (
		report *model.Report
		jobs   []*model.Job
	)
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		report, err = uc.getOwned(ctx, tx, reportID, authorID)
		if err != nil {
			return err
		}

		if report.Status == model.ReportStatusPublished || report.Status == model.ReportStatusArchived {
			return fmt.Errorf("%w: cannot submit a published or archived report", domain.ErrConflict)
		}

		original, err := uc.assetRepo.FindByReportAndKind(ctx, tx, reportID, model.AssetKindGimpOriginal)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if original == nil || original.Status != model.AssetStatusReady {
			return fmt.Errorf("%w: %s asset must be uploaded before submit", domain.ErrBadRequest, model.AssetKindGimpOriginal)
		}

		if report.Status == model.ReportStatusDraft || report.Status == model.ReportStatusFailed {
			report.Status = model.ReportStatusProcessing
			if err := uc.reportRepo.Save(ctx, tx, report); err != nil {
				return err
			}
		}

		jobs = jobs[:0]
		for _, jt := range jobTypes {
			job, err := uc.jobRepo.Ensure(ctx, tx, reportID, jt, ulid.Make().String())
			if err != nil {
				return err
			}
			jobs = append(jobs, job)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	// The transition is committed; only non-succeeded jobs go (back) onto
	// the queue.
	for _, job := range jobs {
		if job.Status == model.JobStatusSucceeded {
			continue
		}
		msg := adapter.JobMessage{JobID: job.ID, JobType: string(job.Type)}
		if err := uc.queue.Enqueue(ctx, msg); err != nil {
			uc.log.Error().Err(err).Str("report_id", reportID).Str("job_id", job.ID).Msg("enqueue after submit failed")
			return report, jobs, fmt.Errorf("%w: %v", domain.ErrEnqueueFailed, err)
		}
	}
	return report, jobs, nil
}

// Publish requires both derived assets to be Ready and is idempotent when
// the report is already Published. Readiness is re-read here, not inferred
// from job completion order.
func (uc *ReportUseCase) Publish(ctx context.Context, reportID, authorID string) (*model.Report, error) {
	var report *model.Report
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		report, err = uc.getOwned(ctx, tx, reportID, authorID)
		if err != nil {
			return err
		}
		if report.Status == model.ReportStatusPublished {
			return nil
		}
		if report.Status == model.ReportStatusArchived {
			return fmt.Errorf("%w: cannot publish an archived report", domain.ErrConflict)
		}

		required := map[model.AssetKind]bool{
			model.AssetKindGimpifiedImage: false,
			model.AssetKindVideo:          false,
		}
		assets, err := uc.assetRepo.ListByReport(ctx, tx, reportID)
		if err != nil {
			return err
		}
		for _, a := range assets {
			if _, ok := required[a.Kind]; ok && a.Status == model.AssetStatusReady {
				required[a.Kind] = true
			}
		}
		var missing []string
		for _, kind := range []model.AssetKind{model.AssetKindGimpifiedImage, model.AssetKindVideo} {
			if !required[kind] {
				missing = append(missing, string(kind))
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: required assets are not ready: %s", domain.ErrConflict, strings.Join(missing, ", "))
		}

		report.Status = model.ReportStatusPublished
		return uc.reportRepo.Save(ctx, tx, report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Unpublish returns a Published report to Draft. Republishing later runs the
// full readiness check again.
func (uc *ReportUseCase) Unpublish(ctx context.Context, reportID, authorID string) (*model.Report, error) {
	var report *model.Report
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		report, err = uc.getOwned(ctx, tx, reportID, authorID)
		if err != nil {
			return err
		}
		if report.Status != model.ReportStatusPublished {
			return fmt.Errorf("%w: report is not published", domain.ErrConflict)
		}
		report.Status = model.ReportStatusDraft
		return uc.reportRepo.Save(ctx, tx, report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (uc *ReportUseCase) ListJobs(ctx context.Context, reportID, authorID string) ([]*model.Job, error) {
	if _, err := uc.getOwned(ctx, nil, reportID, authorID); err != nil {
		return nil, err
	}
	return uc.jobRepo.ListByReport(ctx, nil, reportID)
}

func (uc *ReportUseCase) ListAssets(ctx context.Context, reportID, authorID string) ([]*model.Asset, error) {
	if _, err := uc.getOwned(ctx, nil, reportID, authorID); err != nil {
		return nil, err
	}
	return uc.assetRepo.ListByReport(ctx, nil, reportID)
}
