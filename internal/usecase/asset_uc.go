// File: internal/usecase/asset_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"matchday-reports/internal/domain"
	"matchday-reports/internal/domain/model"
	"matchday-reports/internal/domain/ports/adapter"
	"matchday-reports/internal/domain/ports/repository"
	"matchday-reports/internal/infra/storage"
)

// AssetUseCase covers the author-facing asset flows: handing out direct
// upload URLs, attaching an uploaded object as a Ready asset, and signing
// read URLs for stored assets. Derived assets (gimpified image, video) are
// written by job handlers, not through here.
type AssetUseCase struct {
	reportRepo repository.ReportRepository
	assetRepo  repository.AssetRepository
	store      adapter.ObjectStorage
	tm         repository.TransactionManager
	signedTTL  time.Duration
	log        *zerolog.Logger
}

func NewAssetUseCase(
	reportRepo repository.ReportRepository,
	assetRepo repository.AssetRepository,
	store adapter.ObjectStorage,
	tm repository.TransactionManager,
	signedTTL time.Duration,
	log *zerolog.Logger,
) *AssetUseCase {
	return &AssetUseCase{
		reportRepo: reportRepo,
		assetRepo:  assetRepo,
		store:      store,
		tm:         tm,
		signedTTL:  signedTTL,
		log:        log,
	}
}

func (uc *AssetUseCase) getOwned(ctx context.Context, tx repository.Tx, reportID, authorID string) (*model.Report, error) {
	report, err := uc.reportRepo.FindByID(ctx, tx, reportID)
	if err != nil {
		return nil, err
	}
	if report.AuthorID != authorID {
		return nil, domain.ErrForbidden
	}
	return report, nil
}

// UploadURL records a Pending asset row for (report, kind) and returns a
// short-lived URL the client PUTs the file to. Calling it again re-signs for
// the same object key, so a retried upload overwrites in place.
func (uc *AssetUseCase) UploadURL(ctx context.Context, reportID, authorID, kind, mimeType string) (string, string, error) {
	assetKind, ok := model.ParseAssetKind(kind)
	if !ok {
		return "", "", fmt.Errorf("%w: unknown asset kind %q", domain.ErrBadRequest, kind)
	}
	if mimeType == "" {
		return "", "", fmt.Errorf("%w: mime type is required", domain.ErrBadRequest)
	}

	path := storage.ObjectKey(reportID, assetKind, storage.MimeToExt(mimeType))
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := uc.getOwned(ctx, tx, reportID, authorID); err != nil {
			return err
		}
		return uc.assetRepo.Upsert(ctx, tx, &model.Asset{
			ReportID:    reportID,
			Kind:        assetKind,
			StoragePath: path,
			MimeType:    mimeType,
			Status:      model.AssetStatusPending,
		})
	})
	if err != nil {
		return "", "", err
	}

	url, err := uc.store.SignedUploadURL(path, mimeType, uc.signedTTL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
	}
	return url, path, nil
}

// Attach marks the (report, kind) asset Ready once the client finished the
// direct upload. The storage path is re-derived from the kind, never taken
// from the request, so an author cannot point a report at someone else's
// object.
func (uc *AssetUseCase) Attach(ctx context.Context, reportID, authorID, kind, mimeType string) (*model.Asset, error) {
	assetKind, ok := model.ParseAssetKind(kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown asset kind %q", domain.ErrBadRequest, kind)
	}
	if mimeType == "" {
		return nil, fmt.Errorf("%w: mime type is required", domain.ErrBadRequest)
	}

	asset := &model.Asset{
		ReportID:    reportID,
		Kind:        assetKind,
		StoragePath: storage.ObjectKey(reportID, assetKind, storage.MimeToExt(mimeType)),
		MimeType:    mimeType,
		Status:      model.AssetStatusReady,
	}
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := uc.getOwned(ctx, tx, reportID, authorID); err != nil {
			return err
		}
		return uc.assetRepo.Upsert(ctx, tx, asset)
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func (uc *AssetUseCase) List(ctx context.Context, reportID, authorID string) ([]*model.Asset, error) {
	if _, err := uc.getOwned(ctx, nil, reportID, authorID); err != nil {
		return nil, err
	}
	return uc.assetRepo.ListByReport(ctx, nil, reportID)
}

// ReadURL signs a download URL for a stored asset. Only Ready assets are
// servable; a Pending or Failed row is treated as absent.
func (uc *AssetUseCase) ReadURL(ctx context.Context, reportID, authorID, kind string) (string, error) {
	assetKind, ok := model.ParseAssetKind(kind)
	if !ok {
		return "", fmt.Errorf("%w: unknown asset kind %q", domain.ErrBadRequest, kind)
	}
	if _, err := uc.getOwned(ctx, nil, reportID, authorID); err != nil {
		return "", err
	}
	asset, err := uc.assetRepo.FindByReportAndKind(ctx, nil, reportID, assetKind)
	if err != nil {
		return "", err
	}
	if asset.Status != model.AssetStatusReady {
		return "", fmt.Errorf("%w: asset %s is not ready", domain.ErrNotFound, assetKind)
	}
	url, err := uc.store.SignedReadURL(asset.StoragePath, uc.signedTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
	}
	return url, nil
}
