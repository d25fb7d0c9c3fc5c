package repository

import (
	"context"

	"matchday-reports/internal/domain/model"
)

type AssetRepository interface {
	// Upsert inserts the asset or, when a row for (report, kind) already
	// exists, overwrites its storage path, mime type and status atomically.
	Upsert(ctx context.Context, tx Tx, asset *model.Asset) error
	FindByReportAndKind(ctx context.Context, tx Tx, reportID string, kind model.AssetKind) (*model.Asset, error)
	ListByReport(ctx context.Context, tx Tx, reportID string) ([]*model.Asset, error)
}
