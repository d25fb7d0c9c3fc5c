package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"matchday-reports/internal/domain"
	"matchday-reports/internal/domain/model"
	"matchday-reports/internal/domain/ports/repository"
)

var _ repository.AssetRepository = (*assetRepo)(nil)

type assetRepo struct{ pool *pgxpool.Pool }

func NewAssetRepo(pool *pgxpool.Pool) *assetRepo {
	return &assetRepo{pool: pool}
}

const assetColumns = `id, report_id, kind, storage_path, mime_type, status, created_at, updated_at`

// Upsert relies on the (report_id, kind) unique constraint: a second write for
// the same pair replaces path, mime type and status in one statement.
func (r *assetRepo) Upsert(ctx context.Context, tx repository.Tx, a *model.Asset) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.UpdatedAt = time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = a.UpdatedAt
	}

	const q = `
INSERT INTO assets (id, report_id, kind, storage_path, mime_type, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (report_id, kind) DO UPDATE SET
  storage_path = EXCLUDED.storage_path,
  mime_type = EXCLUDED.mime_type,
  status = EXCLUDED.status,
  updated_at = EXCLUDED.updated_at;`

	_, err := execSQL(ctx, r.pool, tx, q,
		a.ID, a.ReportID, string(a.Kind), a.StoragePath, nullable(a.MimeType),
		string(a.Status), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *assetRepo) FindByReportAndKind(ctx context.Context, tx repository.Tx, reportID string, kind model.AssetKind) (*model.Asset, error) {
	q := `SELECT ` + assetColumns + ` FROM assets WHERE report_id=$1 AND kind=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, reportID, string(kind))
	if err != nil {
		return nil, err
	}
	a, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *assetRepo) ListByReport(ctx context.Context, tx repository.Tx, reportID string) ([]*model.Asset, error) {
	q := `SELECT ` + assetColumns + ` FROM assets WHERE report_id=$1 ORDER BY created_at;`
	rows, err := pickRows(ctx, r.pool, tx, q, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAsset(row pgx.Row) (*model.Asset, error) {
	var (
		a        model.Asset
		kind     string
		status   string
		mimeType *string
	)
	err := row.Scan(&a.ID, &a.ReportID, &kind, &a.StoragePath, &mimeType, &status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, domain.ErrReadDatabaseRow
	}
	a.Kind = model.AssetKind(kind)
	a.Status = model.AssetStatus(status)
	if mimeType != nil {
		a.MimeType = *mimeType
	}
	return &a, nil
}
