package repository

import (
	"context"
	"time"

	"matchday-reports/internal/domain/model"
)

// ReportFilter narrows List results. Zero values mean "no constraint".
type ReportFilter struct {
	Status   model.ReportStatus
	DateFrom time.Time
	DateTo   time.Time
	Opponent string
	Limit    int
	Offset   int
}

type ReportRepository interface {
	Save(ctx context.Context, tx Tx, report *model.Report) error
	// FindByID locks the row FOR UPDATE when called inside a transaction.
	FindByID(ctx context.Context, tx Tx, id string) (*model.Report, error)
	ListByAuthor(ctx context.Context, tx Tx, authorID string, filter ReportFilter) ([]*model.Report, error)
}
