package repository

import (
	"context"

	"matchday-reports/internal/domain/model"
)

type JobRepository interface {
	// Ensure creates the job for (report, type) if absent and returns the
	// row either way. Concurrent callers racing on the same pair must both
	// end up with the single surviving row, never an error.
	Ensure(ctx context.Context, tx Tx, reportID string, jobType model.JobType, idempotencyKey string) (*model.Job, error)
	// FindByID locks the row FOR UPDATE when called inside a transaction.
	FindByID(ctx context.Context, tx Tx, id string) (*model.Job, error)
	ListByReport(ctx context.Context, tx Tx, reportID string) ([]*model.Job, error)
	Update(ctx context.Context, tx Tx, job *model.Job) error
}
