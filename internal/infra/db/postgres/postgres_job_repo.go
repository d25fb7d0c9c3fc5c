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

var _ repository.JobRepository = (*jobRepo)(nil)

type jobRepo struct{ pool *pgxpool.Pool }

func NewJobRepo(pool *pgxpool.Pool) *jobRepo {
	return &jobRepo{pool: pool}
}

const jobColumns = `id, report_id, type, status, attempts, last_error, idempotency_key, provider_job_id, created_at, updated_at`

// Ensure inserts the (report, type) job if it does not exist yet. The insert
// races safely on the unique constraint: the loser of a concurrent
// double-submit falls through to reading the surviving row.
func (r *jobRepo) Ensure(ctx context.Context, tx repository.Tx, reportID string, jobType model.JobType, idempotencyKey string) (*model.Job, error) {
	now := time.Now()
	const ins = `
INSERT INTO jobs (id, report_id, type, status, attempts, idempotency_key, created_at, updated_at)
VALUES ($1,$2,$3,$4,0,$5,$6,$6)
ON CONFLICT (report_id, type) DO NOTHING;`

	_, err := execSQL(ctx, r.pool, tx, ins,
		uuid.NewString(), reportID, string(jobType), string(model.JobStatusQueued),
		nullable(idempotencyKey), now)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + jobColumns + ` FROM jobs WHERE report_id=$1 AND type=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, reportID, string(jobType))
	if err != nil {
		return nil, err
	}
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

func (r *jobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE id=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

func (r *jobRepo) ListByReport(ctx context.Context, tx repository.Tx, reportID string) ([]*model.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE report_id=$1 ORDER BY created_at;`
	rows, err := pickRows(ctx, r.pool, tx, q, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (r *jobRepo) Update(ctx context.Context, tx repository.Tx, job *model.Job) error {
	job.UpdatedAt = time.Now()
	const q = `
UPDATE jobs SET
  status=$2, attempts=$3, last_error=$4, idempotency_key=$5, provider_job_id=$6, updated_at=$7
WHERE id=$1;`

	tag, err := execSQL(ctx, r.pool, tx, q,
		job.ID, string(job.Status), job.Attempts, job.LastError,
		job.IdempotencyKey, job.ProviderJobID, job.UpdatedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanJob(row pgx.Row) (*model.Job, error) {
	var (
		job    model.Job
		jtype  string
		status string
	)
	err := row.Scan(&job.ID, &job.ReportID, &jtype, &status, &job.Attempts,
		&job.LastError, &job.IdempotencyKey, &job.ProviderJobID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, domain.ErrReadDatabaseRow
	}
	job.Type = model.JobType(jtype)
	job.Status = model.JobStatus(status)
	return &job, nil
}
