package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"matchday-reports/internal/domain"
	"matchday-reports/internal/domain/model"
	"matchday-reports/internal/domain/ports/repository"
)

var _ repository.ReportRepository = (*reportRepo)(nil)

type reportRepo struct{ pool *pgxpool.Pool }

func NewReportRepo(pool *pgxpool.Pool) *reportRepo {
	return &reportRepo{pool: pool}
}

const reportColumns = `id, author_id, date, opponent, content, status, gimp_name, champagne_moment, created_at, updated_at`

func (r *reportRepo) Save(ctx context.Context, tx repository.Tx, rep *model.Report) error {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	rep.UpdatedAt = time.Now()
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = rep.UpdatedAt
	}

	const q = `
INSERT INTO reports (id, author_id, date, opponent, content, status, gimp_name, champagne_moment, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  date = EXCLUDED.date,
  opponent = EXCLUDED.opponent,
  content = EXCLUDED.content,
  status = EXCLUDED.status,
  gimp_name = EXCLUDED.gimp_name,
  champagne_moment = EXCLUDED.champagne_moment,
  updated_at = EXCLUDED.updated_at;`

	_, err := execSQL(ctx, r.pool, tx, q,
		rep.ID, rep.AuthorID, rep.Date, nullable(rep.Opponent), nullable(rep.Content),
		string(rep.Status), rep.GimpName, rep.ChampagneMoment, rep.CreatedAt, rep.UpdatedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *reportRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Report, error) {
	q := `SELECT ` + reportColumns + ` FROM reports WHERE id=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanReport(row)
}

func (r *reportRepo) ListByAuthor(ctx context.Context, tx repository.Tx, authorID string, f repository.ReportFilter) ([]*model.Report, error) {
	q := `SELECT ` + reportColumns + ` FROM reports WHERE author_id=$1`
	args := []interface{}{authorID}
	if f.Status != "" {
		args = append(args, string(f.Status))
		q += ` AND status=$` + strconv.Itoa(len(args))
	}
	if !f.DateFrom.IsZero() {
		args = append(args, f.DateFrom)
		q += ` AND date >= $` + strconv.Itoa(len(args))
	}
	if !f.DateTo.IsZero() {
		args = append(args, f.DateTo)
		q += ` AND date <= $` + strconv.Itoa(len(args))
	}
	if f.Opponent != "" {
		args = append(args, "%"+f.Opponent+"%")
		q += ` AND opponent ILIKE $` + strconv.Itoa(len(args))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	q += fmt.Sprintf(` ORDER BY date DESC LIMIT %d OFFSET %d;`, limit, f.Offset)

	rows, err := pickRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Report
	for rows.Next() {
		rep, err := scanReportRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func scanReport(row pgx.Row) (*model.Report, error) {
	rep, err := scanReportRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rep, nil
}

func scanReportRow(row pgx.Row) (*model.Report, error) {
	var (
		rep      model.Report
		status   string
		opponent *string
		content  *string
	)
	err := row.Scan(&rep.ID, &rep.AuthorID, &rep.Date, &opponent, &content,
		&status, &rep.GimpName, &rep.ChampagneMoment, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, domain.ErrReadDatabaseRow
	}
	rep.Status = model.ReportStatus(status)
	if opponent != nil {
		rep.Opponent = *opponent
	}
	if content != nil {
		rep.Content = *content
	}
	return &rep, nil
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
