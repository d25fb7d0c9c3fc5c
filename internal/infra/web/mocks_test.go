// File: internal/infra/web/mocks_test.go
package web

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"matchday-reports/internal/domain"
	"matchday-reports/internal/domain/model"
	"matchday-reports/internal/domain/ports/adapter"
	"matchday-reports/internal/domain/ports/repository"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type fakeTxManager struct{}

var _ repository.TransactionManager = (*fakeTxManager)(nil)

func (fakeTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

type memReportRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Report
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{store: make(map[string]*model.Report)}
}

var _ repository.ReportRepository = (*memReportRepo)(nil)

func (m *memReportRepo) Save(ctx context.Context, tx repository.Tx, rep *model.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	rep.UpdatedAt = time.Now()
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = rep.UpdatedAt
	}
	cp := *rep
	m.store[rep.ID] = &cp
	return nil
}

func (m *memReportRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memReportRepo) ListByAuthor(ctx context.Context, tx repository.Tx, authorID string, f repository.ReportFilter) ([]*model.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Report
	for _, r := range m.store {
		if r.AuthorID != authorID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

type memAssetRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Asset
}

func newMemAssetRepo() *memAssetRepo {
	return &memAssetRepo{store: make(map[string]*model.Asset)}
}

var _ repository.AssetRepository = (*memAssetRepo)(nil)

func (m *memAssetRepo) Upsert(ctx context.Context, tx repository.Tx, a *model.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := a.ReportID + "/" + string(a.Kind)
	if prev, ok := m.store[key]; ok {
		a.ID = prev.ID
	} else if a.ID == "" {
		a.ID = uuid.NewString()
	}
	cp := *a
	m.store[key] = &cp
	return nil
}

func (m *memAssetRepo) FindByReportAndKind(ctx context.Context, tx repository.Tx, reportID string, kind model.AssetKind) (*model.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.store[reportID+"/"+string(kind)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAssetRepo) ListByReport(ctx context.Context, tx repository.Tx, reportID string) ([]*model.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Asset
	for _, a := range m.store {
		if a.ReportID == reportID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memJobRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Job
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{store: make(map[string]*model.Job)}
}

var _ repository.JobRepository = (*memJobRepo)(nil)

func (m *memJobRepo) Ensure(ctx context.Context, tx repository.Tx, reportID string, jobType model.JobType, idempotencyKey string) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.store {
		if j.ReportID == reportID && j.Type == jobType {
			cp := *j
			return &cp, nil
		}
	}
	j := &model.Job{
		ID:       uuid.NewString(),
		ReportID: reportID,
		Type:     jobType,
		Status:   model.JobStatusQueued,
	}
	m.store[j.ID] = j
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) ListByReport(ctx context.Context, tx repository.Tx, reportID string) ([]*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Job
	for _, j := range m.store {
		if j.ReportID == reportID {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memJobRepo) Update(ctx context.Context, tx repository.Tx, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[job.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *job
	m.store[job.ID] = &cp
	return nil
}

type fakeQueue struct {
	mu         sync.Mutex
	enqueued   []adapter.JobMessage
	enqueueErr error
}

var _ adapter.JobQueue = (*fakeQueue)(nil)

func (q *fakeQueue) Enqueue(ctx context.Context, msg adapter.JobMessage) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, msg)
	return nil
}

func (q *fakeQueue) Dequeue(ctx context.Context) ([]byte, error) { return nil, nil }

type fakeStorage struct{}

var _ adapter.ObjectStorage = (*fakeStorage)(nil)

func (fakeStorage) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	return nil
}

func (fakeStorage) SignedReadURL(path string, ttl time.Duration) (string, error) {
	return "https://signed.example/read/" + path, nil
}

func (fakeStorage) SignedUploadURL(path string, contentType string, ttl time.Duration) (string, error) {
	return "https://signed.example/upload/" + path, nil
}
