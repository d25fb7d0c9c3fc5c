// File: internal/usecase/mocks_test.go
package usecase

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

// memReportRepo is a small in-memory implementation used by unit tests.
type memReportRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Report
	saveErr error // used by tests to simulate save failures
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{store: make(map[string]*model.Report)}
}

var _ repository.ReportRepository = (*memReportRepo)(nil)

func (m *memReportRepo) Save(ctx context.Context, tx repository.Tx, rep *model.Report) error {
	if m.saveErr != nil {
		return m.saveErr
	}
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

// memAssetRepo keys assets by (reportID, kind), matching the unique
// constraint the real table enforces.
type memAssetRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Asset
}

func newMemAssetRepo() *memAssetRepo {
	return &memAssetRepo{store: make(map[string]*model.Asset)}
}

var _ repository.AssetRepository = (*memAssetRepo)(nil)

func assetKey(reportID string, kind model.AssetKind) string {
	return reportID + "/" + string(kind)
}

func (m *memAssetRepo) Upsert(ctx context.Context, tx repository.Tx, a *model.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := assetKey(a.ReportID, a.Kind)
	if prev, ok := m.store[key]; ok {
		a.ID = prev.ID
		a.CreatedAt = prev.CreatedAt
	} else {
		a.ID = uuid.NewString()
		a.CreatedAt = time.Now()
	}
	a.UpdatedAt = time.Now()
	cp := *a
	m.store[key] = &cp
	return nil
}

func (m *memAssetRepo) FindByReportAndKind(ctx context.Context, tx repository.Tx, reportID string, kind model.AssetKind) (*model.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.store[assetKey(reportID, kind)]
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

// memJobRepo reproduces the (report, type) uniqueness of the jobs table:
// Ensure returns the surviving row no matter how often it is called.
type memJobRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Job // by job ID
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
	now := time.Now()
	j := &model.Job{
		ID:             uuid.NewString(),
		ReportID:       reportID,
		Type:           jobType,
		Status:         model.JobStatusQueued,
		IdempotencyKey: &idempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
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
	job.UpdatedAt = time.Now()
	cp := *job
	m.store[job.ID] = &cp
	return nil
}

// fakeQueue records every enqueued message; enqueueErr simulates a broker
// outage after commit.
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

func (q *fakeQueue) Dequeue(ctx context.Context) ([]byte, error) {
	return nil, nil
}

func (q *fakeQueue) messages() []adapter.JobMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]adapter.JobMessage, len(q.enqueued))
	copy(out, q.enqueued)
	return out
}

// MockTxManager runs the callback with a nil tx handle by default; the
// in-memory repos accept nil everywhere. Assign WithTxFunc to override.
type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, nil)
}

// fakeStorage signs deterministic URLs and keeps uploaded blobs in memory.
type fakeStorage struct {
	mu       sync.Mutex
	uploads  map[string][]byte
	signErr  error
	readBase string
}

var _ adapter.ObjectStorage = (*fakeStorage)(nil)

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string][]byte), readBase: "https://signed.example"}
}

func (s *fakeStorage) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[path] = data
	return nil
}

func (s *fakeStorage) SignedReadURL(path string, ttl time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	return s.readBase + "/read/" + path, nil
}

func (s *fakeStorage) SignedUploadURL(path string, contentType string, ttl time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	return s.readBase + "/upload/" + path, nil
}
