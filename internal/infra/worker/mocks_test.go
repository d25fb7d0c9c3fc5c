// File: internal/infra/worker/mocks_test.go
package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"matchday-reports/internal/domain"
	"matchday-reports/internal/domain/model"
	"matchday-reports/internal/domain/ports/adapter"
	"matchday-reports/internal/domain/ports/repository"
)

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
	return nil, nil
}

type memAssetRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Asset // keyed reportID/kind
}

func newMemAssetRepo() *memAssetRepo {
	return &memAssetRepo{store: make(map[string]*model.Asset)}
}

var _ repository.AssetRepository = (*memAssetRepo)(nil)

func (m *memAssetRepo) Upsert(ctx context.Context, tx repository.Tx, a *model.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	cp := *a
	m.store[a.ReportID+"/"+string(a.Kind)] = &cp
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
	return nil, nil
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

// fakeQueue records enqueued messages and replays scripted payloads on
// Dequeue. When drained it cancels the loop context so Run returns.
type fakeQueue struct {
	mu       sync.Mutex
	enqueued []adapter.JobMessage
	pending  [][]byte
	drained  context.CancelFunc
}

var _ adapter.JobQueue = (*fakeQueue)(nil)

func (q *fakeQueue) Enqueue(ctx context.Context, msg adapter.JobMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, msg)
	return nil
}

func (q *fakeQueue) Dequeue(ctx context.Context) ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		if q.drained != nil {
			q.drained()
		}
		return nil, ctx.Err()
	}
	p := q.pending[0]
	q.pending = q.pending[1:]
	return p, nil
}

func (q *fakeQueue) push(msg adapter.JobMessage) {
	b, _ := json.Marshal(msg)
	q.mu.Lock()
	q.pending = append(q.pending, b)
	q.mu.Unlock()
}

type fakeExtractor struct {
	mu      sync.Mutex
	moments *adapter.Moments
	err     error
	calls   int
}

var _ adapter.MomentExtractor = (*fakeExtractor)(nil)

func (f *fakeExtractor) ExtractMoments(ctx context.Context, content string) (*adapter.Moments, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.moments, nil
}

type fakePredictions struct {
	createErr error
	waitErr   error
	outputs   [][]byte
	normErr   error

	mu      sync.Mutex
	created []map[string]any
}

var _ adapter.PredictionClient = (*fakePredictions)(nil)

func (f *fakePredictions) CreatePrediction(ctx context.Context, modelID string, input map[string]any) (*adapter.Prediction, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	f.created = append(f.created, input)
	f.mu.Unlock()
	return &adapter.Prediction{ID: "pred-1", Status: "starting"}, nil
}

func (f *fakePredictions) GetPrediction(ctx context.Context, id string) (*adapter.Prediction, error) {
	return &adapter.Prediction{ID: id, Status: "succeeded"}, nil
}

func (f *fakePredictions) WaitForPrediction(ctx context.Context, id string, timeout, pollInterval time.Duration) (*adapter.Prediction, error) {
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	return &adapter.Prediction{ID: id, Status: "succeeded", Output: json.RawMessage(`"https://files.example/out"`)}, nil
}

func (f *fakePredictions) NormalizeOutputs(ctx context.Context, output json.RawMessage) ([][]byte, error) {
	if f.normErr != nil {
		return nil, f.normErr
	}
	return f.outputs, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

var _ adapter.ObjectStorage = (*fakeStorage)(nil)

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[path] = data
	return nil
}

func (s *fakeStorage) SignedReadURL(path string, ttl time.Duration) (string, error) {
	return "https://signed.example/read/" + path, nil
}

func (s *fakeStorage) SignedUploadURL(path string, contentType string, ttl time.Duration) (string, error) {
	return "https://signed.example/upload/" + path, nil
}
