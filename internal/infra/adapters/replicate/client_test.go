// File: internal/infra/adapters/replicate/client_test.go
package replicate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"matchday-reports/internal/domain/ports/adapter"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient("test-token")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.base = srv.URL
	return c, srv
}

func TestCreatePrediction_ModelVersusVersion(t *testing.T) {
	var gotBody map[string]any
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("missing bearer auth, got %q", r.Header.Get("Authorization"))
		}
		gotBody = map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "pred-1", "status": "starting"})
	}))
	ctx := context.Background()

	if _, err := c.CreatePrediction(ctx, "owner/name", map[string]any{"prompt": "x"}); err != nil {
		t.Fatalf("CreatePrediction: %v", err)
	}
	if gotBody["model"] != "owner/name" || gotBody["version"] != nil {
		t.Fatalf("expected model field for plain id, got %v", gotBody)
	}

	if _, err := c.CreatePrediction(ctx, "owner/name:abc123", map[string]any{"prompt": "x"}); err != nil {
		t.Fatalf("CreatePrediction: %v", err)
	}
	if gotBody["version"] != "owner/name:abc123" || gotBody["model"] != nil {
		t.Fatalf("expected version field for hash id, got %v", gotBody)
	}
}

func TestWaitForPrediction_PollsToSuccess(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := "processing"
		if atomic.AddInt32(&calls, 1) >= 3 {
			status = "succeeded"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "pred-1", "status": status, "output": "https://files/out"})
	}))

	p, err := c.WaitForPrediction(context.Background(), "pred-1", time.Second, time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForPrediction: %v", err)
	}
	if p.Status != "succeeded" {
		t.Fatalf("expected succeeded, got %s", p.Status)
	}
	if atomic.LoadInt32(&calls) < 3 {
		t.Fatalf("expected at least 3 polls, got %d", calls)
	}
}

func TestWaitForPrediction_TerminalFailure(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "pred-1", "status": "failed", "error": "NSFW content"})
	}))

	_, err := c.WaitForPrediction(context.Background(), "pred-1", time.Second, time.Millisecond)
	var ferr *adapter.PredictionFailedError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected PredictionFailedError, got %v", err)
	}
	if ferr.Status != "failed" || ferr.Reason != "NSFW content" {
		t.Fatalf("unexpected failure detail %+v", ferr)
	}
}

func TestWaitForPrediction_Timeout(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "pred-1", "status": "processing"})
	}))

	_, err := c.WaitForPrediction(context.Background(), "pred-1", 10*time.Millisecond, 5*time.Millisecond)
	var terr *adapter.WaitTimeoutError
	if !errors.As(err, &terr) {
		t.Fatalf("expected WaitTimeoutError, got %v", err)
	}
}

func TestWaitForPrediction_CanceledStatus(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "pred-1", "status": "canceled"})
	}))

	_, err := c.WaitForPrediction(context.Background(), "pred-1", time.Second, time.Millisecond)
	var ferr *adapter.PredictionFailedError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected PredictionFailedError for canceled, got %v", err)
	}
}

func TestClassifyOutput(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{"absent", ``, nil, false},
		{"null", `null`, nil, false},
		{"single ref", `"https://files/a.jpg"`, []string{"https://files/a.jpg"}, false},
		{"flat list", `["https://files/a", "https://files/b"]`, []string{"https://files/a", "https://files/b"}, false},
		{"nested list", `[["https://files/a"], "https://files/b"]`, []string{"https://files/a", "https://files/b"}, false},
		{"empty list", `[]`, nil, false},
		{"object", `{"weird": true}`, nil, true},
		{"number", `42`, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := classifyOutput(json.RawMessage(tc.raw))
			if tc.wantErr {
				if !errors.Is(err, adapter.ErrUnsupportedOutput) {
					t.Fatalf("expected ErrUnsupportedOutput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("classifyOutput: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestNormalizeOutputs_DownloadError(t *testing.T) {
	fileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(fileSrv.Close)

	c, _ := newTestClient(t, http.NotFoundHandler())
	raw, _ := json.Marshal(fileSrv.URL + "/out.jpg")
	_, err := c.NormalizeOutputs(context.Background(), raw)
	var derr *adapter.DownloadError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
	if derr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", derr.StatusCode)
	}
}

func TestNormalizeOutputs_Downloads(t *testing.T) {
	fileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("payload-" + r.URL.Path))
	}))
	t.Cleanup(fileSrv.Close)

	c, _ := newTestClient(t, http.NotFoundHandler())
	raw, _ := json.Marshal([]string{fileSrv.URL + "/a", fileSrv.URL + "/b"})
	blobs, err := c.NormalizeOutputs(context.Background(), raw)
	if err != nil {
		t.Fatalf("NormalizeOutputs: %v", err)
	}
	if len(blobs) != 2 || string(blobs[0]) != "payload-/a" || string(blobs[1]) != "payload-/b" {
		t.Fatalf("unexpected blobs %q", blobs)
	}
}
