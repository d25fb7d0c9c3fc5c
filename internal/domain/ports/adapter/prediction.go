package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Prediction is one remote asynchronous model inference, identified by a
// provider-assigned id and polled to a terminal state.
type Prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
}

// PredictionClient wraps a remote asynchronous-job API. It knows nothing
// about reports or jobs.
type PredictionClient interface {
	// CreatePrediction submits a prediction for a named model ("owner/name")
	// or an explicit version hash ("owner/name:hash").
	CreatePrediction(ctx context.Context, modelID string, input map[string]any) (*Prediction, error)
	GetPrediction(ctx context.Context, id string) (*Prediction, error)
	// WaitForPrediction polls GetPrediction every pollInterval until the
	// prediction reaches a terminal state or the timeout elapses. A terminal
	// state other than "succeeded" yields a *PredictionFailedError; an
	// elapsed deadline yields a *WaitTimeoutError.
	WaitForPrediction(ctx context.Context, id string, timeout, pollInterval time.Duration) (*Prediction, error)
	// NormalizeOutputs resolves a raw prediction output into downloaded
	// blobs: absent output gives an empty slice, a single file reference one
	// blob, a nested reference list all blobs in order.
	NormalizeOutputs(ctx context.Context, output json.RawMessage) ([][]byte, error)
}

// ErrUnsupportedOutput is returned when a prediction output is neither
// absent, a file reference, nor a list of references.
var ErrUnsupportedOutput = errors.New("unsupported prediction output shape")

// PredictionFailedError reports a prediction that reached a terminal state
// other than "succeeded".
type PredictionFailedError struct {
	PredictionID string
	Status       string
	Reason       string
}

func (e *PredictionFailedError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "unknown error"
	}
	return fmt.Sprintf("prediction %s %s: %s", e.PredictionID, e.Status, reason)
}

// WaitTimeoutError reports that a prediction did not reach a terminal state
// before the wait deadline.
type WaitTimeoutError struct {
	PredictionID string
	Timeout      time.Duration
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("prediction %s timed out after %s", e.PredictionID, e.Timeout)
}

// DownloadError reports a non-2xx response while fetching prediction output.
type DownloadError struct {
	URL        string
	StatusCode int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: http %d", e.URL, e.StatusCode)
}
