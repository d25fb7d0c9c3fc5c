package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"matchday-reports/internal/domain/ports/adapter"
)

// Compile-time assurance this client satisfies the port
var _ adapter.PredictionClient = (*Client)(nil)

const defaultBaseURL = "https://api.replicate.com/v1"

// terminalStates is the fixed subset of provider statuses the client treats
// as final; anything else means "keep polling".
var terminalStates = map[string]bool{
	"succeeded": true,
	"failed":    true,
	"canceled":  true,
}

// Client talks to the Replicate predictions API with bearer-token auth.
type Client struct {
	apiToken string
	base     string
	client   *http.Client
}

func NewClient(apiToken string) (*Client, error) {
	if apiToken == "" {
		return nil, errors.New("replicate api token empty")
	}
	return &Client{
		apiToken: apiToken,
		base:     defaultBaseURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// CreatePrediction submits a prediction. A modelID containing a colon is
// treated as an explicit version hash, otherwise as an "owner/name" model.
func (c *Client) CreatePrediction(ctx context.Context, modelID string, input map[string]any) (*adapter.Prediction, error) {
	body := map[string]any{"input": input}
	if strings.Contains(modelID, ":") {
		body["version"] = modelID
	} else {
		body["model"] = modelID
	}

	b, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/predictions", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) GetPrediction(ctx context.Context, id string) (*adapter.Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/predictions/"+id, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// WaitForPrediction polls until a terminal state or the deadline. Polls are
// separated by pollInterval; the loop never busy-spins.
func (c *Client) WaitForPrediction(ctx context.Context, id string, timeout, pollInterval time.Duration) (*adapter.Prediction, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		p, err := c.GetPrediction(ctx, id)
		if err != nil {
			return nil, err
		}
		if terminalStates[p.Status] {
			if p.Status != "succeeded" {
				return nil, &adapter.PredictionFailedError{
					PredictionID: id,
					Status:       p.Status,
					Reason:       p.Error,
				}
			}
			return p, nil
		}
		if time.Now().After(deadline) {
			return nil, &adapter.WaitTimeoutError{PredictionID: id, Timeout: timeout}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// NormalizeOutputs resolves the raw output into downloaded blobs following
// the closed shape set: absent, a single file reference, or a (possibly
// nested) reference list flattened in order. Anything else is unsupported.
func (c *Client) NormalizeOutputs(ctx context.Context, output json.RawMessage) ([][]byte, error) {
	refs, err := classifyOutput(output)
	if err != nil {
		return nil, err
	}
	blobs := make([][]byte, 0, len(refs))
	for _, ref := range refs {
		b, err := c.download(ctx, ref)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, b)
	}
	return blobs, nil
}

// classifyOutput reduces the provider's loosely-shaped output value to an
// ordered list of file references.
func classifyOutput(output json.RawMessage) ([]string, error) {
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var single string
	if err := json.Unmarshal(output, &single); err == nil {
		return []string{single}, nil
	}

	var many []json.RawMessage
	if err := json.Unmarshal(output, &many); err == nil {
		var refs []string
		for _, item := range many {
			nested, err := classifyOutput(item)
			if err != nil {
				return nil, err
			}
			refs = append(refs, nested...)
		}
		return refs, nil
	}

	return nil, fmt.Errorf("%w: %.60s", adapter.ErrUnsupportedOutput, trimmed)
}

// download fetches one output reference. Output URLs may require auth.
func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, &adapter.DownloadError{URL: url, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) do(req *http.Request) (*adapter.Prediction, error) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("replicate http %d", resp.StatusCode)
	}

	var p adapter.Prediction
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("replicate decode: %w", err)
	}
	return &p, nil
}
