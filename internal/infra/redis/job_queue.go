package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"matchday-reports/internal/domain/ports/adapter"
)

var _ adapter.JobQueue = (*JobQueue)(nil)

// JobQueue is a durable FIFO over a Redis list: RPUSH to enqueue, BLPOP to
// consume. Delivery is at-least-once; consumers handle duplicates.
type JobQueue struct {
	client      RedisClient
	name        string
	pollTimeout time.Duration
}

func NewJobQueue(client RedisClient, name string, pollTimeout time.Duration) *JobQueue {
	if name == "" {
		name = "jobs"
	}
	if pollTimeout <= 0 {
		pollTimeout = time.Second
	}
	return &JobQueue{client: client, name: name, pollTimeout: pollTimeout}
}

func (q *JobQueue) Enqueue(ctx context.Context, msg adapter.JobMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal job message: %w", err)
	}
	if err := q.client.RPush(ctx, q.name, payload); err != nil {
		return fmt.Errorf("enqueue %s: %w", q.name, err)
	}
	return nil
}

// Dequeue blocks up to the configured poll timeout so callers can observe
// shutdown between polls. A nil payload with nil error means "nothing yet".
func (q *JobQueue) Dequeue(ctx context.Context) ([]byte, error) {
	raw, ok, err := q.client.BLPop(ctx, q.pollTimeout, q.name)
	if err != nil {
		return nil, fmt.Errorf("dequeue %s: %w", q.name, err)
	}
	if !ok {
		return nil, nil
	}
	return []byte(raw), nil
}
