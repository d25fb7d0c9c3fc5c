package adapter

import "context"

// JobMessage is the unit carried by the work queue: which job row to run and
// which handler should run it.
type JobMessage struct {
	JobID   string `json:"job_id"`
	JobType string `json:"job_type"`
}

// JobQueue is a durable FIFO of job messages with at-least-once delivery.
type JobQueue interface {
	Enqueue(ctx context.Context, msg JobMessage) error
	// Dequeue blocks up to pollTimeout and returns the raw message payload,
	// or nil when the timeout elapsed with nothing to consume. The caller
	// owns parsing so that malformed payloads can be dropped, not retried.
	Dequeue(ctx context.Context) ([]byte, error)
}
