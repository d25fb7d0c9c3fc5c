package adapter

import (
	"context"
	"time"
)

// ObjectStorage stores binary asset content and hands out short-lived read
// URLs for prediction inputs.
type ObjectStorage interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	SignedReadURL(path string, ttl time.Duration) (string, error)
	// SignedUploadURL lets a client PUT the object directly, bypassing the
	// API process for large files.
	SignedUploadURL(path string, contentType string, ttl time.Duration) (string, error)
}
