package ai

import (
	"context"
	"log"
	"time"

	"matchday-reports/internal/domain/ports/adapter"
)

var _ adapter.MomentExtractor = (*NoopExtractor)(nil)

// NoopExtractor implements adapter.MomentExtractor for local/dev testing.
// It logs the content instead of calling a real model.
type NoopExtractor struct{}

func NewNoopExtractor() *NoopExtractor {
	return &NoopExtractor{}
}

func (n *NoopExtractor) ExtractMoments(ctx context.Context, content string) (*adapter.Moments, error) {
	// Simulate slight processing time and respect ctx
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	log.Printf("[noop-extractor] %d bytes of report content\n", len(content))
	gimp := "noop gimp"
	moment := "noop champagne moment"
	return &adapter.Moments{GimpName: &gimp, ChampagneMoment: &moment}, nil
}
