package adapter

import "context"

// Moments holds the two optional fields extracted from a match report.
// A nil field means the report did not mention it.
type Moments struct {
	GimpName        *string `json:"gimp_name"`
	ChampagneMoment *string `json:"champagne_moment"`
}

// MomentExtractor turns free-text report content into structured moments via
// a synchronous model call.
type MomentExtractor interface {
	ExtractMoments(ctx context.Context, content string) (*Moments, error)
}
