package model

import "time"

type ReportStatus string

const (
	ReportStatusDraft      ReportStatus = "draft"
	ReportStatusProcessing ReportStatus = "processing"
	ReportStatusFailed     ReportStatus = "failed"
	ReportStatusPublished  ReportStatus = "published"
	ReportStatusArchived   ReportStatus = "archived"
)

// Report is one match write-up owned by a single author. AuthorID never
// changes after creation; Status only moves through the transitions enforced
// by ReportUseCase.
type Report struct {
	ID              string       `json:"id"`
	AuthorID        string       `json:"author_id"`
	Date            time.Time    `json:"date"`
	Opponent        string       `json:"opponent,omitempty"`
	Content         string       `json:"content,omitempty"`
	Status          ReportStatus `json:"status"`
	GimpName        *string      `json:"gimp_name"`
	ChampagneMoment *string      `json:"champagne_moment"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Editable reports whether the report can still be changed by its author.
func (r *Report) Editable() bool {
	return r.Status == ReportStatusDraft || r.Status == ReportStatusFailed
}
