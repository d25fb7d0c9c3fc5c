package model

import "time"

type AssetKind string

const (
	AssetKindGimpOriginal   AssetKind = "gimp_original"
	AssetKindGimpifiedImage AssetKind = "gimpified_image"
	AssetKindVideo          AssetKind = "video"
)

// ParseAssetKind maps a request string to a known AssetKind.
func ParseAssetKind(s string) (AssetKind, bool) {
	switch AssetKind(s) {
	case AssetKindGimpOriginal, AssetKindGimpifiedImage, AssetKindVideo:
		return AssetKind(s), true
	}
	return "", false
}

type AssetStatus string

const (
	AssetStatusPending AssetStatus = "pending"
	AssetStatusReady   AssetStatus = "ready"
	AssetStatusFailed  AssetStatus = "failed"
)

// Asset is a stored file reference tied to one report and one kind. There is
// at most one row per (report, kind); writes go through upsert semantics that
// replace the storage path and status together.
type Asset struct {
	ID          string      `json:"id"`
	ReportID    string      `json:"report_id"`
	Kind        AssetKind   `json:"kind"`
	StoragePath string      `json:"storage_path"`
	MimeType    string      `json:"mime_type,omitempty"`
	Status      AssetStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
