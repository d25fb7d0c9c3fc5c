package storage

import (
	"fmt"
	"mime"
	"strings"

	"matchday-reports/internal/domain/model"
)

var mimeOverrides = map[string]string{
	"image/jpeg":      "jpg",
	"image/jpg":       "jpg",
	"image/png":       "png",
	"image/webp":      "webp",
	"image/gif":       "gif",
	"video/mp4":       "mp4",
	"video/quicktime": "mov",
}

// MimeToExt maps a mime type to a file extension, preferring the common
// short forms over whatever the platform registry suggests.
func MimeToExt(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if ext, ok := mimeOverrides[mimeType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return strings.ToLower(strings.TrimPrefix(exts[0], "."))
	}
	return "bin"
}

// ObjectKey builds the canonical storage key for a report asset. One key per
// (report, kind): re-derived assets overwrite in place.
func ObjectKey(reportID string, kind model.AssetKind, ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return fmt.Sprintf("reports/%s/%s.%s", reportID, kind, ext)
}
