package editor

import (
	"strings"

	"resdb-tools/internal/record"
)

// Draft holds the popup-only copies of the editable fields.
type Draft struct {
	Name string
	// Thumbnail is a newly chosen thumbnail reference ("" = unchanged).
	Thumbnail string
	// NewAsset is free text; it only applies if it parses as an absolute URI.
	NewAsset string
}

// ApplyDraft copies d onto rec using the save rules:
//  1. the name is copied verbatim;
//  2. a new thumbnail replaces the old one;
//  3. the new asset applies only when it is an absolute URI (otherwise ignored);
//  4. directory names have every '/' replaced with a space.
func ApplyDraft(rec *record.Record, d Draft) {
	rec.Name = d.Name
	if strings.TrimSpace(d.Thumbnail) != "" {
		rec.ThumbnailURI = d.Thumbnail
	}
	if u, ok := record.ParseAbsoluteURI(d.NewAsset); ok {
		rec.AssetURI = u.String()
	}
	if rec.Kind == record.KindDirectory && strings.Contains(rec.Name, "/") {
		rec.Name = record.SanitizeDirectoryName(rec.Name)
	}
}
