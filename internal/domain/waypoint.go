// Package domain contains the core data types for the World Journal application.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, blob, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Waypoint represents a single geotagged point on the journal map.
// It is the sole top-level aggregate; image references and the journal text
// belong to exactly one waypoint.
//
// Images holds blob references in insertion order — the order images were
// uploaded. Removing an element never reorders the remainder, and newly
// uploaded images are appended, never prepended.
type Waypoint struct {
	ID           uuid.UUID `json:"id"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	PrimaryImage string    `json:"primary_image,omitempty"`
	Images       []string  `json:"images"`
	JournalText  string    `json:"journal_text,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ImageReferences returns every blob reference owned by the waypoint:
// the primary image (when set) followed by the Images list.
// Used by the delete cascade, which must quarantine all of them.
func (w Waypoint) ImageReferences() []string {
	refs := make([]string, 0, len(w.Images)+1)
	if w.PrimaryImage != "" {
		refs = append(refs, w.PrimaryImage)
	}
	refs = append(refs, w.Images...)
	return refs
}

// ValidLat reports whether lat is within the geographic range [-90, 90].
func ValidLat(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// ValidLng reports whether lng is within the geographic range [-180, 180].
func ValidLng(lng float64) bool {
	return lng >= -180 && lng <= 180
}
