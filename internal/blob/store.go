// Package blob stores and serves raw image bytes for waypoints.
//
// A blob lives in one of two areas: the servable uploads area, or the
// quarantine area. Quarantine is a reversible soft-delete — the bytes are
// moved out of the servable area but kept until either restored or
// permanently purged (by the retention sweeper). References returned by Put
// are opaque to callers; they are stored verbatim in a waypoint's images
// list and resolved back to servable URLs on read.
package blob

import (
	"context"
	"io"
	"time"
)

// Store is the interface over wherever raw image bytes live.
// The local filesystem implementation is in local.go; the service and
// sweeper depend only on this interface.
type Store interface {
	// Put persists the bytes read from r under a newly generated reference
	// and returns that reference. The content type is sniffed from the bytes
	// and validated against the jpeg/png/webp allow-list; on any other type
	// Put fails with domain.ErrUnsupportedMedia before persisting anything.
	//
	// waypointID, when non-empty, is folded into the generated name so blobs
	// can be traced back to their waypoint by eye. The generated name also
	// carries a timestamp and a random suffix, so concurrent uploads of the
	// same file for the same waypoint never collide.
	Put(ctx context.Context, r io.Reader, originalName, waypointID string) (string, error)

	// Resolve returns the servable URL for a reference, or domain.ErrNotFound
	// when the blob is missing or quarantined. A quarantined blob is not
	// "current" even though its bytes still exist.
	Resolve(ref string) (string, error)

	// Quarantine moves a blob out of the servable area. Reversible via
	// Restore until the retention sweeper purges it.
	// Returns domain.ErrNotFound when the reference is not servable.
	Quarantine(ref string) error

	// Restore moves a quarantined blob back into the servable area.
	// Returns domain.ErrNotFound when the reference is not in quarantine.
	Restore(ref string) error

	// Purge permanently removes a quarantined blob. Irreversible.
	// Returns domain.ErrNotFound when the reference is not in quarantine.
	Purge(ref string) error

	// SweepExpired purges every quarantined blob whose last modification is
	// older than olderThan, returning the number purged. Each file's purge is
	// independently attempted — one failure never aborts the rest — and a run
	// over an empty quarantine area is a no-op.
	SweepExpired(ctx context.Context, olderThan time.Duration) (int, error)
}
