// Package sweeper implements the retention sweep over the blob quarantine
// area. Blobs sit in quarantine for a retention window so that soft-deletes
// stay reversible; once the window passes, the sweeper purges them for good.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/epearson/world-journal/backend/internal/blob"
)

// Sweeper periodically purges quarantined blobs older than the retention
// window. Scheduling is the caller's concern (main wires it into a cron
// entry); Run performs exactly one sweep.
type Sweeper struct {
	blobs     blob.Store
	retention time.Duration
	log       *slog.Logger
}

// New constructs a Sweeper with the given retention window.
// A nil logger falls back to slog.Default().
func New(blobs blob.Store, retention time.Duration, log *slog.Logger) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{blobs: blobs, retention: retention, log: log}
}

// Run performs a single sweep and logs the outcome. It never touches the
// servable area, so it can run concurrently with waypoint traffic, and it is
// idempotent — sweeping an already-clean quarantine purges nothing.
//
// The error return reports only a sweep that could not run at all;
// individual file failures are logged inside the blob store and absorbed.
func (s *Sweeper) Run(ctx context.Context) error {
	start := time.Now()
	purged, err := s.blobs.SweepExpired(ctx, s.retention)
	if err != nil {
		s.log.Error("retention sweep failed", "error", err)
		return err
	}

	s.log.Info("retention sweep complete",
		"purged", purged,
		"retention", s.retention.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
