// Package service contains the business logic for the World Journal API.
// Services validate inputs, enforce business rules, and orchestrate repo and
// blob store calls. No SQL and no filesystem paths live here — services
// depend on the repo and blob interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/epearson/world-journal/backend/internal/blob"
	"github.com/epearson/world-journal/backend/internal/domain"
	"github.com/epearson/world-journal/backend/internal/repo"
)

// MaxUploadFiles is the maximum number of images accepted in one upload
// request.
const MaxUploadFiles = 10

// UploadFile is one staged file in an upload request. Name is the
// client-supplied file name; it is sanitized by the blob store before use.
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// WaypointService implements the waypoint and image lifecycle.
//
// The image soft-delete protocol, from the journal editor's perspective:
// removing a committed image quarantines its blob immediately (QuarantineImage)
// without touching the stored images list, so the removal stays reversible
// (RestoreImage) until the editor saves. A save is a plain Update carrying the
// reconciled images list — previous list minus removals, plus fresh upload
// references appended in upload order. Abandoning the editor restores every
// pending removal best-effort; that path is client-initiated and has no
// user-visible failure signal, so restore failures are logged only.
type WaypointService struct {
	repo  repo.WaypointRepo
	blobs blob.Store
	log   *slog.Logger
}

// NewWaypointService constructs a WaypointService backed by the provided
// repo and blob store. A nil logger falls back to slog.Default().
func NewWaypointService(r repo.WaypointRepo, b blob.Store, log *slog.Logger) *WaypointService {
	if log == nil {
		log = slog.Default()
	}
	return &WaypointService{repo: r, blobs: b, log: log}
}

// Create validates and persists a new waypoint.
// Lat, lng, and a non-empty title are required; everything else is optional.
func (s *WaypointService) Create(ctx context.Context, wp domain.Waypoint) (domain.Waypoint, error) {
	if msg := validateWaypoint(wp); msg != "" {
		return domain.Waypoint{}, fmt.Errorf("service.WaypointService.Create: %w: %s", domain.ErrValidation, msg)
	}

	created, err := s.repo.Create(ctx, wp)
	if err != nil {
		return domain.Waypoint{}, fmt.Errorf("service.WaypointService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single waypoint by ID.
func (s *WaypointService) GetByID(ctx context.Context, id uuid.UUID) (domain.Waypoint, error) {
	wp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Waypoint{}, fmt.Errorf("service.WaypointService.GetByID: %w", err)
	}
	return wp, nil
}

// List returns all waypoints in creation order.
func (s *WaypointService) List(ctx context.Context) ([]domain.Waypoint, error) {
	waypoints, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.WaypointService.List: %w", err)
	}
	return waypoints, nil
}

// Update validates and persists a full replacement of a waypoint's mutable
// fields. This is the editor's save: the caller supplies the reconciled
// images list and it is stored verbatim, order preserved.
//
// When the update replaces a previously set primary image, the old primary
// blob is quarantined best-effort — nothing references it any more, but the
// waypoint update itself must not fail over blob housekeeping.
func (s *WaypointService) Update(ctx context.Context, wp domain.Waypoint) (domain.Waypoint, error) {
	if msg := validateWaypoint(wp); msg != "" {
		return domain.Waypoint{}, fmt.Errorf("service.WaypointService.Update: %w: %s", domain.ErrValidation, msg)
	}

	existing, err := s.repo.GetByID(ctx, wp.ID)
	if err != nil {
		return domain.Waypoint{}, fmt.Errorf("service.WaypointService.Update: %w", err)
	}

	updated, err := s.repo.Update(ctx, wp)
	if err != nil {
		return domain.Waypoint{}, fmt.Errorf("service.WaypointService.Update: %w", err)
	}

	if existing.PrimaryImage != "" && existing.PrimaryImage != updated.PrimaryImage {
		if err := s.blobs.Quarantine(existing.PrimaryImage); err != nil {
			s.log.Warn("quarantine replaced primary image failed",
				"waypoint_id", wp.ID, "reference", existing.PrimaryImage, "error", err)
		}
	}

	return updated, nil
}

// Delete removes a waypoint and cascades to its images.
// Every owned blob reference is quarantined best-effort first; a failed
// quarantine is logged and skipped — cleanup is a cascade, not a
// precondition, and the record deletion the caller asked for still proceeds.
func (s *WaypointService) Delete(ctx context.Context, id uuid.UUID) error {
	wp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.WaypointService.Delete: %w", err)
	}

	for _, ref := range wp.ImageReferences() {
		if err := s.blobs.Quarantine(ref); err != nil {
			s.log.Warn("quarantine image during waypoint delete failed",
				"waypoint_id", id, "reference", ref, "error", err)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.WaypointService.Delete: %w", err)
	}
	return nil
}

// Upload stores each staged file in the blob store and returns the new
// references in input order — the order the caller will append them to the
// waypoint's images list on save.
//
// The whole request fails on the first unsupported file. Files stored before
// the failure are quarantined best-effort so the retention sweeper reclaims
// them; nothing ever references them.
func (s *WaypointService) Upload(ctx context.Context, files []UploadFile, waypointID string) ([]string, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("service.WaypointService.Upload: %w: no files uploaded", domain.ErrValidation)
	}
	if len(files) > MaxUploadFiles {
		return nil, fmt.Errorf("service.WaypointService.Upload: %w: at most %d files per upload",
			domain.ErrValidation, MaxUploadFiles)
	}

	refs := make([]string, 0, len(files))
	for _, f := range files {
		ref, err := s.blobs.Put(ctx, f.Reader, f.Name, waypointID)
		if err != nil {
			s.discard(refs)
			return nil, fmt.Errorf("service.WaypointService.Upload: %s: %w", f.Name, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// QuarantineImage soft-deletes a committed image blob. The waypoint's stored
// images list is untouched — the editor rewrites it on the next save, and
// until then the removal can be undone with RestoreImage.
func (s *WaypointService) QuarantineImage(ctx context.Context, ref string) error {
	if strings.TrimSpace(ref) == "" {
		return fmt.Errorf("service.WaypointService.QuarantineImage: %w: reference is required", domain.ErrValidation)
	}
	if err := s.blobs.Quarantine(ref); err != nil {
		return fmt.Errorf("service.WaypointService.QuarantineImage: %w", err)
	}
	return nil
}

// RestoreImage undoes a quarantine, making the blob servable again.
// Returns domain.ErrNotFound when the reference is not in quarantine.
func (s *WaypointService) RestoreImage(ctx context.Context, ref string) error {
	if strings.TrimSpace(ref) == "" {
		return fmt.Errorf("service.WaypointService.RestoreImage: %w: reference is required", domain.ErrValidation)
	}
	if err := s.blobs.Restore(ref); err != nil {
		return fmt.Errorf("service.WaypointService.RestoreImage: %w", err)
	}
	return nil
}

// discard quarantines references from a partially failed upload batch.
func (s *WaypointService) discard(refs []string) {
	for _, ref := range refs {
		if err := s.blobs.Quarantine(ref); err != nil {
			s.log.Warn("discard partial upload failed", "reference", ref, "error", err)
		}
	}
}

// validateWaypoint checks the creation/update invariants. An empty string
// return means the waypoint is valid.
func validateWaypoint(wp domain.Waypoint) string {
	if !domain.ValidLat(wp.Lat) {
		return "lat must be between -90 and 90"
	}
	if !domain.ValidLng(wp.Lng) {
		return "lng must be between -180 and 180"
	}
	if strings.TrimSpace(wp.Title) == "" {
		return "title is required"
	}
	return ""
}
