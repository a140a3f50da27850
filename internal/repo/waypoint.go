// Package repo contains all database access logic for the World Journal API.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/epearson/world-journal/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WaypointRepo defines the persistence operations for Waypoints.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
//
// All operations are atomic at single-row granularity; no multi-row
// transactions are required by any caller.
type WaypointRepo interface {
	// Create inserts a new waypoint and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, wp domain.Waypoint) (domain.Waypoint, error)

	// GetByID retrieves a single waypoint by its UUID primary key.
	// Returns domain.ErrNotFound if no waypoint with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Waypoint, error)

	// List returns all waypoints ordered by created_at ascending, so the map
	// overlay renders pins in the order they were placed.
	List(ctx context.Context) ([]domain.Waypoint, error)

	// Update overwrites the mutable fields of an existing waypoint — including
	// the full images list and journal text — and returns the updated record.
	// Returns domain.ErrNotFound if no waypoint with that ID exists.
	Update(ctx context.Context, wp domain.Waypoint) (domain.Waypoint, error)

	// Delete removes a waypoint by ID. Returns domain.ErrNotFound if it does
	// not exist. Blob cleanup is the service's job, not the repo's.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgWaypointRepo is the Postgres implementation of WaypointRepo.
type pgWaypointRepo struct {
	db db
}

// NewWaypointRepo constructs a WaypointRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewWaypointRepo(db db) WaypointRepo {
	return &pgWaypointRepo{db: db}
}

const waypointColumns = `id, lat, lng, title, description, primary_image, images, journal_text, created_at, updated_at`

// Create inserts a new waypoint row and returns the full persisted record.
func (r *pgWaypointRepo) Create(ctx context.Context, wp domain.Waypoint) (domain.Waypoint, error) {
	const q = `
		INSERT INTO waypoints (lat, lng, title, description, primary_image, images, journal_text)
		VALUES (@lat, @lng, @title, @description, @primary_image, @images, @journal_text)
		RETURNING ` + waypointColumns

	args := pgx.NamedArgs{
		"lat":           wp.Lat,
		"lng":           wp.Lng,
		"title":         wp.Title,
		"description":   wp.Description,
		"primary_image": wp.PrimaryImage,
		"images":        imagesOrEmpty(wp.Images),
		"journal_text":  wp.JournalText,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanWaypoint(row)
	if err != nil {
		return domain.Waypoint{}, fmt.Errorf("repo.WaypointRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a waypoint by primary key.
func (r *pgWaypointRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Waypoint, error) {
	const q = `
		SELECT ` + waypointColumns + `
		FROM waypoints
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanWaypoint(row)
	if err != nil {
		return domain.Waypoint{}, fmt.Errorf("repo.WaypointRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns all waypoints ordered by creation time (oldest first).
func (r *pgWaypointRepo) List(ctx context.Context) ([]domain.Waypoint, error) {
	const q = `
		SELECT ` + waypointColumns + `
		FROM waypoints
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.WaypointRepo.List: %w", err)
	}
	defer rows.Close()

	var waypoints []domain.Waypoint
	for rows.Next() {
		wp, err := scanWaypoint(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.WaypointRepo.List: scan: %w", err)
		}
		waypoints = append(waypoints, wp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.WaypointRepo.List: rows: %w", err)
	}

	return waypoints, nil
}

// Update overwrites the mutable fields of a waypoint and returns the updated record.
// The images list is replaced wholesale — the service computes the new ordered
// list (save semantics) and the repo stores it verbatim.
func (r *pgWaypointRepo) Update(ctx context.Context, wp domain.Waypoint) (domain.Waypoint, error) {
	const q = `
		UPDATE waypoints
		SET lat           = @lat,
		    lng           = @lng,
		    title         = @title,
		    description   = @description,
		    primary_image = @primary_image,
		    images        = @images,
		    journal_text  = @journal_text,
		    updated_at    = now()
		WHERE id = @id
		RETURNING ` + waypointColumns

	args := pgx.NamedArgs{
		"id":            wp.ID,
		"lat":           wp.Lat,
		"lng":           wp.Lng,
		"title":         wp.Title,
		"description":   wp.Description,
		"primary_image": wp.PrimaryImage,
		"images":        imagesOrEmpty(wp.Images),
		"journal_text":  wp.JournalText,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanWaypoint(row)
	if err != nil {
		return domain.Waypoint{}, fmt.Errorf("repo.WaypointRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a waypoint by primary key.
func (r *pgWaypointRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM waypoints WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.WaypointRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.WaypointRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// imagesOrEmpty maps a nil slice to an empty text[] so the column is never NULL.
func imagesOrEmpty(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanWaypoint to
// be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanWaypoint maps a single database row into a domain.Waypoint.
func scanWaypoint(s scanner) (domain.Waypoint, error) {
	var (
		wp domain.Waypoint
		id pgtype.UUID
	)

	err := s.Scan(&id, &wp.Lat, &wp.Lng, &wp.Title, &wp.Description,
		&wp.PrimaryImage, &wp.Images, &wp.JournalText, &wp.CreatedAt, &wp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Waypoint{}, domain.ErrNotFound
		}
		return domain.Waypoint{}, err
	}

	wp.ID = uuid.UUID(id.Bytes)
	if wp.Images == nil {
		wp.Images = []string{}
	}

	return wp, nil
}
