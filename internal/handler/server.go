// Package handler implements the HTTP handlers for the World Journal API.
// All handlers are methods on Server. Methods are split into resource-specific
// files (waypoint.go, image.go, health.go) but all share the same Server
// struct so they can access its dependencies. Handlers do request/response
// mapping and nothing else — business rules live in the service layer.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/epearson/world-journal/backend/internal/domain"
	"github.com/epearson/world-journal/backend/internal/service"
	"github.com/epearson/world-journal/backend/spec"
)

// WaypointServicer defines the business operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or blob store.
type WaypointServicer interface {
	Create(ctx context.Context, wp domain.Waypoint) (domain.Waypoint, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Waypoint, error)
	List(ctx context.Context) ([]domain.Waypoint, error)
	Update(ctx context.Context, wp domain.Waypoint) (domain.Waypoint, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Upload(ctx context.Context, files []service.UploadFile, waypointID string) ([]string, error)
	QuarantineImage(ctx context.Context, ref string) error
	RestoreImage(ctx context.Context, ref string) error
}

// Server holds the dependencies shared by all HTTP handlers.
type Server struct {
	waypoints  WaypointServicer
	uploadsDir string
	log        *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// uploadsDir is the servable blob directory, mounted read-only at /uploads.
// A nil logger falls back to slog.Default().
func NewServer(waypoints WaypointServicer, uploadsDir string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{waypoints: waypoints, uploadsDir: uploadsDir, log: log}
}

// Routes registers every endpoint on the given chi router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)

	r.Route("/waypoints", func(r chi.Router) {
		r.Get("/", s.ListWaypoints)
		r.Post("/", s.CreateWaypoint)
		r.Get("/{id}", s.GetWaypoint)
		r.Put("/{id}", s.UpdateWaypoint)
		r.Delete("/{id}", s.DeleteWaypoint)
	})

	r.Post("/upload", s.UploadImages)
	r.Delete("/delete-image", s.QuarantineImage)
	r.Post("/restore-image", s.RestoreImage)

	// The uploads area is served as-is; quarantined blobs are outside this
	// directory and therefore 404 here, which is exactly the contract.
	// Directory paths 404 instead of producing a listing.
	if s.uploadsDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadsDir)))
		r.Get("/uploads/*", func(w http.ResponseWriter, req *http.Request) {
			if strings.HasSuffix(req.URL.Path, "/") {
				http.NotFound(w, req)
				return
			}
			fileServer.ServeHTTP(w, req)
		})
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})
}
