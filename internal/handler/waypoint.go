package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/epearson/world-journal/backend/internal/domain"
)

// waypointRequest is the JSON body accepted by create and update.
// Lat and Lng are pointers so a missing coordinate can be told apart from 0,
// which is a valid coordinate (the Gulf of Guinea is a real place).
type waypointRequest struct {
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	PrimaryImage string   `json:"primary_image"`
	Images       []string `json:"images"`
	JournalText  string   `json:"journal_text"`
}

// toDomain converts the request body into a domain.Waypoint.
// The error message names the first missing required field.
func (req waypointRequest) toDomain() (domain.Waypoint, string) {
	if req.Lat == nil {
		return domain.Waypoint{}, "lat is required"
	}
	if req.Lng == nil {
		return domain.Waypoint{}, "lng is required"
	}
	return domain.Waypoint{
		Lat:          *req.Lat,
		Lng:          *req.Lng,
		Title:        req.Title,
		Description:  req.Description,
		PrimaryImage: req.PrimaryImage,
		Images:       req.Images,
		JournalText:  req.JournalText,
	}, ""
}

// ListWaypoints handles GET /waypoints.
func (s *Server) ListWaypoints(w http.ResponseWriter, r *http.Request) {
	waypoints, err := s.waypoints.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	if waypoints == nil {
		waypoints = []domain.Waypoint{}
	}
	writeJSON(w, http.StatusOK, waypoints)
}

// CreateWaypoint handles POST /waypoints.
func (s *Server) CreateWaypoint(w http.ResponseWriter, r *http.Request) {
	var req waypointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	wp, msg := req.toDomain()
	if msg != "" {
		writeBadRequest(w, msg)
		return
	}

	created, err := s.waypoints.Create(r.Context(), wp)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetWaypoint handles GET /waypoints/{id}.
func (s *Server) GetWaypoint(w http.ResponseWriter, r *http.Request) {
	id, ok := s.waypointID(w, r)
	if !ok {
		return
	}

	wp, err := s.waypoints.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "waypoint not found")
		return
	}
	writeJSON(w, http.StatusOK, wp)
}

// UpdateWaypoint handles PUT /waypoints/{id}.
func (s *Server) UpdateWaypoint(w http.ResponseWriter, r *http.Request) {
	id, ok := s.waypointID(w, r)
	if !ok {
		return
	}

	var req waypointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	wp, msg := req.toDomain()
	if msg != "" {
		writeBadRequest(w, msg)
		return
	}
	wp.ID = id

	updated, err := s.waypoints.Update(r.Context(), wp)
	if err != nil {
		s.writeError(w, r, err, "waypoint not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteWaypoint handles DELETE /waypoints/{id}.
func (s *Server) DeleteWaypoint(w http.ResponseWriter, r *http.Request) {
	id, ok := s.waypointID(w, r)
	if !ok {
		return
	}

	if err := s.waypoints.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "waypoint not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// waypointID parses the {id} path parameter. A malformed UUID cannot name any
// existing waypoint, so it answers 404 rather than 400.
func (s *Server) waypointID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: errorDetail{Code: "not_found", Message: "waypoint not found"},
		})
		return uuid.UUID{}, false
	}
	return id, true
}
