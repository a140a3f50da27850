package handler

import (
	"encoding/json"
	"net/http"

	"github.com/epearson/world-journal/backend/internal/service"
)

// uploadFormField is the multipart field carrying the image files.
const uploadFormField = "images"

// maxUploadMemory caps how much of a multipart body is held in memory while
// parsing; the rest spills to temp files. Request size itself is bounded by
// the max-body-size middleware.
const maxUploadMemory = 8 << 20 // 8 MiB

// imageRequest is the JSON body for quarantine and restore calls.
type imageRequest struct {
	Reference string `json:"reference"`
}

// uploadResponse carries the references for freshly stored blobs,
// in upload order.
type uploadResponse struct {
	References []string `json:"references"`
}

// UploadImages handles POST /upload (multipart/form-data).
// Files are read from the "images" field, at most service.MaxUploadFiles per
// request; an optional "waypointId" field tags the generated blob names.
func (s *Server) UploadImages(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeBadRequest(w, "malformed multipart body")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File[uploadFormField]
	if len(headers) == 0 {
		writeBadRequest(w, "no files uploaded")
		return
	}

	files := make([]service.UploadFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			writeBadRequest(w, "unreadable multipart file")
			return
		}
		defer f.Close()
		files = append(files, service.UploadFile{Name: h.Filename, Reader: f})
	}

	refs, err := s.waypoints.Upload(r.Context(), files, r.FormValue("waypointId"))
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{References: refs})
}

// QuarantineImage handles DELETE /delete-image.
// Soft-deletes the referenced blob; reversible via /restore-image until the
// editor saves or the retention sweeper purges it.
func (s *Server) QuarantineImage(w http.ResponseWriter, r *http.Request) {
	ref, ok := decodeImageRequest(w, r)
	if !ok {
		return
	}

	if err := s.waypoints.QuarantineImage(r.Context(), ref); err != nil {
		s.writeError(w, r, err, "image not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "image quarantined"})
}

// RestoreImage handles POST /restore-image.
func (s *Server) RestoreImage(w http.ResponseWriter, r *http.Request) {
	ref, ok := decodeImageRequest(w, r)
	if !ok {
		return
	}

	if err := s.waypoints.RestoreImage(r.Context(), ref); err != nil {
		s.writeError(w, r, err, "image not found in quarantine")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "image restored"})
}

// decodeImageRequest reads the {"reference": "..."} body shared by the
// quarantine and restore endpoints.
func decodeImageRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return "", false
	}
	if req.Reference == "" {
		writeBadRequest(w, "reference is required")
		return "", false
	}
	return req.Reference, true
}
