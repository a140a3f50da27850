package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/epearson/world-journal/backend/internal/domain"
)

// errorResponse is the JSON envelope for every non-2xx response:
// {"error":{"code":"...","message":"..."}}.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON serializes v with the given status. Encoding failures are beyond
// saving at this point (headers are gone), so they are ignored.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a service/domain error onto the HTTP taxonomy:
// validation and unsupported-media → 400, not-found → 404, everything else →
// 500 with the detail logged and an opaque message sent to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedMedia):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorDetail{Code: "unsupported_media_type", Message: "only jpeg, png, and webp images are accepted"},
		})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorDetail{Code: "validation_error", Message: unwrapMessage(err)},
		})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: errorDetail{Code: "not_found", Message: notFoundMsg},
		})
	default:
		s.log.ErrorContext(r.Context(), "internal error",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: errorDetail{Code: "internal_error", Message: "internal server error"},
		})
	}
}

// writeBadRequest rejects a request at the API boundary, before it reaches
// the service layer (malformed JSON, missing fields).
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error: errorDetail{Code: "validation_error", Message: message},
	})
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.WaypointService.Create: validation error: title is required"
// → "title is required".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	const marker = "validation error: "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}
