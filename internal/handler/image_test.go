package handler_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epearson/world-journal/backend/internal/domain"
	"github.com/epearson/world-journal/backend/internal/handler"
	"github.com/epearson/world-journal/backend/internal/service"
)

// multipartBody builds a multipart form with the given file names under the
// "images" field, plus an optional waypointId field.
func multipartBody(t *testing.T, fileNames []string, waypointID string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, name := range fileNames {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	if waypointID != "" {
		require.NoError(t, mw.WriteField("waypointId", waypointID))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func doMultipart(t *testing.T, h http.Handler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---- upload ----------------------------------------------------------------

func TestUploadImages(t *testing.T) {
	h := newHTTPHandler(&mockWaypointServicer{
		upload: func(_ context.Context, files []service.UploadFile, waypointID string) ([]string, error) {
			require.Len(t, files, 2)
			assert.Equal(t, "a.jpg", files[0].Name)
			assert.Equal(t, "b.png", files[1].Name)
			assert.Equal(t, "w1", waypointID)

			// The readers must carry the actual multipart file bytes.
			data, err := io.ReadAll(files[0].Reader)
			require.NoError(t, err)
			assert.Equal(t, "fake image bytes", string(data))

			return []string{"/uploads/a.jpg", "/uploads/b.png"}, nil
		},
	})

	body, contentType := multipartBody(t, []string{"a.jpg", "b.png"}, "w1")
	rec := doMultipart(t, h, body, contentType)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"references":["/uploads/a.jpg","/uploads/b.png"]}`, rec.Body.String())
}

func TestUploadImages_NoFiles(t *testing.T) {
	h := newHTTPHandler(&mockWaypointServicer{})

	body, contentType := multipartBody(t, nil, "w1")
	rec := doMultipart(t, h, body, contentType)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no files uploaded")
}

func TestUploadImages_UnsupportedType(t *testing.T) {
	h := newHTTPHandler(&mockWaypointServicer{
		upload: func(context.Context, []service.UploadFile, string) ([]string, error) {
			return nil, domain.ErrUnsupportedMedia
		},
	})

	body, contentType := multipartBody(t, []string{"script.svg"}, "")
	rec := doMultipart(t, h, body, contentType)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported_media_type")
}

func TestUploadImages_NotMultipart(t *testing.T) {
	h := newHTTPHandler(&mockWaypointServicer{})

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString("plain"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- quarantine ------------------------------------------------------------

func TestQuarantineImage(t *testing.T) {
	h := newHTTPHandler(&mockWaypointServicer{
		quarantineImage: func(_ context.Context, ref string) error {
			assert.Equal(t, "/uploads/r1.jpg", ref)
			return nil
		},
	})

	body := jsonBody(t, map[string]string{"reference": "/uploads/r1.jpg"})
	rec := doRequest(t, h, http.MethodDelete, "/delete-image", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "quarantined")
}

func TestQuarantineImage_MissingReference(t *testing.T) {
	h := newHTTPHandler(&mockWaypointServicer{})

	body := jsonBody(t, map[string]string{})
	rec := doRequest(t, h, http.MethodDelete, "/delete-image", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "reference is required")
}

func TestQuarantineImage_AdapterError(t *testing.T) {
	h := newHTTPHandler(&mockWaypointServicer{
		quarantineImage: func(context.Context, string) error {
			return os.ErrPermission
		},
	})

	body := jsonBody(t, map[string]string{"reference": "/uploads/r1.jpg"})
	rec := doRequest(t, h, http.MethodDelete, "/delete-image", body)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ---- restore ---------------------------------------------------------------

func TestRestoreImage(t *testing.T) {
	h := newHTTPHandler(&mockWaypointServicer{
		restoreImage: func(_ context.Context, ref string) error {
			assert.Equal(t, "/uploads/r1.jpg", ref)
			return nil
		},
	})

	body := jsonBody(t, map[string]string{"reference": "/uploads/r1.jpg"})
	rec := doRequest(t, h, http.MethodPost, "/restore-image", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "restored")
}

func TestRestoreImage_NotInQuarantine(t *testing.T) {
	h := newHTTPHandler(&mockWaypointServicer{
		restoreImage: func(context.Context, string) error { return domain.ErrNotFound },
	})

	body := jsonBody(t, map[string]string{"reference": "/uploads/gone.jpg"})
	rec := doRequest(t, h, http.MethodPost, "/restore-image", body)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found in quarantine")
}

// ---- static uploads area -----------------------------------------------------

func TestUploadsAreServedStatically(t *testing.T) {
	uploadsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(uploadsDir, "pic.jpg"), []byte("jpeg bytes"), 0o644))

	r := chi.NewRouter()
	handler.NewServer(&mockWaypointServicer{}, uploadsDir, nil).Routes(r)

	rec := doRequest(t, r, http.MethodGet, "/uploads/pic.jpg", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg bytes", rec.Body.String())

	// A quarantined (absent) blob is a plain 404.
	rec = doRequest(t, r, http.MethodGet, "/uploads/quarantined.jpg", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadsDirectoryIsNotListable(t *testing.T) {
	uploadsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(uploadsDir, "pic.jpg"), []byte("jpeg bytes"), 0o644))

	r := chi.NewRouter()
	handler.NewServer(&mockWaypointServicer{}, uploadsDir, nil).Routes(r)

	// Directory requests must not enumerate blob names.
	rec := doRequest(t, r, http.MethodGet, "/uploads/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pic.jpg")
}
