package domain

import "errors"

// ErrNotFound is returned by repo, blob, and service functions when the
// requested resource does not exist (unknown waypoint id, or a blob
// reference that is missing or quarantined).
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing title, latitude out of range).
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrUnsupportedMedia is returned by the blob store when an upload's sniffed
// content type is not on the allow-list (jpeg, png, webp). Detected before
// any bytes are persisted. Handlers should map this to HTTP 400.
var ErrUnsupportedMedia = errors.New("unsupported media type")
