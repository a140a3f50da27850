package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/epearson/world-journal/backend/internal/domain"
)

// URLPrefix is the path under which servable blobs are mounted on the router.
// References are "/uploads/<name>"; the router serves the uploads directory
// at the same prefix, so a reference doubles as its servable URL.
const URLPrefix = "/uploads"

// allowedTypes is the upload content-type allow-list. Anything else is
// rejected before bytes reach disk.
var allowedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// LocalStore is a Store backed by two directories on the local filesystem:
// an uploads directory (servable) and a quarantine directory (soft-deleted).
// Quarantine and Restore are single os.Rename calls, so a blob is never in
// both areas or neither.
type LocalStore struct {
	uploadsDir    string
	quarantineDir string
	log           *slog.Logger
}

// NewLocalStore constructs a LocalStore and creates both directories if they
// do not exist yet.
func NewLocalStore(uploadsDir, quarantineDir string, log *slog.Logger) (*LocalStore, error) {
	if log == nil {
		log = slog.Default()
	}
	for _, dir := range []string{uploadsDir, quarantineDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("blob.NewLocalStore: create %s: %w", dir, err)
		}
	}
	return &LocalStore{uploadsDir: uploadsDir, quarantineDir: quarantineDir, log: log}, nil
}

// Put reads the full upload into memory (the HTTP layer bounds request size),
// sniffs its content type, and writes it into the uploads directory under a
// generated collision-free name.
func (s *LocalStore) Put(ctx context.Context, r io.Reader, originalName, waypointID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("blob.LocalStore.Put: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("blob.LocalStore.Put: read upload: %w", err)
	}

	mt := mimetype.Detect(data)
	if !allowed(mt) {
		return "", fmt.Errorf("blob.LocalStore.Put: %s: %w", mt.String(), domain.ErrUnsupportedMedia)
	}

	name := generateName(originalName, waypointID)
	dst := filepath.Join(s.uploadsDir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("blob.LocalStore.Put: write %s: %w", name, err)
	}

	return path.Join(URLPrefix, name), nil
}

// Resolve returns the servable URL for ref iff the blob is currently in the
// uploads area. Quarantined or missing blobs are domain.ErrNotFound.
func (s *LocalStore) Resolve(ref string) (string, error) {
	name, err := refName(ref)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(filepath.Join(s.uploadsDir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("blob.LocalStore.Resolve: %s: %w", name, domain.ErrNotFound)
		}
		return "", fmt.Errorf("blob.LocalStore.Resolve: %s: %w", name, err)
	}
	return path.Join(URLPrefix, name), nil
}

// Quarantine moves the blob from the uploads area to the quarantine area.
func (s *LocalStore) Quarantine(ref string) error {
	name, err := refName(ref)
	if err != nil {
		return err
	}
	return s.move(name, s.uploadsDir, s.quarantineDir, "Quarantine")
}

// Restore moves the blob from the quarantine area back to the uploads area.
func (s *LocalStore) Restore(ref string) error {
	name, err := refName(ref)
	if err != nil {
		return err
	}
	return s.move(name, s.quarantineDir, s.uploadsDir, "Restore")
}

// move renames name from one area directory to the other.
// os.Rename within the same filesystem is atomic, so the blob is never
// visible in both areas at once.
func (s *LocalStore) move(name, fromDir, toDir, op string) error {
	src := filepath.Join(fromDir, name)
	dst := filepath.Join(toDir, name)
	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("blob.LocalStore.%s: %s: %w", op, name, domain.ErrNotFound)
		}
		return fmt.Errorf("blob.LocalStore.%s: %s: %w", op, name, err)
	}
	return nil
}

// Purge permanently deletes the blob from the quarantine area.
func (s *LocalStore) Purge(ref string) error {
	name, err := refName(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.quarantineDir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("blob.LocalStore.Purge: %s: %w", name, domain.ErrNotFound)
		}
		return fmt.Errorf("blob.LocalStore.Purge: %s: %w", name, err)
	}
	return nil
}

// SweepExpired purges every quarantined blob older than olderThan.
// Failures are logged per file and do not stop the sweep; the error return
// is reserved for being unable to list the quarantine directory at all.
func (s *LocalStore) SweepExpired(ctx context.Context, olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(s.quarantineDir)
	if err != nil {
		return 0, fmt.Errorf("blob.LocalStore.SweepExpired: read quarantine dir: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	purged := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return purged, fmt.Errorf("blob.LocalStore.SweepExpired: %w", err)
		}
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Already gone or unreadable — fine either way, move on.
			s.log.Warn("sweep: stat failed", "file", entry.Name(), "error", err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.quarantineDir, entry.Name())); err != nil {
			s.log.Warn("sweep: purge failed", "file", entry.Name(), "error", err)
			continue
		}
		purged++
	}

	return purged, nil
}

// compile-time check: LocalStore must satisfy Store.
var _ Store = (*LocalStore)(nil)

// allowed reports whether the sniffed type is on the upload allow-list.
func allowed(mt *mimetype.MIME) bool {
	for _, t := range allowedTypes {
		if mt.Is(t) {
			return true
		}
	}
	return false
}

// generateName builds a collision-free blob name:
// "<unix-ms>-[waypointID-]<random>-<sanitized original name>".
// Both client-supplied parts go through sanitizeName so the result is always
// a single path element under the uploads directory.
func generateName(originalName, waypointID string) string {
	parts := []string{fmt.Sprintf("%d", time.Now().UnixMilli())}
	if waypointID != "" {
		parts = append(parts, sanitizeName(waypointID))
	}
	parts = append(parts, uuid.NewString()[:8], sanitizeName(originalName))
	return strings.Join(parts, "-")
}

// sanitizeName strips any path components from the client-supplied file name
// and replaces characters that are awkward in URLs or shells.
func sanitizeName(name string) string {
	name = filepath.Base(filepath.Clean(name))
	if name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// refName extracts the blob file name from a reference and rejects anything
// that could escape the storage directories. References from older revisions
// may be full URLs, so only the final path element counts.
func refName(ref string) (string, error) {
	name := path.Base(strings.TrimSpace(ref))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("blob: invalid reference %q: %w", ref, domain.ErrValidation)
	}
	return name, nil
}
