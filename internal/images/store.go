// Package images stores print cover images and hands back the public URL
// they are served under. The core never interprets image bytes beyond
// sniffing the content type; URLs are opaque to everything else.
package images

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/chapmanwm/printsync-web/internal/adapter"
)

var (
	// ErrUnsupportedType is returned when the uploaded bytes are not an image
	ErrUnsupportedType = errors.New("unsupported content type")
	// ErrInvalidPrintID is returned when the print id cannot form a safe file name
	ErrInvalidPrintID = errors.New("invalid print id")
)

// Store persists a cover image for a print and returns its public URL.
type Store interface {
	Save(ctx context.Context, printID string, data []byte) (string, error)
}

// coverExtensions lists every extension Save can produce. A re-upload with
// a different content type must remove the old file, or the static route
// keeps serving the stale cover.
var coverExtensions = []string{".png", ".jpg", ".gif", ".webp", ".bmp"}

// FileStore implements Store on the local filesystem. Files are written as
// <dir>/<printID><ext> with the extension taken from the sniffed content
// type, and served under baseURL by the API's static route.
type FileStore struct {
	fs      adapter.FileSystem
	dir     string
	baseURL string
}

// NewFileStore creates a filesystem-backed image store
func NewFileStore(fs adapter.FileSystem, dir string, baseURL string) *FileStore {
	return &FileStore{
		fs:      fs,
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Save sniffs the content type, rejects non-images, and writes the file.
// Re-uploading for the same print overwrites the previous cover.
func (s *FileStore) Save(_ context.Context, printID string, data []byte) (string, error) {
	if printID == "" || printID != filepath.Base(printID) || strings.ContainsAny(printID, "./\\") {
		return "", ErrInvalidPrintID
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	name := printID + mtype.Extension()
	if err := s.fs.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write cover image: %w", err)
	}

	// Drop covers written under a previous content type; most of these
	// won't exist, so removal errors are not meaningful
	for _, ext := range coverExtensions {
		if ext == mtype.Extension() {
			continue
		}
		_ = s.fs.Remove(filepath.Join(s.dir, printID+ext))
	}

	return s.baseURL + "/" + name, nil
}

// Dir returns the directory covers are written to, for the static route.
func (s *FileStore) Dir() string {
	return s.dir
}
