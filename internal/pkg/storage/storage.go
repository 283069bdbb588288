package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("stored file not found")

// FileStorage keeps original uploads so an import can be audited later.
type FileStorage interface {
	// Save writes r under key and returns the stored key
	Save(ctx context.Context, key string, r io.Reader) (string, error)

	// Open retrieves a stored file
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file, a missing file is not an error
	Delete(ctx context.Context, key string) error
}

// ArchiveKey builds a collision-free key for an uploaded file, grouped by
// upload month: imports/2026/02/<uuid>.csv
func ArchiveKey(filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".csv"
	}
	return fmt.Sprintf("imports/%s/%s%s", now.UTC().Format("2006/01"), uuid.NewString(), ext)
}
