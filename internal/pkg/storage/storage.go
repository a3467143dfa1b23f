package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

type FileStorage interface {
	// Upload uploads a file and returns the file path/key
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download retrieves a file
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file
	Delete(ctx context.Context, path string) error

	// GetURL generates a presigned/public URL
	GetURL(ctx context.Context, path string, expiry time.Duration) (string, error)

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)

	// DeleteOlderThan removes files under prefix last modified before cutoff
	DeleteOlderThan(ctx context.Context, prefix string, cutoff time.Time) (int, error)
}

// Disk names
const (
	DiskAbsensi = "absensi" // uploaded check-out photos
	DiskPublic  = "public"  // generated exports
)

// ExportsPrefix is the directory on the public disk holding generated exports.
const ExportsPrefix = "exports"

// Disks maps a disk name to its backing storage.
type Disks map[string]FileStorage

// Disk returns the storage registered under name.
func (d Disks) Disk(name string) (FileStorage, error) {
	s, ok := d[name]
	if !ok || s == nil {
		return nil, fmt.Errorf("storage disk %q is not configured", name)
	}
	return s, nil
}
