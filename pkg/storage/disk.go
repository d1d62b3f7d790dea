// Package storage stores uploaded product images on a named disk.
//
// Two drivers are available:
//   - "local"  local filesystem under STORAGE_LOCAL_ROOT (default)
//   - "s3"     S3-compatible object storage (AWS S3, MinIO, R2)
//
//	disks := storage.Connect(ctx)
//	key, _ := disks.Default().PutStream(ctx, storage.ObjectName("products/7", "photo.jpg"), body)
//	url := disks.Default().URL(key)
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Disk is the filesystem driver interface.
type Disk interface {
	// Put writes content to key, creating parent directories as needed.
	Put(ctx context.Context, key string, content []byte) error

	PutStream(ctx context.Context, key string, r io.Reader) (string, error)

	Get(ctx context.Context, key string) ([]byte, error)

	Exists(ctx context.Context, key string) bool

	// URL returns the public URL for key.
	URL(key string) string

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, key string) error
}

// ObjectName builds a collision-free key under dir, keeping the extension of
// the uploaded filename.
func ObjectName(dir, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(strings.Trim(dir, "/"), uuid.NewString()+ext)
}
