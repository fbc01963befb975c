// Package storage defines the interface for object storage operations.
// The MinIO implementation works with any S3-compatible provider (MinIO,
// Cloudflare R2, AWS S3) — swap providers by changing endpoint and credentials.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStorage is the interface for storing, removing, and signing blobs.
// The bucket is private: the only read path is a presigned GET URL.
type ObjectStorage interface {
	// Put streams data to the store under the given key.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes the object identified by key.
	Delete(ctx context.Context, key string) error
	// PresignedGet returns a time-limited URL granting read access to the
	// object without further authentication.
	PresignedGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}
