package storage

import (
	"context"
	"io"
)

// UploadResult describes a stored object. Key is what callers persist;
// Location is the public URL when the bucket has one.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores avatar images in an S3-compatible bucket.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// GetPublicURL returns the URL clients load key from, or "" when the
	// bucket is not publicly served.
	GetPublicURL(key string) string
}
