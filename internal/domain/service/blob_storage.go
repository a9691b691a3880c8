package service

import (
	"context"
	"io"
)

// BlobStorage stores binary objects by path.
type BlobStorage interface {
	// Upload writes the object and returns its public download URL.
	Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error
}
