package memory

import (
	"context"
	"io"
	"net/url"
	"strings"

	"harbor/internal/domain/service"
	"harbor/internal/errors"
)

type blobStorage struct {
	s       *Store
	baseURL string
}

// NewBlobStorage returns in-process blob storage whose download URLs start with baseURL.
func NewBlobStorage(s *Store, baseURL string) service.BlobStorage {
	return &blobStorage{s: s, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (b *blobStorage) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "read blob")
	}

	b.s.mu.Lock()
	b.s.blobs[path] = blob{contentType: contentType, data: data}
	b.s.mu.Unlock()

	return b.baseURL + "/" + url.PathEscape(path), nil
}

func (b *blobStorage) Delete(ctx context.Context, path string) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	delete(b.s.blobs, path)

	return nil
}

// Blob returns a stored object's content type and bytes.
func (s *Store) Blob(path string) (string, []byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[path]

	return b.contentType, b.data, ok
}

// BlobPaths returns the paths of every stored object.
func (s *Store) BlobPaths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.blobs))
	for p := range s.blobs {
		paths = append(paths, p)
	}

	return paths
}
