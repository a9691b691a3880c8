package firebase

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"harbor/internal/domain/service"
	"harbor/internal/errors"
)

// Clients read uploads through Firebase download URLs, which authorize with this metadata token.
const downloadTokenKey = "firebaseStorageDownloadTokens"

type blobStorage struct {
	bucket     *storage.BucketHandle
	bucketName string
}

// NewBlobStorage stores objects in the app's default bucket.
func NewBlobStorage(c *Clients) service.BlobStorage {
	return &blobStorage{bucket: c.Bucket, bucketName: c.bucketName}
}

func (s *blobStorage) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	token := uuid.NewString()

	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenKey: token}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()

		return "", gatewayError(err, "upload "+path)
	}
	if err := w.Close(); err != nil {
		return "", gatewayError(err, "upload "+path)
	}

	return downloadURL(s.bucketName, path, token), nil
}

func (s *blobStorage) Delete(ctx context.Context, path string) error {
	err := s.bucket.Object(path).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}

	return gatewayError(err, "delete "+path)
}

func downloadURL(bucket, path, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(path), url.QueryEscape(token))
}
