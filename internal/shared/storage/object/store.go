package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving and retrieving resume files.
type ObjectStore interface {
	Save(ctx context.Context, userID string, fileName string, r io.Reader) (storagePath string, sizeBytes int64, mimeType string, err error)
	SaveWithKey(ctx context.Context, storagePath, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, storagePath string) (io.ReadCloser, error)
}
