package api

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
)

// ObjectStore is the slice of the blob backend handlers depend on, so
// tests can swap in a fake.
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}
