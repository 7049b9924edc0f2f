package domain

import "context"

// FileStore abstracts raw file byte storage for uploaded product images.
// Implementations live on local disk, in the database, or in S3.
type FileStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
