package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/msomdec/storefront/internal/domain"
)

// FileStore keeps uploaded image bytes in the file_blobs table.
type FileStore struct {
	db DBTX
}

func NewFileStore(db DBTX) *FileStore {
	return &FileStore{db: db}
}

func (s *FileStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO file_blobs (storage_key, data) VALUES ($1, $2)
		 ON CONFLICT (storage_key) DO UPDATE SET data = EXCLUDED.data`,
		key, data,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM file_blobs WHERE storage_key = $1`, key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return data, nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM file_blobs WHERE storage_key = $1`, key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
