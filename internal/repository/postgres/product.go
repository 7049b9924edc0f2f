package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/msomdec/storefront/internal/domain"
)

type ProductRepository struct {
	db DBTX
}

func NewProductRepository(db DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, name, image, category, new_price, old_price, created_at, available)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Name, p.Image, p.Category, p.NewPrice, p.OldPrice, p.CreatedAt, p.Available,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *ProductRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, image, category, new_price, old_price, created_at, available
		 FROM products ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *ProductRepository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, image, category, new_price, old_price, created_at, available
		 FROM products WHERE category = $1 ORDER BY seq`, category)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Image, &p.Category, &p.NewPrice, &p.OldPrice, &p.CreatedAt, &p.Available); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// SequenceAllocator advances the products counter under the row lock taken
// by UPDATE, so concurrent transactions are serialised on it.
type SequenceAllocator struct {
	db DBTX
}

func NewSequenceAllocator(db DBTX) *SequenceAllocator {
	return &SequenceAllocator{db: db}
}

func (a *SequenceAllocator) Allocate(ctx context.Context) (int64, error) {
	var id int64
	err := a.db.QueryRowContext(ctx,
		`UPDATE id_sequences
		 SET value = GREATEST(value, (SELECT COALESCE(MAX(id), 0) FROM products)) + 1
		 WHERE name = 'products'
		 RETURNING value`,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}
