package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/msomdec/storefront/internal/domain"
)

// ProductRepository implements domain.ProductRepository using SQLite.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new SQLite-backed ProductRepository.
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db.SqlDB}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, name, image, category, new_price, old_price, created_at, available)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Image, p.Category, p.NewPrice, p.OldPrice, p.CreatedAt, p.Available,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, image, category, new_price, old_price, created_at, available
		 FROM products ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *ProductRepository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, image, category, new_price, old_price, created_at, available
		 FROM products WHERE category = ? ORDER BY seq`, category)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
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

// SequenceAllocator hands out product ids from the id_sequences counter.
// The counter is advanced in one UPDATE statement, so concurrent callers
// never observe the same value. It also catches up with the highest id
// already in the catalog.
type SequenceAllocator struct {
	db *sql.DB
}

// NewSequenceAllocator creates a counter-backed allocator.
func NewSequenceAllocator(db *DB) *SequenceAllocator {
	return &SequenceAllocator{db: db.SqlDB}
}

func (a *SequenceAllocator) Allocate(ctx context.Context) (int64, error) {
	var id int64
	err := a.db.QueryRowContext(ctx,
		`UPDATE id_sequences
		 SET value = MAX(value, (SELECT COALESCE(MAX(id), 0) FROM products)) + 1
		 WHERE name = 'products'
		 RETURNING value`,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("advance product sequence: %w", err)
	}
	return id, nil
}
