package domain

import (
	"context"
	"time"
)

// Product is a catalog entry.
type Product struct {
	ID        int64
	Name      string
	Image     string
	Category  string
	NewPrice  float64
	OldPrice  float64
	CreatedAt time.Time
	Available bool
}

// ProductRepository defines persistence operations for the catalog.
// List methods return products in insertion order.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	// DeleteByID removes the product with the given id. Deleting an id that
	// does not exist is not an error.
	DeleteByID(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Product, error)
	ListByCategory(ctx context.Context, category string) ([]Product, error)
}

// IDAllocator hands out product identifiers.
type IDAllocator interface {
	Allocate(ctx context.Context) (int64, error)
}
