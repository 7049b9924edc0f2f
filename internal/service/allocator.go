package service

import (
	"context"
	"fmt"

	"github.com/msomdec/storefront/internal/domain"
)

// Product id allocation policies.
const (
	// AllocateSequence draws ids from an atomic counter in the store.
	AllocateSequence = "sequence"
	// AllocateSnapshot derives the next id from the last product in the
	// catalog. Two concurrent calls may read the same snapshot and return
	// the same id; the store's unique index then rejects the second insert.
	AllocateSnapshot = "snapshot"
)

// SnapshotAllocator returns the id of the last-inserted product plus one, or
// 1 for an empty catalog. "Last" follows the store's insertion order, not the
// numeric maximum.
type SnapshotAllocator struct {
	products domain.ProductRepository
}

func NewSnapshotAllocator(products domain.ProductRepository) *SnapshotAllocator {
	return &SnapshotAllocator{products: products}
}

func (a *SnapshotAllocator) Allocate(ctx context.Context) (int64, error) {
	products, err := a.products.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("read catalog: %w", err)
	}
	if len(products) == 0 {
		return 1, nil
	}
	return products[len(products)-1].ID + 1, nil
}

// NewAllocator picks the allocator for the named policy.
func NewAllocator(policy string, products domain.ProductRepository, sequence domain.IDAllocator) (domain.IDAllocator, error) {
	switch policy {
	case AllocateSequence, "":
		return sequence, nil
	case AllocateSnapshot:
		return NewSnapshotAllocator(products), nil
	default:
		return nil, fmt.Errorf("%w: unknown id allocation policy %q", domain.ErrInvalidInput, policy)
	}
}
