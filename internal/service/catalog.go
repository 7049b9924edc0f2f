package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/msomdec/storefront/internal/domain"
)

const (
	newCollectionSize = 8
	popularLimit      = 4
)

// NewProduct carries the caller-supplied fields of a catalog entry.
type NewProduct struct {
	Name      string
	Image     string
	Category  string
	NewPrice  float64
	OldPrice  float64
	Available *bool // nil means available
}

// CatalogService handles catalog writes and the storefront's product views.
type CatalogService struct {
	products domain.ProductRepository
	ids      domain.IDAllocator
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(products domain.ProductRepository, ids domain.IDAllocator) *CatalogService {
	return &CatalogService{products: products, ids: ids}
}

// Add validates the fields, allocates an id and stores the product.
func (s *CatalogService) Add(ctx context.Context, in NewProduct) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	if name == "" || category == "" {
		return nil, fmt.Errorf("%w: name and category are required", domain.ErrInvalidInput)
	}
	if !validPrice(in.NewPrice) || !validPrice(in.OldPrice) {
		return nil, fmt.Errorf("%w: prices must be non-negative numbers", domain.ErrInvalidInput)
	}

	id, err := s.ids.Allocate(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate product id: %w", err)
	}

	available := true
	if in.Available != nil {
		available = *in.Available
	}

	product := &domain.Product{
		ID:        id,
		Name:      name,
		Image:     strings.TrimSpace(in.Image),
		Category:  category,
		NewPrice:  in.NewPrice,
		OldPrice:  in.OldPrice,
		CreatedAt: time.Now().UTC(),
		Available: available,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// Remove deletes the product with the given id. A missing product is not
// an error.
func (s *CatalogService) Remove(ctx context.Context, id int64) error {
	if err := s.products.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// ListAll returns the whole catalog in insertion order.
func (s *CatalogService) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

// ListNewCollections drops the first product and returns the last eight of
// what remains. On a catalog of nine this is positions 2..9, not the final
// eight of all nine.
func (s *CatalogService) ListNewCollections(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return newCollections(products), nil
}

// ListPopularByCategory returns the first four products of the category in
// store order.
func (s *CatalogService) ListPopularByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := s.products.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	if len(products) > popularLimit {
		products = products[:popularLimit]
	}
	return products, nil
}

func newCollections(products []domain.Product) []domain.Product {
	if len(products) == 0 {
		return nil
	}
	rest := products[1:]
	if len(rest) > newCollectionSize {
		rest = rest[len(rest)-newCollectionSize:]
	}
	return rest
}

func validPrice(p float64) bool {
	return p >= 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}
