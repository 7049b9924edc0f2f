package handler

import (
	"time"

	"github.com/msomdec/storefront/internal/domain"
)

// productDTO is the wire form of a product.
type productDTO struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Category  string  `json:"category"`
	NewPrice  float64 `json:"new_price"`
	OldPrice  float64 `json:"old_price"`
	Date      string  `json:"date"`
	Available bool    `json:"available"`
}

func toProductDTO(p domain.Product) productDTO {
	return productDTO{
		ID:        p.ID,
		Name:      p.Name,
		Image:     p.Image,
		Category:  p.Category,
		NewPrice:  p.NewPrice,
		OldPrice:  p.OldPrice,
		Date:      p.CreatedAt.UTC().Format(time.RFC3339),
		Available: p.Available,
	}
}

// toProductDTOs always returns a non-nil slice so empty lists encode as [].
func toProductDTOs(products []domain.Product) []productDTO {
	out := make([]productDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDTO(p))
	}
	return out
}
