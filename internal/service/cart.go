package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/msomdec/storefront/internal/domain"
)

// cartKeyPattern limits product ids held in carts to characters that are
// safe inside a JSON path.
var cartKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// CartService applies quantity changes to a user's cart.
type CartService struct {
	users domain.UserRepository
}

// NewCartService creates a new CartService.
func NewCartService(users domain.UserRepository) *CartService {
	return &CartService{users: users}
}

// AddToCart increments the quantity of productID in the user's cart by one
// and returns the stored cart. The increment is a single conditional write in
// the store, so concurrent adds for the same user are all counted.
func (s *CartService) AddToCart(ctx context.Context, userID int64, productID string) (domain.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: itemId is required", domain.ErrInvalidInput)
	}
	if !cartKeyPattern.MatchString(productID) {
		return nil, fmt.Errorf("%w: itemId must be letters, digits, '-' or '_'", domain.ErrInvalidInput)
	}

	cart, err := s.users.IncrementCartItem(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("increment cart item: %w", err)
	}
	return cart, nil
}

// GetCart returns the user's cart.
func (s *CartService) GetCart(ctx context.Context, userID int64) (domain.Cart, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user.Cart, nil
}
