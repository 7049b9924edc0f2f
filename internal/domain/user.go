package domain

import (
	"context"
	"time"
)

// Cart maps a product identifier (string-typed, as clients send it) to the
// quantity held.
type Cart map[string]int

// User represents a registered shopper.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Cart         Cart
	CartVersion  int64 // bumped on every cart write
	CreatedAt    time.Time
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// IncrementCartItem adds one to cart[productID] in a single statement
	// and returns the stored cart. It returns ErrNotFound when the user does
	// not exist.
	IncrementCartItem(ctx context.Context, userID int64, productID string) (Cart, error)
}
