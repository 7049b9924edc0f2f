package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/msomdec/storefront/internal/domain"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	cart := user.Cart
	if cart == nil {
		cart = domain.Cart{}
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password_hash, cart)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		user.Name, user.Email, user.PasswordHash, raw,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("db error: %w", err)
	}

	user.Cart = cart
	user.CartVersion = 0
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, cart, cart_version, created_at
		 FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, cart, cart_version, created_at
		 FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// IncrementCartItem bumps one cart entry with jsonb_set; the row lock taken
// by UPDATE serialises concurrent increments.
func (r *UserRepository) IncrementCartItem(ctx context.Context, userID int64, productID string) (domain.Cart, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`UPDATE users
		 SET cart = jsonb_set(cart, ARRAY[$1::text], to_jsonb(COALESCE((cart->>$1)::bigint, 0) + 1)),
		     cart_version = cart_version + 1
		 WHERE id = $2
		 RETURNING cart`,
		productID, userID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return cart, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var rawCart []byte
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &rawCart, &user.CartVersion, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := json.Unmarshal(rawCart, &user.Cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if user.Cart == nil {
		user.Cart = domain.Cart{}
	}
	return user, nil
}
