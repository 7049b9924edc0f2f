package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/storefront/internal/domain"
)

// UserRepository implements domain.UserRepository using SQLite.
// Carts are stored as a JSON object in the users row.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db.SqlDB}
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

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, cart, cart_version, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		user.Name, user.Email, user.PasswordHash, string(raw), now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	user.ID = id
	user.Cart = cart
	user.CartVersion = 0
	user.CreatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, cart, cart_version, created_at
		 FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, cart, cart_version, created_at
		 FROM users WHERE email = ?`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

// IncrementCartItem bumps one cart entry with json_set. The key is embedded
// in a quoted JSON path, so callers must pass keys without quotes or
// backslashes.
func (r *UserRepository) IncrementCartItem(ctx context.Context, userID int64, productID string) (domain.Cart, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`UPDATE users
		 SET cart = json_set(cart, '$."' || ? || '"', COALESCE(json_extract(cart, '$."' || ? || '"'), 0) + 1),
		     cart_version = cart_version + 1
		 WHERE id = ?
		 RETURNING cart`,
		productID, productID, userID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("increment cart item: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return cart, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var rawCart string
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &rawCart, &user.CartVersion, &user.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(rawCart), &user.Cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if user.Cart == nil {
		user.Cart = domain.Cart{}
	}
	return user, nil
}
