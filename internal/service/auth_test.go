package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/repository/sqlite"
	"github.com/msomdec/storefront/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0123456789"

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestAuthService(t *testing.T) (*service.AuthService, *sqlite.DB) {
	t.Helper()
	db := newTestDB(t)
	// Use cost 4 for fast tests.
	return service.NewAuthService(db.Users(), testJWTSecret, 4, time.Hour), db
}

func TestAuthService_Signup_Success(t *testing.T) {
	auth, db := newTestAuthService(t)
	ctx := context.Background()

	token, user, err := auth.Signup(ctx, "New User", "new@example.com", "password123")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if user.ID == 0 {
		t.Fatal("expected user ID to be set")
	}

	stored, err := db.Users().GetByEmail(ctx, "new@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if stored.PasswordHash == "password123" {
		t.Fatal("password must not be stored in plain text")
	}
	if len(stored.Cart) != 0 {
		t.Fatalf("expected empty cart, got %v", stored.Cart)
	}
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	auth, db := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := auth.Signup(ctx, "User 1", "dup@example.com", "password123"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	before, err := db.Users().GetByEmail(ctx, "dup@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}

	_, _, err = auth.Signup(ctx, "User 2", "dup@example.com", "password456")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	after, err := db.Users().GetByEmail(ctx, "dup@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if after.Name != before.Name || after.PasswordHash != before.PasswordHash || after.ID != before.ID {
		t.Fatalf("existing user was altered: before %+v, after %+v", before, after)
	}
}

func TestAuthService_Signup_EmptyFields(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "password123"},
		{"blank email", "   ", "password123"},
		{"empty password", "a@b.com", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := auth.Signup(ctx, "Name", tc.email, tc.password)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	_, user, err := auth.Signup(ctx, "Login User", "login@example.com", "password123")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	token, err := auth.Login(ctx, "login@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	userID, err := auth.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("expected user ID %d, got %d", user.ID, userID)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := auth.Signup(ctx, "User", "wrongpw@example.com", "password123"); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	_, err := auth.Login(ctx, "wrongpw@example.com", "wrongpassword")
	if !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	auth, _ := newTestAuthService(t)

	_, err := auth.Login(context.Background(), "nobody@example.com", "password123")
	if !errors.Is(err, domain.ErrUnknownEmail) {
		t.Fatalf("expected ErrUnknownEmail, got %v", err)
	}
}

func TestAuthService_Authenticate_SignupToken(t *testing.T) {
	auth, _ := newTestAuthService(t)

	token, user, err := auth.Signup(context.Background(), "JWT User", "jwt@example.com", "password123")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	userID, err := auth.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("expected user ID %d, got %d", user.ID, userID)
	}
}

func TestAuthService_Authenticate_Missing(t *testing.T) {
	auth, _ := newTestAuthService(t)

	_, err := auth.Authenticate("")
	if !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestAuthService_Authenticate_Invalid(t *testing.T) {
	auth, _ := newTestAuthService(t)

	_, err := auth.Authenticate("not-a-valid-jwt")
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_Authenticate_Tampered(t *testing.T) {
	auth, _ := newTestAuthService(t)

	token, _, err := auth.Signup(context.Background(), "Tamper", "tamper@example.com", "password123")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	tampered := token[:len(token)-5] + "XXXXX"
	if _, err := auth.Authenticate(tampered); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for tampered token, got %v", err)
	}
}

func TestAuthService_Authenticate_WrongSecret(t *testing.T) {
	auth1, db := newTestAuthService(t)

	token, _, err := auth1.Signup(context.Background(), "Secret", "secret@example.com", "password123")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	auth2 := service.NewAuthService(db.Users(), "a-different-secret-of-sufficient-length", 4, time.Hour)
	if _, err := auth2.Authenticate(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestAuthService_Authenticate_Expired(t *testing.T) {
	auth, _ := newTestAuthService(t)

	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	auth.SetClock(func() time.Time { return issued })

	token, _, err := auth.Signup(context.Background(), "Exp", "exp@example.com", "password123")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	auth.SetClock(func() time.Time { return issued.Add(59 * time.Minute) })
	if _, err := auth.Authenticate(token); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	auth.SetClock(func() time.Time { return issued.Add(2 * time.Hour) })
	if _, err := auth.Authenticate(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}
