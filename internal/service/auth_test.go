package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/msomdec/todo-api/internal/domain"
	"github.com/msomdec/todo-api/internal/repository/sqlite"
	"github.com/msomdec/todo-api/internal/service"
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
	auth := service.NewAuthService(db.Users(), service.NewTokenService(testJWTSecret, 0), 4)
	return auth, db
}

func TestAuthService_Register_Success(t *testing.T) {
	auth, db := newTestAuthService(t)
	ctx := context.Background()

	user, token, err := auth.Register(ctx, "  new@example.com ", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected user ID to be set")
	}
	if user.Email != "new@example.com" {
		t.Fatalf("expected trimmed email new@example.com, got %q", user.Email)
	}
	if user.PasswordHash == "password123" || user.PasswordHash == "" {
		t.Fatal("expected password to be stored as a hash")
	}
	if token == "" {
		t.Fatal("expected a session token")
	}

	stored, err := db.Users().GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(stored.Tokens) != 1 || stored.Tokens[0].Value != token || stored.Tokens[0].Access != domain.AccessAuth {
		t.Fatalf("expected one auth token matching the returned one, got %+v", stored.Tokens)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := auth.Register(ctx, "dup@example.com", "password123"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, _, err := auth.Register(ctx, "dup@example.com", "password456")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		field    string
	}{
		{"empty email", "", "password123", "email"},
		{"blank email", "   ", "password123", "email"},
		{"malformed email", "not-an-email", "password123", "email"},
		{"short password", "short@example.com", "12345", "password"},
		{"short multibyte password", "mb@example.com", "ééé", "password"},
		{"long password", "long@example.com", strings.Repeat("x", 73), "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := auth.Register(ctx, tt.email, tt.password)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, verr.Field)
			}
		})
	}
}

func TestAuthService_Register_CountsCharacters(t *testing.T) {
	auth, _ := newTestAuthService(t)

	// Six characters but twelve bytes.
	if _, _, err := auth.Register(context.Background(), "runes@example.com", "éééééé"); err != nil {
		t.Fatalf("Register: %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	auth, db := newTestAuthService(t)
	ctx := context.Background()

	registered, first, err := auth.Register(ctx, "login@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, second, err := auth.Login(ctx, "login@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %s, got %s", registered.ID, user.ID)
	}
	if second == first {
		t.Fatal("expected login to issue a fresh token")
	}

	stored, err := db.Users().GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(stored.Tokens) != 2 {
		t.Fatalf("expected 2 tokens after login, got %d", len(stored.Tokens))
	}
	if stored.Tokens[1].Value != second {
		t.Fatal("expected login token to be appended last")
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	auth, db := newTestAuthService(t)
	ctx := context.Background()

	user, _, err := auth.Register(ctx, "fail@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := auth.Login(ctx, "fail@example.com", "wrong-password"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("wrong password: expected ErrUnauthorized, got %v", err)
	}
	if _, _, err := auth.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("unknown email: expected ErrUnauthorized, got %v", err)
	}

	stored, err := db.Users().GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(stored.Tokens) != 1 {
		t.Fatalf("failed logins must not add tokens, got %d", len(stored.Tokens))
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	user, token, err := auth.Register(ctx, "authn@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := auth.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, got.ID)
	}

	for _, bad := range []string{"", "garbage", token + "x"} {
		if _, err := auth.Authenticate(ctx, bad); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("token %q: expected ErrUnauthorized, got %v", bad, err)
		}
	}
}

func TestAuthService_Authenticate_UnlistedToken(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	user, _, err := auth.Register(ctx, "unlisted@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Correctly signed for this user but never stored.
	forged, err := service.NewTokenService(testJWTSecret, 0).Issue(user.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := auth.Authenticate(ctx, forged); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	user, first, err := auth.Register(ctx, "logout@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, second, err := auth.Login(ctx, "logout@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := auth.Logout(ctx, user.ID, first); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := auth.Logout(ctx, user.ID, first); err != nil {
		t.Fatalf("second Logout should be a no-op: %v", err)
	}

	if _, err := auth.Authenticate(ctx, first); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("logged out token: expected ErrUnauthorized, got %v", err)
	}
	if _, err := auth.Authenticate(ctx, second); err != nil {
		t.Fatalf("other session should stay valid: %v", err)
	}
}

func TestAuthService_GetUserByID(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	user, _, err := auth.Register(ctx, "byid@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := auth.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.Email != "byid@example.com" {
		t.Fatalf("expected email byid@example.com, got %s", got.Email)
	}

	if _, err := auth.GetUserByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
