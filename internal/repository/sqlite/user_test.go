package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/todo-api/internal/domain"
	"github.com/msomdec/todo-api/internal/repository/sqlite"
)

func createUser(t *testing.T, repo domain.UserRepository, email string) *domain.User {
	t.Helper()
	user := &domain.User{Email: email, PasswordHash: "hashedpw"}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create %s: %v", email, err)
	}
	return user
}

func TestUserRepository_Create(t *testing.T) {
	repo := sqlite.NewUserRepository(newTestDB(t))

	user := createUser(t, repo, "test@example.com")

	if user.ID == "" {
		t.Fatal("expected user ID to be set after create")
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo := sqlite.NewUserRepository(newTestDB(t))
	createUser(t, repo, "dup@example.com")

	err := repo.Create(context.Background(), &domain.User{Email: "dup@example.com", PasswordHash: "hash2"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	repo := sqlite.NewUserRepository(newTestDB(t))
	user := createUser(t, repo, "byid@example.com")

	found, err := repo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Email != user.Email {
		t.Fatalf("expected email %q, got %q", user.Email, found.Email)
	}
	if found.PasswordHash != "hashedpw" {
		t.Fatalf("expected stored hash, got %q", found.PasswordHash)
	}
	if len(found.Tokens) != 0 {
		t.Fatalf("expected no tokens, got %d", len(found.Tokens))
	}
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo := sqlite.NewUserRepository(newTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"123", "", "6f1c1b0e-7d4a-4d8e-9a55-0d3f6b2f0c11"} {
		if _, err := repo.GetByID(ctx, id); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("GetByID(%q): expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	repo := sqlite.NewUserRepository(newTestDB(t))
	user := createUser(t, repo, "byemail@example.com")

	found, err := repo.GetByEmail(context.Background(), "byemail@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("expected id %s, got %s", user.ID, found.ID)
	}
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	repo := sqlite.NewUserRepository(newTestDB(t))

	_, err := repo.GetByEmail(context.Background(), "nonexistent@example.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_Tokens(t *testing.T) {
	repo := sqlite.NewUserRepository(newTestDB(t))
	ctx := context.Background()
	user := createUser(t, repo, "tokens@example.com")

	for _, v := range []string{"tok-1", "tok-2", "tok-3"} {
		if err := repo.AddToken(ctx, user.ID, domain.Token{Access: domain.AccessAuth, Value: v}); err != nil {
			t.Fatalf("AddToken %s: %v", v, err)
		}
	}

	if err := repo.RemoveToken(ctx, user.ID, "tok-2"); err != nil {
		t.Fatalf("RemoveToken: %v", err)
	}
	// Removing again is a no-op.
	if err := repo.RemoveToken(ctx, user.ID, "tok-2"); err != nil {
		t.Fatalf("RemoveToken (repeat): %v", err)
	}

	found, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(found.Tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(found.Tokens))
	}
	if found.Tokens[0].Value != "tok-1" || found.Tokens[1].Value != "tok-3" {
		t.Fatalf("unexpected tokens: %+v", found.Tokens)
	}
	if found.Tokens[0].Access != domain.AccessAuth {
		t.Fatalf("expected access %q, got %q", domain.AccessAuth, found.Tokens[0].Access)
	}
}

func TestUserRepository_AddToken_UnknownUser(t *testing.T) {
	repo := sqlite.NewUserRepository(newTestDB(t))

	err := repo.AddToken(context.Background(), "6f1c1b0e-7d4a-4d8e-9a55-0d3f6b2f0c11",
		domain.Token{Access: domain.AccessAuth, Value: "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
