package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/msomdec/todo-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService handles user registration, login, logout, and session lookup.
type AuthService struct {
	users      domain.UserRepository
	tokens     *TokenService
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, tokens *TokenService, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Register validates the credentials, creates the account and logs it in.
// It returns the new user together with its first session token.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, "", domain.NewValidationError("email", "is required")
	}
	if !emailPattern.MatchString(email) {
		return nil, "", domain.NewValidationError("email", "is not a valid email")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, "", domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, "", domain.NewValidationError("password", "must be at most 72 bytes")
		}
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.startSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// FindByCredentials returns the user matching email whose password hash
// verifies against password. Any mismatch yields ErrUnauthorized.
func (s *AuthService) FindByCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// Login verifies credentials and opens a new session for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.FindByCredentials(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.startSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate resolves a presented token to its user. The token must verify
// and still be listed on the user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.HasToken(token) {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// Logout removes token from the user's active sessions.
func (s *AuthService) Logout(ctx context.Context, userID, token string) error {
	if err := s.users.RemoveToken(ctx, userID, token); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) startSession(ctx context.Context, user *domain.User) (string, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	t := domain.Token{Access: domain.AccessAuth, Value: token}
	if err := s.users.AddToken(ctx, user.ID, t); err != nil {
		return "", fmt.Errorf("add token: %w", err)
	}
	user.Tokens = append(user.Tokens, t)
	return token, nil
}
