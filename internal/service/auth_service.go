package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"spendsplit/internal/auth"
	"spendsplit/internal/models"
)

// AuthService handles signup, login and session token issuance.
type AuthService struct {
	authenticator auth.Authenticator
	tokens        *auth.JWTManager
	categories    *CategoryService
}

// NewAuthService creates a new AuthService.
func NewAuthService(authenticator auth.Authenticator, tokens *auth.JWTManager, categories *CategoryService) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		tokens:        tokens,
		categories:    categories,
	}
}

// Signup registers a new account and returns the user with a session token.
// A fresh account gets the default category set so the first transaction has
// somewhere to go.
func (s *AuthService) Signup(ctx context.Context, email, name, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if email == "" || !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("%w: valid email required", ErrInvalid)
	}
	if name == "" {
		return nil, "", fmt.Errorf("%w: name required", ErrInvalid)
	}

	user, err := s.authenticator.Register(ctx, email, name, password)
	if err != nil {
		return nil, "", err
	}

	if err := s.categories.EnsureDefaults(ctx, user.ID); err != nil {
		// The account exists; default categories can be bootstrapped later.
		slog.Warn("Failed to bootstrap default categories", "user_id", user.ID, "error", err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("User registered", "user_id", user.ID)
	return user, token, nil
}

// Login verifies credentials and returns the user with a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("User logged in", "user_id", user.ID)
	return user, token, nil
}
