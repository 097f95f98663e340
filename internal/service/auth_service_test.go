package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendsplit/internal/auth"
	"spendsplit/internal/storage/sqlite"
)

func newAuthFixture(t *testing.T) (*AuthService, *auth.JWTManager, *sqlite.SQLiteStore) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "spendsplit-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tokens := auth.NewJWTManager("test-secret", time.Hour)
	categories := NewCategoryService(store)
	authService := NewAuthService(auth.NewPasswordAuthenticator(store), tokens, categories)
	return authService, tokens, store
}

func TestSignup(t *testing.T) {
	authService, tokens, store := newAuthFixture(t)
	ctx := context.Background()

	t.Run("creates user with token and default categories", func(t *testing.T) {
		user, token, err := authService.Signup(ctx, "Alice@Example.com", "Alice", "secret-password")
		require.NoError(t, err)
		require.NotEmpty(t, user.ID)
		assert.Equal(t, "alice@example.com", user.Email, "email is normalized")

		claims, err := tokens.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)

		categories, err := store.ListCategories(ctx, user.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, categories, "defaults are bootstrapped on signup")
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, _, err := authService.Signup(ctx, "alice@example.com", "Alice Again", "secret-password")
		assert.ErrorIs(t, err, auth.ErrEmailExists)
	})

	t.Run("rejects weak password", func(t *testing.T) {
		_, _, err := authService.Signup(ctx, "bob@example.com", "Bob", "short")
		assert.ErrorIs(t, err, auth.ErrWeakPassword)
	})

	t.Run("rejects bad email", func(t *testing.T) {
		_, _, err := authService.Signup(ctx, "not-an-email", "Bob", "secret-password")
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestLogin(t *testing.T) {
	authService, tokens, _ := newAuthFixture(t)
	ctx := context.Background()

	user, _, err := authService.Signup(ctx, "carol@example.com", "Carol", "secret-password")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		got, token, err := authService.Login(ctx, "carol@example.com", "secret-password")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		claims, err := tokens.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := authService.Login(ctx, "carol@example.com", "wrong-password")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := authService.Login(ctx, "nobody@example.com", "secret-password")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}
