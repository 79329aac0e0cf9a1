package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram-v2/backend/internal/models"
)

func TestAuthRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewAuthService(db, "test-secret")

	t.Run("register issues a usable token", func(t *testing.T) {
		token, err := svc.Register(ctx, "cook@example.com", "cook", "Ada", "Lovelace", "password123")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "cook", claims.Username)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, "cook@example.com", "othercook", "Ada", "Lovelace", "password123")
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, "other@example.com", "cook", "Ada", "Lovelace", "password123")
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("login with correct credentials", func(t *testing.T) {
		token, err := svc.Login(ctx, "cook@example.com", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("login with a wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "cook@example.com", "wrongpassword")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("login with an unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthBannedUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewAuthService(db, "test-secret")

	token, err := svc.Register(ctx, "banned@example.com", "banned", "B", "User", "password123")
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).
		Where("username = ?", "banned").
		Update("is_banned", true).Error)

	t.Run("banned user cannot log in", func(t *testing.T) {
		_, err := svc.Login(ctx, "banned@example.com", "password123")
		assert.ErrorIs(t, err, ErrUserBanned)
	})

	t.Run("existing token stops validating once banned", func(t *testing.T) {
		_, err := svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrUserBanned)
	})
}

func TestAuthValidateToken(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewAuthService(db, "test-secret")

	token, err := svc.Register(ctx, "valid@example.com", "valid", "V", "User", "password123")
	require.NoError(t, err)

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		_, err := NewAuthService(db, "other-secret").ValidateToken(token)
		assert.Error(t, err)
	})
}

func TestAuthListUsers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewAuthService(db, "test-secret")

	for _, name := range []string{"first", "second", "third"} {
		createTestUser(t, db, name)
	}

	users, total, err := svc.ListUsers(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 2)
}
