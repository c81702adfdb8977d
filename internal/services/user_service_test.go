package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager-api/internal/models"
	"task-manager-api/internal/repositories"
	"task-manager-api/internal/services"
	"task-manager-api/testutil"
)

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewMemoryUserRepository()
	svc := services.NewUserService(repo)

	user, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)

	stored, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", stored.PasswordHash, "password must not be stored in plain text")
	assert.NoError(t, services.VerifyPassword(stored.PasswordHash, "pw"))

	t.Run("duplicate username regardless of password", func(t *testing.T) {
		_, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Password: "other"})
		assert.ErrorIs(t, err, repositories.ErrDuplicateUsername)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Register(ctx, models.RegisterRequest{Username: "bob"})
		assert.ErrorIs(t, err, models.ErrMissingField)
		_, err = svc.Register(ctx, models.RegisterRequest{Password: "pw"})
		assert.ErrorIs(t, err, models.ErrMissingField)

		_, err = repo.FindByUsername(ctx, "bob")
		assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	})
}

func TestUserService_Verify(t *testing.T) {
	ctx := context.Background()
	svc := services.NewUserService(testutil.NewMemoryUserRepository())

	registered, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	user, err := svc.Verify(ctx, models.LoginRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.Verify(ctx, models.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.Verify(ctx, models.LoginRequest{Username: "nobody", Password: "pw"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.Verify(ctx, models.LoginRequest{Username: "alice"})
	assert.ErrorIs(t, err, models.ErrMissingField)
}

func TestUserService_LongPassword(t *testing.T) {
	ctx := context.Background()
	svc := services.NewUserService(testutil.NewMemoryUserRepository())

	// 先頭 72 バイトが同じでも別のパスワードとして扱われる。
	long := strings.Repeat("p", 100)
	_, err := svc.Register(ctx, models.RegisterRequest{Username: "bob", Password: long})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, models.LoginRequest{Username: "bob", Password: long})
	assert.NoError(t, err)

	_, err = svc.Verify(ctx, models.LoginRequest{Username: "bob", Password: strings.Repeat("p", 99) + "q"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}
