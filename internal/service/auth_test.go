package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
	"blackrent-backend/internal/security"
	"blackrent-backend/internal/service"
)

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	hash, err := security.HashPassword("tajneheslo")
	require.NoError(t, err)

	user := func(active bool) *domain.User {
		return &domain.User{ID: "u1", Username: "eva", PasswordHash: hash, Role: domain.RoleEmployee, CompanyID: strPtr("c1"), IsActive: active}
	}

	t.Run("Success", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := service.NewAuthService(userRepo, tokens)
		userRepo.On("GetByUsername", ctx, "eva").Return(user(true), nil)
		userRepo.On("TouchLastLogin", ctx, "u1", mock.AnythingOfType("time.Time")).Return(nil)

		u, token, err := svc.Login(ctx, " eva ", "tajneheslo")
		require.NoError(t, err)
		assert.NotNil(t, u.LastLogin)

		claims, err := tokens.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, "employee", claims.Role)
		assert.Equal(t, "c1", *claims.CompanyID)
	})

	t.Run("Wrong password", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := service.NewAuthService(userRepo, tokens)
		userRepo.On("GetByUsername", ctx, "eva").Return(user(true), nil)

		_, _, err := svc.Login(ctx, "eva", "zleheslo")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("Unknown user", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := service.NewAuthService(userRepo, tokens)
		userRepo.On("GetByUsername", ctx, "nobody").Return(nil, repository.ErrNotFound)

		_, _, err := svc.Login(ctx, "nobody", "tajneheslo")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("Inactive user", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := service.NewAuthService(userRepo, tokens)
		userRepo.On("GetByUsername", ctx, "eva").Return(user(false), nil)

		_, _, err := svc.Login(ctx, "eva", "tajneheslo")
		assert.ErrorIs(t, err, service.ErrUserInactive)
	})

	t.Run("Last login failure is not fatal", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := service.NewAuthService(userRepo, tokens)
		userRepo.On("GetByUsername", ctx, "eva").Return(user(true), nil)
		userRepo.On("TouchLastLogin", ctx, "u1", mock.Anything).Return(assert.AnError)

		u, token, err := svc.Login(ctx, "eva", "tajneheslo")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Nil(t, u.LastLogin)
	})
}
