package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
	"blackrent-backend/internal/service"
)

func TestPermissionService_Scope(t *testing.T) {
	ctx := context.Background()

	t.Run("Admin sees everything", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		companyRepo := new(MockCompanyRepo)
		svc := service.NewPermissionService(userRepo, companyRepo)

		scope, err := svc.Scope(ctx, service.Actor{UserID: "admin", Role: domain.RoleAdmin}, "vehicles", "delete")
		require.NoError(t, err)
		assert.True(t, scope.All())
		userRepo.AssertNotCalled(t, "GetPermissions", mock.Anything, mock.Anything)
	})

	t.Run("Employee gets own company and granted companies", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		companyRepo := new(MockCompanyRepo)
		svc := service.NewPermissionService(userRepo, companyRepo)

		userRepo.On("GetPermissions", ctx, "u1").Return([]domain.UserPermission{
			{CompanyID: "c2", CompanyName: "Lubka", Permissions: domain.CompanyPermissions{Vehicles: domain.ResourcePermission{Read: true}}},
			{CompanyID: "c3", CompanyName: "Other", Permissions: domain.CompanyPermissions{Rentals: domain.ResourcePermission{Read: true}}},
		}, nil)
		companyRepo.On("GetByID", ctx, "c1").Return(&domain.Company{ID: "c1", Name: "Marko Rent"}, nil)

		actor := service.Actor{UserID: "u1", Role: domain.RoleEmployee, CompanyID: strPtr("c1")}
		scope, err := svc.Scope(ctx, actor, "vehicles", "read")
		require.NoError(t, err)

		assert.False(t, scope.All())
		assert.True(t, scope.Allows(strPtr("c1"), ""))
		assert.True(t, scope.Allows(nil, "marko rent"))
		assert.True(t, scope.Allows(strPtr("c2"), ""))
		assert.True(t, scope.Allows(nil, "LUBKA"))
		assert.False(t, scope.Allows(strPtr("c3"), "Other"))
		assert.False(t, scope.Allows(nil, ""))
	})

	t.Run("Own company missing keeps the id", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		companyRepo := new(MockCompanyRepo)
		svc := service.NewPermissionService(userRepo, companyRepo)

		userRepo.On("GetPermissions", ctx, "u1").Return([]domain.UserPermission{}, nil)
		companyRepo.On("GetByID", ctx, "c1").Return(nil, repository.ErrNotFound)

		scope, err := svc.Scope(ctx, service.Actor{UserID: "u1", Role: domain.RoleEmployee, CompanyID: strPtr("c1")}, "rentals", "read")
		require.NoError(t, err)
		assert.True(t, scope.Allows(strPtr("c1"), ""))
	})

	t.Run("Role without the action is forbidden", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := service.NewPermissionService(userRepo, new(MockCompanyRepo))

		_, err := svc.Scope(ctx, service.Actor{UserID: "u2", Role: domain.RoleCompanyOwner}, "vehicles", "write")
		assert.ErrorIs(t, err, service.ErrForbidden)
		userRepo.AssertNotCalled(t, "GetPermissions", mock.Anything, mock.Anything)
	})
}
