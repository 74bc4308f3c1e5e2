package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/service"
	"blackrent-backend/internal/storage"
)

func TestMaintenanceService(t *testing.T) {
	ctx := context.Background()
	perms := service.NewPermissionService(new(MockUserRepo), new(MockCompanyRepo))

	t.Run("Blocked in production", func(t *testing.T) {
		protocolRepo := new(MockProtocolRepo)
		svc := service.NewMaintenanceService(protocolRepo, nil, perms, true)

		_, err := svc.ResetProtocols(ctx, admin)
		assert.ErrorIs(t, err, service.ErrMaintenanceBlocked)
		_, err = svc.PurgeStorage(ctx, admin)
		assert.ErrorIs(t, err, service.ErrMaintenanceBlocked)
		protocolRepo.AssertNotCalled(t, "DeleteAll", mock.Anything)
	})

	t.Run("Admin resets protocols", func(t *testing.T) {
		protocolRepo := new(MockProtocolRepo)
		svc := service.NewMaintenanceService(protocolRepo, nil, perms, false)
		protocolRepo.On("DeleteAll", ctx).Return(int64(7), nil)

		n, err := svc.ResetProtocols(ctx, admin)
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
	})

	t.Run("Employee is forbidden", func(t *testing.T) {
		protocolRepo := new(MockProtocolRepo)
		svc := service.NewMaintenanceService(protocolRepo, nil, perms, false)

		_, err := svc.ResetProtocols(ctx, service.Actor{UserID: "u1", Role: domain.RoleEmployee})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("Admin purges storage", func(t *testing.T) {
		files, err := storage.NewLocalStore("http://localhost:5001", t.TempDir())
		require.NoError(t, err)
		for _, key := range []string{"protocols/r1/a.jpg", "protocols/r2/b.pdf"} {
			_, err := files.SaveFile(ctx, key, strings.NewReader("x"))
			require.NoError(t, err)
		}
		svc := service.NewMaintenanceService(new(MockProtocolRepo), files, perms, false)

		n, err := svc.PurgeStorage(ctx, admin)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}
