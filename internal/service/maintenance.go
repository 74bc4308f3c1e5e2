package service

import (
	"context"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository"
	"blackrent-backend/internal/storage"
)

type maintenanceService struct {
	protocolRepo repository.ProtocolRepository
	files        storage.FileStore
	perms        PermissionService
	production   bool
}

// NewMaintenanceService builds the destructive admin operations. Every
// operation refuses to run when production is true.
func NewMaintenanceService(protocolRepo repository.ProtocolRepository, files storage.FileStore, perms PermissionService, production bool) MaintenanceService {
	return &maintenanceService{protocolRepo: protocolRepo, files: files, perms: perms, production: production}
}

func (s *maintenanceService) guard(actor Actor, operation string) error {
	if s.production {
		logger.Warn("Blocked maintenance operation in production", "operation", operation, "user_id", actor.UserID)
		return ErrMaintenanceBlocked
	}
	return s.perms.Authorize(actor, string(config.ResourceMaintenance), string(config.ActionDelete))
}

func (s *maintenanceService) ResetProtocols(ctx context.Context, actor Actor) (int64, error) {
	if err := s.guard(actor, "reset-protocols"); err != nil {
		return 0, err
	}
	n, err := s.protocolRepo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	logger.Warn("All protocols deleted", "count", n, "user_id", actor.UserID)
	return n, nil
}

func (s *maintenanceService) PurgeStorage(ctx context.Context, actor Actor) (int, error) {
	if err := s.guard(actor, "purge-storage"); err != nil {
		return 0, err
	}
	return s.files.Purge(ctx)
}
