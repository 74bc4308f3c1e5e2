package service

import (
	"context"
	"io"
	"strings"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository"
	"blackrent-backend/internal/storage"
)

type protocolService struct {
	protocolRepo repository.ProtocolRepository
	rentalRepo   repository.RentalRepository
	vehicleRepo  repository.VehicleRepository
	files        storage.FileStore
	perms        PermissionService
}

func NewProtocolService(
	protocolRepo repository.ProtocolRepository,
	rentalRepo repository.RentalRepository,
	vehicleRepo repository.VehicleRepository,
	files storage.FileStore,
	perms PermissionService,
) ProtocolService {
	return &protocolService{
		protocolRepo: protocolRepo,
		rentalRepo:   rentalRepo,
		vehicleRepo:  vehicleRepo,
		files:        files,
		perms:        perms,
	}
}

func (s *protocolService) rental(ctx context.Context, actor Actor, rentalID string, action config.Action) (*domain.Rental, error) {
	if rentalID == "" {
		return nil, invalid("Prenájom je povinný")
	}
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceProtocols), string(action))
	if err != nil {
		return nil, err
	}
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if err := rentalInScope(ctx, s.vehicleRepo, scope, rental); err != nil {
		return nil, err
	}
	return rental, nil
}

func (s *protocolService) CreateHandover(ctx context.Context, actor Actor, p *domain.HandoverProtocol) error {
	if _, err := s.rental(ctx, actor, p.RentalID, config.ActionWrite); err != nil {
		return err
	}
	if err := validateProtocol(p); err != nil {
		return err
	}
	p.CreatedBy = actor.Username
	if err := s.protocolRepo.CreateHandover(ctx, p); err != nil {
		return err
	}
	logger.Info("Handover protocol created", "protocol_id", p.ID, "rental_id", p.RentalID, "user_id", actor.UserID)
	return nil
}

func (s *protocolService) CreateReturn(ctx context.Context, actor Actor, p *domain.ReturnProtocol) error {
	rental, err := s.rental(ctx, actor, p.RentalID, config.ActionWrite)
	if err != nil {
		return err
	}
	if err := validateProtocol(&p.HandoverProtocol); err != nil {
		return err
	}
	if rental.HandoverProtocolID == nil {
		return ErrHandoverRequired
	}
	handover, err := s.protocolRepo.GetHandover(ctx, *rental.HandoverProtocolID)
	if err != nil {
		return err
	}

	p.KilometersUsed = p.Mileage - handover.Mileage
	if p.KilometersUsed < 0 {
		p.KilometersUsed = 0
	}
	if p.KilometerFee < 0 || p.FuelFee < 0 {
		return invalid("Poplatky nemôžu byť záporné")
	}
	p.TotalExtraFees = p.KilometerFee + p.FuelFee
	p.CreatedBy = actor.Username

	if err := s.protocolRepo.CreateReturn(ctx, p); err != nil {
		return err
	}
	logger.Info("Return protocol created", "protocol_id", p.ID, "rental_id", p.RentalID, "kilometers_used", p.KilometersUsed)
	return nil
}

func (s *protocolService) GetRentalProtocols(ctx context.Context, actor Actor, rentalID string) (*domain.RentalProtocols, error) {
	if _, err := s.rental(ctx, actor, rentalID, config.ActionRead); err != nil {
		return nil, err
	}
	return s.protocolRepo.GetByRental(ctx, rentalID)
}

// UpdateHandover refuses changes once a PDF exists, except for admins
func (s *protocolService) UpdateHandover(ctx context.Context, actor Actor, p *domain.HandoverProtocol) error {
	existing, err := s.protocolRepo.GetHandover(ctx, p.ID)
	if err != nil {
		return err
	}
	if _, err := s.rental(ctx, actor, existing.RentalID, config.ActionWrite); err != nil {
		return err
	}
	if existing.Locked() && !actor.IsAdmin() {
		return ErrProtocolLocked
	}
	if err := validateProtocol(p); err != nil {
		return err
	}
	p.RentalID = existing.RentalID
	p.CreatedBy = existing.CreatedBy
	p.CreatedAt = existing.CreatedAt
	if existing.Locked() {
		logger.Warn("Admin override of locked handover protocol", "protocol_id", p.ID, "user_id", actor.UserID)
	}
	return s.protocolRepo.UpdateHandover(ctx, p)
}

func (s *protocolService) UpdateReturn(ctx context.Context, actor Actor, p *domain.ReturnProtocol) error {
	existing, err := s.protocolRepo.GetReturn(ctx, p.ID)
	if err != nil {
		return err
	}
	if _, err := s.rental(ctx, actor, existing.RentalID, config.ActionWrite); err != nil {
		return err
	}
	if existing.Locked() && !actor.IsAdmin() {
		return ErrProtocolLocked
	}
	if err := validateProtocol(&p.HandoverProtocol); err != nil {
		return err
	}
	p.RentalID = existing.RentalID
	p.HandoverProtocolID = existing.HandoverProtocolID
	p.CreatedBy = existing.CreatedBy
	p.CreatedAt = existing.CreatedAt
	p.TotalExtraFees = p.KilometerFee + p.FuelFee
	if existing.Locked() {
		logger.Warn("Admin override of locked return protocol", "protocol_id", p.ID, "user_id", actor.UserID)
	}
	return s.protocolRepo.UpdateReturn(ctx, p)
}

func (s *protocolService) UploadFile(ctx context.Context, actor Actor, key string, body io.Reader) (string, int64, error) {
	if err := s.checkKey(ctx, actor, key, config.ActionWrite); err != nil {
		return "", 0, err
	}
	logger.ExternalServiceCall("storage", "save", "key", key)
	n, err := s.files.SaveFile(ctx, key, body)
	logger.ExternalServiceResult("storage", "save", err, "key", key, "bytes", n)
	if err != nil {
		return "", 0, err
	}
	return s.files.PublicURL(key), n, nil
}

func (s *protocolService) OpenFile(ctx context.Context, actor Actor, key string) (io.ReadCloser, error) {
	if err := s.checkKey(ctx, actor, key, config.ActionRead); err != nil {
		return nil, err
	}
	return s.files.ReadFile(ctx, key)
}

// checkKey scopes keys of the form protocols/<rentalId>/... to the rental's
// company. Other keys carry no owner and are checked by role only.
func (s *protocolService) checkKey(ctx context.Context, actor Actor, key string, action config.Action) error {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceProtocols), string(action))
	if err != nil || scope.All() {
		return err
	}
	rentalID := rentalOfKey(key)
	if rentalID == "" {
		return nil
	}
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return err
	}
	return rentalInScope(ctx, s.vehicleRepo, scope, rental)
}

func rentalOfKey(key string) string {
	parts := strings.SplitN(strings.TrimPrefix(key, "/"), "/", 3)
	if len(parts) == 3 && parts[0] == "protocols" {
		return parts[1]
	}
	return ""
}

func validateProtocol(p *domain.HandoverProtocol) error {
	if p.FuelLevel < 0 || p.FuelLevel > 100 {
		return invalid("Stav paliva musí byť medzi 0 a 100 %")
	}
	if p.Mileage < 0 {
		return invalid("Stav tachometra nemôže byť záporný")
	}
	if p.Photos == nil {
		p.Photos = []string{}
	}
	return nil
}
