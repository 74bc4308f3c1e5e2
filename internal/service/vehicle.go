package service

import (
	"context"
	"strings"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository"
)

type vehicleService struct {
	vehicleRepo repository.VehicleRepository
	perms       PermissionService
}

func NewVehicleService(vehicleRepo repository.VehicleRepository, perms PermissionService) VehicleService {
	return &vehicleService{vehicleRepo: vehicleRepo, perms: perms}
}

func (s *vehicleService) ListVehicles(ctx context.Context, actor Actor, includeRemoved, includePrivate bool) ([]domain.Vehicle, error) {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceVehicles), string(config.ActionRead))
	if err != nil {
		return nil, err
	}
	vehicles, err := s.vehicleRepo.List(ctx, includeRemoved, includePrivate)
	if err != nil {
		return nil, err
	}
	if scope.All() {
		return vehicles, nil
	}

	filtered := make([]domain.Vehicle, 0, len(vehicles))
	for i := range vehicles {
		if scope.AllowsVehicle(&vehicles[i]) {
			filtered = append(filtered, vehicles[i])
		}
	}
	logger.Debug("Filtered vehicles by company access", "user_id", actor.UserID, "total", len(vehicles), "visible", len(filtered))
	return filtered, nil
}

// SearchVehicles paginates in SQL for admins. Scoped users are filtered after
// the page is loaded, so their page may be shorter than PageSize.
func (s *vehicleService) SearchVehicles(ctx context.Context, actor Actor, filter domain.VehicleFilter) ([]domain.Vehicle, int, error) {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceVehicles), string(config.ActionRead))
	if err != nil {
		return nil, 0, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 50
	}
	vehicles, total, err := s.vehicleRepo.Search(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if scope.All() {
		return vehicles, total, nil
	}
	filtered := make([]domain.Vehicle, 0, len(vehicles))
	for i := range vehicles {
		if scope.AllowsVehicle(&vehicles[i]) {
			filtered = append(filtered, vehicles[i])
		}
	}
	return filtered, total, nil
}

func (s *vehicleService) GetVehicle(ctx context.Context, actor Actor, id string) (*domain.Vehicle, error) {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceVehicles), string(config.ActionRead))
	if err != nil {
		return nil, err
	}
	v, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.AllowsVehicle(v) {
		return nil, ErrForbidden
	}
	return v, nil
}

func (s *vehicleService) CreateVehicle(ctx context.Context, actor Actor, v *domain.Vehicle) error {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceVehicles), string(config.ActionWrite))
	if err != nil {
		return err
	}
	if err := validateVehicle(v); err != nil {
		return err
	}
	if !scope.AllowsVehicle(v) {
		return ErrForbidden
	}
	if err := s.vehicleRepo.Create(ctx, v); err != nil {
		return err
	}
	logger.Info("Vehicle created", "vehicle_id", v.ID, "license_plate", v.LicensePlate, "user_id", actor.UserID)
	return nil
}

func (s *vehicleService) UpdateVehicle(ctx context.Context, actor Actor, v *domain.Vehicle) error {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceVehicles), string(config.ActionWrite))
	if err != nil {
		return err
	}
	if err := validateVehicle(v); err != nil {
		return err
	}
	existing, err := s.vehicleRepo.GetByID(ctx, v.ID)
	if err != nil {
		return err
	}
	if !scope.AllowsVehicle(existing) || !scope.AllowsVehicle(v) {
		return ErrForbidden
	}
	return s.vehicleRepo.Update(ctx, v)
}

func (s *vehicleService) DeleteVehicle(ctx context.Context, actor Actor, id string) error {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceVehicles), string(config.ActionDelete))
	if err != nil {
		return err
	}
	existing, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !scope.AllowsVehicle(existing) {
		return ErrForbidden
	}
	if err := s.vehicleRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("Vehicle deleted", "vehicle_id", id, "license_plate", existing.LicensePlate, "user_id", actor.UserID)
	return nil
}

func validateVehicle(v *domain.Vehicle) error {
	v.Brand = strings.TrimSpace(v.Brand)
	v.Model = strings.TrimSpace(v.Model)
	v.LicensePlate = strings.TrimSpace(v.LicensePlate)

	if v.Brand == "" || v.Model == "" || v.LicensePlate == "" {
		return invalid("Značka, model a ŠPZ sú povinné")
	}
	switch v.Status {
	case "", domain.VehicleStatusAvailable, domain.VehicleStatusRented, domain.VehicleStatusMaintenance,
		domain.VehicleStatusRemoved, domain.VehicleStatusTempRemoved, domain.VehicleStatusPrivate:
	default:
		return invalid("Neplatný stav vozidla")
	}
	for _, tier := range v.Pricing {
		if tier.MinDays < 0 || tier.MaxDays < tier.MinDays || tier.PricePerDay < 0 {
			return invalid("Neplatná cenová hladina")
		}
	}
	switch v.Commission.Type {
	case "":
		v.Commission.Type = domain.CommissionPercentage
	case domain.CommissionPercentage, domain.CommissionFixed:
	default:
		return invalid("Neplatný typ provízie")
	}
	if v.Commission.Value < 0 {
		return invalid("Provízia nemôže byť záporná")
	}
	return nil
}
