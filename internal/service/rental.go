package service

import (
	"context"
	"errors"
	"strings"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository"
	"blackrent-backend/internal/utils"
)

type rentalService struct {
	rentalRepo   repository.RentalRepository
	vehicleRepo  repository.VehicleRepository
	customerRepo repository.CustomerRepository
	perms        PermissionService
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	vehicleRepo repository.VehicleRepository,
	customerRepo repository.CustomerRepository,
	perms PermissionService,
) RentalService {
	return &rentalService{
		rentalRepo:   rentalRepo,
		vehicleRepo:  vehicleRepo,
		customerRepo: customerRepo,
		perms:        perms,
	}
}

func (s *rentalService) ListRentals(ctx context.Context, actor Actor) ([]domain.Rental, error) {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceRentals), string(config.ActionRead))
	if err != nil {
		return nil, err
	}
	rentals, err := s.rentalRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if scope.All() {
		return rentals, nil
	}
	vehicles, err := vehicleIndex(ctx, s.vehicleRepo)
	if err != nil {
		return nil, err
	}
	return filterRentals(rentals, scope, vehicles), nil
}

func (s *rentalService) GetRental(ctx context.Context, actor Actor, id string) (*domain.Rental, error) {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceRentals), string(config.ActionRead))
	if err != nil {
		return nil, err
	}
	rental, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRental(ctx, scope, rental); err != nil {
		return nil, err
	}
	return rental, nil
}

func (s *rentalService) CreateRental(ctx context.Context, actor Actor, rental *domain.Rental) error {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceRentals), string(config.ActionWrite))
	if err != nil {
		return err
	}
	if err := validateRental(rental); err != nil {
		return err
	}
	if err := s.applyVehicle(ctx, rental); err != nil {
		return err
	}
	if err := s.checkWritable(ctx, scope, rental); err != nil {
		return err
	}
	if err := s.linkCustomer(ctx, rental); err != nil {
		return err
	}
	if rental.SourceType == "" {
		rental.SourceType = domain.SourceManual
	}
	if rental.ApprovalStatus == "" {
		rental.ApprovalStatus = domain.ApprovalApproved
	}

	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		return err
	}
	logger.Info("Rental created", "rental_id", rental.ID, "customer", rental.CustomerName, "total_price", rental.TotalPrice, "user_id", actor.UserID)
	return nil
}

func (s *rentalService) UpdateRental(ctx context.Context, actor Actor, rental *domain.Rental) error {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceRentals), string(config.ActionWrite))
	if err != nil {
		return err
	}
	existing, err := s.rentalRepo.GetByID(ctx, rental.ID)
	if err != nil {
		return err
	}
	if err := s.checkRental(ctx, scope, existing); err != nil {
		return err
	}
	if err := validateRental(rental); err != nil {
		return err
	}

	// fields owned by other workflows are not editable here
	rental.HandoverProtocolID = existing.HandoverProtocolID
	rental.ReturnProtocolID = existing.ReturnProtocolID
	rental.EmailID = existing.EmailID
	rental.SourceType = existing.SourceType
	rental.ApprovalStatus = existing.ApprovalStatus
	rental.ApprovedBy = existing.ApprovedBy
	rental.ApprovedAt = existing.ApprovedAt
	rental.CreatedAt = existing.CreatedAt

	if err := s.applyVehicle(ctx, rental); err != nil {
		return err
	}
	if err := s.checkWritable(ctx, scope, rental); err != nil {
		return err
	}
	return s.rentalRepo.Update(ctx, rental)
}

func (s *rentalService) DeleteRental(ctx context.Context, actor Actor, id string) error {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceRentals), string(config.ActionDelete))
	if err != nil {
		return err
	}
	existing, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkRental(ctx, scope, existing); err != nil {
		return err
	}
	if err := s.rentalRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("Rental deleted", "rental_id", id, "user_id", actor.UserID)
	return nil
}

func (s *rentalService) CalculatePrice(ctx context.Context, actor Actor, quote PriceQuote) (*utils.PriceBreakdown, error) {
	if err := s.perms.Authorize(actor, string(config.ResourceRentals), string(config.ActionRead)); err != nil {
		return nil, err
	}
	if quote.VehicleID == "" {
		return nil, invalid("Vozidlo je povinné")
	}
	if quote.EndDate.Before(quote.StartDate) {
		return nil, invalid("Dátum ukončenia musí byť po dátume začiatku")
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, quote.VehicleID)
	if err != nil {
		return nil, err
	}
	price := utils.CalculateRentalPrice(vehicle, quote.StartDate, quote.EndDate, quote.Discount, quote.CustomCommission, quote.ExtraKmCharge)
	return &price, nil
}

// applyVehicle snapshots the owner company and fills in the price when the
// caller left it at zero
func (s *rentalService) applyVehicle(ctx context.Context, rental *domain.Rental) error {
	if rental.VehicleID == nil || *rental.VehicleID == "" {
		rental.VehicleID = nil
		return nil
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, *rental.VehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid("Vozidlo neexistuje")
		}
		return err
	}
	if rental.Company == "" {
		rental.Company = vehicle.Company
	}

	if rental.TotalPrice == 0 {
		price := utils.CalculateRentalPrice(vehicle, rental.StartDate, rental.EndDate, rental.Discount, rental.CustomCommission, rental.ExtraKmCharge)
		rental.TotalPrice = price.TotalPrice
		rental.Commission = price.Commission
	} else if rental.Commission == 0 {
		commission := vehicle.Commission
		if rental.CustomCommission != nil && rental.CustomCommission.Value > 0 {
			commission = *rental.CustomCommission
		}
		rental.Commission = utils.CalculateCommission(commission, rental.TotalPrice)
	}
	return nil
}

// linkCustomer attaches an existing customer by e-mail or creates one
func (s *rentalService) linkCustomer(ctx context.Context, rental *domain.Rental) error {
	if rental.CustomerID != nil || rental.CustomerEmail == "" {
		return nil
	}
	customer, err := s.customerRepo.GetByEmail(ctx, rental.CustomerEmail)
	if err == nil {
		rental.CustomerID = &customer.ID
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	customer = &domain.Customer{Name: rental.CustomerName, Email: rental.CustomerEmail, Phone: rental.CustomerPhone}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return err
	}
	rental.CustomerID = &customer.ID
	logger.Info("Customer created from rental", "customer_id", customer.ID, "email", customer.Email)
	return nil
}

func (s *rentalService) checkRental(ctx context.Context, scope *CompanyScope, rental *domain.Rental) error {
	return rentalInScope(ctx, s.vehicleRepo, scope, rental)
}

// checkWritable guards the company a rental is saved under. The company
// snapshot and the vehicle owner must both be in scope.
func (s *rentalService) checkWritable(ctx context.Context, scope *CompanyScope, rental *domain.Rental) error {
	if scope.All() {
		return nil
	}
	if rental.Company != "" && !scope.Allows(nil, rental.Company) {
		return ErrForbidden
	}
	if rental.VehicleID == nil {
		if rental.Company == "" {
			return ErrForbidden
		}
		return nil
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, *rental.VehicleID)
	if err != nil {
		return err
	}
	if !scope.AllowsVehicle(vehicle) {
		return ErrForbidden
	}
	return nil
}

// rentalInScope matches the rental's company snapshot first and falls back
// to the owner of its vehicle
func rentalInScope(ctx context.Context, vehicleRepo repository.VehicleRepository, scope *CompanyScope, rental *domain.Rental) error {
	if scope.All() || scope.Allows(nil, rental.Company) {
		return nil
	}
	if rental.VehicleID != nil {
		vehicle, err := vehicleRepo.GetByID(ctx, *rental.VehicleID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err == nil && scope.AllowsVehicle(vehicle) {
			return nil
		}
	}
	return ErrForbidden
}

func validateRental(rental *domain.Rental) error {
	rental.CustomerName = strings.TrimSpace(rental.CustomerName)
	if rental.CustomerName == "" {
		return invalid("Meno zákazníka je povinné")
	}
	if rental.StartDate.IsZero() || rental.EndDate.IsZero() {
		return invalid("Dátum začiatku a konca prenájmu sú povinné")
	}
	if rental.EndDate.Before(rental.StartDate) {
		return invalid("Dátum ukončenia musí byť po dátume začiatku")
	}
	if rental.PaymentMethod == "" {
		rental.PaymentMethod = domain.PaymentCash
	}
	if !rental.PaymentMethod.Valid() {
		return invalid("Neplatný spôsob platby")
	}
	switch rental.Status {
	case "":
		rental.Status = domain.RentalStatusPending
	case domain.RentalStatusPending, domain.RentalStatusConfirmed, domain.RentalStatusActive,
		domain.RentalStatusFinished, domain.RentalStatusCancelled:
	default:
		return invalid("Neplatný stav prenájmu")
	}
	if rental.TotalPrice < 0 || rental.Commission < 0 || rental.Deposit < 0 {
		return invalid("Suma nemôže byť záporná")
	}
	if rental.Discount != nil && rental.Discount.Type != domain.DiscountPercentage && rental.Discount.Type != domain.DiscountFixed {
		return invalid("Neplatný typ zľavy")
	}
	return nil
}

func vehicleIndex(ctx context.Context, repo repository.VehicleRepository) (map[string]*domain.Vehicle, error) {
	vehicles, err := repo.List(ctx, true, true)
	if err != nil {
		return nil, err
	}
	index := make(map[string]*domain.Vehicle, len(vehicles))
	for i := range vehicles {
		index[vehicles[i].ID] = &vehicles[i]
	}
	return index, nil
}

// filterRentals keeps rentals whose company snapshot, or failing that whose
// vehicle owner, is in scope
func filterRentals(rentals []domain.Rental, scope *CompanyScope, vehicles map[string]*domain.Vehicle) []domain.Rental {
	if scope.All() {
		return rentals
	}
	filtered := make([]domain.Rental, 0, len(rentals))
	for _, r := range rentals {
		if scope.Allows(nil, r.Company) {
			filtered = append(filtered, r)
			continue
		}
		if r.VehicleID != nil {
			if v, ok := vehicles[*r.VehicleID]; ok && scope.AllowsVehicle(v) {
				filtered = append(filtered, r)
			}
		}
	}
	return filtered
}
