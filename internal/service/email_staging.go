package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository"
	"blackrent-backend/internal/utils"
)

type emailStagingService struct {
	rentalRepo   repository.RentalRepository
	vehicleRepo  repository.VehicleRepository
	customerRepo repository.CustomerRepository
	reportRepo   repository.ReportRepository
	notifier     Notifier
	adminEmails  []string
	perms        PermissionService
}

func NewEmailStagingService(
	rentalRepo repository.RentalRepository,
	vehicleRepo repository.VehicleRepository,
	customerRepo repository.CustomerRepository,
	reportRepo repository.ReportRepository,
	notifier Notifier,
	adminEmails []string,
	perms PermissionService,
) EmailStagingService {
	return &emailStagingService{
		rentalRepo:   rentalRepo,
		vehicleRepo:  vehicleRepo,
		customerRepo: customerRepo,
		reportRepo:   reportRepo,
		notifier:     notifier,
		adminEmails:  adminEmails,
		perms:        perms,
	}
}

// MapPaymentMethod turns the free-text payment method of an order e-mail
// into a PaymentMethod. Unknown text maps to cash.
func MapPaymentMethod(text string) domain.PaymentMethod {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.Contains(t, "vrp"):
		return domain.PaymentVRP
	case strings.Contains(t, "bank"), strings.Contains(t, "prevod"):
		return domain.PaymentBankTransfer
	case strings.Contains(t, "direct"), strings.Contains(t, "majiteľ"), strings.Contains(t, "majitel"):
		return domain.PaymentDirectToOwner
	default:
		return domain.PaymentCash
	}
}

func (s *emailStagingService) StageEmailRental(ctx context.Context, req domain.EmailRentalRequest) (*domain.Rental, error) {
	req.EmailID = strings.TrimSpace(req.EmailID)
	if req.EmailID == "" {
		return nil, invalid("Chýba identifikátor e-mailu")
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, invalid("Meno zákazníka je povinné")
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() || req.EndDate.Before(req.StartDate) {
		return nil, invalid("Neplatné dátumy prenájmu")
	}

	if _, err := s.rentalRepo.GetByEmailID(ctx, req.EmailID); err == nil {
		return nil, ErrEmailAlreadyStaged
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	emailID := req.EmailID
	rental := &domain.Rental{
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerEmail:  strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:  strings.TrimSpace(req.CustomerPhone),
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		TotalPrice:     req.TotalAmount,
		Deposit:        req.Deposit,
		PaymentMethod:  MapPaymentMethod(req.PaymentMethod),
		HandoverPlace:  req.HandoverPlace,
		Status:         domain.RentalStatusPending,
		SourceType:     domain.SourceEmailAuto,
		ApprovalStatus: domain.ApprovalPending,
		EmailID:        &emailID,
		EmailContent:   req.Body,
	}
	if req.DailyKm > 0 {
		rental.AllowedKilometers = req.DailyKm * utils.RentalDays(req.StartDate, req.EndDate)
	}

	if plate := strings.TrimSpace(req.VehicleCode); plate != "" {
		vehicle, err := s.vehicleRepo.GetByLicensePlate(ctx, plate)
		switch {
		case err == nil:
			rental.VehicleID = &vehicle.ID
			rental.Company = vehicle.Company
			rental.Commission = utils.CalculateCommission(vehicle.Commission, rental.TotalPrice)
		case errors.Is(err, repository.ErrNotFound):
			logger.Warn("Staged e-mail references unknown vehicle", "email_id", req.EmailID, "vehicle_code", plate)
		default:
			return nil, err
		}
	}

	if rental.CustomerEmail != "" {
		customer, err := s.customerRepo.GetByEmail(ctx, rental.CustomerEmail)
		if err == nil {
			rental.CustomerID = &customer.ID
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	if err := s.rentalRepo.CreateStaged(ctx, rental); err != nil {
		return nil, err
	}
	logger.Info("E-mail rental staged", "rental_id", rental.ID, "email_id", req.EmailID, "order_number", req.OrderNumber)

	subject := fmt.Sprintf("Nová objednávka z e-mailu: %s", rental.CustomerName)
	body := fmt.Sprintf("Zákazník: %s\nTermín: %s - %s\nSuma: %.2f €\nVozidlo: %s\n\nObjednávka čaká na schválenie.",
		rental.CustomerName, rental.StartDate.Format("02.01.2006"), rental.EndDate.Format("02.01.2006"), rental.TotalPrice, req.VehicleCode)
	if err := s.notifier.Send(ctx, s.adminEmails, subject, body); err != nil {
		logger.Warn("Failed to notify admins about staged rental", "rental_id", rental.ID, "error", err)
	}
	return rental, nil
}

// ListPending shows scoped users only the staged rentals of their companies.
// Rentals whose vehicle could not be matched are left to admins.
func (s *emailStagingService) ListPending(ctx context.Context, actor Actor) ([]domain.Rental, error) {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceRentals), string(config.ActionWrite))
	if err != nil {
		return nil, err
	}
	pending, err := s.rentalRepo.ListPendingApproval(ctx)
	if err != nil || scope.All() {
		return pending, err
	}
	visible := make([]domain.Rental, 0, len(pending))
	for i := range pending {
		err := rentalInScope(ctx, s.vehicleRepo, scope, &pending[i])
		switch {
		case err == nil:
			visible = append(visible, pending[i])
		case !errors.Is(err, ErrForbidden):
			return nil, err
		}
	}
	return visible, nil
}

func (s *emailStagingService) Approve(ctx context.Context, actor Actor, rentalID string) error {
	if err := s.decide(ctx, actor, rentalID, domain.ApprovalApproved, domain.RentalStatusConfirmed, ""); err != nil {
		return err
	}

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		logger.Warn("Approved rental could not be reloaded", "rental_id", rentalID, "error", err)
		return nil
	}
	if rental.CustomerEmail != "" {
		subject := "Potvrdenie rezervácie"
		body := fmt.Sprintf("Dobrý deň %s,\n\nvaša rezervácia v termíne %s - %s bola potvrdená.\n\nBlackRent",
			rental.CustomerName, rental.StartDate.Format("02.01.2006"), rental.EndDate.Format("02.01.2006"))
		if err := s.notifier.Send(ctx, []string{rental.CustomerEmail}, subject, body); err != nil {
			logger.Warn("Failed to send booking confirmation", "rental_id", rentalID, "error", err)
		}
	}
	return nil
}

func (s *emailStagingService) Reject(ctx context.Context, actor Actor, rentalID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return invalid("Dôvod zamietnutia je povinný")
	}
	return s.decide(ctx, actor, rentalID, domain.ApprovalRejected, domain.RentalStatusCancelled, reason)
}

func (s *emailStagingService) MarkSpam(ctx context.Context, actor Actor, rentalID string) error {
	return s.decide(ctx, actor, rentalID, domain.ApprovalSpam, domain.RentalStatusCancelled, "spam")
}

func (s *emailStagingService) decide(ctx context.Context, actor Actor, rentalID string, approval domain.ApprovalStatus, status domain.RentalStatus, reason string) error {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceRentals), string(config.ActionWrite))
	if err != nil {
		return err
	}
	if !scope.All() {
		rental, err := s.rentalRepo.GetByID(ctx, rentalID)
		if err != nil {
			return err
		}
		if err := rentalInScope(ctx, s.vehicleRepo, scope, rental); err != nil {
			return err
		}
	}
	if err := s.rentalRepo.Decide(ctx, rentalID, approval, status, actor.Username, reason); err != nil {
		return err
	}
	logger.Info("Staged rental decided", "rental_id", rentalID, "approval", approval, "user_id", actor.UserID)
	return nil
}

func (s *emailStagingService) Stats(ctx context.Context, actor Actor) (*domain.ApprovalStats, error) {
	if err := s.perms.Authorize(actor, string(config.ResourceRentals), string(config.ActionRead)); err != nil {
		return nil, err
	}
	return s.reportRepo.ApprovalStats(ctx)
}
