package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository"
	"blackrent-backend/internal/utils"
)

const maxInstallments = 600

// leasingService guards leasings through the expenses permission, scoped by
// the company owning the financed vehicle.
type leasingService struct {
	leasingRepo repository.LeasingRepository
	vehicleRepo repository.VehicleRepository
	perms       PermissionService
}

func NewLeasingService(leasingRepo repository.LeasingRepository, vehicleRepo repository.VehicleRepository, perms PermissionService) LeasingService {
	return &leasingService{leasingRepo: leasingRepo, vehicleRepo: vehicleRepo, perms: perms}
}

func (s *leasingService) ListLeasings(ctx context.Context, actor Actor) ([]domain.Leasing, error) {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceExpenses), string(config.ActionRead))
	if err != nil {
		return nil, err
	}
	leasings, err := s.leasingRepo.List(ctx)
	if err != nil || scope.All() {
		return leasings, err
	}

	vehicles, err := s.vehicleRepo.List(ctx, true, true)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Vehicle, len(vehicles))
	for i := range vehicles {
		byID[vehicles[i].ID] = &vehicles[i]
	}
	filtered := make([]domain.Leasing, 0, len(leasings))
	for _, l := range leasings {
		if v, ok := byID[l.VehicleID]; ok && scope.AllowsVehicle(v) {
			filtered = append(filtered, l)
		}
	}
	return filtered, nil
}

func (s *leasingService) GetLeasing(ctx context.Context, actor Actor, id string) (*domain.Leasing, error) {
	return s.load(ctx, actor, id, config.ActionRead)
}

func (s *leasingService) CreateLeasing(ctx context.Context, actor Actor, l *domain.Leasing) error {
	if err := validateLeasing(l); err != nil {
		return err
	}
	if err := s.checkVehicle(ctx, actor, l.VehicleID, config.ActionWrite); err != nil {
		return err
	}
	utils.ApplyLeasingPayment(l)
	schedule := utils.LeasingSchedule(l)
	if err := s.leasingRepo.Create(ctx, l, schedule); err != nil {
		return err
	}
	logger.Info("Leasing created", "leasing_id", l.ID, "vehicle_id", l.VehicleID, "installments", len(schedule))
	return nil
}

// UpdateLeasing rebuilds the schedule when the financing terms change. Terms
// of a leasing with paid installments are frozen.
func (s *leasingService) UpdateLeasing(ctx context.Context, actor Actor, l *domain.Leasing) error {
	existing, err := s.load(ctx, actor, l.ID, config.ActionWrite)
	if err != nil {
		return err
	}
	if err := validateLeasing(l); err != nil {
		return err
	}
	if l.VehicleID != existing.VehicleID {
		if err := s.checkVehicle(ctx, actor, l.VehicleID, config.ActionWrite); err != nil {
			return err
		}
	}
	utils.ApplyLeasingPayment(l)

	var schedule []domain.PaymentScheduleItem
	if termsChanged(existing, l) {
		if existing.PaidInstallments > 0 {
			return invalid("Podmienky leasingu so zaplatenými splátkami nie je možné meniť")
		}
		schedule = utils.LeasingSchedule(l)
		l.CurrentBalance = l.InitialLoanAmount
		l.PaidInstallments = 0
		l.RemainingInstallments = len(schedule)
		l.LastPaidDate = nil
	} else {
		l.CurrentBalance = existing.CurrentBalance
		l.PaidInstallments = existing.PaidInstallments
		l.RemainingInstallments = existing.RemainingInstallments
		l.LastPaidDate = existing.LastPaidDate
	}
	l.CreatedAt = existing.CreatedAt
	return s.leasingRepo.Update(ctx, l, schedule)
}

func (s *leasingService) DeleteLeasing(ctx context.Context, actor Actor, id string) error {
	if _, err := s.load(ctx, actor, id, config.ActionDelete); err != nil {
		return err
	}
	return s.leasingRepo.Delete(ctx, id)
}

func (s *leasingService) GetSchedule(ctx context.Context, actor Actor, id string) ([]domain.PaymentScheduleItem, error) {
	if _, err := s.load(ctx, actor, id, config.ActionRead); err != nil {
		return nil, err
	}
	return s.leasingRepo.Schedule(ctx, id)
}

// MarkPaid records the installments as paid on paidDate, today when zero
func (s *leasingService) MarkPaid(ctx context.Context, actor Actor, id string, installments []int, paidDate time.Time) (*domain.Leasing, error) {
	if _, err := s.load(ctx, actor, id, config.ActionWrite); err != nil {
		return nil, err
	}
	numbers, err := installmentNumbers(installments)
	if err != nil {
		return nil, err
	}
	if paidDate.IsZero() {
		paidDate = time.Now()
	}
	paidDate = time.Date(paidDate.Year(), paidDate.Month(), paidDate.Day(), 0, 0, 0, 0, time.UTC)
	if err := s.leasingRepo.SetPaid(ctx, id, numbers, &paidDate); err != nil {
		return nil, err
	}
	return s.leasingRepo.GetByID(ctx, id)
}

func (s *leasingService) UnmarkPaid(ctx context.Context, actor Actor, id string, installment int) (*domain.Leasing, error) {
	if _, err := s.load(ctx, actor, id, config.ActionWrite); err != nil {
		return nil, err
	}
	numbers, err := installmentNumbers([]int{installment})
	if err != nil {
		return nil, err
	}
	if err := s.leasingRepo.SetPaid(ctx, id, numbers, nil); err != nil {
		return nil, err
	}
	return s.leasingRepo.GetByID(ctx, id)
}

func (s *leasingService) ListDocuments(ctx context.Context, actor Actor, id string) ([]domain.LeasingDocument, error) {
	if _, err := s.load(ctx, actor, id, config.ActionRead); err != nil {
		return nil, err
	}
	return s.leasingRepo.Documents(ctx, id)
}

func (s *leasingService) AddDocument(ctx context.Context, actor Actor, doc *domain.LeasingDocument) error {
	if _, err := s.load(ctx, actor, doc.LeasingID, config.ActionWrite); err != nil {
		return err
	}
	switch doc.Type {
	case "":
		doc.Type = domain.LeasingDocOther
	case domain.LeasingDocContract, domain.LeasingDocPaymentSchedule, domain.LeasingDocPhoto, domain.LeasingDocOther:
	default:
		return invalid("Neplatný typ dokumentu")
	}
	if strings.TrimSpace(doc.FileName) == "" || strings.TrimSpace(doc.FileURL) == "" {
		return invalid("Názov a URL súboru sú povinné")
	}
	if doc.FileSize < 0 {
		return invalid("Neplatná veľkosť súboru")
	}
	return s.leasingRepo.AddDocument(ctx, doc)
}

func (s *leasingService) DeleteDocument(ctx context.Context, actor Actor, leasingID, documentID string) error {
	if _, err := s.load(ctx, actor, leasingID, config.ActionWrite); err != nil {
		return err
	}
	return s.leasingRepo.DeleteDocument(ctx, leasingID, documentID)
}

func (s *leasingService) load(ctx context.Context, actor Actor, id string, action config.Action) (*domain.Leasing, error) {
	l, err := s.leasingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkVehicle(ctx, actor, l.VehicleID, action); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *leasingService) checkVehicle(ctx context.Context, actor Actor, vehicleID string, action config.Action) error {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceExpenses), string(action))
	if err != nil {
		return err
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if !scope.AllowsVehicle(vehicle) {
		return ErrForbidden
	}
	return nil
}

func validateLeasing(l *domain.Leasing) error {
	l.LeasingCompany = strings.TrimSpace(l.LeasingCompany)
	if l.VehicleID == "" || l.LeasingCompany == "" {
		return invalid("Vozidlo a leasingová spoločnosť sú povinné")
	}
	switch l.LoanCategory {
	case domain.LoanCarLoan, domain.LoanOperatingLeasing, domain.LoanPersonal:
	default:
		return invalid("Neplatná kategória úveru")
	}
	switch l.PaymentType {
	case "":
		l.PaymentType = domain.PaymentAnnuity
	case domain.PaymentAnnuity, domain.PaymentLinear, domain.PaymentInterestOnly:
	default:
		return invalid("Neplatný typ splácania")
	}
	switch l.PenaltyType {
	case "":
		l.PenaltyType = domain.PenaltyPercentPrincipal
	case domain.PenaltyPercentPrincipal, domain.PenaltyFixedAmount:
	default:
		return invalid("Neplatný typ pokuty za predčasné splatenie")
	}
	if l.InitialLoanAmount <= 0 {
		return invalid("Výška úveru musí byť kladná")
	}
	if l.TotalInstallments < 1 || l.TotalInstallments > maxInstallments {
		return invalid("Neplatný počet splátok")
	}
	if l.FirstPaymentDate.IsZero() {
		return invalid("Dátum prvej splátky je povinný")
	}
	if l.InterestRate < 0 || l.MonthlyFee < 0 || l.ProcessingFee < 0 || l.EarlyRepaymentPenalty < 0 {
		return invalid("Úrok a poplatky nemôžu byť záporné")
	}
	return nil
}

func termsChanged(a, b *domain.Leasing) bool {
	return a.PaymentType != b.PaymentType ||
		a.InitialLoanAmount != b.InitialLoanAmount ||
		a.TotalInstallments != b.TotalInstallments ||
		!a.FirstPaymentDate.Equal(b.FirstPaymentDate) ||
		a.InterestRate != b.InterestRate ||
		a.MonthlyFee != b.MonthlyFee
}

// installmentNumbers sorts and de-duplicates, rejecting numbers below 1
func installmentNumbers(in []int) ([]int, error) {
	if len(in) == 0 {
		return nil, invalid("Zoznam splátok je prázdny")
	}
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, n := range in {
		if n < 1 {
			return nil, invalid("Neplatné číslo splátky")
		}
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out, nil
}
