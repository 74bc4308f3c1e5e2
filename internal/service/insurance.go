package service

import (
	"context"
	"strings"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
)

type insuranceService struct {
	insurerRepo   repository.InsurerRepository
	insuranceRepo repository.InsuranceRepository
	perms         PermissionService
}

func NewInsuranceService(insurerRepo repository.InsurerRepository, insuranceRepo repository.InsuranceRepository, perms PermissionService) InsuranceService {
	return &insuranceService{insurerRepo: insurerRepo, insuranceRepo: insuranceRepo, perms: perms}
}

func (s *insuranceService) ListInsurers(ctx context.Context, actor Actor) ([]domain.Insurer, error) {
	if err := s.perms.Authorize(actor, string(config.ResourceInsurances), string(config.ActionRead)); err != nil {
		return nil, err
	}
	return s.insurerRepo.List(ctx)
}

func (s *insuranceService) CreateInsurer(ctx context.Context, actor Actor, insurer *domain.Insurer) error {
	if err := s.perms.Authorize(actor, string(config.ResourceInsurances), string(config.ActionWrite)); err != nil {
		return err
	}
	insurer.Name = strings.TrimSpace(insurer.Name)
	if insurer.Name == "" {
		return invalid("Názov poisťovne je povinný")
	}
	return s.insurerRepo.Create(ctx, insurer)
}

func (s *insuranceService) DeleteInsurer(ctx context.Context, actor Actor, id string) error {
	if err := s.perms.Authorize(actor, string(config.ResourceInsurances), string(config.ActionDelete)); err != nil {
		return err
	}
	return s.insurerRepo.Delete(ctx, id)
}

func (s *insuranceService) ListInsurances(ctx context.Context, actor Actor) ([]domain.Insurance, error) {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceInsurances), string(config.ActionRead))
	if err != nil {
		return nil, err
	}
	insurances, err := s.insuranceRepo.List(ctx)
	if err != nil || scope.All() {
		return insurances, err
	}
	filtered := make([]domain.Insurance, 0, len(insurances))
	for _, ins := range insurances {
		if scope.Allows(nil, ins.Company) {
			filtered = append(filtered, ins)
		}
	}
	return filtered, nil
}

func (s *insuranceService) CreateInsurance(ctx context.Context, actor Actor, ins *domain.Insurance) error {
	if err := s.checkWrite(ctx, actor, ins.Company, config.ActionWrite); err != nil {
		return err
	}
	if err := validateInsurance(ins); err != nil {
		return err
	}
	return s.insuranceRepo.Create(ctx, ins)
}

func (s *insuranceService) UpdateInsurance(ctx context.Context, actor Actor, ins *domain.Insurance) error {
	existing, err := s.insuranceRepo.GetByID(ctx, ins.ID)
	if err != nil {
		return err
	}
	if err := s.checkWrite(ctx, actor, existing.Company, config.ActionWrite); err != nil {
		return err
	}
	if err := validateInsurance(ins); err != nil {
		return err
	}
	return s.insuranceRepo.Update(ctx, ins)
}

func (s *insuranceService) DeleteInsurance(ctx context.Context, actor Actor, id string) error {
	existing, err := s.insuranceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkWrite(ctx, actor, existing.Company, config.ActionDelete); err != nil {
		return err
	}
	return s.insuranceRepo.Delete(ctx, id)
}

func (s *insuranceService) checkWrite(ctx context.Context, actor Actor, company string, action config.Action) error {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceInsurances), string(action))
	if err != nil {
		return err
	}
	if !scope.Allows(nil, company) {
		return ErrForbidden
	}
	return nil
}

func validateInsurance(ins *domain.Insurance) error {
	if strings.TrimSpace(ins.Type) == "" || strings.TrimSpace(ins.PolicyNumber) == "" {
		return invalid("Typ a číslo poistky sú povinné")
	}
	if ins.ValidTo.Before(ins.ValidFrom) {
		return invalid("Platnosť poistky končí pred jej začiatkom")
	}
	if ins.Price < 0 {
		return invalid("Cena poistky nemôže byť záporná")
	}
	switch ins.PaymentFrequency {
	case "":
		ins.PaymentFrequency = domain.FrequencyYearly
	case domain.FrequencyMonthly, domain.FrequencyQuarterly, domain.FrequencyBiannual, domain.FrequencyYearly:
	default:
		return invalid("Neplatná frekvencia platby")
	}
	return nil
}
