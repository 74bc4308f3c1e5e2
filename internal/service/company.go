package service

import (
	"context"
	"strings"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
)

type companyService struct {
	companyRepo repository.CompanyRepository
	perms       PermissionService
}

func NewCompanyService(companyRepo repository.CompanyRepository, perms PermissionService) CompanyService {
	return &companyService{companyRepo: companyRepo, perms: perms}
}

func (s *companyService) ListCompanies(ctx context.Context, actor Actor) ([]domain.Company, error) {
	if err := s.perms.Authorize(actor, string(config.ResourceCompanies), string(config.ActionRead)); err != nil {
		return nil, err
	}
	return s.companyRepo.List(ctx)
}

func (s *companyService) GetCompany(ctx context.Context, actor Actor, id string) (*domain.Company, error) {
	if err := s.perms.Authorize(actor, string(config.ResourceCompanies), string(config.ActionRead)); err != nil {
		return nil, err
	}
	return s.companyRepo.GetByID(ctx, id)
}

func (s *companyService) CreateCompany(ctx context.Context, actor Actor, c *domain.Company) error {
	if err := s.perms.Authorize(actor, string(config.ResourceCompanies), string(config.ActionWrite)); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return invalid("Názov firmy je povinný")
	}
	if c.CommissionRate < 0 || c.CommissionRate > 100 {
		return invalid("Provízia firmy musí byť medzi 0 a 100 %")
	}
	return s.companyRepo.Create(ctx, c)
}

func (s *companyService) UpdateCompany(ctx context.Context, actor Actor, c *domain.Company) error {
	if err := s.perms.Authorize(actor, string(config.ResourceCompanies), string(config.ActionWrite)); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return invalid("Názov firmy je povinný")
	}
	return s.companyRepo.Update(ctx, c)
}

func (s *companyService) DeleteCompany(ctx context.Context, actor Actor, id string) error {
	if err := s.perms.Authorize(actor, string(config.ResourceCompanies), string(config.ActionDelete)); err != nil {
		return err
	}
	return s.companyRepo.Delete(ctx, id)
}
