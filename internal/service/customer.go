package service

import (
	"context"
	"net/mail"
	"strings"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
)

type customerService struct {
	customerRepo repository.CustomerRepository
	perms        PermissionService
}

func NewCustomerService(customerRepo repository.CustomerRepository, perms PermissionService) CustomerService {
	return &customerService{customerRepo: customerRepo, perms: perms}
}

func (s *customerService) ListCustomers(ctx context.Context, actor Actor) ([]domain.Customer, error) {
	if err := s.perms.Authorize(actor, string(config.ResourceCustomers), string(config.ActionRead)); err != nil {
		return nil, err
	}
	return s.customerRepo.List(ctx)
}

func (s *customerService) GetCustomer(ctx context.Context, actor Actor, id string) (*domain.Customer, error) {
	if err := s.perms.Authorize(actor, string(config.ResourceCustomers), string(config.ActionRead)); err != nil {
		return nil, err
	}
	return s.customerRepo.GetByID(ctx, id)
}

func (s *customerService) CreateCustomer(ctx context.Context, actor Actor, c *domain.Customer) error {
	if err := s.perms.Authorize(actor, string(config.ResourceCustomers), string(config.ActionWrite)); err != nil {
		return err
	}
	if err := validateCustomer(c); err != nil {
		return err
	}
	return s.customerRepo.Create(ctx, c)
}

func (s *customerService) UpdateCustomer(ctx context.Context, actor Actor, c *domain.Customer) error {
	if err := s.perms.Authorize(actor, string(config.ResourceCustomers), string(config.ActionWrite)); err != nil {
		return err
	}
	if err := validateCustomer(c); err != nil {
		return err
	}
	return s.customerRepo.Update(ctx, c)
}

func (s *customerService) DeleteCustomer(ctx context.Context, actor Actor, id string) error {
	if err := s.perms.Authorize(actor, string(config.ResourceCustomers), string(config.ActionDelete)); err != nil {
		return err
	}
	return s.customerRepo.Delete(ctx, id)
}

func validateCustomer(c *domain.Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	if c.Name == "" {
		return invalid("Meno zákazníka je povinné")
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return invalid("Neplatný e-mail zákazníka")
		}
	}
	return nil
}
