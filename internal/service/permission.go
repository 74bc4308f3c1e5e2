package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
)

// CompanyScope is the set of companies a caller may see or change for one
// resource. Entities carry either an owner company id or a company name
// snapshot, so both are tracked.
type CompanyScope struct {
	all   bool
	ids   map[string]struct{}
	names map[string]struct{}
}

// FullScope allows every company
func FullScope() *CompanyScope { return &CompanyScope{all: true} }

func newScope() *CompanyScope {
	return &CompanyScope{ids: map[string]struct{}{}, names: map[string]struct{}{}}
}

func (s *CompanyScope) add(id, name string) {
	if id != "" {
		s.ids[id] = struct{}{}
	}
	if name != "" {
		s.names[strings.ToLower(name)] = struct{}{}
	}
}

func (s *CompanyScope) All() bool { return s.all }

// Allows matches either the company id or the company name
func (s *CompanyScope) Allows(companyID *string, companyName string) bool {
	if s.all {
		return true
	}
	if companyID != nil {
		if _, ok := s.ids[*companyID]; ok {
			return true
		}
	}
	if companyName != "" {
		_, ok := s.names[strings.ToLower(companyName)]
		return ok
	}
	return false
}

func (s *CompanyScope) AllowsVehicle(v *domain.Vehicle) bool {
	return s.Allows(v.OwnerCompanyID, v.Company)
}

type permissionService struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
}

func NewPermissionService(userRepo repository.UserRepository, companyRepo repository.CompanyRepository) PermissionService {
	return &permissionService{userRepo: userRepo, companyRepo: companyRepo}
}

func (s *permissionService) Authorize(actor Actor, resource, action string) error {
	if !config.IsAllowed(string(actor.Role), config.Resource(resource), config.Action(action)) {
		return fmt.Errorf("%w: %s may not %s %s", ErrForbidden, actor.Role, action, resource)
	}
	return nil
}

func (s *permissionService) Scope(ctx context.Context, actor Actor, resource, action string) (*CompanyScope, error) {
	if err := s.Authorize(actor, resource, action); err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return FullScope(), nil
	}

	scope := newScope()
	perms, err := s.userRepo.GetPermissions(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}
	for _, p := range perms {
		if p.Permissions.For(resource).Allows(action) {
			scope.add(p.CompanyID, p.CompanyName)
		}
	}

	if actor.CompanyID != nil && *actor.CompanyID != "" {
		company, err := s.companyRepo.GetByID(ctx, *actor.CompanyID)
		switch {
		case err == nil:
			scope.add(company.ID, company.Name)
		case errors.Is(err, repository.ErrNotFound):
			scope.add(*actor.CompanyID, "")
		default:
			return nil, err
		}
	}
	return scope, nil
}
