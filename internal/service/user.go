package service

import (
	"context"
	"net/mail"
	"strings"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository"
	"blackrent-backend/internal/security"
)

type userService struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	perms       PermissionService
}

func NewUserService(userRepo repository.UserRepository, companyRepo repository.CompanyRepository, perms PermissionService) UserService {
	return &userService{userRepo: userRepo, companyRepo: companyRepo, perms: perms}
}

func (s *userService) ListUsers(ctx context.Context, actor Actor) ([]domain.User, error) {
	if err := s.perms.Authorize(actor, string(config.ResourceUsers), string(config.ActionRead)); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx)
}

func (s *userService) CreateUser(ctx context.Context, actor Actor, user *domain.User, password string) error {
	if err := s.perms.Authorize(actor, string(config.ResourceUsers), string(config.ActionWrite)); err != nil {
		return err
	}
	if err := validateUser(user); err != nil {
		return err
	}
	if len(password) < minPasswordLength {
		return invalid("Heslo musí mať aspoň 8 znakov")
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.IsActive = true
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}
	logger.Info("User created", "user_id", user.ID, "username", user.Username, "role", user.Role, "created_by", actor.UserID)
	return nil
}

// UpdateUser keeps the stored password hash unless password is non-empty
func (s *userService) UpdateUser(ctx context.Context, actor Actor, user *domain.User, password string) error {
	if err := s.perms.Authorize(actor, string(config.ResourceUsers), string(config.ActionWrite)); err != nil {
		return err
	}
	existing, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := validateUser(user); err != nil {
		return err
	}
	user.PasswordHash = existing.PasswordHash
	if password != "" {
		if len(password) < minPasswordLength {
			return invalid("Heslo musí mať aspoň 8 znakov")
		}
		if user.PasswordHash, err = security.HashPassword(password); err != nil {
			return err
		}
	}
	return s.userRepo.Update(ctx, user)
}

func (s *userService) DeleteUser(ctx context.Context, actor Actor, id string) error {
	if err := s.perms.Authorize(actor, string(config.ResourceUsers), string(config.ActionDelete)); err != nil {
		return err
	}
	if id == actor.UserID {
		return invalid("Nemôžete vymazať vlastný účet")
	}
	return s.userRepo.Delete(ctx, id)
}

func (s *userService) GetPermissions(ctx context.Context, actor Actor, userID string) ([]domain.UserPermission, error) {
	if userID != actor.UserID {
		if err := s.perms.Authorize(actor, string(config.ResourceUsers), string(config.ActionRead)); err != nil {
			return nil, err
		}
	}
	return s.userRepo.GetPermissions(ctx, userID)
}

func (s *userService) SetPermission(ctx context.Context, actor Actor, userID, companyID string, perms domain.CompanyPermissions) error {
	if err := s.perms.Authorize(actor, string(config.ResourceUsers), string(config.ActionWrite)); err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.companyRepo.GetByID(ctx, companyID); err != nil {
		return err
	}
	if err := s.userRepo.SetPermission(ctx, userID, companyID, perms); err != nil {
		return err
	}
	logger.Info("User permission set", "user_id", userID, "company_id", companyID, "changed_by", actor.UserID)
	return nil
}

func (s *userService) RemovePermission(ctx context.Context, actor Actor, userID, companyID string) error {
	if err := s.perms.Authorize(actor, string(config.ResourceUsers), string(config.ActionDelete)); err != nil {
		return err
	}
	return s.userRepo.RemovePermission(ctx, userID, companyID)
}

func validateUser(user *domain.User) error {
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.TrimSpace(user.Email)
	if user.Username == "" {
		return invalid("Používateľské meno je povinné")
	}
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return invalid("Neplatný e-mail")
	}
	if user.Role == "" {
		user.Role = domain.RoleEmployee
	}
	if !user.Role.Valid() {
		return invalid("Neplatná rola")
	}
	return nil
}
