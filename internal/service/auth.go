package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository"
	"blackrent-backend/internal/security"
)

const minPasswordLength = 8

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		logger.Warn("Failed login attempt", "username", username)
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", ErrUserInactive
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Username, string(user.Role), user.CompanyID)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		logger.Warn("Failed to record last login", "user_id", user.ID, "error", err)
	} else {
		user.LastLogin = &now
	}
	return user, token, nil
}

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !security.CheckPassword(user.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLength {
		return invalid("Heslo musí mať aspoň 8 znakov")
	}
	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.userRepo.Update(ctx, user)
}
