package service

import (
	"errors"

	"blackrent-backend/internal/repository"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is disabled")
	ErrProtocolLocked     = errors.New("protocol is locked after pdf generation")
	ErrMaintenanceBlocked = errors.New("maintenance operations are disabled in production")
	ErrRangeTooLarge      = errors.New("date range too large")

	// Repository conflicts surfaced unchanged to the transport layer
	ErrNotFound                = repository.ErrNotFound
	ErrDuplicate               = repository.ErrDuplicate
	ErrDuplicateLicensePlate   = repository.ErrDuplicateLicensePlate
	ErrVehicleHasActiveRentals = repository.ErrVehicleHasActiveRentals
	ErrAlreadyDecided          = repository.ErrAlreadyDecided
	ErrEmailAlreadyStaged      = repository.ErrEmailAlreadyStaged
	ErrProtocolExists          = repository.ErrProtocolExists
	ErrHandoverRequired        = repository.ErrHandoverRequired
)

// ValidationError carries a user-facing message and matches ErrValidation
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(message string) error {
	return &ValidationError{Message: message}
}
