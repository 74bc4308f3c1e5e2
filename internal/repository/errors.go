package repository

import "errors"

var (
	ErrNotFound                = errors.New("record not found")
	ErrDuplicate               = errors.New("record already exists")
	ErrDuplicateLicensePlate   = errors.New("license plate already exists")
	ErrVehicleHasActiveRentals = errors.New("vehicle has active or confirmed rentals")
	ErrAlreadyDecided          = errors.New("rental approval already decided")
	ErrEmailAlreadyStaged      = errors.New("email already staged")
	ErrProtocolExists          = errors.New("protocol already exists for rental")
	ErrHandoverRequired        = errors.New("handover protocol required before return")
)
