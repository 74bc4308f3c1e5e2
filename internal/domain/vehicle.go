package domain

import "time"

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "available"
	VehicleStatusRented      VehicleStatus = "rented"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusRemoved     VehicleStatus = "removed"
	VehicleStatusTempRemoved VehicleStatus = "temp_removed"
	VehicleStatusPrivate     VehicleStatus = "private"
)

// IsRemoved reports whether the status hides the vehicle from default listings
func (s VehicleStatus) IsRemoved() bool {
	return s == VehicleStatusRemoved || s == VehicleStatusTempRemoved
}

type CommissionType string

const (
	CommissionPercentage CommissionType = "percentage"
	CommissionFixed      CommissionType = "fixed"
)

// PricingTier is the daily price for rentals lasting MinDays..MaxDays days
type PricingTier struct {
	ID          string  `json:"id"`
	MinDays     int     `json:"minDays"`
	MaxDays     int     `json:"maxDays"`
	PricePerDay float64 `json:"pricePerDay"`
}

type Commission struct {
	Type  CommissionType `json:"type"`
	Value float64        `json:"value"`
}

type Vehicle struct {
	ID             string        `json:"id"`
	Brand          string        `json:"brand"`
	Model          string        `json:"model"`
	Year           *int          `json:"year,omitempty"`
	LicensePlate   string        `json:"licensePlate"`
	VIN            string        `json:"vin,omitempty"`
	Company        string        `json:"company"`
	OwnerCompanyID *string       `json:"ownerCompanyId,omitempty"`
	Category       string        `json:"category,omitempty"`
	Pricing        []PricingTier `json:"pricing"`
	Commission     Commission    `json:"commission"`
	Status         VehicleStatus `json:"status"`
	STK            *time.Time    `json:"stk,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// VehicleFilter narrows a paginated vehicle search
type VehicleFilter struct {
	Search         string
	Status         VehicleStatus
	Company        string
	Category       string
	IncludeRemoved bool
	IncludePrivate bool
	Page           int
	PageSize       int
}
