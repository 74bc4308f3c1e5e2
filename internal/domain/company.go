package domain

import "time"

type Company struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	BusinessID     string    `json:"businessId,omitempty"`
	TaxID          string    `json:"taxId,omitempty"`
	Address        string    `json:"address,omitempty"`
	ContactPerson  string    `json:"contactPerson,omitempty"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	CommissionRate float64   `json:"commissionRate"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}
