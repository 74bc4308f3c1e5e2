package domain

import "time"

type PaymentFrequency string

const (
	FrequencyMonthly   PaymentFrequency = "monthly"
	FrequencyQuarterly PaymentFrequency = "quarterly"
	FrequencyBiannual  PaymentFrequency = "biannual"
	FrequencyYearly    PaymentFrequency = "yearly"
)

type Insurer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Insurance struct {
	ID               string           `json:"id"`
	VehicleID        *string          `json:"vehicleId,omitempty"`
	InsurerID        *string          `json:"insurerId,omitempty"`
	Type             string           `json:"type"`
	PolicyNumber     string           `json:"policyNumber"`
	ValidFrom        time.Time        `json:"validFrom"`
	ValidTo          time.Time        `json:"validTo"`
	Price            float64          `json:"price"`
	Company          string           `json:"company"`
	PaymentFrequency PaymentFrequency `json:"paymentFrequency"`
}
