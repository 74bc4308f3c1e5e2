package domain

import "time"

type Settlement struct {
	ID              string    `json:"id"`
	Company         string    `json:"company"`
	PeriodFrom      time.Time `json:"periodFrom"`
	PeriodTo        time.Time `json:"periodTo"`
	TotalIncome     float64   `json:"totalIncome"`
	TotalExpenses   float64   `json:"totalExpenses"`
	TotalCommission float64   `json:"totalCommission"`
	TotalToOwner    float64   `json:"totalToOwner"`
	Profit          float64   `json:"profit"`
	RentalIDs       []string  `json:"rentalIds"`
	ExpenseIDs      []string  `json:"expenseIds"`
	CreatedAt       time.Time `json:"createdAt"`
}
