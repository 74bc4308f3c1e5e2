package domain

type DayStatus string

const (
	DayAvailable DayStatus = "available"
	DayRented    DayStatus = "rented"
	DayFlexible  DayStatus = "flexible"
)

type VehicleDay struct {
	VehicleID    string    `json:"vehicleId"`
	LicensePlate string    `json:"licensePlate"`
	Status       DayStatus `json:"status"`
	RentalID     *string   `json:"rentalId,omitempty"`
	CustomerName string    `json:"customerName,omitempty"`
}

// CalendarDay lists the state of every vehicle on one date (YYYY-MM-DD)
type CalendarDay struct {
	Date     string       `json:"date"`
	Vehicles []VehicleDay `json:"vehicles"`
}

// BulkData is the one-shot payload loaded by the frontend at startup
type BulkData struct {
	Vehicles          []Vehicle         `json:"vehicles"`
	Rentals           []Rental          `json:"rentals"`
	Customers         []Customer        `json:"customers"`
	Companies         []Company         `json:"companies"`
	Insurers          []Insurer         `json:"insurers"`
	ExpenseCategories []ExpenseCategory `json:"expenseCategories"`
	Expenses          []Expense         `json:"expenses"`
	Insurances        []Insurance       `json:"insurances"`
	Settlements       []Settlement      `json:"settlements"`
}
