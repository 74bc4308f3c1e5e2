package domain

import "time"

type ExpenseCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type Expense struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	VehicleID   *string   `json:"vehicleId,omitempty"`
	Company     string    `json:"company"`
	Category    string    `json:"category"`
	Note        string    `json:"note,omitempty"`
}

type RecurringFrequency string

const (
	RecurringMonthly   RecurringFrequency = "monthly"
	RecurringQuarterly RecurringFrequency = "quarterly"
	RecurringYearly    RecurringFrequency = "yearly"
)

// Next returns the due date following from. day is the day of month the
// schedule was anchored on; months shorter than it fall on their last day.
func (f RecurringFrequency) Next(from time.Time, day int) time.Time {
	switch f {
	case RecurringQuarterly:
		return AddMonths(from, 3, day)
	case RecurringYearly:
		return AddMonths(from, 12, day)
	default:
		return AddMonths(from, 1, day)
	}
}

// AddMonths moves t by months and places it on day, clamped to the length of
// the target month. A day outside 1..31 keeps the day of t.
func AddMonths(t time.Time, months, day int) time.Time {
	if day < 1 || day > 31 {
		day = t.Day()
	}
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()).AddDate(0, months, 0)
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

// RecurringExpense is a template materialised into Expense rows when due
type RecurringExpense struct {
	ID          string             `json:"id"`
	Description string             `json:"description"`
	Amount      float64            `json:"amount"`
	Category    string             `json:"category"`
	Company     string             `json:"company"`
	VehicleID   *string            `json:"vehicleId,omitempty"`
	Frequency   RecurringFrequency `json:"frequency"`
	NextDueDate time.Time          `json:"nextDueDate"`
	DayOfMonth  int                `json:"dayOfMonth"`
	IsActive    bool               `json:"isActive"`
}
