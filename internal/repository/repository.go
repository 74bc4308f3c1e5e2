package repository

import (
	"context"
	"time"

	"blackrent-backend/internal/domain"
)

type VehicleRepository interface {
	// List returns vehicles ordered by brand and model. Removed and private
	// vehicles are left out unless requested.
	List(ctx context.Context, includeRemoved, includePrivate bool) ([]domain.Vehicle, error)
	Search(ctx context.Context, filter domain.VehicleFilter) ([]domain.Vehicle, int, error)
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	GetByLicensePlate(ctx context.Context, plate string) (*domain.Vehicle, error)
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	Delete(ctx context.Context, id string) error
	ListSTKExpiring(ctx context.Context, before time.Time) ([]domain.Vehicle, error)
}

type RentalRepository interface {
	List(ctx context.Context) ([]domain.Rental, error)
	GetByID(ctx context.Context, id string) (*domain.Rental, error)
	Create(ctx context.Context, rental *domain.Rental) error
	Update(ctx context.Context, rental *domain.Rental) error
	Delete(ctx context.Context, id string) error
	ListForSettlement(ctx context.Context, company string, from, to time.Time) ([]domain.Rental, error)

	// Email staging
	GetByEmailID(ctx context.Context, emailID string) (*domain.Rental, error)
	CreateStaged(ctx context.Context, rental *domain.Rental) error
	ListPendingApproval(ctx context.Context) ([]domain.Rental, error)
	// Decide moves a pending rental to the given approval status. It returns
	// ErrAlreadyDecided when the rental is no longer pending.
	Decide(ctx context.Context, id string, approval domain.ApprovalStatus, status domain.RentalStatus, decidedBy, reason string) error
}

type CustomerRepository interface {
	List(ctx context.Context) ([]domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id string) error
}

type CompanyRepository interface {
	List(ctx context.Context) ([]domain.Company, error)
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	Create(ctx context.Context, company *domain.Company) error
	Update(ctx context.Context, company *domain.Company) error
	Delete(ctx context.Context, id string) error
}

type InsurerRepository interface {
	List(ctx context.Context) ([]domain.Insurer, error)
	Create(ctx context.Context, insurer *domain.Insurer) error
	Delete(ctx context.Context, id string) error
}

type InsuranceRepository interface {
	List(ctx context.Context) ([]domain.Insurance, error)
	GetByID(ctx context.Context, id string) (*domain.Insurance, error)
	Create(ctx context.Context, insurance *domain.Insurance) error
	Update(ctx context.Context, insurance *domain.Insurance) error
	Delete(ctx context.Context, id string) error
}

type ExpenseRepository interface {
	List(ctx context.Context) ([]domain.Expense, error)
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	Create(ctx context.Context, expense *domain.Expense) error
	Update(ctx context.Context, expense *domain.Expense) error
	Delete(ctx context.Context, id string) error
	ListForSettlement(ctx context.Context, company string, from, to time.Time) ([]domain.Expense, error)

	ListCategories(ctx context.Context) ([]domain.ExpenseCategory, error)
	CreateCategory(ctx context.Context, category *domain.ExpenseCategory) error
	DeleteCategory(ctx context.Context, id string) error

	ListRecurring(ctx context.Context) ([]domain.RecurringExpense, error)
	CreateRecurring(ctx context.Context, recurring *domain.RecurringExpense) error
	// GenerateRecurring inserts an expense for every active recurring expense
	// due on or before asOf and advances its next due date.
	GenerateRecurring(ctx context.Context, asOf time.Time) (int, error)
}

type ProtocolRepository interface {
	CreateHandover(ctx context.Context, p *domain.HandoverProtocol) error
	CreateReturn(ctx context.Context, p *domain.ReturnProtocol) error
	GetHandover(ctx context.Context, id string) (*domain.HandoverProtocol, error)
	GetReturn(ctx context.Context, id string) (*domain.ReturnProtocol, error)
	GetByRental(ctx context.Context, rentalID string) (*domain.RentalProtocols, error)
	UpdateHandover(ctx context.Context, p *domain.HandoverProtocol) error
	UpdateReturn(ctx context.Context, p *domain.ReturnProtocol) error
	// DeleteAll removes every protocol and clears rental back-references.
	DeleteAll(ctx context.Context) (int64, error)
}

type SettlementRepository interface {
	List(ctx context.Context) ([]domain.Settlement, error)
	GetByID(ctx context.Context, id string) (*domain.Settlement, error)
	Create(ctx context.Context, settlement *domain.Settlement) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error

	GetPermissions(ctx context.Context, userID string) ([]domain.UserPermission, error)
	SetPermission(ctx context.Context, userID, companyID string, perms domain.CompanyPermissions) error
	RemovePermission(ctx context.Context, userID, companyID string) error
}

// VehicleSpan is one vehicle with its non-cancelled rentals overlapping a window
type VehicleSpan struct {
	VehicleID    string     `db:"vehicle_id"`
	LicensePlate string     `db:"license_plate"`
	RentalID     *string    `db:"rental_id"`
	CustomerName *string    `db:"customer_name"`
	StartDate    *time.Time `db:"start_date"`
	EndDate      *time.Time `db:"end_date"`
	IsFlexible   *bool      `db:"is_flexible"`
}

type LeasingRepository interface {
	List(ctx context.Context) ([]domain.Leasing, error)
	GetByID(ctx context.Context, id string) (*domain.Leasing, error)
	// Create stores the leasing together with its payment schedule
	Create(ctx context.Context, leasing *domain.Leasing, schedule []domain.PaymentScheduleItem) error
	// Update saves the contract terms. A non-nil schedule replaces the stored one.
	Update(ctx context.Context, leasing *domain.Leasing, schedule []domain.PaymentScheduleItem) error
	Delete(ctx context.Context, id string) error

	Schedule(ctx context.Context, leasingID string) ([]domain.PaymentScheduleItem, error)
	// SetPaid marks the installments paid on paidDate, or unpaid when paidDate
	// is nil, and recomputes the balance and counters of the leasing.
	SetPaid(ctx context.Context, leasingID string, installments []int, paidDate *time.Time) error

	Documents(ctx context.Context, leasingID string) ([]domain.LeasingDocument, error)
	AddDocument(ctx context.Context, doc *domain.LeasingDocument) error
	DeleteDocument(ctx context.Context, leasingID, documentID string) error
}

// ReportRepository serves read models that aggregate across tables
type ReportRepository interface {
	// CalendarSpans covers rentals overlapping [from, until)
	CalendarSpans(ctx context.Context, from, until time.Time) ([]VehicleSpan, error)
	ApprovalStats(ctx context.Context) (*domain.ApprovalStats, error)
}
