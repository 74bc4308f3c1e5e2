package service

import (
	"context"
	"io"
	"time"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/utils"
)

// Actor is the authenticated caller of a service method
type Actor struct {
	UserID    string
	Username  string
	Role      domain.Role
	CompanyID *string
}

func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

// Notifier delivers plain-text e-mail. Implementations: SMTP (gomail),
// SendGrid, and a no-op used when no provider is configured.
type Notifier interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
	GetCurrentUser(ctx context.Context, userID string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type UserService interface {
	ListUsers(ctx context.Context, actor Actor) ([]domain.User, error)
	CreateUser(ctx context.Context, actor Actor, user *domain.User, password string) error
	UpdateUser(ctx context.Context, actor Actor, user *domain.User, password string) error
	DeleteUser(ctx context.Context, actor Actor, id string) error
	GetPermissions(ctx context.Context, actor Actor, userID string) ([]domain.UserPermission, error)
	SetPermission(ctx context.Context, actor Actor, userID, companyID string, perms domain.CompanyPermissions) error
	RemovePermission(ctx context.Context, actor Actor, userID, companyID string) error
}

type PermissionService interface {
	// Authorize checks the role allow-list only
	Authorize(actor Actor, resource, action string) error
	// Scope authorizes and returns the companies actor may act on
	Scope(ctx context.Context, actor Actor, resource, action string) (*CompanyScope, error)
}

type VehicleService interface {
	ListVehicles(ctx context.Context, actor Actor, includeRemoved, includePrivate bool) ([]domain.Vehicle, error)
	SearchVehicles(ctx context.Context, actor Actor, filter domain.VehicleFilter) ([]domain.Vehicle, int, error)
	GetVehicle(ctx context.Context, actor Actor, id string) (*domain.Vehicle, error)
	CreateVehicle(ctx context.Context, actor Actor, vehicle *domain.Vehicle) error
	UpdateVehicle(ctx context.Context, actor Actor, vehicle *domain.Vehicle) error
	DeleteVehicle(ctx context.Context, actor Actor, id string) error
}

// PriceQuote is the input of a price calculation
type PriceQuote struct {
	VehicleID        string             `json:"vehicleId"`
	StartDate        time.Time          `json:"startDate"`
	EndDate          time.Time          `json:"endDate"`
	Discount         *domain.Discount   `json:"discount,omitempty"`
	CustomCommission *domain.Commission `json:"customCommission,omitempty"`
	ExtraKmCharge    float64            `json:"extraKmCharge"`
}

type RentalService interface {
	ListRentals(ctx context.Context, actor Actor) ([]domain.Rental, error)
	GetRental(ctx context.Context, actor Actor, id string) (*domain.Rental, error)
	CreateRental(ctx context.Context, actor Actor, rental *domain.Rental) error
	UpdateRental(ctx context.Context, actor Actor, rental *domain.Rental) error
	DeleteRental(ctx context.Context, actor Actor, id string) error
	CalculatePrice(ctx context.Context, actor Actor, quote PriceQuote) (*utils.PriceBreakdown, error)
}

type CustomerService interface {
	ListCustomers(ctx context.Context, actor Actor) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, actor Actor, id string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, actor Actor, customer *domain.Customer) error
	UpdateCustomer(ctx context.Context, actor Actor, customer *domain.Customer) error
	DeleteCustomer(ctx context.Context, actor Actor, id string) error
}

type CompanyService interface {
	ListCompanies(ctx context.Context, actor Actor) ([]domain.Company, error)
	GetCompany(ctx context.Context, actor Actor, id string) (*domain.Company, error)
	CreateCompany(ctx context.Context, actor Actor, company *domain.Company) error
	UpdateCompany(ctx context.Context, actor Actor, company *domain.Company) error
	DeleteCompany(ctx context.Context, actor Actor, id string) error
}

type InsuranceService interface {
	ListInsurers(ctx context.Context, actor Actor) ([]domain.Insurer, error)
	CreateInsurer(ctx context.Context, actor Actor, insurer *domain.Insurer) error
	DeleteInsurer(ctx context.Context, actor Actor, id string) error
	ListInsurances(ctx context.Context, actor Actor) ([]domain.Insurance, error)
	CreateInsurance(ctx context.Context, actor Actor, insurance *domain.Insurance) error
	UpdateInsurance(ctx context.Context, actor Actor, insurance *domain.Insurance) error
	DeleteInsurance(ctx context.Context, actor Actor, id string) error
}

type ExpenseService interface {
	ListExpenses(ctx context.Context, actor Actor) ([]domain.Expense, error)
	CreateExpense(ctx context.Context, actor Actor, expense *domain.Expense) error
	UpdateExpense(ctx context.Context, actor Actor, expense *domain.Expense) error
	DeleteExpense(ctx context.Context, actor Actor, id string) error
	ListCategories(ctx context.Context, actor Actor) ([]domain.ExpenseCategory, error)
	CreateCategory(ctx context.Context, actor Actor, category *domain.ExpenseCategory) error
	DeleteCategory(ctx context.Context, actor Actor, id string) error
	ListRecurring(ctx context.Context, actor Actor) ([]domain.RecurringExpense, error)
	CreateRecurring(ctx context.Context, actor Actor, recurring *domain.RecurringExpense) error
	GenerateRecurring(ctx context.Context, asOf time.Time) (int, error)
}

type LeasingService interface {
	ListLeasings(ctx context.Context, actor Actor) ([]domain.Leasing, error)
	GetLeasing(ctx context.Context, actor Actor, id string) (*domain.Leasing, error)
	CreateLeasing(ctx context.Context, actor Actor, leasing *domain.Leasing) error
	UpdateLeasing(ctx context.Context, actor Actor, leasing *domain.Leasing) error
	DeleteLeasing(ctx context.Context, actor Actor, id string) error
	GetSchedule(ctx context.Context, actor Actor, id string) ([]domain.PaymentScheduleItem, error)
	MarkPaid(ctx context.Context, actor Actor, id string, installments []int, paidDate time.Time) (*domain.Leasing, error)
	UnmarkPaid(ctx context.Context, actor Actor, id string, installment int) (*domain.Leasing, error)
	ListDocuments(ctx context.Context, actor Actor, id string) ([]domain.LeasingDocument, error)
	AddDocument(ctx context.Context, actor Actor, doc *domain.LeasingDocument) error
	DeleteDocument(ctx context.Context, actor Actor, leasingID, documentID string) error
}

type ProtocolService interface {
	CreateHandover(ctx context.Context, actor Actor, protocol *domain.HandoverProtocol) error
	CreateReturn(ctx context.Context, actor Actor, protocol *domain.ReturnProtocol) error
	GetRentalProtocols(ctx context.Context, actor Actor, rentalID string) (*domain.RentalProtocols, error)
	UpdateHandover(ctx context.Context, actor Actor, protocol *domain.HandoverProtocol) error
	UpdateReturn(ctx context.Context, actor Actor, protocol *domain.ReturnProtocol) error
	UploadFile(ctx context.Context, actor Actor, key string, body io.Reader) (string, int64, error)
	OpenFile(ctx context.Context, actor Actor, key string) (io.ReadCloser, error)
}

type SettlementService interface {
	ListSettlements(ctx context.Context, actor Actor) ([]domain.Settlement, error)
	GetSettlement(ctx context.Context, actor Actor, id string) (*domain.Settlement, error)
	CreateSettlement(ctx context.Context, actor Actor, company string, from, to time.Time) (*domain.Settlement, error)
	DeleteSettlement(ctx context.Context, actor Actor, id string) error
}

type EmailStagingService interface {
	StageEmailRental(ctx context.Context, req domain.EmailRentalRequest) (*domain.Rental, error)
	ListPending(ctx context.Context, actor Actor) ([]domain.Rental, error)
	Approve(ctx context.Context, actor Actor, rentalID string) error
	Reject(ctx context.Context, actor Actor, rentalID, reason string) error
	MarkSpam(ctx context.Context, actor Actor, rentalID string) error
	Stats(ctx context.Context, actor Actor) (*domain.ApprovalStats, error)
}

type AvailabilityService interface {
	Calendar(ctx context.Context, actor Actor, from, to time.Time) ([]domain.CalendarDay, error)
}

type BulkDataService interface {
	Load(ctx context.Context, actor Actor) (*domain.BulkData, error)
}

type MaintenanceService interface {
	ResetProtocols(ctx context.Context, actor Actor) (int64, error)
	PurgeStorage(ctx context.Context, actor Actor) (int, error)
}
