package service_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
	"blackrent-backend/internal/storage"
)

// Mocks embed the repository interface so only the methods a test touches
// need an implementation here.

type MockVehicleRepo struct {
	mock.Mock
	repository.VehicleRepository
}

func (m *MockVehicleRepo) List(ctx context.Context, includeRemoved, includePrivate bool) ([]domain.Vehicle, error) {
	args := m.Called(ctx, includeRemoved, includePrivate)
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) GetByLicensePlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	args := m.Called(ctx, plate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) Create(ctx context.Context, v *domain.Vehicle) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}
func (m *MockVehicleRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockRentalRepo struct {
	mock.Mock
	repository.RentalRepository
}

func (m *MockRentalRepo) List(ctx context.Context) ([]domain.Rental, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) Create(ctx context.Context, r *domain.Rental) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockRentalRepo) Update(ctx context.Context, r *domain.Rental) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockRentalRepo) ListForSettlement(ctx context.Context, company string, from, to time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, company, from, to)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) GetByEmailID(ctx context.Context, emailID string) (*domain.Rental, error) {
	args := m.Called(ctx, emailID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListPendingApproval(ctx context.Context) ([]domain.Rental, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) CreateStaged(ctx context.Context, r *domain.Rental) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockRentalRepo) Decide(ctx context.Context, id string, approval domain.ApprovalStatus, status domain.RentalStatus, decidedBy, reason string) error {
	args := m.Called(ctx, id, approval, status, decidedBy, reason)
	return args.Error(0)
}

type MockCustomerRepo struct {
	mock.Mock
	repository.CustomerRepository
}

func (m *MockCustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

type MockCompanyRepo struct {
	mock.Mock
	repository.CompanyRepository
}

func (m *MockCompanyRepo) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
	repository.UserRepository
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
func (m *MockUserRepo) GetPermissions(ctx context.Context, userID string) ([]domain.UserPermission, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.UserPermission), args.Error(1)
}

type MockExpenseRepo struct {
	mock.Mock
	repository.ExpenseRepository
}

func (m *MockExpenseRepo) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}
func (m *MockExpenseRepo) Update(ctx context.Context, e *domain.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
func (m *MockExpenseRepo) ListForSettlement(ctx context.Context, company string, from, to time.Time) ([]domain.Expense, error) {
	args := m.Called(ctx, company, from, to)
	return args.Get(0).([]domain.Expense), args.Error(1)
}

type MockLeasingRepo struct {
	mock.Mock
	repository.LeasingRepository
}

func (m *MockLeasingRepo) List(ctx context.Context) ([]domain.Leasing, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Leasing), args.Error(1)
}
func (m *MockLeasingRepo) GetByID(ctx context.Context, id string) (*domain.Leasing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Leasing), args.Error(1)
}
func (m *MockLeasingRepo) Create(ctx context.Context, l *domain.Leasing, schedule []domain.PaymentScheduleItem) error {
	args := m.Called(ctx, l, schedule)
	return args.Error(0)
}
func (m *MockLeasingRepo) Update(ctx context.Context, l *domain.Leasing, schedule []domain.PaymentScheduleItem) error {
	args := m.Called(ctx, l, schedule)
	return args.Error(0)
}
func (m *MockLeasingRepo) SetPaid(ctx context.Context, leasingID string, installments []int, paidDate *time.Time) error {
	args := m.Called(ctx, leasingID, installments, paidDate)
	return args.Error(0)
}
func (m *MockLeasingRepo) AddDocument(ctx context.Context, doc *domain.LeasingDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

type MockSettlementRepo struct {
	mock.Mock
	repository.SettlementRepository
}

func (m *MockSettlementRepo) Create(ctx context.Context, s *domain.Settlement) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) CalendarSpans(ctx context.Context, from, to time.Time) ([]repository.VehicleSpan, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]repository.VehicleSpan), args.Error(1)
}
func (m *MockReportRepo) ApprovalStats(ctx context.Context) (*domain.ApprovalStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalStats), args.Error(1)
}

type MockProtocolRepo struct {
	mock.Mock
	repository.ProtocolRepository
}

func (m *MockProtocolRepo) GetHandover(ctx context.Context, id string) (*domain.HandoverProtocol, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HandoverProtocol), args.Error(1)
}
func (m *MockProtocolRepo) CreateReturn(ctx context.Context, p *domain.ReturnProtocol) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockProtocolRepo) UpdateHandover(ctx context.Context, p *domain.HandoverProtocol) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockProtocolRepo) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockFileStore struct {
	mock.Mock
	storage.FileStore
}

func (m *MockFileStore) ReadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, to []string, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }
