package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
	"blackrent-backend/internal/service"
)

func TestMapPaymentMethod(t *testing.T) {
	cases := map[string]domain.PaymentMethod{
		"VRP":               domain.PaymentVRP,
		"Bankový prevod":    domain.PaymentBankTransfer,
		"bank transfer":     domain.PaymentBankTransfer,
		"Priamo majiteľovi": domain.PaymentDirectToOwner,
		"platba majitelovi": domain.PaymentDirectToOwner,
		"direct to owner":   domain.PaymentDirectToOwner,
		"Hotovosť":          domain.PaymentCash,
		"":                  domain.PaymentCash,
	}
	for text, want := range cases {
		assert.Equal(t, want, service.MapPaymentMethod(text), text)
	}
}

type stagingMocks struct {
	rentals   *MockRentalRepo
	vehicles  *MockVehicleRepo
	customers *MockCustomerRepo
	reports   *MockReportRepo
	notifier  *MockNotifier
	users     *MockUserRepo
	companies *MockCompanyRepo
}

func newStagingService() (service.EmailStagingService, stagingMocks) {
	m := stagingMocks{
		rentals:   new(MockRentalRepo),
		vehicles:  new(MockVehicleRepo),
		customers: new(MockCustomerRepo),
		reports:   new(MockReportRepo),
		notifier:  new(MockNotifier),
		users:     new(MockUserRepo),
		companies: new(MockCompanyRepo),
	}
	svc := service.NewEmailStagingService(m.rentals, m.vehicles, m.customers, m.reports, m.notifier,
		[]string{"admin@blackrent.sk"}, service.NewPermissionService(m.users, m.companies))
	return svc, m
}

func TestEmailStagingService_StageEmailRental(t *testing.T) {
	ctx := context.Background()
	req := domain.EmailRentalRequest{
		EmailID:       "msg-42",
		CustomerName:  "Ján Novák",
		CustomerEmail: "jan@example.com",
		VehicleCode:   "BA123AB",
		StartDate:     day("2026-10-10"),
		EndDate:       day("2026-10-13"),
		TotalAmount:   300,
		DailyKm:       200,
		PaymentMethod: "Bankový prevod",
		OrderNumber:   "OBJ-1001",
	}

	t.Run("Success", func(t *testing.T) {
		svc, m := newStagingService()
		m.rentals.On("GetByEmailID", ctx, "msg-42").Return(nil, repository.ErrNotFound)
		m.vehicles.On("GetByLicensePlate", ctx, "BA123AB").Return(&domain.Vehicle{
			ID:         "v1",
			Company:    "Marko",
			Commission: domain.Commission{Type: domain.CommissionPercentage, Value: 10},
		}, nil)
		m.customers.On("GetByEmail", ctx, "jan@example.com").Return(&domain.Customer{ID: "cust-1"}, nil)
		m.rentals.On("CreateStaged", ctx, mock.AnythingOfType("*domain.Rental")).
			Run(func(args mock.Arguments) { args.Get(1).(*domain.Rental).ID = "r1" }).
			Return(nil)
		// admin notification failures do not fail staging
		m.notifier.On("Send", ctx, []string{"admin@blackrent.sk"}, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		rental, err := svc.StageEmailRental(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, "r1", rental.ID)
		assert.Equal(t, "v1", *rental.VehicleID)
		assert.Equal(t, "cust-1", *rental.CustomerID)
		assert.Equal(t, "Marko", rental.Company)
		assert.Equal(t, 30.0, rental.Commission)
		assert.Equal(t, 600, rental.AllowedKilometers)
		assert.Equal(t, domain.PaymentBankTransfer, rental.PaymentMethod)
		assert.Equal(t, domain.RentalStatusPending, rental.Status)
		assert.Equal(t, domain.ApprovalPending, rental.ApprovalStatus)
		assert.Equal(t, domain.SourceEmailAuto, rental.SourceType)
		m.notifier.AssertExpectations(t)
	})

	t.Run("Already staged", func(t *testing.T) {
		svc, m := newStagingService()
		m.rentals.On("GetByEmailID", ctx, "msg-42").Return(&domain.Rental{ID: "r0"}, nil)

		_, err := svc.StageEmailRental(ctx, req)
		assert.ErrorIs(t, err, service.ErrEmailAlreadyStaged)
		m.rentals.AssertNotCalled(t, "CreateStaged", mock.Anything, mock.Anything)
	})

	t.Run("Unknown vehicle is staged without one", func(t *testing.T) {
		svc, m := newStagingService()
		m.rentals.On("GetByEmailID", ctx, "msg-42").Return(nil, repository.ErrNotFound)
		m.vehicles.On("GetByLicensePlate", ctx, "BA123AB").Return(nil, repository.ErrNotFound)
		m.customers.On("GetByEmail", ctx, "jan@example.com").Return(nil, repository.ErrNotFound)
		m.rentals.On("CreateStaged", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)
		m.notifier.On("Send", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		rental, err := svc.StageEmailRental(ctx, req)
		require.NoError(t, err)
		assert.Nil(t, rental.VehicleID)
		assert.Nil(t, rental.CustomerID)
		assert.Zero(t, rental.Commission)
	})

	t.Run("Missing e-mail id", func(t *testing.T) {
		svc, _ := newStagingService()
		bad := req
		bad.EmailID = "  "
		_, err := svc.StageEmailRental(ctx, bad)
		assert.ErrorIs(t, err, service.ErrValidation)
	})
}

func TestEmailStagingService_Decisions(t *testing.T) {
	ctx := context.Background()

	t.Run("Approve notifies the customer", func(t *testing.T) {
		svc, m := newStagingService()
		m.rentals.On("Decide", ctx, "r1", domain.ApprovalApproved, domain.RentalStatusConfirmed, "admin", "").Return(nil)
		m.rentals.On("GetByID", ctx, "r1").Return(&domain.Rental{
			ID:            "r1",
			CustomerName:  "Ján",
			CustomerEmail: "jan@example.com",
			StartDate:     day("2026-10-10"),
			EndDate:       day("2026-10-13"),
		}, nil)
		m.notifier.On("Send", ctx, []string{"jan@example.com"}, "Potvrdenie rezervácie", mock.Anything).Return(nil)

		require.NoError(t, svc.Approve(ctx, admin, "r1"))
		m.notifier.AssertExpectations(t)
	})

	t.Run("Approve twice", func(t *testing.T) {
		svc, m := newStagingService()
		m.rentals.On("Decide", ctx, "r1", domain.ApprovalApproved, domain.RentalStatusConfirmed, "admin", "").
			Return(repository.ErrAlreadyDecided)

		err := svc.Approve(ctx, admin, "r1")
		assert.ErrorIs(t, err, service.ErrAlreadyDecided)
		m.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Reject requires a reason", func(t *testing.T) {
		svc, m := newStagingService()
		err := svc.Reject(ctx, admin, "r1", " ")
		assert.ErrorIs(t, err, service.ErrValidation)
		m.rentals.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Mark spam", func(t *testing.T) {
		svc, m := newStagingService()
		m.rentals.On("Decide", ctx, "r1", domain.ApprovalSpam, domain.RentalStatusCancelled, "admin", "spam").Return(nil)
		require.NoError(t, svc.MarkSpam(ctx, admin, "r1"))
		m.rentals.AssertExpectations(t)
	})

	t.Run("Company owner cannot decide", func(t *testing.T) {
		svc, _ := newStagingService()
		err := svc.Approve(ctx, service.Actor{UserID: "o1", Role: domain.RoleCompanyOwner}, "r1")
		assert.ErrorIs(t, err, service.ErrForbidden)
	})
}

func TestEmailStagingService_Stats(t *testing.T) {
	ctx := context.Background()
	svc, m := newStagingService()
	m.reports.On("ApprovalStats", ctx).Return(&domain.ApprovalStats{Pending: 3, Approved: 10, Rejected: 1, Spam: 2}, nil)

	stats, err := svc.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Pending)
	assert.Equal(t, 2, stats.Spam)
}

func TestEmailStagingService_ApproveNotifyFailure(t *testing.T) {
	ctx := context.Background()
	svc, m := newStagingService()
	m.rentals.On("Decide", ctx, "r1", domain.ApprovalApproved, domain.RentalStatusConfirmed, "admin", "").Return(nil)
	m.rentals.On("GetByID", ctx, "r1").Return(&domain.Rental{
		ID: "r1", CustomerName: "Ján", CustomerEmail: "jan@example.com", StartDate: day("2026-10-10"), EndDate: day("2026-10-13"),
	}, nil)
	m.notifier.On("Send", ctx, []string{"jan@example.com"}, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	assert.NoError(t, svc.Approve(ctx, admin, "r1"))
	m.notifier.AssertExpectations(t)
}

func TestEmailStagingService_ScopedToCompany(t *testing.T) {
	ctx := context.Background()
	employee := service.Actor{UserID: "u1", Username: "jana", Role: domain.RoleEmployee, CompanyID: strPtr("c1")}

	setup := func() (service.EmailStagingService, stagingMocks) {
		svc, m := newStagingService()
		m.users.On("GetPermissions", ctx, "u1").Return([]domain.UserPermission{}, nil)
		m.companies.On("GetByID", ctx, "c1").Return(&domain.Company{ID: "c1", Name: "Marko"}, nil)
		return svc, m
	}

	t.Run("Pending list shows own company only", func(t *testing.T) {
		svc, m := setup()
		m.rentals.On("ListPendingApproval", ctx).Return([]domain.Rental{
			{ID: "r1", Company: "Marko"},
			{ID: "r2", Company: "Competitor"},
			{ID: "r3"},
			{ID: "r4", VehicleID: strPtr("v1")},
		}, nil)
		m.vehicles.On("GetByID", ctx, "v1").Return(&domain.Vehicle{ID: "v1", OwnerCompanyID: strPtr("c1")}, nil)

		pending, err := svc.ListPending(ctx, employee)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, "r1", pending[0].ID)
		assert.Equal(t, "r4", pending[1].ID)
	})

	t.Run("Admin sees every pending rental", func(t *testing.T) {
		svc, m := setup()
		m.rentals.On("ListPendingApproval", ctx).Return([]domain.Rental{{ID: "r2", Company: "Competitor"}, {ID: "r3"}}, nil)

		pending, err := svc.ListPending(ctx, admin)
		require.NoError(t, err)
		assert.Len(t, pending, 2)
	})

	t.Run("Deciding a foreign rental is forbidden", func(t *testing.T) {
		svc, m := setup()
		m.rentals.On("GetByID", ctx, "r2").Return(&domain.Rental{ID: "r2", Company: "Competitor"}, nil)

		err := svc.MarkSpam(ctx, employee, "r2")
		assert.ErrorIs(t, err, service.ErrForbidden)
		m.rentals.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Deciding an own rental", func(t *testing.T) {
		svc, m := setup()
		m.rentals.On("GetByID", ctx, "r1").Return(&domain.Rental{ID: "r1", Company: "Marko"}, nil)
		m.rentals.On("Decide", ctx, "r1", domain.ApprovalRejected, domain.RentalStatusCancelled, "jana", "duplicita").Return(nil)

		require.NoError(t, svc.Reject(ctx, employee, "r1", "duplicita"))
		m.rentals.AssertExpectations(t)
	})
}
