package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/service"
)

func newLeasing() *domain.Leasing {
	return &domain.Leasing{
		VehicleID:         "v1",
		LeasingCompany:    "ČSOB Leasing",
		LoanCategory:      domain.LoanCarLoan,
		InitialLoanAmount: 12000,
		InterestRate:      6,
		TotalInstallments: 12,
		FirstPaymentDate:  day("2026-11-15"),
		MonthlyFee:        10,
	}
}

func TestLeasingService(t *testing.T) {
	ctx := context.Background()
	employee := service.Actor{UserID: "u1", Role: domain.RoleEmployee, CompanyID: strPtr("c1")}

	setup := func() (service.LeasingService, *MockLeasingRepo, *MockVehicleRepo) {
		leasingRepo := new(MockLeasingRepo)
		vehicleRepo := new(MockVehicleRepo)
		userRepo := new(MockUserRepo)
		companyRepo := new(MockCompanyRepo)

		userRepo.On("GetPermissions", ctx, "u1").Return([]domain.UserPermission{}, nil)
		companyRepo.On("GetByID", ctx, "c1").Return(&domain.Company{ID: "c1", Name: "Marko"}, nil)
		vehicleRepo.On("GetByID", ctx, "v1").Return(&domain.Vehicle{ID: "v1", Company: "Marko"}, nil)
		vehicleRepo.On("GetByID", ctx, "v9").Return(&domain.Vehicle{ID: "v9", Company: "Competitor"}, nil)

		perms := service.NewPermissionService(userRepo, companyRepo)
		return service.NewLeasingService(leasingRepo, vehicleRepo, perms), leasingRepo, vehicleRepo
	}

	t.Run("Create builds the schedule", func(t *testing.T) {
		svc, leasingRepo, _ := setup()
		leasingRepo.On("Create", ctx, mock.AnythingOfType("*domain.Leasing"),
			mock.MatchedBy(func(items []domain.PaymentScheduleItem) bool {
				return len(items) == 12 && items[11].RemainingBalance == 0
			})).Return(nil)

		l := newLeasing()
		err := svc.CreateLeasing(ctx, employee, l)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentAnnuity, l.PaymentType)
		assert.Equal(t, domain.PenaltyPercentPrincipal, l.PenaltyType)
		assert.Equal(t, 1032.8, l.MonthlyPayment)
		assert.Equal(t, 1042.8, l.TotalMonthlyPayment)
		leasingRepo.AssertExpectations(t)
	})

	t.Run("Create on a foreign vehicle is forbidden", func(t *testing.T) {
		svc, leasingRepo, _ := setup()
		l := newLeasing()
		l.VehicleID = "v9"

		err := svc.CreateLeasing(ctx, employee, l)
		assert.ErrorIs(t, err, service.ErrForbidden)
		leasingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Create rejects unknown loan category", func(t *testing.T) {
		svc, _, _ := setup()
		l := newLeasing()
		l.LoanCategory = "hypotéka"

		err := svc.CreateLeasing(ctx, employee, l)
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("List keeps leasings of visible vehicles", func(t *testing.T) {
		svc, leasingRepo, vehicleRepo := setup()
		leasingRepo.On("List", ctx).Return([]domain.Leasing{
			{ID: "l1", VehicleID: "v1"}, {ID: "l2", VehicleID: "v9"}, {ID: "l3", VehicleID: "gone"},
		}, nil)
		vehicleRepo.On("List", ctx, true, true).Return([]domain.Vehicle{
			{ID: "v1", Company: "Marko"}, {ID: "v9", Company: "Competitor"},
		}, nil)

		leasings, err := svc.ListLeasings(ctx, employee)
		require.NoError(t, err)
		require.Len(t, leasings, 1)
		assert.Equal(t, "l1", leasings[0].ID)
	})

	t.Run("Update keeps the schedule when terms are unchanged", func(t *testing.T) {
		svc, leasingRepo, _ := setup()
		existing := newLeasing()
		existing.ID = "l1"
		existing.PaymentType = domain.PaymentAnnuity
		existing.PaidInstallments = 2
		existing.RemainingInstallments = 10
		existing.CurrentBalance = 9934.45
		leasingRepo.On("GetByID", ctx, "l1").Return(existing, nil)
		leasingRepo.On("Update", ctx, mock.AnythingOfType("*domain.Leasing"), []domain.PaymentScheduleItem(nil)).Return(nil)

		l := newLeasing()
		l.ID = "l1"
		l.LeasingCompany = "VÚB Leasing"
		err := svc.UpdateLeasing(ctx, employee, l)
		require.NoError(t, err)
		assert.Equal(t, 2, l.PaidInstallments)
		assert.Equal(t, 9934.45, l.CurrentBalance)
		leasingRepo.AssertExpectations(t)
	})

	t.Run("Update of terms after payments is rejected", func(t *testing.T) {
		svc, leasingRepo, _ := setup()
		existing := newLeasing()
		existing.ID = "l1"
		existing.PaidInstallments = 1
		leasingRepo.On("GetByID", ctx, "l1").Return(existing, nil)

		l := newLeasing()
		l.ID = "l1"
		l.InterestRate = 4.5
		err := svc.UpdateLeasing(ctx, employee, l)
		assert.ErrorIs(t, err, service.ErrValidation)
		leasingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Update of terms before payments rebuilds the schedule", func(t *testing.T) {
		svc, leasingRepo, _ := setup()
		existing := newLeasing()
		existing.ID = "l1"
		leasingRepo.On("GetByID", ctx, "l1").Return(existing, nil)
		leasingRepo.On("Update", ctx, mock.AnythingOfType("*domain.Leasing"),
			mock.MatchedBy(func(items []domain.PaymentScheduleItem) bool { return len(items) == 24 })).Return(nil)

		l := newLeasing()
		l.ID = "l1"
		l.TotalInstallments = 24
		require.NoError(t, svc.UpdateLeasing(ctx, employee, l))
		assert.Equal(t, 24, l.RemainingInstallments)
		assert.Equal(t, 12000.0, l.CurrentBalance)
	})

	t.Run("Bulk pay sorts and de-duplicates", func(t *testing.T) {
		svc, leasingRepo, _ := setup()
		paid := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
		updated := &domain.Leasing{ID: "l1", VehicleID: "v1", PaidInstallments: 2}
		leasingRepo.On("GetByID", ctx, "l1").Return(updated, nil)
		leasingRepo.On("SetPaid", ctx, "l1", []int{1, 3}, &paid).Return(nil)

		l, err := svc.MarkPaid(ctx, employee, "l1", []int{3, 1, 3}, time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, 2, l.PaidInstallments)
		leasingRepo.AssertExpectations(t)
	})

	t.Run("Bulk pay rejects empty and invalid numbers", func(t *testing.T) {
		svc, leasingRepo, _ := setup()
		leasingRepo.On("GetByID", ctx, "l1").Return(&domain.Leasing{ID: "l1", VehicleID: "v1"}, nil)

		_, err := svc.MarkPaid(ctx, employee, "l1", nil, time.Time{})
		assert.ErrorIs(t, err, service.ErrValidation)
		_, err = svc.MarkPaid(ctx, employee, "l1", []int{0}, time.Time{})
		assert.ErrorIs(t, err, service.ErrValidation)
		leasingRepo.AssertNotCalled(t, "SetPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unmark passes no paid date", func(t *testing.T) {
		svc, leasingRepo, _ := setup()
		leasingRepo.On("GetByID", ctx, "l1").Return(&domain.Leasing{ID: "l1", VehicleID: "v1"}, nil)
		leasingRepo.On("SetPaid", ctx, "l1", []int{4}, (*time.Time)(nil)).Return(nil)

		_, err := svc.UnmarkPaid(ctx, employee, "l1", 4)
		require.NoError(t, err)
		leasingRepo.AssertExpectations(t)
	})

	t.Run("Foreign leasing is hidden from the schedule", func(t *testing.T) {
		svc, leasingRepo, _ := setup()
		leasingRepo.On("GetByID", ctx, "l2").Return(&domain.Leasing{ID: "l2", VehicleID: "v9"}, nil)

		_, err := svc.GetSchedule(ctx, employee, "l2")
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("Employees cannot delete", func(t *testing.T) {
		svc, leasingRepo, _ := setup()
		leasingRepo.On("GetByID", ctx, "l1").Return(&domain.Leasing{ID: "l1", VehicleID: "v1"}, nil)

		err := svc.DeleteLeasing(ctx, employee, "l1")
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("Document defaults to other", func(t *testing.T) {
		svc, leasingRepo, _ := setup()
		leasingRepo.On("GetByID", ctx, "l1").Return(&domain.Leasing{ID: "l1", VehicleID: "v1"}, nil)
		leasingRepo.On("AddDocument", ctx, mock.AnythingOfType("*domain.LeasingDocument")).Return(nil)

		doc := &domain.LeasingDocument{LeasingID: "l1", FileName: "zmluva.pdf", FileURL: "leasings/l1/zmluva.pdf"}
		require.NoError(t, svc.AddDocument(ctx, admin, doc))
		assert.Equal(t, domain.LeasingDocOther, doc.Type)
	})
}
