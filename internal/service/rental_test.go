package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
	"blackrent-backend/internal/service"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRentalService_CreateRental(t *testing.T) {
	ctx := context.Background()
	vehicle := &domain.Vehicle{
		ID:      "v1",
		Company: "Marko",
		Pricing: []domain.PricingTier{
			{MinDays: 1, MaxDays: 3, PricePerDay: 50},
			{MinDays: 4, MaxDays: 10, PricePerDay: 40},
		},
		Commission: domain.Commission{Type: domain.CommissionPercentage, Value: 20},
	}

	t.Run("Success prices the rental and links a new customer", func(t *testing.T) {
		rentalRepo := new(MockRentalRepo)
		vehicleRepo := new(MockVehicleRepo)
		customerRepo := new(MockCustomerRepo)
		svc := service.NewRentalService(rentalRepo, vehicleRepo, customerRepo,
			service.NewPermissionService(new(MockUserRepo), new(MockCompanyRepo)))

		vehicleRepo.On("GetByID", ctx, "v1").Return(vehicle, nil)
		customerRepo.On("GetByEmail", ctx, "jan@example.com").Return(nil, repository.ErrNotFound)
		customerRepo.On("Create", ctx, mock.AnythingOfType("*domain.Customer")).
			Run(func(args mock.Arguments) { args.Get(1).(*domain.Customer).ID = "cust-1" }).
			Return(nil)
		rentalRepo.On("Create", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)

		rental := &domain.Rental{
			VehicleID:     strPtr("v1"),
			CustomerName:  "Ján Novák",
			CustomerEmail: "jan@example.com",
			StartDate:     day("2026-10-01"),
			EndDate:       day("2026-10-05"),
		}
		require.NoError(t, svc.CreateRental(ctx, admin, rental))

		assert.Equal(t, 160.0, rental.TotalPrice)
		assert.Equal(t, 32.0, rental.Commission)
		assert.Equal(t, "Marko", rental.Company)
		require.NotNil(t, rental.CustomerID)
		assert.Equal(t, "cust-1", *rental.CustomerID)
		assert.Equal(t, domain.PaymentCash, rental.PaymentMethod)
		assert.Equal(t, domain.RentalStatusPending, rental.Status)
		assert.Equal(t, domain.SourceManual, rental.SourceType)
		assert.Equal(t, domain.ApprovalApproved, rental.ApprovalStatus)
		rentalRepo.AssertExpectations(t)
		customerRepo.AssertExpectations(t)
	})

	t.Run("Explicit price keeps total and derives commission", func(t *testing.T) {
		rentalRepo := new(MockRentalRepo)
		vehicleRepo := new(MockVehicleRepo)
		svc := service.NewRentalService(rentalRepo, vehicleRepo, new(MockCustomerRepo),
			service.NewPermissionService(new(MockUserRepo), new(MockCompanyRepo)))

		vehicleRepo.On("GetByID", ctx, "v1").Return(vehicle, nil)
		rentalRepo.On("Create", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)

		rental := &domain.Rental{
			VehicleID:    strPtr("v1"),
			CustomerName: "Ján Novák",
			StartDate:    day("2026-10-01"),
			EndDate:      day("2026-10-02"),
			TotalPrice:   99.99,
			CustomCommission: &domain.Commission{
				Type:  domain.CommissionFixed,
				Value: 12,
			},
		}
		require.NoError(t, svc.CreateRental(ctx, admin, rental))
		assert.Equal(t, 99.99, rental.TotalPrice)
		assert.Equal(t, 12.0, rental.Commission)
	})

	t.Run("End before start", func(t *testing.T) {
		rentalRepo := new(MockRentalRepo)
		svc := service.NewRentalService(rentalRepo, new(MockVehicleRepo), new(MockCustomerRepo),
			service.NewPermissionService(new(MockUserRepo), new(MockCompanyRepo)))

		err := svc.CreateRental(ctx, admin, &domain.Rental{
			CustomerName: "Ján",
			StartDate:    day("2026-10-05"),
			EndDate:      day("2026-10-01"),
		})
		assert.ErrorIs(t, err, service.ErrValidation)
		rentalRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Vehicle of another company is forbidden", func(t *testing.T) {
		rentalRepo := new(MockRentalRepo)
		vehicleRepo := new(MockVehicleRepo)
		userRepo := new(MockUserRepo)
		companyRepo := new(MockCompanyRepo)
		svc := service.NewRentalService(rentalRepo, vehicleRepo, new(MockCustomerRepo),
			service.NewPermissionService(userRepo, companyRepo))

		userRepo.On("GetPermissions", ctx, "u1").Return([]domain.UserPermission{}, nil)
		companyRepo.On("GetByID", ctx, "c1").Return(&domain.Company{ID: "c1", Name: "Marko"}, nil)
		vehicleRepo.On("GetByID", ctx, "v9").Return(&domain.Vehicle{ID: "v9", Company: "Other", OwnerCompanyID: strPtr("c9")}, nil)

		err := svc.CreateRental(ctx, service.Actor{UserID: "u1", Role: domain.RoleEmployee, CompanyID: strPtr("c1")}, &domain.Rental{
			VehicleID:    strPtr("v9"),
			CustomerName: "Ján",
			StartDate:    day("2026-10-01"),
			EndDate:      day("2026-10-02"),
			TotalPrice:   100,
		})
		assert.ErrorIs(t, err, service.ErrForbidden)
		rentalRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestRentalService_ListRentals_FiltersByScope(t *testing.T) {
	ctx := context.Background()
	rentalRepo := new(MockRentalRepo)
	vehicleRepo := new(MockVehicleRepo)
	userRepo := new(MockUserRepo)
	companyRepo := new(MockCompanyRepo)
	svc := service.NewRentalService(rentalRepo, vehicleRepo, new(MockCustomerRepo),
		service.NewPermissionService(userRepo, companyRepo))

	userRepo.On("GetPermissions", ctx, "u1").Return([]domain.UserPermission{}, nil)
	companyRepo.On("GetByID", ctx, "c1").Return(&domain.Company{ID: "c1", Name: "Marko"}, nil)
	rentalRepo.On("List", ctx).Return([]domain.Rental{
		{ID: "r1", Company: "marko"},
		{ID: "r2", VehicleID: strPtr("v1")},
		{ID: "r3", Company: "Other", VehicleID: strPtr("v2")},
	}, nil)
	vehicleRepo.On("List", ctx, true, true).Return([]domain.Vehicle{
		{ID: "v1", OwnerCompanyID: strPtr("c1")},
		{ID: "v2", Company: "Other"},
	}, nil)

	got, err := svc.ListRentals(ctx, service.Actor{UserID: "u1", Role: domain.RoleEmployee, CompanyID: strPtr("c1")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, "r2", got[1].ID)
}

func TestRentalService_UpdateRental_ScopedToCompany(t *testing.T) {
	ctx := context.Background()
	employee := service.Actor{UserID: "u1", Role: domain.RoleEmployee, CompanyID: strPtr("c1")}
	own := &domain.Vehicle{ID: "v1", Company: "Marko", OwnerCompanyID: strPtr("c1")}
	foreign := &domain.Vehicle{ID: "v9", Company: "Other", OwnerCompanyID: strPtr("c9")}

	setup := func() (service.RentalService, *MockRentalRepo) {
		rentalRepo := new(MockRentalRepo)
		vehicleRepo := new(MockVehicleRepo)
		userRepo := new(MockUserRepo)
		companyRepo := new(MockCompanyRepo)

		userRepo.On("GetPermissions", ctx, "u1").Return([]domain.UserPermission{}, nil)
		companyRepo.On("GetByID", ctx, "c1").Return(&domain.Company{ID: "c1", Name: "Marko"}, nil)
		vehicleRepo.On("GetByID", ctx, "v1").Return(own, nil)
		vehicleRepo.On("GetByID", ctx, "v9").Return(foreign, nil)
		rentalRepo.On("GetByID", ctx, "r1").Return(&domain.Rental{
			ID: "r1", VehicleID: strPtr("v1"), Company: "Marko", CustomerName: "Ján",
			StartDate: day("2026-10-01"), EndDate: day("2026-10-03"), TotalPrice: 100,
		}, nil)

		return service.NewRentalService(rentalRepo, vehicleRepo, new(MockCustomerRepo),
			service.NewPermissionService(userRepo, companyRepo)), rentalRepo
	}

	payload := func(vehicleID, company string) *domain.Rental {
		return &domain.Rental{
			ID: "r1", VehicleID: strPtr(vehicleID), Company: company, CustomerName: "Ján",
			StartDate: day("2026-10-01"), EndDate: day("2026-10-04"), TotalPrice: 120,
		}
	}

	t.Run("Within own company", func(t *testing.T) {
		svc, rentalRepo := setup()
		rentalRepo.On("Update", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)

		require.NoError(t, svc.UpdateRental(ctx, employee, payload("v1", "Marko")))
		rentalRepo.AssertCalled(t, "Update", ctx, mock.AnythingOfType("*domain.Rental"))
	})

	t.Run("Moving to another company is forbidden", func(t *testing.T) {
		svc, rentalRepo := setup()

		err := svc.UpdateRental(ctx, employee, payload("v1", "Competitor"))
		assert.ErrorIs(t, err, service.ErrForbidden)
		rentalRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Moving to a foreign vehicle is forbidden", func(t *testing.T) {
		svc, rentalRepo := setup()

		err := svc.UpdateRental(ctx, employee, payload("v9", "Marko"))
		assert.ErrorIs(t, err, service.ErrForbidden)
		rentalRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Admin may move freely", func(t *testing.T) {
		svc, rentalRepo := setup()
		rentalRepo.On("Update", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)

		assert.NoError(t, svc.UpdateRental(ctx, admin, payload("v9", "Other")))
	})
}
