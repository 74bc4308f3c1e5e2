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

func datePtr(s string) *time.Time {
	d := day(s)
	return &d
}

func boolPtr(b bool) *bool { return &b }

func TestAvailabilityService_Calendar(t *testing.T) {
	ctx := context.Background()
	from, to := day("2026-10-01"), day("2026-10-03")

	reportRepo := new(MockReportRepo)
	svc := service.NewAvailabilityService(reportRepo, new(MockVehicleRepo),
		service.NewPermissionService(new(MockUserRepo), new(MockCompanyRepo)))

	reportRepo.On("CalendarSpans", ctx, from, to.AddDate(0, 0, 1)).Return([]repository.VehicleSpan{
		{VehicleID: "v1", LicensePlate: "BA111AA", RentalID: strPtr("r2"), CustomerName: strPtr("Flexi"),
			StartDate: datePtr("2026-10-01"), EndDate: datePtr("2026-10-03"), IsFlexible: boolPtr(true)},
		{VehicleID: "v1", LicensePlate: "BA111AA", RentalID: strPtr("r1"), CustomerName: strPtr("Ján"),
			StartDate: datePtr("2026-10-02"), EndDate: datePtr("2026-10-02"), IsFlexible: boolPtr(false)},
		{VehicleID: "v2", LicensePlate: "BA222BB"},
	}, nil)

	days, err := svc.Calendar(ctx, admin, from, to)
	require.NoError(t, err)
	require.Len(t, days, 3)

	assert.Equal(t, "2026-10-01", days[0].Date)
	require.Len(t, days[0].Vehicles, 2)
	assert.Equal(t, domain.DayFlexible, days[0].Vehicles[0].Status)
	assert.Equal(t, domain.DayAvailable, days[0].Vehicles[1].Status)
	assert.Nil(t, days[0].Vehicles[1].RentalID)

	rented := days[1].Vehicles[0]
	assert.Equal(t, domain.DayRented, rented.Status)
	assert.Equal(t, "r1", *rented.RentalID)
	assert.Equal(t, "Ján", rented.CustomerName)

	assert.Equal(t, domain.DayFlexible, days[2].Vehicles[0].Status)
	assert.Equal(t, "2026-10-03", days[2].Date)
}

func TestAvailabilityService_CalendarLastDayStartingMidday(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 10, 3, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 5, 18, 0, 0, 0, time.UTC)

	reportRepo := new(MockReportRepo)
	svc := service.NewAvailabilityService(reportRepo, new(MockVehicleRepo),
		service.NewPermissionService(new(MockUserRepo), new(MockCompanyRepo)))

	// the upper bound is exclusive and lies after the whole last day
	reportRepo.On("CalendarSpans", ctx, day("2026-10-01"), day("2026-10-04")).Return([]repository.VehicleSpan{
		{VehicleID: "v1", LicensePlate: "BA111AA", RentalID: strPtr("r1"),
			StartDate: &start, EndDate: &end, IsFlexible: boolPtr(false)},
	}, nil)

	days, err := svc.Calendar(ctx, admin, day("2026-10-01"), day("2026-10-03"))
	require.NoError(t, err)
	require.Len(t, days, 3)

	assert.Equal(t, domain.DayAvailable, days[1].Vehicles[0].Status)
	assert.Equal(t, "2026-10-03", days[2].Date)
	assert.Equal(t, domain.DayRented, days[2].Vehicles[0].Status)
	reportRepo.AssertExpectations(t)
}

func TestAvailabilityService_CalendarRange(t *testing.T) {
	ctx := context.Background()

	t.Run("92 days is the maximum", func(t *testing.T) {
		reportRepo := new(MockReportRepo)
		svc := service.NewAvailabilityService(reportRepo, new(MockVehicleRepo),
			service.NewPermissionService(new(MockUserRepo), new(MockCompanyRepo)))
		reportRepo.On("CalendarSpans", ctx, mock.Anything, mock.Anything).Return([]repository.VehicleSpan{}, nil)

		days, err := svc.Calendar(ctx, admin, day("2026-01-01"), day("2026-04-02"))
		require.NoError(t, err)
		assert.Len(t, days, service.MaxCalendarDays)
	})

	t.Run("Too large", func(t *testing.T) {
		reportRepo := new(MockReportRepo)
		svc := service.NewAvailabilityService(reportRepo, new(MockVehicleRepo),
			service.NewPermissionService(new(MockUserRepo), new(MockCompanyRepo)))

		_, err := svc.Calendar(ctx, admin, day("2026-01-01"), day("2026-04-03"))
		assert.ErrorIs(t, err, service.ErrRangeTooLarge)
		reportRepo.AssertNotCalled(t, "CalendarSpans", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Reversed range", func(t *testing.T) {
		svc := service.NewAvailabilityService(new(MockReportRepo), new(MockVehicleRepo),
			service.NewPermissionService(new(MockUserRepo), new(MockCompanyRepo)))

		_, err := svc.Calendar(ctx, admin, day("2026-01-05"), day("2026-01-01"))
		assert.ErrorIs(t, err, service.ErrValidation)
	})
}
