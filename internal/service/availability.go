package service

import (
	"context"
	"time"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
)

// MaxCalendarDays bounds the availability calendar range
const MaxCalendarDays = 92

type availabilityService struct {
	reportRepo  repository.ReportRepository
	vehicleRepo repository.VehicleRepository
	perms       PermissionService
}

func NewAvailabilityService(reportRepo repository.ReportRepository, vehicleRepo repository.VehicleRepository, perms PermissionService) AvailabilityService {
	return &availabilityService{reportRepo: reportRepo, vehicleRepo: vehicleRepo, perms: perms}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type calendarVehicle struct {
	id    string
	plate string
	spans []repository.VehicleSpan
}

func (s *availabilityService) Calendar(ctx context.Context, actor Actor, from, to time.Time) ([]domain.CalendarDay, error) {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceVehicles), string(config.ActionRead))
	if err != nil {
		return nil, err
	}
	from, to = dateOnly(from), dateOnly(to)
	if to.Before(from) {
		return nil, invalid("Dátum 'do' musí byť po dátume 'od'")
	}
	if int(to.Sub(from).Hours()/24)+1 > MaxCalendarDays {
		return nil, ErrRangeTooLarge
	}

	// the last day is inclusive, so rentals starting any time on it count
	spans, err := s.reportRepo.CalendarSpans(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	var allowed map[string]*domain.Vehicle
	if !scope.All() {
		if allowed, err = vehicleIndex(ctx, s.vehicleRepo); err != nil {
			return nil, err
		}
	}

	// spans arrive ordered by vehicle, one row per overlapping rental
	var vehicles []*calendarVehicle
	byID := map[string]*calendarVehicle{}
	for _, span := range spans {
		if allowed != nil {
			v, ok := allowed[span.VehicleID]
			if !ok || !scope.AllowsVehicle(v) {
				continue
			}
		}
		cv, ok := byID[span.VehicleID]
		if !ok {
			cv = &calendarVehicle{id: span.VehicleID, plate: span.LicensePlate}
			byID[span.VehicleID] = cv
			vehicles = append(vehicles, cv)
		}
		if span.RentalID != nil && span.StartDate != nil && span.EndDate != nil {
			cv.spans = append(cv.spans, span)
		}
	}

	days := make([]domain.CalendarDay, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		day := domain.CalendarDay{Date: d.Format("2006-01-02"), Vehicles: make([]domain.VehicleDay, 0, len(vehicles))}
		for _, cv := range vehicles {
			day.Vehicles = append(day.Vehicles, vehicleDay(cv, d))
		}
		days = append(days, day)
	}
	return days, nil
}

func vehicleDay(cv *calendarVehicle, d time.Time) domain.VehicleDay {
	vd := domain.VehicleDay{VehicleID: cv.id, LicensePlate: cv.plate, Status: domain.DayAvailable}
	for _, span := range cv.spans {
		if d.Before(dateOnly(*span.StartDate)) || d.After(dateOnly(*span.EndDate)) {
			continue
		}
		vd.RentalID = span.RentalID
		if span.CustomerName != nil {
			vd.CustomerName = *span.CustomerName
		}
		if span.IsFlexible != nil && *span.IsFlexible {
			vd.Status = domain.DayFlexible
			continue
		}
		// a fixed rental wins over a flexible one on the same day
		vd.Status = domain.DayRented
		break
	}
	return vd
}
