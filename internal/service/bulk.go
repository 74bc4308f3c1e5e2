package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"blackrent-backend/internal/domain"
)

type bulkDataService struct {
	vehicles    VehicleService
	rentals     RentalService
	customers   CustomerService
	companies   CompanyService
	insurances  InsuranceService
	expenses    ExpenseService
	settlements SettlementService
}

func NewBulkDataService(
	vehicles VehicleService,
	rentals RentalService,
	customers CustomerService,
	companies CompanyService,
	insurances InsuranceService,
	expenses ExpenseService,
	settlements SettlementService,
) BulkDataService {
	return &bulkDataService{
		vehicles:    vehicles,
		rentals:     rentals,
		customers:   customers,
		companies:   companies,
		insurances:  insurances,
		expenses:    expenses,
		settlements: settlements,
	}
}

// load runs fn and stores its result. Collections the caller may not read
// come back empty instead of failing the whole payload.
func load[T any](dst *[]T, fn func() ([]T, error)) func() error {
	return func() error {
		items, err := fn()
		if errors.Is(err, ErrForbidden) {
			*dst = []T{}
			return nil
		}
		if err != nil {
			return err
		}
		if items == nil {
			items = []T{}
		}
		*dst = items
		return nil
	}
}

func (s *bulkDataService) Load(ctx context.Context, actor Actor) (*domain.BulkData, error) {
	var data domain.BulkData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(load(&data.Vehicles, func() ([]domain.Vehicle, error) { return s.vehicles.ListVehicles(ctx, actor, false, false) }))
	g.Go(load(&data.Rentals, func() ([]domain.Rental, error) { return s.rentals.ListRentals(ctx, actor) }))
	g.Go(load(&data.Customers, func() ([]domain.Customer, error) { return s.customers.ListCustomers(ctx, actor) }))
	g.Go(load(&data.Companies, func() ([]domain.Company, error) { return s.companies.ListCompanies(ctx, actor) }))
	g.Go(load(&data.Insurers, func() ([]domain.Insurer, error) { return s.insurances.ListInsurers(ctx, actor) }))
	g.Go(load(&data.ExpenseCategories, func() ([]domain.ExpenseCategory, error) { return s.expenses.ListCategories(ctx, actor) }))
	g.Go(load(&data.Expenses, func() ([]domain.Expense, error) { return s.expenses.ListExpenses(ctx, actor) }))
	g.Go(load(&data.Insurances, func() ([]domain.Insurance, error) { return s.insurances.ListInsurances(ctx, actor) }))
	g.Go(load(&data.Settlements, func() ([]domain.Settlement, error) { return s.settlements.ListSettlements(ctx, actor) }))

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}
