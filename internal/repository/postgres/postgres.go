package postgres

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"blackrent-backend/internal/repository"
	"blackrent-backend/internal/repository/cached"
)

// CacheTTLs configures the read-through caches placed in front of the
// frequently listed tables.
type CacheTTLs struct {
	Vehicles    time.Duration
	Rentals     time.Duration
	Customers   time.Duration
	Permissions time.Duration
}

type Store struct {
	db *sql.DB
	repository.VehicleRepository
	repository.RentalRepository
	repository.CustomerRepository
	repository.CompanyRepository
	repository.InsurerRepository
	repository.InsuranceRepository
	repository.ExpenseRepository
	repository.LeasingRepository
	repository.ProtocolRepository
	repository.SettlementRepository
	repository.UserRepository
	repository.ReportRepository

	vehicles  *cached.Vehicles
	rentals   *cached.Rentals
	customers *cached.Customers
	users     *cached.Users
}

func NewStore(db *sql.DB, ttls CacheTTLs) *Store {
	rentals := cached.NewRentals(NewRentalRepository(db), ttls.Rentals)
	vehicles := cached.NewVehicles(NewVehicleRepository(db), ttls.Vehicles, rentals)
	customers := cached.NewCustomers(NewCustomerRepository(db), ttls.Customers)
	users := cached.NewUsers(NewUserRepository(db), ttls.Permissions)

	return &Store{
		db:                   db,
		VehicleRepository:    vehicles,
		RentalRepository:     rentals,
		CustomerRepository:   customers,
		CompanyRepository:    NewCompanyRepository(db),
		InsurerRepository:    NewInsurerRepository(db),
		InsuranceRepository:  NewInsuranceRepository(db),
		ExpenseRepository:    NewExpenseRepository(db),
		LeasingRepository:    NewLeasingRepository(db),
		ProtocolRepository:   cached.NewProtocols(NewProtocolRepository(db), rentals),
		SettlementRepository: NewSettlementRepository(db),
		UserRepository:       users,
		ReportRepository:     NewReportRepository(db),
		vehicles:             vehicles,
		rentals:              rentals,
		customers:            customers,
		users:                users,
	}
}

// DB exposes the pool for jobs that run set-based SQL directly.
func (s *Store) DB() *sql.DB { return s.db }

// InvalidateCaches drops every cached collection. Callers that change tables
// outside the repositories must call it afterwards.
func (s *Store) InvalidateCaches() {
	s.vehicles.Invalidate()
	s.rentals.Invalidate()
	s.customers.Invalidate()
	s.users.Invalidate()
}
