package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository"
)

type settlementService struct {
	settlementRepo repository.SettlementRepository
	rentalRepo     repository.RentalRepository
	expenseRepo    repository.ExpenseRepository
	perms          PermissionService
}

func NewSettlementService(
	settlementRepo repository.SettlementRepository,
	rentalRepo repository.RentalRepository,
	expenseRepo repository.ExpenseRepository,
	perms PermissionService,
) SettlementService {
	return &settlementService{
		settlementRepo: settlementRepo,
		rentalRepo:     rentalRepo,
		expenseRepo:    expenseRepo,
		perms:          perms,
	}
}

func (s *settlementService) ListSettlements(ctx context.Context, actor Actor) ([]domain.Settlement, error) {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceSettlements), string(config.ActionRead))
	if err != nil {
		return nil, err
	}
	settlements, err := s.settlementRepo.List(ctx)
	if err != nil || scope.All() {
		return settlements, err
	}
	filtered := make([]domain.Settlement, 0, len(settlements))
	for _, st := range settlements {
		if scope.Allows(nil, st.Company) {
			filtered = append(filtered, st)
		}
	}
	return filtered, nil
}

func (s *settlementService) GetSettlement(ctx context.Context, actor Actor, id string) (*domain.Settlement, error) {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceSettlements), string(config.ActionRead))
	if err != nil {
		return nil, err
	}
	st, err := s.settlementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(nil, st.Company) {
		return nil, ErrForbidden
	}
	return st, nil
}

// CreateSettlement computes and stores the settlement of company for the
// inclusive period [from, to]. Totals are never recomputed afterwards.
func (s *settlementService) CreateSettlement(ctx context.Context, actor Actor, company string, from, to time.Time) (*domain.Settlement, error) {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceSettlements), string(config.ActionWrite))
	if err != nil {
		return nil, err
	}
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, invalid("Firma je povinná")
	}
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, invalid("Neplatné obdobie vyúčtovania")
	}
	if !scope.Allows(nil, company) {
		return nil, ErrForbidden
	}

	rentals, err := s.rentalRepo.ListForSettlement(ctx, company, from, to)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.ListForSettlement(ctx, company, from, to)
	if err != nil {
		return nil, err
	}

	st := ComputeSettlement(company, from, to, rentals, expenses)
	if err := s.settlementRepo.Create(ctx, st); err != nil {
		return nil, err
	}
	logger.Info("Settlement created",
		"settlement_id", st.ID,
		"company", company,
		"rentals", len(st.RentalIDs),
		"expenses", len(st.ExpenseIDs),
		"profit", st.Profit,
		"user_id", actor.UserID,
	)
	return st, nil
}

func (s *settlementService) DeleteSettlement(ctx context.Context, actor Actor, id string) error {
	if err := s.perms.Authorize(actor, string(config.ResourceSettlements), string(config.ActionDelete)); err != nil {
		return err
	}
	return s.settlementRepo.Delete(ctx, id)
}

// ComputeSettlement totals rentals and expenses of one company.
//
// Income counts only money received by the rental company (cash, bank
// transfer, VRP). Commission is owed on every rental; for direct-to-owner
// rentals it is collected back from the owner's share.
func ComputeSettlement(company string, from, to time.Time, rentals []domain.Rental, expenses []domain.Expense) *domain.Settlement {
	income := decimal.Zero
	receivedCommission := decimal.Zero
	directCommission := decimal.Zero
	rentalIDs := make([]string, 0, len(rentals))

	for _, r := range rentals {
		rentalIDs = append(rentalIDs, r.ID)
		commission := decimal.NewFromFloat(r.Commission)
		if r.PaymentMethod.IsReceived() {
			income = income.Add(decimal.NewFromFloat(r.TotalPrice))
			receivedCommission = receivedCommission.Add(commission)
		} else {
			directCommission = directCommission.Add(commission)
		}
	}

	totalExpenses := decimal.Zero
	expenseIDs := make([]string, 0, len(expenses))
	for _, e := range expenses {
		expenseIDs = append(expenseIDs, e.ID)
		totalExpenses = totalExpenses.Add(decimal.NewFromFloat(e.Amount))
	}

	income = income.Round(2)
	totalExpenses = totalExpenses.Round(2)
	totalCommission := receivedCommission.Add(directCommission).Round(2)
	toOwner := income.Sub(receivedCommission).Sub(directCommission).Round(2)
	profit := income.Sub(totalExpenses).Sub(totalCommission)

	return &domain.Settlement{
		Company:         company,
		PeriodFrom:      from,
		PeriodTo:        to,
		TotalIncome:     income.InexactFloat64(),
		TotalExpenses:   totalExpenses.InexactFloat64(),
		TotalCommission: totalCommission.InexactFloat64(),
		TotalToOwner:    toOwner.InexactFloat64(),
		Profit:          profit.InexactFloat64(),
		RentalIDs:       rentalIDs,
		ExpenseIDs:      expenseIDs,
	}
}
