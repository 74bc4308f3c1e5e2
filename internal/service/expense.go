package service

import (
	"context"
	"strings"
	"time"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
)

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	perms       PermissionService
}

func NewExpenseService(expenseRepo repository.ExpenseRepository, perms PermissionService) ExpenseService {
	return &expenseService{expenseRepo: expenseRepo, perms: perms}
}

func (s *expenseService) ListExpenses(ctx context.Context, actor Actor) ([]domain.Expense, error) {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceExpenses), string(config.ActionRead))
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.List(ctx)
	if err != nil || scope.All() {
		return expenses, err
	}
	return filterExpenses(expenses, scope), nil
}

func (s *expenseService) CreateExpense(ctx context.Context, actor Actor, e *domain.Expense) error {
	if err := s.checkCompany(ctx, actor, e.Company, config.ActionWrite); err != nil {
		return err
	}
	if err := validateExpense(e); err != nil {
		return err
	}
	return s.expenseRepo.Create(ctx, e)
}

func (s *expenseService) UpdateExpense(ctx context.Context, actor Actor, e *domain.Expense) error {
	existing, err := s.expenseRepo.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	if err := s.checkCompany(ctx, actor, existing.Company, config.ActionWrite); err != nil {
		return err
	}
	if err := validateExpense(e); err != nil {
		return err
	}
	// moving an expense to another company needs write access there too
	if !strings.EqualFold(e.Company, existing.Company) {
		if err := s.checkCompany(ctx, actor, e.Company, config.ActionWrite); err != nil {
			return err
		}
	}
	return s.expenseRepo.Update(ctx, e)
}

func (s *expenseService) DeleteExpense(ctx context.Context, actor Actor, id string) error {
	existing, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkCompany(ctx, actor, existing.Company, config.ActionDelete); err != nil {
		return err
	}
	return s.expenseRepo.Delete(ctx, id)
}

func (s *expenseService) ListCategories(ctx context.Context, actor Actor) ([]domain.ExpenseCategory, error) {
	if err := s.perms.Authorize(actor, string(config.ResourceExpenses), string(config.ActionRead)); err != nil {
		return nil, err
	}
	return s.expenseRepo.ListCategories(ctx)
}

func (s *expenseService) CreateCategory(ctx context.Context, actor Actor, c *domain.ExpenseCategory) error {
	if err := s.perms.Authorize(actor, string(config.ResourceExpenses), string(config.ActionWrite)); err != nil {
		return err
	}
	c.Name = strings.ToLower(strings.TrimSpace(c.Name))
	if c.Name == "" {
		return invalid("Názov kategórie je povinný")
	}
	if c.DisplayName == "" {
		c.DisplayName = c.Name
	}
	return s.expenseRepo.CreateCategory(ctx, c)
}

func (s *expenseService) DeleteCategory(ctx context.Context, actor Actor, id string) error {
	if err := s.perms.Authorize(actor, string(config.ResourceExpenses), string(config.ActionDelete)); err != nil {
		return err
	}
	return s.expenseRepo.DeleteCategory(ctx, id)
}

func (s *expenseService) ListRecurring(ctx context.Context, actor Actor) ([]domain.RecurringExpense, error) {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceExpenses), string(config.ActionRead))
	if err != nil {
		return nil, err
	}
	list, err := s.expenseRepo.ListRecurring(ctx)
	if err != nil || scope.All() {
		return list, err
	}
	filtered := make([]domain.RecurringExpense, 0, len(list))
	for _, re := range list {
		if scope.Allows(nil, re.Company) {
			filtered = append(filtered, re)
		}
	}
	return filtered, nil
}

func (s *expenseService) CreateRecurring(ctx context.Context, actor Actor, re *domain.RecurringExpense) error {
	if err := s.checkCompany(ctx, actor, re.Company, config.ActionWrite); err != nil {
		return err
	}
	if strings.TrimSpace(re.Description) == "" || re.Amount <= 0 {
		return invalid("Popis a kladná suma sú povinné")
	}
	switch re.Frequency {
	case "":
		re.Frequency = domain.RecurringMonthly
	case domain.RecurringMonthly, domain.RecurringQuarterly, domain.RecurringYearly:
	default:
		return invalid("Neplatná frekvencia")
	}
	if re.NextDueDate.IsZero() {
		return invalid("Dátum najbližšej splatnosti je povinný")
	}
	if re.DayOfMonth == 0 {
		re.DayOfMonth = re.NextDueDate.Day()
	}
	if re.DayOfMonth < 1 || re.DayOfMonth > 31 {
		return invalid("Deň splatnosti musí byť medzi 1 a 31")
	}
	if re.Category == "" {
		re.Category = "other"
	}
	re.IsActive = true
	return s.expenseRepo.CreateRecurring(ctx, re)
}

func (s *expenseService) GenerateRecurring(ctx context.Context, asOf time.Time) (int, error) {
	return s.expenseRepo.GenerateRecurring(ctx, asOf)
}

func (s *expenseService) checkCompany(ctx context.Context, actor Actor, company string, action config.Action) error {
	scope, err := s.perms.Scope(ctx, actor, string(config.ResourceExpenses), string(action))
	if err != nil {
		return err
	}
	if !scope.Allows(nil, company) {
		return ErrForbidden
	}
	return nil
}

func validateExpense(e *domain.Expense) error {
	e.Description = strings.TrimSpace(e.Description)
	if e.Description == "" {
		return invalid("Popis nákladu je povinný")
	}
	if e.Amount < 0 {
		return invalid("Suma nákladu nemôže byť záporná")
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	if e.Category == "" {
		e.Category = "other"
	}
	return nil
}

func filterExpenses(expenses []domain.Expense, scope *CompanyScope) []domain.Expense {
	filtered := make([]domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if scope.Allows(nil, e.Company) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
