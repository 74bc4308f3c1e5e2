package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository"
)

const expenseColumns = `id, description, amount, date, vehicle_id, company, category, note`

type expenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) repository.ExpenseRepository {
	return &expenseRepository{db: db}
}

func scanExpense(row rowScanner) (*domain.Expense, error) {
	var e domain.Expense
	var vehicleID, note sql.NullString
	if err := row.Scan(&e.ID, &e.Description, &e.Amount, &e.Date, &vehicleID, &e.Company, &e.Category, &note); err != nil {
		return nil, err
	}
	e.VehicleID = stringPtr(vehicleID)
	e.Note = note.String
	return &e, nil
}

func (r *expenseRepository) queryExpenses(ctx context.Context, query string, args ...interface{}) ([]domain.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

func (r *expenseRepository) List(ctx context.Context) ([]domain.Expense, error) {
	return r.queryExpenses(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY date DESC`)
}

func (r *expenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *expenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	query := `INSERT INTO expenses (` + expenseColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.Description, e.Amount, e.Date, nullStringPtr(e.VehicleID), e.Company, e.Category, nullString(e.Note))
	return err
}

func (r *expenseRepository) Update(ctx context.Context, e *domain.Expense) error {
	query := `UPDATE expenses SET description=$1, amount=$2, date=$3, vehicle_id=$4, company=$5, category=$6, note=$7 WHERE id=$8`
	res, err := r.db.ExecContext(ctx, query, e.Description, e.Amount, e.Date, nullStringPtr(e.VehicleID), e.Company, e.Category, nullString(e.Note), e.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *expenseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *expenseRepository) ListForSettlement(ctx context.Context, company string, from, to time.Time) ([]domain.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE company = $1 AND date >= $2 AND date <= $3 ORDER BY date`,
		company, from, to)
}

func (r *expenseRepository) ListCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, display_name FROM expense_categories ORDER BY display_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.ExpenseCategory{}
	for rows.Next() {
		var c domain.ExpenseCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.DisplayName); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *expenseRepository) CreateCategory(ctx context.Context, c *domain.ExpenseCategory) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO expense_categories (id, name, display_name) VALUES ($1, $2, $3)`, c.ID, c.Name, c.DisplayName)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *expenseRepository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expense_categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const recurringColumns = `id, description, amount, category, company, vehicle_id, frequency, next_due_date, day_of_month, is_active`

func scanRecurring(row rowScanner) (*domain.RecurringExpense, error) {
	var re domain.RecurringExpense
	var vehicleID sql.NullString
	err := row.Scan(&re.ID, &re.Description, &re.Amount, &re.Category, &re.Company, &vehicleID, &re.Frequency, &re.NextDueDate, &re.DayOfMonth, &re.IsActive)
	if err != nil {
		return nil, err
	}
	re.VehicleID = stringPtr(vehicleID)
	return &re, nil
}

func (r *expenseRepository) ListRecurring(ctx context.Context) ([]domain.RecurringExpense, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+recurringColumns+` FROM recurring_expenses ORDER BY next_due_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.RecurringExpense{}
	for rows.Next() {
		re, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *re)
	}
	return list, rows.Err()
}

func (r *expenseRepository) CreateRecurring(ctx context.Context, re *domain.RecurringExpense) error {
	if re.ID == "" {
		re.ID = uuid.NewString()
	}
	if re.Frequency == "" {
		re.Frequency = domain.RecurringMonthly
	}
	if re.DayOfMonth == 0 {
		re.DayOfMonth = re.NextDueDate.Day()
	}
	query := `INSERT INTO recurring_expenses (` + recurringColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query, re.ID, re.Description, re.Amount, re.Category, re.Company,
		nullStringPtr(re.VehicleID), re.Frequency, re.NextDueDate, re.DayOfMonth, re.IsActive)
	return err
}

// GenerateRecurring materialises due recurring expenses in one transaction.
// A template overdue by several periods produces one expense per missed period.
func (r *expenseRepository) GenerateRecurring(ctx context.Context, asOf time.Time) (int, error) {
	created := 0
	err := ExecuteTransaction(ctx, r.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT `+recurringColumns+` FROM recurring_expenses WHERE is_active = TRUE AND next_due_date <= $1 FOR UPDATE`, asOf)
		if err != nil {
			return err
		}
		var due []domain.RecurringExpense
		for rows.Next() {
			re, err := scanRecurring(rows)
			if err != nil {
				rows.Close()
				return err
			}
			due = append(due, *re)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, re := range due {
			next := re.NextDueDate
			for !next.After(asOf) {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO expenses (`+expenseColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
					uuid.NewString(), re.Description, re.Amount, next, nullStringPtr(re.VehicleID), re.Company, re.Category,
					nullString("Automaticky generovaný pravidelný náklad"))
				if err != nil {
					return err
				}
				created++
				next = re.Frequency.Next(next, re.DayOfMonth)
			}
			if _, err := tx.ExecContext(ctx, `UPDATE recurring_expenses SET next_due_date = $1 WHERE id = $2`, next, re.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info("Generated recurring expenses", "count", created, "as_of", asOf.Format("2006-01-02"))
	return created, nil
}
