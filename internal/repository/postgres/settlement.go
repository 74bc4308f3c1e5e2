package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
)

const settlementColumns = `id, company, period_from, period_to, total_income, total_expenses, total_commission,
	total_to_owner, profit, rental_ids, expense_ids, created_at`

type settlementRepository struct {
	db *sql.DB
}

func NewSettlementRepository(db *sql.DB) repository.SettlementRepository {
	return &settlementRepository{db: db}
}

func scanSettlement(row rowScanner) (*domain.Settlement, error) {
	var s domain.Settlement
	err := row.Scan(&s.ID, &s.Company, &s.PeriodFrom, &s.PeriodTo, &s.TotalIncome, &s.TotalExpenses, &s.TotalCommission,
		&s.TotalToOwner, &s.Profit, pq.Array(&s.RentalIDs), pq.Array(&s.ExpenseIDs), &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if s.RentalIDs == nil {
		s.RentalIDs = []string{}
	}
	if s.ExpenseIDs == nil {
		s.ExpenseIDs = []string{}
	}
	return &s, nil
}

func (r *settlementRepository) List(ctx context.Context) ([]domain.Settlement, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+settlementColumns+` FROM settlements ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settlements := []domain.Settlement{}
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, *s)
	}
	return settlements, rows.Err()
}

func (r *settlementRepository) GetByID(ctx context.Context, id string) (*domain.Settlement, error) {
	s, err := scanSettlement(r.db.QueryRowContext(ctx, `SELECT `+settlementColumns+` FROM settlements WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *settlementRepository) Create(ctx context.Context, s *domain.Settlement) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return ExecuteTransaction(ctx, r.db, func(tx *sql.Tx) error {
		query := `INSERT INTO settlements (id, company, period_from, period_to, total_income, total_expenses, total_commission,
		          total_to_owner, profit, rental_ids, expense_ids)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING created_at`
		return tx.QueryRowContext(ctx, query, s.ID, s.Company, s.PeriodFrom, s.PeriodTo, s.TotalIncome, s.TotalExpenses,
			s.TotalCommission, s.TotalToOwner, s.Profit, pq.Array(s.RentalIDs), pq.Array(s.ExpenseIDs)).Scan(&s.CreatedAt)
	})
}

func (r *settlementRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM settlements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
