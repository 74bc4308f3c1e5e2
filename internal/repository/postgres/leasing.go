package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository"
)

const leasingColumns = `id, vehicle_id, leasing_company, loan_category, payment_type, initial_loan_amount,
	total_installments, first_payment_date, interest_rate, rpmn, monthly_fee, processing_fee, monthly_payment,
	total_monthly_payment, early_repayment_penalty, early_repayment_penalty_type, acquisition_price_without_vat,
	acquisition_price_with_vat, is_non_deductible, current_balance, paid_installments, remaining_installments,
	last_paid_date, created_at, updated_at`

const scheduleColumns = `id, leasing_id, installment_number, due_date, principal, interest, monthly_fee,
	total_payment, remaining_balance, is_paid, paid_date`

// leasingProgressQuery derives the balance and counters from the schedule.
// The balance is what remained after the latest paid installment.
const leasingProgressQuery = `UPDATE leasings SET
	paid_installments = (SELECT COUNT(*) FROM payment_schedule WHERE leasing_id = $1 AND is_paid),
	remaining_installments = (SELECT COUNT(*) FROM payment_schedule WHERE leasing_id = $1 AND NOT is_paid),
	current_balance = COALESCE((SELECT remaining_balance FROM payment_schedule
		WHERE leasing_id = $1 AND is_paid ORDER BY installment_number DESC LIMIT 1), initial_loan_amount),
	last_paid_date = (SELECT MAX(paid_date) FROM payment_schedule WHERE leasing_id = $1 AND is_paid),
	updated_at = NOW()
	WHERE id = $1`

type leasingRepository struct {
	db *sql.DB
}

func NewLeasingRepository(db *sql.DB) repository.LeasingRepository {
	return &leasingRepository{db: db}
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func scanLeasing(row rowScanner) (*domain.Leasing, error) {
	var l domain.Leasing
	var rpmn, withoutVAT, withVAT sql.NullFloat64
	var lastPaid sql.NullTime
	err := row.Scan(&l.ID, &l.VehicleID, &l.LeasingCompany, &l.LoanCategory, &l.PaymentType, &l.InitialLoanAmount,
		&l.TotalInstallments, &l.FirstPaymentDate, &l.InterestRate, &rpmn, &l.MonthlyFee, &l.ProcessingFee, &l.MonthlyPayment,
		&l.TotalMonthlyPayment, &l.EarlyRepaymentPenalty, &l.PenaltyType, &withoutVAT,
		&withVAT, &l.IsNonDeductible, &l.CurrentBalance, &l.PaidInstallments, &l.RemainingInstallments,
		&lastPaid, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.RPMN = floatPtr(rpmn)
	l.PriceWithoutVAT = floatPtr(withoutVAT)
	l.PriceWithVAT = floatPtr(withVAT)
	l.LastPaidDate = timePtr(lastPaid)
	return &l, nil
}

func (r *leasingRepository) List(ctx context.Context) ([]domain.Leasing, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+leasingColumns+` FROM leasings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leasings := []domain.Leasing{}
	for rows.Next() {
		l, err := scanLeasing(rows)
		if err != nil {
			return nil, err
		}
		leasings = append(leasings, *l)
	}
	return leasings, rows.Err()
}

func (r *leasingRepository) GetByID(ctx context.Context, id string) (*domain.Leasing, error) {
	l, err := scanLeasing(r.db.QueryRowContext(ctx, `SELECT `+leasingColumns+` FROM leasings WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

func (r *leasingRepository) Create(ctx context.Context, l *domain.Leasing, schedule []domain.PaymentScheduleItem) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CurrentBalance = l.InitialLoanAmount
	l.PaidInstallments = 0
	l.RemainingInstallments = len(schedule)
	l.LastPaidDate = nil

	return ExecuteTransaction(ctx, r.db, func(tx *sql.Tx) error {
		query := `INSERT INTO leasings (` + leasingColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, NULL, NOW(), NOW()) RETURNING created_at, updated_at`
		err := tx.QueryRowContext(ctx, query, l.ID, l.VehicleID, l.LeasingCompany, l.LoanCategory, l.PaymentType,
			l.InitialLoanAmount, l.TotalInstallments, l.FirstPaymentDate, l.InterestRate, nullFloat(l.RPMN), l.MonthlyFee,
			l.ProcessingFee, l.MonthlyPayment, l.TotalMonthlyPayment, l.EarlyRepaymentPenalty, l.PenaltyType,
			nullFloat(l.PriceWithoutVAT), nullFloat(l.PriceWithVAT), l.IsNonDeductible, l.CurrentBalance,
			l.PaidInstallments, l.RemainingInstallments).Scan(&l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			return err
		}
		return insertSchedule(ctx, tx, l.ID, schedule)
	})
}

func insertSchedule(ctx context.Context, tx *sql.Tx, leasingID string, schedule []domain.PaymentScheduleItem) error {
	for i := range schedule {
		item := &schedule[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.LeasingID = leasingID
		_, err := tx.ExecContext(ctx, `INSERT INTO payment_schedule (`+scheduleColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			item.ID, leasingID, item.InstallmentNumber, item.DueDate, item.Principal, item.Interest, item.MonthlyFee,
			item.TotalPayment, item.RemainingBalance, item.IsPaid, nullTime(item.PaidDate))
		if err != nil {
			return fmt.Errorf("insert installment %d: %w", item.InstallmentNumber, err)
		}
	}
	return nil
}

func (r *leasingRepository) Update(ctx context.Context, l *domain.Leasing, schedule []domain.PaymentScheduleItem) error {
	return ExecuteTransaction(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE leasings SET vehicle_id=$1, leasing_company=$2, loan_category=$3,
			payment_type=$4, initial_loan_amount=$5, total_installments=$6, first_payment_date=$7, interest_rate=$8,
			rpmn=$9, monthly_fee=$10, processing_fee=$11, monthly_payment=$12, total_monthly_payment=$13,
			early_repayment_penalty=$14, early_repayment_penalty_type=$15, acquisition_price_without_vat=$16,
			acquisition_price_with_vat=$17, is_non_deductible=$18, updated_at=NOW() WHERE id=$19`,
			l.VehicleID, l.LeasingCompany, l.LoanCategory, l.PaymentType, l.InitialLoanAmount, l.TotalInstallments,
			l.FirstPaymentDate, l.InterestRate, nullFloat(l.RPMN), l.MonthlyFee, l.ProcessingFee, l.MonthlyPayment,
			l.TotalMonthlyPayment, l.EarlyRepaymentPenalty, l.PenaltyType, nullFloat(l.PriceWithoutVAT),
			nullFloat(l.PriceWithVAT), l.IsNonDeductible, l.ID)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		if schedule == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM payment_schedule WHERE leasing_id = $1`, l.ID); err != nil {
			return err
		}
		if err := insertSchedule(ctx, tx, l.ID, schedule); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, leasingProgressQuery, l.ID)
		return err
	})
}

func (r *leasingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leasings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *leasingRepository) Schedule(ctx context.Context, leasingID string) ([]domain.PaymentScheduleItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+scheduleColumns+` FROM payment_schedule WHERE leasing_id = $1 ORDER BY installment_number`, leasingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.PaymentScheduleItem{}
	for rows.Next() {
		var it domain.PaymentScheduleItem
		var paid sql.NullTime
		if err := rows.Scan(&it.ID, &it.LeasingID, &it.InstallmentNumber, &it.DueDate, &it.Principal, &it.Interest,
			&it.MonthlyFee, &it.TotalPayment, &it.RemainingBalance, &it.IsPaid, &paid); err != nil {
			return nil, err
		}
		it.PaidDate = timePtr(paid)
		items = append(items, it)
	}
	return items, rows.Err()
}

// SetPaid fails with ErrNotFound, changing nothing, when any of the
// installment numbers does not exist for the leasing.
func (r *leasingRepository) SetPaid(ctx context.Context, leasingID string, installments []int, paidDate *time.Time) error {
	if len(installments) == 0 {
		return nil
	}
	numbers := make([]int64, len(installments))
	for i, n := range installments {
		numbers[i] = int64(n)
	}

	err := ExecuteTransaction(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE payment_schedule SET is_paid = $1, paid_date = $2 WHERE leasing_id = $3 AND installment_number = ANY($4)`,
			paidDate != nil, nullTime(paidDate), leasingID, pq.Array(numbers))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n != int64(len(numbers)) {
			return repository.ErrNotFound
		}
		_, err = tx.ExecContext(ctx, leasingProgressQuery, leasingID)
		return err
	})
	if err != nil {
		return err
	}
	logger.Info("Updated leasing installments", "leasing_id", leasingID, "count", len(numbers), "paid", paidDate != nil)
	return nil
}

func (r *leasingRepository) Documents(ctx context.Context, leasingID string) ([]domain.LeasingDocument, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, leasing_id, type, file_name, file_url, file_size, mime_type, uploaded_at
		FROM leasing_documents WHERE leasing_id = $1 ORDER BY uploaded_at DESC`, leasingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []domain.LeasingDocument{}
	for rows.Next() {
		var d domain.LeasingDocument
		var mime sql.NullString
		if err := rows.Scan(&d.ID, &d.LeasingID, &d.Type, &d.FileName, &d.FileURL, &d.FileSize, &mime, &d.UploadedAt); err != nil {
			return nil, err
		}
		d.MimeType = mime.String
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *leasingRepository) AddDocument(ctx context.Context, d *domain.LeasingDocument) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return r.db.QueryRowContext(ctx, `INSERT INTO leasing_documents (id, leasing_id, type, file_name, file_url, file_size, mime_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING uploaded_at`,
		d.ID, d.LeasingID, d.Type, d.FileName, d.FileURL, d.FileSize, nullString(d.MimeType)).Scan(&d.UploadedAt)
}

func (r *leasingRepository) DeleteDocument(ctx context.Context, leasingID, documentID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leasing_documents WHERE id = $1 AND leasing_id = $2`, documentID, leasingID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
