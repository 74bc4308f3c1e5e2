package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository"
)

const rentalColumns = `r.id, r.vehicle_id, r.customer_id, r.customer_name, r.customer_email, r.customer_phone,
	r.start_date, r.end_date, r.total_price, r.commission, r.payment_method, r.company, r.discount,
	r.custom_commission, r.extra_km_charge, r.paid, r.confirmed, r.status, r.is_flexible, r.flexible_end_date,
	r.handover_place, r.deposit, r.allowed_kilometers, r.handover_protocol_id, r.return_protocol_id,
	r.source_type, r.approval_status, r.email_id, r.email_content, r.approved_by, r.approved_at,
	r.rejection_reason, r.created_at`

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	var (
		rt                                           domain.Rental
		vehicleID, customerID, email, phone, company sql.NullString
		handoverPlace, handoverID, returnID, emailID sql.NullString
		emailContent, approvedBy, rejectionReason    sql.NullString
		discount, customCommission                   []byte
		flexibleEnd, approvedAt                      sql.NullTime
	)
	err := row.Scan(&rt.ID, &vehicleID, &customerID, &rt.CustomerName, &email, &phone,
		&rt.StartDate, &rt.EndDate, &rt.TotalPrice, &rt.Commission, &rt.PaymentMethod, &company, &discount,
		&customCommission, &rt.ExtraKmCharge, &rt.Paid, &rt.Confirmed, &rt.Status, &rt.IsFlexible, &flexibleEnd,
		&handoverPlace, &rt.Deposit, &rt.AllowedKilometers, &handoverID, &returnID,
		&rt.SourceType, &rt.ApprovalStatus, &emailID, &emailContent, &approvedBy, &approvedAt,
		&rejectionReason, &rt.CreatedAt)
	if err != nil {
		return nil, err
	}
	rt.VehicleID = stringPtr(vehicleID)
	rt.CustomerID = stringPtr(customerID)
	rt.CustomerEmail = email.String
	rt.CustomerPhone = phone.String
	rt.Company = company.String
	rt.FlexibleEndDate = timePtr(flexibleEnd)
	rt.HandoverPlace = handoverPlace.String
	rt.HandoverProtocolID = stringPtr(handoverID)
	rt.ReturnProtocolID = stringPtr(returnID)
	rt.EmailID = stringPtr(emailID)
	rt.EmailContent = emailContent.String
	rt.ApprovedBy = stringPtr(approvedBy)
	rt.ApprovedAt = timePtr(approvedAt)
	rt.RejectionReason = rejectionReason.String

	if len(discount) > 0 && string(discount) != "null" {
		rt.Discount = &domain.Discount{}
		if err := parseJSON(discount, rt.Discount); err != nil {
			return nil, fmt.Errorf("parse discount of rental %s: %w", rt.ID, err)
		}
	}
	if len(customCommission) > 0 && string(customCommission) != "null" {
		rt.CustomCommission = &domain.Commission{}
		if err := parseJSON(customCommission, rt.CustomCommission); err != nil {
			return nil, fmt.Errorf("parse custom commission of rental %s: %w", rt.ID, err)
		}
	}
	return &rt, nil
}

func collectRentals(rows *sql.Rows) ([]domain.Rental, error) {
	defer rows.Close()
	rentals := []domain.Rental{}
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

func rentalArgs(rt *domain.Rental) ([]interface{}, error) {
	discount, err := toJSON(rt.Discount)
	if err != nil {
		return nil, fmt.Errorf("encode discount: %w", err)
	}
	customCommission, err := toJSON(rt.CustomCommission)
	if err != nil {
		return nil, fmt.Errorf("encode custom commission: %w", err)
	}
	return []interface{}{
		nullStringPtr(rt.VehicleID), nullStringPtr(rt.CustomerID), rt.CustomerName, nullString(rt.CustomerEmail), nullString(rt.CustomerPhone),
		rt.StartDate, rt.EndDate, rt.TotalPrice, rt.Commission, rt.PaymentMethod, nullString(rt.Company), discount,
		customCommission, rt.ExtraKmCharge, rt.Paid, rt.Confirmed, rt.Status, rt.IsFlexible, nullTime(rt.FlexibleEndDate),
		nullString(rt.HandoverPlace), rt.Deposit, rt.AllowedKilometers, nullStringPtr(rt.HandoverProtocolID), nullStringPtr(rt.ReturnProtocolID),
		rt.SourceType, rt.ApprovalStatus, nullStringPtr(rt.EmailID), nullString(rt.EmailContent), nullStringPtr(rt.ApprovedBy), nullTime(rt.ApprovedAt),
		nullString(rt.RejectionReason),
	}, nil
}

func applyRentalDefaults(rt *domain.Rental) {
	if rt.ID == "" {
		rt.ID = uuid.NewString()
	}
	if rt.Status == "" {
		rt.Status = domain.RentalStatusPending
	}
	if rt.PaymentMethod == "" {
		rt.PaymentMethod = domain.PaymentCash
	}
	if rt.SourceType == "" {
		rt.SourceType = domain.SourceManual
	}
	if rt.ApprovalStatus == "" {
		rt.ApprovalStatus = domain.ApprovalApproved
	}
}

func insertRental(ctx context.Context, q queryRower, rt *domain.Rental) error {
	args, err := rentalArgs(rt)
	if err != nil {
		return err
	}
	query := `INSERT INTO rentals (id, vehicle_id, customer_id, customer_name, customer_email, customer_phone,
		start_date, end_date, total_price, commission, payment_method, company, discount,
		custom_commission, extra_km_charge, paid, confirmed, status, is_flexible, flexible_end_date,
		handover_place, deposit, allowed_kilometers, handover_protocol_id, return_protocol_id,
		source_type, approval_status, email_id, email_content, approved_by, approved_at, rejection_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		$21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32) RETURNING created_at`
	logger.DatabaseCall("insert_rental", query, "rental_id", rt.ID)
	return q.QueryRowContext(ctx, query, append([]interface{}{rt.ID}, args...)...).Scan(&rt.CreatedAt)
}

func (r *rentalRepository) List(ctx context.Context) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals r ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectRentals(rows)
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals r WHERE r.id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return rt, nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	applyRentalDefaults(rt)
	err := insertRental(ctx, r.db, rt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	args, err := rentalArgs(rt)
	if err != nil {
		return err
	}
	query := `UPDATE rentals SET vehicle_id=$1, customer_id=$2, customer_name=$3, customer_email=$4, customer_phone=$5,
		start_date=$6, end_date=$7, total_price=$8, commission=$9, payment_method=$10, company=$11, discount=$12,
		custom_commission=$13, extra_km_charge=$14, paid=$15, confirmed=$16, status=$17, is_flexible=$18, flexible_end_date=$19,
		handover_place=$20, deposit=$21, allowed_kilometers=$22, handover_protocol_id=$23, return_protocol_id=$24,
		source_type=$25, approval_status=$26, email_id=$27, email_content=$28, approved_by=$29, approved_at=$30,
		rejection_reason=$31 WHERE id=$32`
	res, err := r.db.ExecContext(ctx, query, append(args, rt.ID)...)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *rentalRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rentals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ListForSettlement returns rentals starting within [from, to] whose vehicle
// belongs to company, or whose historical company snapshot matches it.
func (r *rentalRepository) ListForSettlement(ctx context.Context, company string, from, to time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals r LEFT JOIN vehicles v ON v.id = r.vehicle_id
		WHERE r.start_date >= $2 AND r.start_date <= $3
		  AND (r.company = $1 OR (COALESCE(r.company, '') = '' AND v.company = $1))
		  AND r.status <> 'cancelled'
		ORDER BY r.start_date`
	rows, err := r.db.QueryContext(ctx, query, company, from, to)
	if err != nil {
		return nil, err
	}
	return collectRentals(rows)
}

func (r *rentalRepository) GetByEmailID(ctx context.Context, emailID string) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals r WHERE r.email_id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, emailID))
	if err != nil {
		return nil, notFound(err)
	}
	return rt, nil
}

// CreateStaged inserts an e-mail sourced rental, at most once per e-mail id.
func (r *rentalRepository) CreateStaged(ctx context.Context, rt *domain.Rental) error {
	if rt.EmailID == nil || *rt.EmailID == "" {
		return errors.New("staged rental requires an email id")
	}
	applyRentalDefaults(rt)

	return ExecuteTransaction(ctx, r.db, func(tx *sql.Tx) error {
		var existing int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM rentals WHERE email_id = $1`, *rt.EmailID).Scan(&existing); err != nil {
			return err
		}
		if existing > 0 {
			return repository.ErrEmailAlreadyStaged
		}
		err := insertRental(ctx, tx, rt)
		if isUniqueViolation(err) {
			return repository.ErrEmailAlreadyStaged
		}
		return err
	})
}

func (r *rentalRepository) ListPendingApproval(ctx context.Context) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals r WHERE r.approval_status = 'pending' ORDER BY r.created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectRentals(rows)
}

func (r *rentalRepository) Decide(ctx context.Context, id string, approval domain.ApprovalStatus, status domain.RentalStatus, decidedBy, reason string) error {
	query := `UPDATE rentals SET approval_status=$1, status=$2, confirmed=$3, approved_by=$4, approved_at=$5, rejection_reason=$6
		WHERE id=$7 AND approval_status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, approval, status, approval == domain.ApprovalApproved,
		nullString(decidedBy), time.Now(), nullString(reason), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var current string
	err = r.db.QueryRowContext(ctx, `SELECT approval_status FROM rentals WHERE id = $1`, id).Scan(&current)
	if err != nil {
		return notFound(err)
	}
	return repository.ErrAlreadyDecided
}
