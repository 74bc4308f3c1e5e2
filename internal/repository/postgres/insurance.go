package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
)

type insurerRepository struct {
	db *sql.DB
}

func NewInsurerRepository(db *sql.DB) repository.InsurerRepository {
	return &insurerRepository{db: db}
}

func (r *insurerRepository) List(ctx context.Context) ([]domain.Insurer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM insurers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	insurers := []domain.Insurer{}
	for rows.Next() {
		var i domain.Insurer
		if err := rows.Scan(&i.ID, &i.Name, &i.CreatedAt); err != nil {
			return nil, err
		}
		insurers = append(insurers, i)
	}
	return insurers, rows.Err()
}

func (r *insurerRepository) Create(ctx context.Context, i *domain.Insurer) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	err := r.db.QueryRowContext(ctx, `INSERT INTO insurers (id, name) VALUES ($1, $2) RETURNING created_at`, i.ID, i.Name).Scan(&i.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *insurerRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM insurers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const insuranceColumns = `id, vehicle_id, insurer_id, type, policy_number, valid_from, valid_to, price, company, payment_frequency`

type insuranceRepository struct {
	db *sql.DB
}

func NewInsuranceRepository(db *sql.DB) repository.InsuranceRepository {
	return &insuranceRepository{db: db}
}

func scanInsurance(row rowScanner) (*domain.Insurance, error) {
	var i domain.Insurance
	var vehicleID, insurerID sql.NullString
	err := row.Scan(&i.ID, &vehicleID, &insurerID, &i.Type, &i.PolicyNumber, &i.ValidFrom, &i.ValidTo, &i.Price, &i.Company, &i.PaymentFrequency)
	if err != nil {
		return nil, err
	}
	i.VehicleID = stringPtr(vehicleID)
	i.InsurerID = stringPtr(insurerID)
	return &i, nil
}

func (r *insuranceRepository) List(ctx context.Context) ([]domain.Insurance, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+insuranceColumns+` FROM insurances ORDER BY valid_to DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	insurances := []domain.Insurance{}
	for rows.Next() {
		i, err := scanInsurance(rows)
		if err != nil {
			return nil, err
		}
		insurances = append(insurances, *i)
	}
	return insurances, rows.Err()
}

func (r *insuranceRepository) GetByID(ctx context.Context, id string) (*domain.Insurance, error) {
	i, err := scanInsurance(r.db.QueryRowContext(ctx, `SELECT `+insuranceColumns+` FROM insurances WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return i, nil
}

func (r *insuranceRepository) Create(ctx context.Context, i *domain.Insurance) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.PaymentFrequency == "" {
		i.PaymentFrequency = domain.FrequencyYearly
	}
	query := `INSERT INTO insurances (` + insuranceColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query, i.ID, nullStringPtr(i.VehicleID), nullStringPtr(i.InsurerID), i.Type, i.PolicyNumber,
		i.ValidFrom, i.ValidTo, i.Price, i.Company, i.PaymentFrequency)
	return err
}

func (r *insuranceRepository) Update(ctx context.Context, i *domain.Insurance) error {
	query := `UPDATE insurances SET vehicle_id=$1, insurer_id=$2, type=$3, policy_number=$4, valid_from=$5, valid_to=$6,
	          price=$7, company=$8, payment_frequency=$9 WHERE id=$10`
	res, err := r.db.ExecContext(ctx, query, nullStringPtr(i.VehicleID), nullStringPtr(i.InsurerID), i.Type, i.PolicyNumber,
		i.ValidFrom, i.ValidTo, i.Price, i.Company, i.PaymentFrequency, i.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *insuranceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM insurances WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
