package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository"
)

const vehicleColumns = `v.id, v.brand, v.model, v.year, v.license_plate, v.vin, COALESCE(c.name, v.company), v.owner_company_id,
	v.category, v.pricing, v.commission, v.status, v.stk, v.created_at`

const vehicleFrom = ` FROM vehicles v LEFT JOIN companies c ON c.id = v.owner_company_id`

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	var (
		v                    domain.Vehicle
		year                 sql.NullInt64
		vin, owner, category sql.NullString
		pricing, commission  []byte
		stk                  sql.NullTime
	)
	err := row.Scan(&v.ID, &v.Brand, &v.Model, &year, &v.LicensePlate, &vin, &v.Company, &owner,
		&category, &pricing, &commission, &v.Status, &stk, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	if year.Valid {
		y := int(year.Int64)
		v.Year = &y
	}
	v.VIN = vin.String
	v.OwnerCompanyID = stringPtr(owner)
	v.Category = category.String
	v.STK = timePtr(stk)
	if err := parseJSON(pricing, &v.Pricing); err != nil {
		return nil, fmt.Errorf("parse pricing of vehicle %s: %w", v.ID, err)
	}
	if v.Pricing == nil {
		v.Pricing = []domain.PricingTier{}
	}
	if err := parseJSON(commission, &v.Commission); err != nil {
		return nil, fmt.Errorf("parse commission of vehicle %s: %w", v.ID, err)
	}
	return &v, nil
}

func collectVehicles(rows *sql.Rows) ([]domain.Vehicle, error) {
	defer rows.Close()
	vehicles := []domain.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

func (r *vehicleRepository) List(ctx context.Context, includeRemoved, includePrivate bool) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + vehicleFrom + ` WHERE 1=1`
	if !includeRemoved {
		query += ` AND v.status NOT IN ('removed', 'temp_removed')`
	}
	if !includePrivate {
		query += ` AND v.status <> 'private'`
	}
	query += ` ORDER BY v.brand, v.model`

	logger.DatabaseCall("list_vehicles", query, "include_removed", includeRemoved, "include_private", includePrivate)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectVehicles(rows)
}

func (r *vehicleRepository) Search(ctx context.Context, f domain.VehicleFilter) ([]domain.Vehicle, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 50
	}
	offset := (f.Page - 1) * f.PageSize

	where := ` WHERE 1=1`
	var args []interface{}
	argIdx := 1
	if f.Search != "" {
		where += fmt.Sprintf(` AND (v.brand ILIKE $%d OR v.model ILIKE $%d OR v.license_plate ILIKE $%d)`, argIdx, argIdx, argIdx)
		args = append(args, "%"+f.Search+"%")
		argIdx++
	}
	if f.Status != "" {
		where += fmt.Sprintf(` AND v.status = $%d`, argIdx)
		args = append(args, f.Status)
		argIdx++
	} else {
		if !f.IncludeRemoved {
			where += ` AND v.status NOT IN ('removed', 'temp_removed')`
		}
		if !f.IncludePrivate {
			where += ` AND v.status <> 'private'`
		}
	}
	if f.Company != "" {
		where += fmt.Sprintf(` AND COALESCE(c.name, v.company) = $%d`, argIdx)
		args = append(args, f.Company)
		argIdx++
	}
	if f.Category != "" {
		where += fmt.Sprintf(` AND v.category = $%d`, argIdx)
		args = append(args, f.Category)
		argIdx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+vehicleFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + vehicleColumns + vehicleFrom + where +
		fmt.Sprintf(` ORDER BY v.brand, v.model LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, f.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	vehicles, err := collectVehicles(rows)
	if err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + vehicleFrom + ` WHERE v.id = $1`
	v, err := scanVehicle(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return v, nil
}

func (r *vehicleRepository) GetByLicensePlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + vehicleFrom + ` WHERE LOWER(v.license_plate) = LOWER($1)`
	v, err := scanVehicle(r.db.QueryRowContext(ctx, query, strings.TrimSpace(plate)))
	if err != nil {
		return nil, notFound(err)
	}
	return v, nil
}

func vehicleArgs(v *domain.Vehicle) ([]interface{}, error) {
	if v.Pricing == nil {
		v.Pricing = []domain.PricingTier{}
	}
	pricing, err := toJSON(v.Pricing)
	if err != nil {
		return nil, fmt.Errorf("encode pricing: %w", err)
	}
	commission, err := toJSON(v.Commission)
	if err != nil {
		return nil, fmt.Errorf("encode commission: %w", err)
	}
	var year sql.NullInt64
	if v.Year != nil {
		year = sql.NullInt64{Int64: int64(*v.Year), Valid: true}
	}
	return []interface{}{
		v.Brand, v.Model, year, v.LicensePlate, nullString(v.VIN), v.Company, nullStringPtr(v.OwnerCompanyID),
		nullString(v.Category), pricing, commission, v.Status, nullTime(v.STK),
	}, nil
}

// plateTaken checks case-insensitive plate uniqueness, ignoring exceptID
func plateTaken(ctx context.Context, tx *sql.Tx, plate, exceptID string) error {
	var existing string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM vehicles WHERE LOWER(license_plate) = LOWER($1) AND id::text <> $2`,
		plate, exceptID).Scan(&existing)
	if err == nil {
		return fmt.Errorf("%w: %s", repository.ErrDuplicateLicensePlate, plate)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}

func (r *vehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Status == "" {
		v.Status = domain.VehicleStatusAvailable
	}
	args, err := vehicleArgs(v)
	if err != nil {
		return err
	}

	return ExecuteTransaction(ctx, r.db, func(tx *sql.Tx) error {
		if err := plateTaken(ctx, tx, v.LicensePlate, ""); err != nil {
			return err
		}

		query := `INSERT INTO vehicles (id, brand, model, year, license_plate, vin, company, owner_company_id, category, pricing, commission, status, stk)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING created_at`
		logger.DatabaseCall("insert_vehicle", query, "license_plate", v.LicensePlate)
		err := tx.QueryRowContext(ctx, query, append([]interface{}{v.ID}, args...)...).Scan(&v.CreatedAt)
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", repository.ErrDuplicateLicensePlate, v.LicensePlate)
		}
		return err
	})
}

func (r *vehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	args, err := vehicleArgs(v)
	if err != nil {
		return err
	}

	return ExecuteTransaction(ctx, r.db, func(tx *sql.Tx) error {
		if err := plateTaken(ctx, tx, v.LicensePlate, v.ID); err != nil {
			return err
		}

		query := `UPDATE vehicles SET brand=$1, model=$2, year=$3, license_plate=$4, vin=$5, company=$6, owner_company_id=$7,
		          category=$8, pricing=$9, commission=$10, status=$11, stk=$12 WHERE id=$13`
		res, err := tx.ExecContext(ctx, query, append(args, v.ID)...)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", repository.ErrDuplicateLicensePlate, v.LicensePlate)
			}
			return err
		}
		return requireAffected(res)
	})
}

// Delete refuses to remove a vehicle that active or confirmed rentals still reference.
func (r *vehicleRepository) Delete(ctx context.Context, id string) error {
	return ExecuteTransaction(ctx, r.db, func(tx *sql.Tx) error {
		var active int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM rentals WHERE vehicle_id = $1 AND status IN ('active', 'confirmed')`, id).Scan(&active)
		if err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%w: %d", repository.ErrVehicleHasActiveRentals, active)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM insurances WHERE vehicle_id = $1`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
}

func (r *vehicleRepository) ListSTKExpiring(ctx context.Context, before time.Time) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + vehicleFrom +
		` WHERE v.stk IS NOT NULL AND v.stk <= $1 AND v.status NOT IN ('removed', 'temp_removed') ORDER BY v.stk`
	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, err
	}
	return collectVehicles(rows)
}
