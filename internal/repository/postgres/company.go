package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
)

const companyColumns = `id, name, business_id, tax_id, address, contact_person, email, phone, commission_rate, is_active, created_at`

type companyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) repository.CompanyRepository {
	return &companyRepository{db: db}
}

func scanCompany(row rowScanner) (*domain.Company, error) {
	var c domain.Company
	var businessID, taxID, address, contact, email, phone sql.NullString
	err := row.Scan(&c.ID, &c.Name, &businessID, &taxID, &address, &contact, &email, &phone, &c.CommissionRate, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.BusinessID = businessID.String
	c.TaxID = taxID.String
	c.Address = address.String
	c.ContactPerson = contact.String
	c.Email = email.String
	c.Phone = phone.String
	return &c, nil
}

func (r *companyRepository) List(ctx context.Context) ([]domain.Company, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []domain.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	return companies, rows.Err()
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	c, err := scanCompany(r.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (r *companyRepository) Create(ctx context.Context, c *domain.Company) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `INSERT INTO companies (id, name, business_id, tax_id, address, contact_person, email, phone, commission_rate, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, c.ID, c.Name, nullString(c.BusinessID), nullString(c.TaxID), nullString(c.Address),
		nullString(c.ContactPerson), nullString(c.Email), nullString(c.Phone), c.CommissionRate, c.IsActive).Scan(&c.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *companyRepository) Update(ctx context.Context, c *domain.Company) error {
	query := `UPDATE companies SET name=$1, business_id=$2, tax_id=$3, address=$4, contact_person=$5, email=$6, phone=$7,
	          commission_rate=$8, is_active=$9 WHERE id=$10`
	res, err := r.db.ExecContext(ctx, query, c.Name, nullString(c.BusinessID), nullString(c.TaxID), nullString(c.Address),
		nullString(c.ContactPerson), nullString(c.Email), nullString(c.Phone), c.CommissionRate, c.IsActive, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return requireAffected(res)
}

func (r *companyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
