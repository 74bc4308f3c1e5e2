package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
)

type customerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	var c domain.Customer
	var email, phone sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &email, &phone, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Email = email.String
	c.Phone = phone.String
	return &c, nil
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, email, phone, created_at FROM customers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, `SELECT id, name, email, phone, created_at FROM customers WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := `SELECT id, name, email, phone, created_at FROM customers WHERE LOWER(email) = LOWER($1) ORDER BY created_at LIMIT 1`
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `INSERT INTO customers (id, name, email, phone) VALUES ($1, $2, $3, $4) RETURNING created_at`
	return r.db.QueryRowContext(ctx, query, c.ID, c.Name, nullString(c.Email), nullString(c.Phone)).Scan(&c.CreatedAt)
}

func (r *customerRepository) Update(ctx context.Context, c *domain.Customer) error {
	res, err := r.db.ExecContext(ctx, `UPDATE customers SET name=$1, email=$2, phone=$3 WHERE id=$4`,
		c.Name, nullString(c.Email), nullString(c.Phone), c.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
