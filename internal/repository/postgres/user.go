package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
)

const userColumns = `id, username, email, password_hash, role, company_id, is_active, last_login, created_at`

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var companyID sql.NullString
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &companyID, &u.IsActive, &lastLogin, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.CompanyID = stringPtr(companyID)
	u.LastLogin = timePtr(lastLogin)
	return &u, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	query := `INSERT INTO users (id, username, email, password_hash, role, company_id, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash, u.Role,
		nullStringPtr(u.CompanyID), u.IsActive).Scan(&u.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET username=$1, email=$2, password_hash=$3, role=$4, company_id=$5, is_active=$6 WHERE id=$7`
	res, err := r.db.ExecContext(ctx, query, u.Username, u.Email, u.PasswordHash, u.Role, nullStringPtr(u.CompanyID), u.IsActive, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return requireAffected(res)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	return err
}

func (r *userRepository) GetPermissions(ctx context.Context, userID string) ([]domain.UserPermission, error) {
	query := `SELECT up.user_id, up.company_id, c.name, up.permissions, up.created_at
	          FROM user_permissions up JOIN companies c ON c.id = up.company_id
	          WHERE up.user_id = $1 ORDER BY c.name`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	perms := []domain.UserPermission{}
	for rows.Next() {
		var p domain.UserPermission
		var raw []byte
		if err := rows.Scan(&p.UserID, &p.CompanyID, &p.CompanyName, &raw, &p.CreatedAt); err != nil {
			return nil, err
		}
		if err := parseJSON(raw, &p.Permissions); err != nil {
			return nil, fmt.Errorf("parse permissions of user %s: %w", userID, err)
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (r *userRepository) SetPermission(ctx context.Context, userID, companyID string, perms domain.CompanyPermissions) error {
	raw, err := toJSON(perms)
	if err != nil {
		return err
	}
	query := `INSERT INTO user_permissions (user_id, company_id, permissions) VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, company_id) DO UPDATE SET permissions = EXCLUDED.permissions, updated_at = NOW()`
	_, err = r.db.ExecContext(ctx, query, userID, companyID, raw)
	return err
}

func (r *userRepository) RemovePermission(ctx context.Context, userID, companyID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_permissions WHERE user_id = $1 AND company_id = $2`, userID, companyID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
