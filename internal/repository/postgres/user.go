package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/abenov/accounts-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, username, name, email, password_hash, mobile_number, role, phone, address,
			  gender, dob, status, COALESCE(otp, ''), COALESCE(image, ''), created_at, updated_at`

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func scanUser(row interface{ Scan(dest ...any) error }) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Name, &user.Email, &user.PasswordHash, &user.MobileNumber,
		&user.Role, &user.Phone, &user.Address, &user.Gender, &user.DOB, &user.Status,
		&user.OTP, &user.Image, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}

func (r *UserRepository) findBy(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.findBy(ctx, query, username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.findBy(ctx, query, email)
}

func (r *UserRepository) FindByMobileNumber(ctx context.Context, mobileNumber string) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE mobile_number = $1`
	return r.findBy(ctx, query, mobileNumber)
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1`
	return r.findBy(ctx, query, identifier)
}

func (r *UserRepository) GetFirstByEmailOrMobileNumber(ctx context.Context, identifier string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR mobile_number = $1 ORDER BY id LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, identifier))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email or mobile number: %w", err)
	}

	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	return r.findBy(ctx, query)
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (username, name, email, password_hash, mobile_number, role, phone,
				  address, gender, dob, status, otp, image)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), NULLIF($13, ''))
			  RETURNING ` + userColumns

	savedUser, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.Username, user.Name, user.Email, user.PasswordHash, user.MobileNumber,
		user.Role, user.Phone, user.Address, user.Gender, user.DOB, user.Status,
		user.OTP, user.Image,
	))
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return model.User{}, conflict
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return savedUser, nil
}

func (r *UserRepository) Update(ctx context.Context, user model.User) (model.User, error) {
	query := `UPDATE users
			  SET username = $2, name = $3, email = $4, password_hash = $5, mobile_number = $6,
				  role = $7, phone = $8, address = $9, gender = $10, dob = $11, status = $12,
				  otp = NULLIF($13, ''), image = NULLIF($14, ''), updated_at = now()
			  WHERE id = $1
			  RETURNING ` + userColumns

	savedUser, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Name, user.Email, user.PasswordHash, user.MobileNumber,
		user.Role, user.Phone, user.Address, user.Gender, user.DOB, user.Status,
		user.OTP, user.Image,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		if conflict := conflictError(err); conflict != nil {
			return model.User{}, conflict
		}
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	return savedUser, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return model.ErrNotFound
	}

	return nil
}
