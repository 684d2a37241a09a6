package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yourorg/imnotdurnk/internal/models"
)

const userColumns = `id, email, password_hash, name, nickname, phone, address,
	detailed_address, postal_code, emergency_call, soju_unit, soju_amount,
	beer_unit, beer_amount, verified`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts an unverified user and returns its id.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, name, nickname, phone, address,
			detailed_address, postal_code, emergency_call, soju_unit, soju_amount,
			beer_unit, beer_amount, verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.PasswordHash, u.Name, u.Nickname, u.Phone, u.Address,
		u.DetailedAddress, u.PostalCode, u.EmergencyCall, u.SojuUnit, u.SojuAmount,
		u.BeerUnit, u.BeerAmount, u.Verified)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return res.LastInsertId()
}

// ExistsByEmail reports whether an account uses email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n); err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// UpdateProfile overwrites the editable profile fields of user u.ID.
func (r *UserRepository) UpdateProfile(ctx context.Context, u *models.User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET name = ?, nickname = ?, phone = ?, address = ?,
			detailed_address = ?, postal_code = ?, emergency_call = ?,
			soju_unit = ?, soju_amount = ?, beer_unit = ?, beer_amount = ?
		WHERE id = ?`,
		u.Name, u.Nickname, u.Phone, u.Address, u.DetailedAddress, u.PostalCode,
		u.EmergencyCall, u.SojuUnit, u.SojuAmount, u.BeerUnit, u.BeerAmount, u.ID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hash, id); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (r *UserRepository) MarkVerified(ctx context.Context, email string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET verified = 1 WHERE email = ?`, email); err != nil {
		return fmt.Errorf("verify user: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Nickname, &u.Phone,
		&u.Address, &u.DetailedAddress, &u.PostalCode, &u.EmergencyCall,
		&u.SojuUnit, &u.SojuAmount, &u.BeerUnit, &u.BeerAmount, &u.Verified)
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
