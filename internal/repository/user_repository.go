package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/juliancavero/mirestaurante-back/internal/db"
	"github.com/juliancavero/mirestaurante-back/internal/domain"
)

type UserRepository struct {
	DB *db.Postgres
}

func (r UserRepository) GetByUserName(ctx context.Context, userName string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, user_name, password_hash, dni, created_at
		FROM users
		WHERE user_name=$1
	`, userName).Scan(&u.ID, &u.UserName, &u.PasswordHash, &u.DNI, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, user_name, password_hash, dni, created_at
		FROM users
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.UserName, &u.PasswordHash, &u.DNI, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateWithEmployee writes the credential record and its employee row in
// one transaction, so registration is both-or-neither.
func (r UserRepository) CreateWithEmployee(ctx context.Context, user domain.User, employee domain.Employee) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users (user_name, password_hash, dni, created_at)
		VALUES ($1,$2,$3, now())
	`, user.UserName, user.PasswordHash, user.DNI)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO employees (name, role, payslip, user_name, dni)
		VALUES ($1,$2,$3,$4,$5)
	`, employee.Name, employee.Role, employee.Payslip, employee.UserName, employee.DNI)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
