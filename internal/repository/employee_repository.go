package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/juliancavero/mirestaurante-back/internal/db"
	"github.com/juliancavero/mirestaurante-back/internal/domain"
)

type EmployeeRepository struct {
	DB *db.Postgres
}

const employeeColumns = `id, name, role, payslip, user_name, dni`

func (r EmployeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

func (r EmployeeRepository) GetByUserName(ctx context.Context, userName string) (*domain.Employee, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE user_name=$1
	`, userName)
	e, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r EmployeeRepository) Create(ctx context.Context, e domain.Employee) (*domain.Employee, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO employees (name, role, payslip, user_name, dni)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING `+employeeColumns+`
	`, e.Name, e.Role, e.Payslip, e.UserName, e.DNI)
	return scanEmployee(row)
}

func (r EmployeeRepository) UpdateByDNI(ctx context.Context, e domain.Employee) (*domain.Employee, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE employees
		SET name=$2, role=$3, payslip=$4, user_name=$5
		WHERE dni=$1
		RETURNING `+employeeColumns+`
	`, e.DNI, e.Name, e.Role, e.Payslip, e.UserName)
	out, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

// DeleteByUserName removes an employee together with its credential
// record in one transaction.
func (r EmployeeRepository) DeleteByUserName(ctx context.Context, userName string) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM employees WHERE user_name=$1`, userName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE user_name=$1`, userName); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var (
		e    domain.Employee
		role string
	)
	if err := row.Scan(&e.ID, &e.Name, &role, &e.Payslip, &e.UserName, &e.DNI); err != nil {
		return nil, err
	}
	e.Role = domain.EmployeeRole(role)
	return &e, nil
}
