package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/juliancavero/mirestaurante-back/internal/db"
	"github.com/juliancavero/mirestaurante-back/internal/domain"
)

type TableRepository struct {
	DB *db.Postgres
}

const tableColumns = `id, status, size, guest_name, created_at, updated_at`

func (r TableRepository) Create(ctx context.Context, size int) (*domain.Table, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO tables (status, size, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		RETURNING `+tableColumns+`
	`, domain.TableAvailable, size)
	return scanTable(row)
}

func (r TableRepository) List(ctx context.Context) ([]domain.Table, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+tableColumns+`
		FROM tables
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTables(rows)
}

func (r TableRepository) ListOccupied(ctx context.Context) ([]domain.Table, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+tableColumns+`
		FROM tables
		WHERE status = $1 OR status = $2
		ORDER BY id ASC
	`, domain.TableTaken, domain.TableReserved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTables(rows)
}

func (r TableRepository) Get(ctx context.Context, id int64) (*domain.Table, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+tableColumns+`
		FROM tables
		WHERE id=$1
	`, id)
	t, err := scanTable(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Replace overwrites the mutable fields of a table unconditionally
// (last-writer-wins).
func (r TableRepository) Replace(ctx context.Context, t domain.Table) (*domain.Table, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE tables
		SET status=$2, size=$3, guest_name=$4, updated_at=now()
		WHERE id=$1
		RETURNING `+tableColumns+`
	`, t.ID, t.Status, t.Size, t.GuestName)
	out, err := scanTable(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

// Delete removes the table record. Open orders referencing it are left
// in place and become orphaned.
func (r TableRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM tables WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReleaseTx frees a table inside a settlement transaction: status back to
// Available and the guest name cleared.
func (r TableRepository) ReleaseTx(ctx context.Context, tx pgx.Tx, id int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE tables
		SET status=$2, guest_name=NULL, updated_at=now()
		WHERE id=$1
	`, id, domain.TableAvailable)
	return err
}

func scanTable(row pgx.Row) (*domain.Table, error) {
	var (
		t      domain.Table
		status string
		name   pgtype.Text
	)
	if err := row.Scan(&t.ID, &status, &t.Size, &name, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = domain.TableStatus(status)
	if name.Valid {
		t.GuestName = &name.String
	}
	return &t, nil
}

func collectTables(rows pgx.Rows) ([]domain.Table, error) {
	var tables []domain.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *t)
	}
	return tables, rows.Err()
}
