package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/juliancavero/mirestaurante-back/internal/db"
	"github.com/juliancavero/mirestaurante-back/internal/domain"
	"github.com/shopspring/decimal"
)

// IncomeRepository is the per-day income ledger. Every settlement appends
// one contribution row; the stored rows are the source of truth and the
// daily total is summed on read.
type IncomeRepository struct {
	DB *db.Postgres
}

func (r IncomeRepository) Contribute(ctx context.Context, day time.Time, amount decimal.Decimal) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO daily_income (day, amount, created_at)
		VALUES ($1::date, $2, now())
	`, day, amount)
	return err
}

// ContributeTx appends a contribution inside a settlement transaction.
func (r IncomeRepository) ContributeTx(ctx context.Context, tx pgx.Tx, day time.Time, amount decimal.Decimal) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO daily_income (day, amount, created_at)
		VALUES ($1::date, $2, now())
	`, day, amount)
	return err
}

func (r IncomeRepository) DailyTotals(ctx context.Context) ([]domain.DailyIncome, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT day, SUM(amount)
		FROM daily_income
		GROUP BY day
		ORDER BY day ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []domain.DailyIncome
	for rows.Next() {
		var d domain.DailyIncome
		if err := rows.Scan(&d.Date, &d.TotalIncome); err != nil {
			return nil, err
		}
		totals = append(totals, d)
	}
	return totals, rows.Err()
}
