package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/juliancavero/mirestaurante-back/internal/db"
)

// SecretRepository stores the single rotatable registration secret as a
// one-row table.
type SecretRepository struct {
	DB *db.Postgres
}

func (r SecretRepository) Get(ctx context.Context) (string, error) {
	var key string
	err := r.DB.Pool.QueryRow(ctx, `SELECT key FROM secret_key WHERE id=1`).Scan(&key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return key, nil
}

func (r SecretRepository) Save(ctx context.Context, key string) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO secret_key (id, key, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET key=EXCLUDED.key, updated_at=now()
	`, key)
	return err
}
