package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/juliancavero/mirestaurante-back/internal/db"
	"github.com/juliancavero/mirestaurante-back/internal/domain"
)

// OrderRepository persists open orders and owns the settlement write path.
type OrderRepository struct {
	DB     *db.Postgres
	Income IncomeRepository
	Tables TableRepository
}

func (r OrderRepository) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	o.ID = uuid.NewString()
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, table_id, customer_name, total_cost, created_at)
		VALUES ($1,$2,$3,$4, now())
		RETURNING created_at
	`, o.ID, o.TableID, o.Name, o.TotalCost).Scan(&o.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := insertOrderItems(ctx, tx, o.ID, o.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, table_id, customer_name, total_cost, created_at
		FROM orders
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []string
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.TableID, &o.Name, &o.TotalCost, &o.CreatedAt); err != nil {
			return nil, err
		}
		ids = append(ids, o.ID)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	itemRows, err := r.DB.Pool.Query(ctx, `
		SELECT order_id, name, price, photo, qty
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY position ASC, id ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	itemsByOrder := make(map[string][]domain.OrderItem)
	for itemRows.Next() {
		var it domain.OrderItem
		var orderID string
		if err := itemRows.Scan(&orderID, &it.Name, &it.Price, &it.Photo, &it.Quantity); err != nil {
			return nil, err
		}
		itemsByOrder[orderID] = append(itemsByOrder[orderID], it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
	}
	return orders, nil
}

func (r OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, table_id, customer_name, total_cost, created_at
		FROM orders
		WHERE id=$1
	`, id).Scan(&o.ID, &o.TableID, &o.Name, &o.TotalCost, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// Update replaces the customer name and the item lines of an open order.
// The stored total is left as computed at creation; item edits do not
// reprice the order.
func (r OrderRepository) Update(ctx context.Context, id string, name string, items []domain.OrderItem) (*domain.Order, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var o domain.Order
	err = tx.QueryRow(ctx, `
		UPDATE orders
		SET customer_name=$2
		WHERE id=$1
		RETURNING id, table_id, customer_name, total_cost, created_at
	`, id, name).Scan(&o.ID, &o.TableID, &o.Name, &o.TotalCost, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, id); err != nil {
		return nil, err
	}
	if err := insertOrderItems(ctx, tx, id, items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// Settle closes the oldest open order of a table in a single transaction:
// the order is archived under day, its total appended to the income
// ledger, the open order deleted and the table released. A concurrent
// settlement for the same table finds no open order once the first one
// commits and gets ErrNotFound.
func (r OrderRepository) Settle(ctx context.Context, tableID int64, day time.Time) (*domain.ArchivedOrder, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var o domain.Order
	err = tx.QueryRow(ctx, `
		SELECT id, table_id, customer_name, total_cost, created_at
		FROM orders
		WHERE table_id=$1
		ORDER BY created_at ASC, id ASC
		LIMIT 1
		FOR UPDATE
	`, tableID).Scan(&o.ID, &o.TableID, &o.Name, &o.TotalCost, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	items, err := r.loadItemsTx(ctx, tx, o.ID)
	if err != nil {
		return nil, err
	}

	archived := domain.ArchivedOrder{
		OrderID:   o.ID,
		TableID:   o.TableID,
		Name:      o.Name,
		Items:     items,
		TotalCost: o.TotalCost,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO order_history (order_id, table_id, customer_name, total_cost, settled_on, created_at)
		VALUES ($1,$2,$3,$4,$5::date, now())
		RETURNING id, settled_on
	`, o.ID, o.TableID, o.Name, o.TotalCost, day).Scan(&archived.ID, &archived.Date)
	if err != nil {
		return nil, err
	}
	for i, it := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_history_items (history_id, name, price, photo, qty, position)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, archived.ID, it.Name, it.Price, it.Photo, it.Quantity, i)
		if err != nil {
			return nil, err
		}
	}

	if err := r.Income.ContributeTx(ctx, tx, day, o.TotalCost); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, o.ID); err != nil {
		return nil, err
	}

	if err := r.Tables.ReleaseTx(ctx, tx, tableID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &archived, nil
}

func (r OrderRepository) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT name, price, photo, qty
		FROM order_items
		WHERE order_id=$1
		ORDER BY position ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrderItems(rows)
}

func (r OrderRepository) loadItemsTx(ctx context.Context, tx pgx.Tx, orderID string) ([]domain.OrderItem, error) {
	rows, err := tx.Query(ctx, `
		SELECT name, price, photo, qty
		FROM order_items
		WHERE order_id=$1
		ORDER BY position ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrderItems(rows)
}

func collectOrderItems(rows pgx.Rows) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.Name, &it.Price, &it.Photo, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func insertOrderItems(ctx context.Context, tx pgx.Tx, orderID string, items []domain.OrderItem) error {
	for i, it := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, name, price, photo, qty, position)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, orderID, it.Name, it.Price, it.Photo, it.Quantity, i)
		if err != nil {
			return err
		}
	}
	return nil
}
