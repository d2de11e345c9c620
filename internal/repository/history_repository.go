package repository

import (
	"context"

	"github.com/juliancavero/mirestaurante-back/internal/db"
	"github.com/juliancavero/mirestaurante-back/internal/domain"
)

// HistoryRepository reads the settled-order archive. Rows are written
// only by the settlement transaction and never updated or deleted.
type HistoryRepository struct {
	DB *db.Postgres
}

func (r HistoryRepository) List(ctx context.Context) ([]domain.ArchivedOrder, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, order_id, table_id, customer_name, total_cost, settled_on
		FROM order_history
		ORDER BY settled_on ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ArchivedOrder
	var ids []int64
	for rows.Next() {
		var e domain.ArchivedOrder
		if err := rows.Scan(&e.ID, &e.OrderID, &e.TableID, &e.Name, &e.TotalCost, &e.Date); err != nil {
			return nil, err
		}
		ids = append(ids, e.ID)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return entries, nil
	}

	itemRows, err := r.DB.Pool.Query(ctx, `
		SELECT history_id, name, price, photo, qty
		FROM order_history_items
		WHERE history_id = ANY($1)
		ORDER BY position ASC, id ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	itemsByEntry := make(map[int64][]domain.OrderItem)
	for itemRows.Next() {
		var it domain.OrderItem
		var historyID int64
		if err := itemRows.Scan(&historyID, &it.Name, &it.Price, &it.Photo, &it.Quantity); err != nil {
			return nil, err
		}
		itemsByEntry[historyID] = append(itemsByEntry[historyID], it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].Items = itemsByEntry[entries[i].ID]
	}
	return entries, nil
}
