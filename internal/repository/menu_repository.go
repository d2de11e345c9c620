package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/juliancavero/mirestaurante-back/internal/db"
	"github.com/juliancavero/mirestaurante-back/internal/domain"
	"github.com/shopspring/decimal"
)

// MenuRepository persists the carta: categories with their nested items.
type MenuRepository struct {
	DB *db.Postgres
}

func (r MenuRepository) ListCategories(ctx context.Context) ([]domain.MenuCategory, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name
		FROM menu_categories
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.MenuCategory
	var ids []int64
	for rows.Next() {
		var c domain.MenuCategory
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		ids = append(ids, c.ID)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return categories, nil
	}

	itemRows, err := r.DB.Pool.Query(ctx, `
		SELECT category_id, id, name, price, photo
		FROM menu_items
		WHERE category_id = ANY($1)
		ORDER BY position ASC, id ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	itemsByCategory := make(map[int64][]domain.MenuItem)
	for itemRows.Next() {
		var it domain.MenuItem
		var catID int64
		if err := itemRows.Scan(&catID, &it.ID, &it.Name, &it.Price, &it.Photo); err != nil {
			return nil, err
		}
		itemsByCategory[catID] = append(itemsByCategory[catID], it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	for i := range categories {
		categories[i].Items = itemsByCategory[categories[i].ID]
	}
	return categories, nil
}

func (r MenuRepository) CategoryNames(ctx context.Context) ([]string, error) {
	rows, err := r.DB.Pool.Query(ctx, `SELECT name FROM menu_categories ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r MenuRepository) GetCategory(ctx context.Context, name string) (*domain.MenuCategory, error) {
	var c domain.MenuCategory
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, name FROM menu_categories WHERE name=$1
	`, name).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, price, photo
		FROM menu_items
		WHERE category_id=$1
		ORDER BY position ASC, id ASC
	`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.MenuItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Price, &it.Photo); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	return &c, rows.Err()
}

func (r MenuRepository) CreateCategory(ctx context.Context, name string) (*domain.MenuCategory, error) {
	var c domain.MenuCategory
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO menu_categories (name, created_at) VALUES ($1, now())
		RETURNING id, name
	`, name).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AddItems appends items to a category located by name. New items get
// generated ids and keep the caller's ordering.
func (r MenuRepository) AddItems(ctx context.Context, categoryName string, items []domain.MenuItem) ([]domain.MenuItem, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var categoryID int64
	var position int
	err = tx.QueryRow(ctx, `
		SELECT c.id, COALESCE(MAX(i.position)+1, 0)
		FROM menu_categories c
		LEFT JOIN menu_items i ON i.category_id = c.id
		WHERE c.name=$1
		GROUP BY c.id
	`, categoryName).Scan(&categoryID, &position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	out := make([]domain.MenuItem, 0, len(items))
	for i, it := range items {
		it.ID = uuid.NewString()
		_, err := tx.Exec(ctx, `
			INSERT INTO menu_items (id, category_id, name, price, photo, position)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, it.ID, categoryID, it.Name, it.Price, it.Photo, position+i)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r MenuRepository) UpdateItem(ctx context.Context, id, name string, price decimal.Decimal) (*domain.MenuItem, error) {
	var it domain.MenuItem
	err := r.DB.Pool.QueryRow(ctx, `
		UPDATE menu_items
		SET name=$2, price=$3
		WHERE id=$1
		RETURNING id, name, price, photo
	`, id, name, price).Scan(&it.ID, &it.Name, &it.Price, &it.Photo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r MenuRepository) DeleteItemByName(ctx context.Context, name string) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM menu_items WHERE name=$1`, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r MenuRepository) DeleteCategory(ctx context.Context, name string) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM menu_categories WHERE name=$1`, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
