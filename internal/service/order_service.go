package service

import (
	"context"
	"errors"
	"time"

	"github.com/juliancavero/mirestaurante-back/internal/domain"
	"github.com/juliancavero/mirestaurante-back/internal/ports"
	"github.com/shopspring/decimal"
)

var (
	ErrNoOrderItems    = errors.New("order needs at least one item")
	ErrInvalidQuantity = errors.New("item quantity must be a positive integer")
	ErrInvalidPrice    = errors.New("item price must not be negative")
)

// OrderService owns the order lifecycle: creation with the total computed
// once, mutation, and settlement.
type OrderService struct {
	Orders ports.OrderStore
}

// Create inserts a new open order for a table. The total is the sum of
// price times quantity over the caller's lines; the prices are taken
// verbatim and not checked against the current carta. The table's own
// status is not touched here — seating and reserving run through the
// table endpoints independently.
func (s OrderService) Create(ctx context.Context, tableID int64, name string, items []domain.OrderItem) (*domain.Order, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}
	return s.Orders.Create(ctx, domain.Order{
		TableID:   tableID,
		Name:      name,
		Items:     items,
		TotalCost: totalCost(items),
	})
}

func (s OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.Orders.List(ctx)
}

func (s OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.Orders.Get(ctx, id)
}

// Update replaces the customer name and items of an open order. The total
// stays as computed at creation even when the items change.
func (s OrderService) Update(ctx context.Context, id string, name string, items []domain.OrderItem) (*domain.Order, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}
	return s.Orders.Update(ctx, id, name, items)
}

// Settle closes the open order of a table: the order is archived under
// today's date, its total credited to the day's income and the table
// freed, all in one atomic store operation.
func (s OrderService) Settle(ctx context.Context, tableID int64) (*domain.ArchivedOrder, error) {
	return s.Orders.Settle(ctx, tableID, time.Now().UTC())
}

func validateItems(items []domain.OrderItem) error {
	if len(items) == 0 {
		return ErrNoOrderItems
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if it.Price.IsNegative() {
			return ErrInvalidPrice
		}
	}
	return nil
}

func totalCost(items []domain.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
