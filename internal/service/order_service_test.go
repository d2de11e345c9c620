package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/juliancavero/mirestaurante-back/internal/domain"
	"github.com/juliancavero/mirestaurante-back/internal/repository"
	"github.com/shopspring/decimal"
)

// fakeOrderStore keeps open orders in memory and mirrors the settlement
// contract of the real store: archive, credit, delete and release as one
// unit, with the second settler of a table losing.
type fakeOrderStore struct {
	mu       sync.Mutex
	orders   map[string]domain.Order
	archived []domain.ArchivedOrder
	income   map[string]decimal.Decimal
	released []int64
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders: make(map[string]domain.Order),
		income: make(map[string]decimal.Decimal),
	}
}

func (f *fakeOrderStore) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now()
	f.orders[o.ID] = o
	return &o, nil
}

func (f *fakeOrderStore) List(ctx context.Context) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrderStore) Get(ctx context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (f *fakeOrderStore) Update(ctx context.Context, id string, name string, items []domain.OrderItem) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.Name = name
	o.Items = items
	// The stored total is not recomputed on update.
	f.orders[id] = o
	return &o, nil
}

func (f *fakeOrderStore) Settle(ctx context.Context, tableID int64, day time.Time) (*domain.ArchivedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var oldest *domain.Order
	for id := range f.orders {
		o := f.orders[id]
		if o.TableID != tableID {
			continue
		}
		if oldest == nil || o.CreatedAt.Before(oldest.CreatedAt) {
			oldest = &o
		}
	}
	if oldest == nil {
		return nil, repository.ErrNotFound
	}
	archived := domain.ArchivedOrder{
		ID:        int64(len(f.archived) + 1),
		OrderID:   oldest.ID,
		TableID:   oldest.TableID,
		Name:      oldest.Name,
		Items:     oldest.Items,
		TotalCost: oldest.TotalCost,
		Date:      day,
	}
	f.archived = append(f.archived, archived)
	key := day.Format("2006-01-02")
	f.income[key] = f.income[key].Add(oldest.TotalCost)
	delete(f.orders, oldest.ID)
	f.released = append(f.released, tableID)
	return &archived, nil
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestOrderServiceCreate(t *testing.T) {
	t.Run("computes total as sum of price times quantity", func(t *testing.T) {
		store := newFakeOrderStore()
		svc := OrderService{Orders: store}

		order, err := svc.Create(context.Background(), 3, "Ana", []domain.OrderItem{
			{Name: "Croquetas", Price: dec("7.50"), Quantity: 2},
			{Name: "Agua", Price: dec("1.80"), Quantity: 3},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := dec("20.40"); !order.TotalCost.Equal(want) {
			t.Fatalf("total = %s, want %s", order.TotalCost, want)
		}
		if order.ID == "" {
			t.Fatalf("expected a generated id")
		}
	})

	t.Run("rejects empty item list", func(t *testing.T) {
		svc := OrderService{Orders: newFakeOrderStore()}
		_, err := svc.Create(context.Background(), 3, "Ana", nil)
		if !errors.Is(err, ErrNoOrderItems) {
			t.Fatalf("expected ErrNoOrderItems, got %v", err)
		}
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		svc := OrderService{Orders: newFakeOrderStore()}
		_, err := svc.Create(context.Background(), 3, "Ana", []domain.OrderItem{
			{Name: "Agua", Price: dec("1.80"), Quantity: 0},
		})
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
	})

	t.Run("rejects negative price", func(t *testing.T) {
		svc := OrderService{Orders: newFakeOrderStore()}
		_, err := svc.Create(context.Background(), 3, "Ana", []domain.OrderItem{
			{Name: "Agua", Price: dec("-1.80"), Quantity: 1},
		})
		if !errors.Is(err, ErrInvalidPrice) {
			t.Fatalf("expected ErrInvalidPrice, got %v", err)
		}
	})
}

func TestOrderServiceUpdate(t *testing.T) {
	t.Run("keeps the total computed at creation", func(t *testing.T) {
		store := newFakeOrderStore()
		svc := OrderService{Orders: store}

		created, err := svc.Create(context.Background(), 1, "Ana", []domain.OrderItem{
			{Name: "Merluza", Price: dec("14.00"), Quantity: 1},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		updated, err := svc.Update(context.Background(), created.ID, "Ana B", []domain.OrderItem{
			{Name: "Merluza", Price: dec("14.00"), Quantity: 1},
			{Name: "Tarta", Price: dec("5.50"), Quantity: 2},
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if !updated.TotalCost.Equal(created.TotalCost) {
			t.Fatalf("total changed on update: %s != %s", updated.TotalCost, created.TotalCost)
		}
		if len(updated.Items) != 2 || updated.Name != "Ana B" {
			t.Fatalf("items or name not replaced: %+v", updated)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		svc := OrderService{Orders: newFakeOrderStore()}
		_, err := svc.Update(context.Background(), "nope", "x", []domain.OrderItem{
			{Name: "Agua", Price: dec("1.80"), Quantity: 1},
		})
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestOrderServiceSettle(t *testing.T) {
	t.Run("archives, credits income and releases the table", func(t *testing.T) {
		store := newFakeOrderStore()
		svc := OrderService{Orders: store}

		created, err := svc.Create(context.Background(), 5, "Ana", []domain.OrderItem{
			{Name: "Entrecot", Price: dec("18.90"), Quantity: 2},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		archived, err := svc.Settle(context.Background(), 5)
		if err != nil {
			t.Fatalf("settle: %v", err)
		}
		if archived.OrderID != created.ID || !archived.TotalCost.Equal(dec("37.80")) {
			t.Fatalf("unexpected archive: %+v", archived)
		}
		if _, err := svc.Get(context.Background(), created.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("open order should be gone, got %v", err)
		}
		day := archived.Date.Format("2006-01-02")
		if got := store.income[day]; !got.Equal(dec("37.80")) {
			t.Fatalf("income for %s = %s, want 37.80", day, got)
		}
		if len(store.released) != 1 || store.released[0] != 5 {
			t.Fatalf("table not released: %v", store.released)
		}
	})

	t.Run("no open order for the table", func(t *testing.T) {
		svc := OrderService{Orders: newFakeOrderStore()}
		_, err := svc.Settle(context.Background(), 9)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("concurrent settlements of one table settle exactly once", func(t *testing.T) {
		store := newFakeOrderStore()
		svc := OrderService{Orders: store}

		if _, err := svc.Create(context.Background(), 7, "Ana", []domain.OrderItem{
			{Name: "Refresco", Price: dec("2.20"), Quantity: 1},
		}); err != nil {
			t.Fatalf("create: %v", err)
		}

		const settlers = 8
		errs := make(chan error, settlers)
		var wg sync.WaitGroup
		for i := 0; i < settlers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Settle(context.Background(), 7)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var won, lost int
		for err := range errs {
			switch {
			case err == nil:
				won++
			case errors.Is(err, repository.ErrNotFound):
				lost++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if won != 1 || lost != settlers-1 {
			t.Fatalf("won=%d lost=%d, want 1 and %d", won, lost, settlers-1)
		}
		if len(store.archived) != 1 {
			t.Fatalf("archived %d times", len(store.archived))
		}
	})
}
