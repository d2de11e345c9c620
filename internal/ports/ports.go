package ports

import (
	"context"
	"time"

	"github.com/juliancavero/mirestaurante-back/internal/domain"
)

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// TableStore persists dining tables.
type TableStore interface {
	Create(ctx context.Context, size int) (*domain.Table, error)
	List(ctx context.Context) ([]domain.Table, error)
	ListOccupied(ctx context.Context) ([]domain.Table, error)
	Get(ctx context.Context, id int64) (*domain.Table, error)
	Replace(ctx context.Context, t domain.Table) (*domain.Table, error)
	Delete(ctx context.Context, id int64) error
}

// OrderStore persists open orders and owns the settlement write path.
// Settle must be atomic: archive the open order under day, append its
// total to the income ledger, delete it and release its table — or do
// none of it.
type OrderStore interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, id string, name string, items []domain.OrderItem) (*domain.Order, error)
	Settle(ctx context.Context, tableID int64, day time.Time) (*domain.ArchivedOrder, error)
}

// UserStore persists credential records and their paired employees.
type UserStore interface {
	GetByUserName(ctx context.Context, userName string) (*domain.User, error)
	// CreateWithEmployee writes both rows in one transaction.
	CreateWithEmployee(ctx context.Context, user domain.User, employee domain.Employee) error
}

// EmployeeStore is the subset of the employee repository the credential
// gate needs to resolve a role at login.
type EmployeeStore interface {
	GetByUserName(ctx context.Context, userName string) (*domain.Employee, error)
}

// SecretStore holds the single rotatable registration secret.
type SecretStore interface {
	Get(ctx context.Context) (string, error)
	Save(ctx context.Context, key string) error
}
