package service

import (
	"context"
	"errors"

	"github.com/juliancavero/mirestaurante-back/internal/domain"
	"github.com/juliancavero/mirestaurante-back/internal/ports"
)

var (
	ErrInvalidTableSize   = errors.New("table size must be a positive integer")
	ErrInvalidTableStatus = errors.New("unknown table status")
	ErrGuestNameRequired  = errors.New("guest name is required for an occupied table")
	ErrGuestNameForbidden = errors.New("guest name must be empty for an available table")
)

// TableService owns the transitions of a table between Available, Taken
// and Reserved.
type TableService struct {
	Tables ports.TableStore
}

func (s TableService) Create(ctx context.Context, size int) (*domain.Table, error) {
	if size < 1 {
		return nil, ErrInvalidTableSize
	}
	return s.Tables.Create(ctx, size)
}

func (s TableService) List(ctx context.Context, occupiedOnly bool) ([]domain.Table, error) {
	if occupiedOnly {
		return s.Tables.ListOccupied(ctx)
	}
	return s.Tables.List(ctx)
}

// Replace overwrites a table's mutable fields by id. The guest name must
// be present exactly when the table is Taken or Reserved.
func (s TableService) Replace(ctx context.Context, t domain.Table) (*domain.Table, error) {
	if t.Size < 1 {
		return nil, ErrInvalidTableSize
	}
	if !domain.ValidTableStatus(t.Status) {
		return nil, ErrInvalidTableStatus
	}
	hasName := t.GuestName != nil && *t.GuestName != ""
	if t.Status == domain.TableAvailable && hasName {
		return nil, ErrGuestNameForbidden
	}
	if t.Status != domain.TableAvailable && !hasName {
		return nil, ErrGuestNameRequired
	}
	if !hasName {
		t.GuestName = nil
	}
	return s.Tables.Replace(ctx, t)
}

func (s TableService) Delete(ctx context.Context, id int64) error {
	return s.Tables.Delete(ctx, id)
}
