package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enumerations
const (
	TableAvailable TableStatus = "Available"
	TableTaken     TableStatus = "Taken"
	TableReserved  TableStatus = "Reserved"

	RoleWaiter  EmployeeRole = "Waiter"
	RoleManager EmployeeRole = "Manager"
	RoleOwner   EmployeeRole = "Owner"
)

type TableStatus string
type EmployeeRole string

// ValidTableStatus reports whether s is one of the known table states.
func ValidTableStatus(s TableStatus) bool {
	switch s {
	case TableAvailable, TableTaken, TableReserved:
		return true
	}
	return false
}

// ValidEmployeeRole reports whether r is one of the known roles.
func ValidEmployeeRole(r EmployeeRole) bool {
	switch r {
	case RoleWaiter, RoleManager, RoleOwner:
		return true
	}
	return false
}

// Table is a physical seating unit. GuestName is set if and only if the
// table is Taken or Reserved.
type Table struct {
	ID        int64
	Status    TableStatus
	Size      int
	GuestName *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MenuItem is one dish of the carta, always nested inside its category.
type MenuItem struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Photo string
}

type MenuCategory struct {
	ID    int64
	Name  string
	Items []MenuItem
}

// OrderItem is one line of an open or archived order. Price is the
// per-unit price the client sent when the line was added.
type OrderItem struct {
	Name     string
	Price    decimal.Decimal
	Photo    string
	Quantity int
}

// Order is an open tab tied to one table. TotalCost is computed once at
// creation and never recomputed afterwards.
type Order struct {
	ID        string
	TableID   int64
	Name      string
	Items     []OrderItem
	TotalCost decimal.Decimal
	CreatedAt time.Time
}

// ArchivedOrder is an order that has been settled. Rows are immutable.
type ArchivedOrder struct {
	ID        int64
	OrderID   string
	TableID   int64
	Name      string
	Items     []OrderItem
	TotalCost decimal.Decimal
	Date      time.Time // calendar day of settlement
}

// DailyIncome is the summed income of one calendar day, computed on read
// from the stored per-settlement contributions.
type DailyIncome struct {
	Date        time.Time
	TotalIncome decimal.Decimal
}

type Employee struct {
	ID       int64
	Name     string
	Role     EmployeeRole
	Payslip  decimal.Decimal
	UserName string
	DNI      string
}

// User is a credential record; every user has an employee row with the
// same userName, created together at registration.
type User struct {
	ID           int64
	UserName     string
	PasswordHash string
	DNI          string
	CreatedAt    time.Time
}
