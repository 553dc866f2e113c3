package store

import (
	"context"
	"time"
)

// Customer is a row in the customer store.
type Customer struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// FindCustomer filters customer lookups. All fields are optional; a zero
// value lists every customer in id order.
type FindCustomer struct {
	ID *int32
	// NameEqualFold matches the full name case-insensitively.
	NameEqualFold *string
	// NameContains matches a case-insensitive substring of the name.
	NameContains *string
	Limit        int
}

// UpdateCustomer carries a partial customer update keyed by id.
type UpdateCustomer struct {
	ID       int32
	NewEmail *string
}

// CustomerDriver is the customer store boundary.
type CustomerDriver interface {
	CreateCustomer(ctx context.Context, create *Customer) (*Customer, error)
	ListCustomers(ctx context.Context, find *FindCustomer) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, update *UpdateCustomer) error
	DeleteCustomer(ctx context.Context, id int32) error
	DescribeCustomers(ctx context.Context) ([]*ColumnInfo, error)

	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
