package store

import (
	"context"
	"time"
)

// Sale is a row in the sales store. Customer and product are referenced by
// id only; display names live in the other stores and are joined at the
// dispatch layer.
type Sale struct {
	ID          int32     `json:"id"`
	CustomerID  int32     `json:"customer_id"`
	ProductID   int32     `json:"product_id"`
	Quantity    int32     `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalAmount float64   `json:"total_amount"`
	SaleDate    time.Time `json:"sale_date"`
}

// SaleFilterField enumerates the sale columns a filter predicate may target.
type SaleFilterField string

const (
	SaleFilterTotalPrice SaleFilterField = "total_price"
	SaleFilterQuantity   SaleFilterField = "quantity"
	SaleFilterCustomerID SaleFilterField = "customer_id"
	SaleFilterProductID  SaleFilterField = "product_id"
)

// SaleFilterOp enumerates supported comparison operators.
type SaleFilterOp string

const (
	SaleFilterGT SaleFilterOp = ">"
	SaleFilterLT SaleFilterOp = "<"
	SaleFilterEQ SaleFilterOp = "="
)

// SaleFilter is a single parameterized predicate. The sale store accepts at
// most one predicate per read; richer conjunctions are not supported.
type SaleFilter struct {
	Field SaleFilterField
	Op    SaleFilterOp
	Value float64
}

// FindSale filters sale lookups.
type FindSale struct {
	ID     *int32
	Filter *SaleFilter
	Limit  int
}

// UpdateSale updates the quantity of a sale; the total amount is
// recalculated from the stored unit price.
type UpdateSale struct {
	ID          int32
	NewQuantity int32
}

// SaleDriver is the sales store boundary.
type SaleDriver interface {
	CreateSale(ctx context.Context, create *Sale) (*Sale, error)
	ListSales(ctx context.Context, find *FindSale) ([]*Sale, error)
	UpdateSale(ctx context.Context, update *UpdateSale) error
	DeleteSale(ctx context.Context, id int32) error
	DescribeSales(ctx context.Context) ([]*ColumnInfo, error)

	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
