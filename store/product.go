package store

import "context"

// Product is a row in the product store.
type Product struct {
	ID          int32   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// FindProduct filters product lookups.
type FindProduct struct {
	ID            *int32
	NameEqualFold *string
	NameContains  *string
	Limit         int
}

// UpdateProduct carries a partial product update keyed by id.
type UpdateProduct struct {
	ID       int32
	NewPrice *float64
}

// ProductDriver is the product store boundary.
type ProductDriver interface {
	CreateProduct(ctx context.Context, create *Product) (*Product, error)
	ListProducts(ctx context.Context, find *FindProduct) ([]*Product, error)
	UpdateProduct(ctx context.Context, update *UpdateProduct) error
	DeleteProduct(ctx context.Context, id int32) error
	// DeleteProductByName removes products matching the exact name.
	DeleteProductByName(ctx context.Context, name string) (int64, error)
	DescribeProducts(ctx context.Context) ([]*ColumnInfo, error)

	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
