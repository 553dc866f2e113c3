package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/shopchat/internal/profile"
	"github.com/hrygo/shopchat/store/cache"
)

// Store provides access to the three independent backing stores. Customers,
// products and sales each live in their own database; cross-store joins are
// done here in the application layer.
type Store struct {
	profile *profile.Profile

	customers CustomerDriver
	products  ProductDriver
	sales     SaleDriver

	// Enrichment caches. Sales rows reference customers and products by id;
	// resolving every row with a fresh lookup would hammer the other stores.
	customerCache *cache.LRUCache[int32, *Customer]
	productCache  *cache.LRUCache[int32, *Product]
}

// New creates a new instance of Store.
func New(customers CustomerDriver, products ProductDriver, sales SaleDriver, profile *profile.Profile) *Store {
	return &Store{
		profile:           profile,
		customers:         customers,
		products:          products,
		sales:             sales,
		customerCache: cache.NewLRUCache[int32, *Customer](1000, 10*time.Minute),
		productCache:  cache.NewLRUCache[int32, *Product](1000, 10*time.Minute),
	}
}

// Migrate creates missing tables on all three stores concurrently.
func (s *Store) Migrate(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.customers.Migrate(gctx) })
	g.Go(func() error { return s.products.Migrate(gctx) })
	g.Go(func() error { return s.sales.Migrate(gctx) })
	return g.Wait()
}

// Close closes all drivers, returning the first error encountered.
func (s *Store) Close() error {
	var firstErr error
	for _, closer := range []func() error{s.customers.Close, s.products.Close, s.sales.Close} {
		if err := closer(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PingCustomers reports connectivity of the customer store.
func (s *Store) PingCustomers(ctx context.Context) error { return s.customers.Ping(ctx) }

// PingProducts reports connectivity of the product store.
func (s *Store) PingProducts(ctx context.Context) error { return s.products.Ping(ctx) }

// PingSales reports connectivity of the sales store.
func (s *Store) PingSales(ctx context.Context) error { return s.sales.Ping(ctx) }

// Customer store delegation.

func (s *Store) CreateCustomer(ctx context.Context, create *Customer) (*Customer, error) {
	s.customerCache.Clear()
	return s.customers.CreateCustomer(ctx, create)
}

func (s *Store) ListCustomers(ctx context.Context, find *FindCustomer) ([]*Customer, error) {
	return s.customers.ListCustomers(ctx, find)
}

func (s *Store) UpdateCustomer(ctx context.Context, update *UpdateCustomer) error {
	s.customerCache.Invalidate(update.ID)
	return s.customers.UpdateCustomer(ctx, update)
}

func (s *Store) DeleteCustomer(ctx context.Context, id int32) error {
	s.customerCache.Invalidate(id)
	return s.customers.DeleteCustomer(ctx, id)
}

func (s *Store) DescribeCustomers(ctx context.Context) ([]*ColumnInfo, error) {
	return s.customers.DescribeCustomers(ctx)
}

// Product store delegation.

func (s *Store) CreateProduct(ctx context.Context, create *Product) (*Product, error) {
	return s.products.CreateProduct(ctx, create)
}

func (s *Store) ListProducts(ctx context.Context, find *FindProduct) ([]*Product, error) {
	return s.products.ListProducts(ctx, find)
}

func (s *Store) UpdateProduct(ctx context.Context, update *UpdateProduct) error {
	s.productCache.Invalidate(update.ID)
	return s.products.UpdateProduct(ctx, update)
}

func (s *Store) DeleteProduct(ctx context.Context, id int32) error {
	s.productCache.Invalidate(id)
	return s.products.DeleteProduct(ctx, id)
}

func (s *Store) DeleteProductByName(ctx context.Context, name string) (int64, error) {
	s.productCache.Clear()
	return s.products.DeleteProductByName(ctx, name)
}

func (s *Store) DescribeProducts(ctx context.Context) ([]*ColumnInfo, error) {
	return s.products.DescribeProducts(ctx)
}

// Sales store delegation.

func (s *Store) CreateSale(ctx context.Context, create *Sale) (*Sale, error) {
	return s.sales.CreateSale(ctx, create)
}

func (s *Store) ListSales(ctx context.Context, find *FindSale) ([]*Sale, error) {
	return s.sales.ListSales(ctx, find)
}

func (s *Store) UpdateSale(ctx context.Context, update *UpdateSale) error {
	return s.sales.UpdateSale(ctx, update)
}

func (s *Store) DeleteSale(ctx context.Context, id int32) error {
	return s.sales.DeleteSale(ctx, id)
}

func (s *Store) DescribeSales(ctx context.Context) ([]*ColumnInfo, error) {
	return s.sales.DescribeSales(ctx)
}

// GetCustomerInfo resolves a customer id to its display name and email for
// result enrichment. A failed or empty lookup degrades to a placeholder
// name and a blank email instead of failing the row.
func (s *Store) GetCustomerInfo(ctx context.Context, id int32) (string, string) {
	if c, ok := s.customerCache.Get(id); ok {
		return c.Name, c.Email
	}

	customers, err := s.customers.ListCustomers(ctx, &FindCustomer{ID: &id})
	if err != nil || len(customers) == 0 {
		if err != nil {
			slog.Debug("customer lookup failed", "id", id, "error", err)
		}
		return fmt.Sprintf("Unknown Customer (%d)", id), ""
	}

	s.customerCache.SetWithDefaultTTL(id, customers[0])
	return customers[0].Name, customers[0].Email
}

// GetCustomerName resolves a customer id to a display name.
func (s *Store) GetCustomerName(ctx context.Context, id int32) string {
	name, _ := s.GetCustomerInfo(ctx, id)
	return name
}

// GetProductInfo resolves a product id to its name and price. A failed
// lookup degrades to a placeholder with zero price.
func (s *Store) GetProductInfo(ctx context.Context, id int32) (string, float64) {
	if p, ok := s.productCache.Get(id); ok {
		return p.Name, p.Price
	}

	products, err := s.products.ListProducts(ctx, &FindProduct{ID: &id})
	if err != nil || len(products) == 0 {
		if err != nil {
			slog.Debug("product lookup failed", "id", id, "error", err)
		}
		return fmt.Sprintf("Unknown Product (%d)", id), 0
	}

	s.productCache.SetWithDefaultTTL(id, products[0])
	return products[0].Name, products[0].Price
}

// CustomerExists reports whether a customer id is present. Errors count as
// absent; the caller turns that into a user-visible status.
func (s *Store) CustomerExists(ctx context.Context, id int32) bool {
	customers, err := s.customers.ListCustomers(ctx, &FindCustomer{ID: &id})
	return err == nil && len(customers) > 0
}

// ProductExists reports whether a product id is present.
func (s *Store) ProductExists(ctx context.Context, id int32) bool {
	products, err := s.products.ListProducts(ctx, &FindProduct{ID: &id})
	return err == nil && len(products) > 0
}
