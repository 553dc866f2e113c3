package store

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Seed inserts the demo dataset into any store that is still empty. It is
// idempotent: stores that already hold rows are left untouched.
func (s *Store) Seed(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.seedCustomers(gctx) })
	g.Go(func() error { return s.seedProducts(gctx) })
	if err := g.Wait(); err != nil {
		return err
	}
	// Sales reference customers and products, so they seed last.
	return s.seedSales(ctx)
}

func (s *Store) seedCustomers(ctx context.Context) error {
	existing, err := s.customers.ListCustomers(ctx, &FindCustomer{Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	demo := []*Customer{
		{Name: "Alice Johnson", Email: "alice@example.com"},
		{Name: "Bob Smith", Email: "bob@example.com"},
		{Name: "Charlie Brown", Email: "charlie@example.com"},
	}
	for _, c := range demo {
		if _, err := s.customers.CreateCustomer(ctx, c); err != nil {
			return err
		}
	}
	slog.Info("seeded demo customers", "count", len(demo))
	return nil
}

func (s *Store) seedProducts(ctx context.Context) error {
	existing, err := s.products.ListProducts(ctx, &FindProduct{Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	demo := []*Product{
		{Name: "Widget", Price: 9.99, Description: "A standard widget."},
		{Name: "Gadget", Price: 14.99, Description: "A useful gadget."},
		{Name: "Tool", Price: 24.99, Description: "A handy tool."},
	}
	for _, p := range demo {
		if _, err := s.products.CreateProduct(ctx, p); err != nil {
			return err
		}
	}
	slog.Info("seeded demo products", "count", len(demo))
	return nil
}

func (s *Store) seedSales(ctx context.Context) error {
	existing, err := s.sales.ListSales(ctx, &FindSale{Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	// Alice bought 2 Widgets, Bob 1 Gadget, Charlie 3 Tools.
	demo := []*Sale{
		{CustomerID: 1, ProductID: 1, Quantity: 2, UnitPrice: 9.99, TotalAmount: 19.98},
		{CustomerID: 2, ProductID: 2, Quantity: 1, UnitPrice: 14.99, TotalAmount: 14.99},
		{CustomerID: 3, ProductID: 3, Quantity: 3, UnitPrice: 24.99, TotalAmount: 74.97},
	}
	for _, sale := range demo {
		if _, err := s.sales.CreateSale(ctx, sale); err != nil {
			return err
		}
	}
	slog.Info("seeded demo sales", "count", len(demo))
	return nil
}
