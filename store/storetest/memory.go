// Package storetest provides in-memory driver implementations for tests.
// The fakes mirror the filter semantics of the SQL drivers, so pipeline
// tests run against realistic store behavior without a database.
package storetest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hrygo/shopchat/store"
)

// Customers is an in-memory CustomerDriver.
type Customers struct {
	Rows    []*store.Customer
	PingErr error
	nextID  int32
}

// NewCustomers creates an in-memory customer store seeded with the given
// rows.
func NewCustomers(rows ...*store.Customer) *Customers {
	m := &Customers{nextID: 1}
	for _, r := range rows {
		m.Rows = append(m.Rows, r)
		if r.ID >= m.nextID {
			m.nextID = r.ID + 1
		}
	}
	return m
}

func (m *Customers) CreateCustomer(_ context.Context, create *store.Customer) (*store.Customer, error) {
	c := *create
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	m.nextID++
	m.Rows = append(m.Rows, &c)
	return &c, nil
}

func (m *Customers) ListCustomers(_ context.Context, find *store.FindCustomer) ([]*store.Customer, error) {
	var out []*store.Customer
	for _, c := range m.Rows {
		if find.ID != nil && c.ID != *find.ID {
			continue
		}
		if find.NameEqualFold != nil && !strings.EqualFold(c.Name, *find.NameEqualFold) {
			continue
		}
		if find.NameContains != nil && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(*find.NameContains)) {
			continue
		}
		out = append(out, c)
		if find.Limit > 0 && len(out) >= find.Limit {
			break
		}
	}
	return out, nil
}

func (m *Customers) UpdateCustomer(_ context.Context, update *store.UpdateCustomer) error {
	for _, c := range m.Rows {
		if c.ID == update.ID {
			if update.NewEmail != nil {
				c.Email = *update.NewEmail
			}
			return nil
		}
	}
	return errors.New("customer not found")
}

func (m *Customers) DeleteCustomer(_ context.Context, id int32) error {
	for i, c := range m.Rows {
		if c.ID == id {
			m.Rows = append(m.Rows[:i], m.Rows[i+1:]...)
			return nil
		}
	}
	return errors.New("customer not found")
}

func (m *Customers) DescribeCustomers(_ context.Context) ([]*store.ColumnInfo, error) {
	return []*store.ColumnInfo{
		{Column: "id", Type: "INTEGER", Nullable: "NO"},
		{Column: "name", Type: "TEXT", Nullable: "NO"},
		{Column: "email", Type: "TEXT", Nullable: "YES"},
		{Column: "created_at", Type: "TIMESTAMP", Nullable: "NO"},
	}, nil
}

func (m *Customers) Ping(context.Context) error    { return m.PingErr }
func (m *Customers) Migrate(context.Context) error { return nil }
func (m *Customers) Close() error                  { return nil }

// Products is an in-memory ProductDriver.
type Products struct {
	Rows    []*store.Product
	PingErr error
	nextID  int32
}

// NewProducts creates an in-memory product store seeded with the given
// rows.
func NewProducts(rows ...*store.Product) *Products {
	m := &Products{nextID: 1}
	for _, r := range rows {
		m.Rows = append(m.Rows, r)
		if r.ID >= m.nextID {
			m.nextID = r.ID + 1
		}
	}
	return m
}

func (m *Products) CreateProduct(_ context.Context, create *store.Product) (*store.Product, error) {
	p := *create
	p.ID = m.nextID
	m.nextID++
	m.Rows = append(m.Rows, &p)
	return &p, nil
}

func (m *Products) ListProducts(_ context.Context, find *store.FindProduct) ([]*store.Product, error) {
	var out []*store.Product
	for _, p := range m.Rows {
		if find.ID != nil && p.ID != *find.ID {
			continue
		}
		if find.NameEqualFold != nil && !strings.EqualFold(p.Name, *find.NameEqualFold) {
			continue
		}
		if find.NameContains != nil && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(*find.NameContains)) {
			continue
		}
		out = append(out, p)
		if find.Limit > 0 && len(out) >= find.Limit {
			break
		}
	}
	return out, nil
}

func (m *Products) UpdateProduct(_ context.Context, update *store.UpdateProduct) error {
	for _, p := range m.Rows {
		if p.ID == update.ID {
			if update.NewPrice != nil {
				p.Price = *update.NewPrice
			}
			return nil
		}
	}
	return errors.New("product not found")
}

func (m *Products) DeleteProduct(_ context.Context, id int32) error {
	for i, p := range m.Rows {
		if p.ID == id {
			m.Rows = append(m.Rows[:i], m.Rows[i+1:]...)
			return nil
		}
	}
	return errors.New("product not found")
}

func (m *Products) DeleteProductByName(_ context.Context, name string) (int64, error) {
	var kept []*store.Product
	var deleted int64
	for _, p := range m.Rows {
		if strings.EqualFold(p.Name, name) {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	m.Rows = kept
	return deleted, nil
}

func (m *Products) DescribeProducts(_ context.Context) ([]*store.ColumnInfo, error) {
	return []*store.ColumnInfo{
		{Column: "id", Type: "integer", Nullable: "NO"},
		{Column: "name", Type: "character varying", Nullable: "NO"},
		{Column: "price", Type: "numeric", Nullable: "NO"},
		{Column: "description", Type: "text", Nullable: "YES"},
	}, nil
}

func (m *Products) Ping(context.Context) error    { return m.PingErr }
func (m *Products) Migrate(context.Context) error { return nil }
func (m *Products) Close() error                  { return nil }

// Sales is an in-memory SaleDriver.
type Sales struct {
	Rows    []*store.Sale
	PingErr error
	nextID  int32
}

// NewSales creates an in-memory sales store seeded with the given rows.
func NewSales(rows ...*store.Sale) *Sales {
	m := &Sales{nextID: 1}
	for _, r := range rows {
		m.Rows = append(m.Rows, r)
		if r.ID >= m.nextID {
			m.nextID = r.ID + 1
		}
	}
	return m
}

func (m *Sales) CreateSale(_ context.Context, create *store.Sale) (*store.Sale, error) {
	s := *create
	s.ID = m.nextID
	s.SaleDate = time.Now()
	m.nextID++
	m.Rows = append(m.Rows, &s)
	return &s, nil
}

func (m *Sales) ListSales(_ context.Context, find *store.FindSale) ([]*store.Sale, error) {
	var out []*store.Sale
	for _, s := range m.Rows {
		if find.ID != nil && s.ID != *find.ID {
			continue
		}
		if find.Filter != nil && !matchSaleFilter(s, find.Filter) {
			continue
		}
		out = append(out, s)
		if find.Limit > 0 && len(out) >= find.Limit {
			break
		}
	}
	return out, nil
}

func matchSaleFilter(s *store.Sale, f *store.SaleFilter) bool {
	var v float64
	switch f.Field {
	case store.SaleFilterTotalPrice:
		v = s.TotalAmount
	case store.SaleFilterQuantity:
		v = float64(s.Quantity)
	case store.SaleFilterCustomerID:
		v = float64(s.CustomerID)
	case store.SaleFilterProductID:
		v = float64(s.ProductID)
	default:
		return false
	}
	switch f.Op {
	case store.SaleFilterGT:
		return v > f.Value
	case store.SaleFilterLT:
		return v < f.Value
	case store.SaleFilterEQ:
		return v == f.Value
	default:
		return false
	}
}

func (m *Sales) UpdateSale(_ context.Context, update *store.UpdateSale) error {
	for _, s := range m.Rows {
		if s.ID == update.ID {
			s.Quantity = update.NewQuantity
			s.TotalAmount = s.UnitPrice * float64(update.NewQuantity)
			return nil
		}
	}
	return errors.New("sale not found")
}

func (m *Sales) DeleteSale(_ context.Context, id int32) error {
	for i, s := range m.Rows {
		if s.ID == id {
			m.Rows = append(m.Rows[:i], m.Rows[i+1:]...)
			return nil
		}
	}
	return errors.New("sale not found")
}

func (m *Sales) DescribeSales(_ context.Context) ([]*store.ColumnInfo, error) {
	return []*store.ColumnInfo{
		{Column: "id", Type: "integer", Nullable: "NO"},
		{Column: "customer_id", Type: "integer", Nullable: "NO"},
		{Column: "product_id", Type: "integer", Nullable: "NO"},
		{Column: "quantity", Type: "integer", Nullable: "NO"},
		{Column: "unit_price", Type: "numeric", Nullable: "NO"},
		{Column: "total_amount", Type: "numeric", Nullable: "NO"},
		{Column: "sale_date", Type: "timestamp without time zone", Nullable: "NO"},
	}, nil
}

func (m *Sales) Ping(context.Context) error    { return m.PingErr }
func (m *Sales) Migrate(context.Context) error { return nil }
func (m *Sales) Close() error                  { return nil }

// Seeded builds a Store over the demo dataset and returns the fakes for
// direct inspection.
func Seeded() (*store.Store, *Customers, *Products, *Sales) {
	customers := NewCustomers(
		&store.Customer{ID: 1, Name: "Alice Johnson", Email: "alice@example.com", CreatedAt: time.Now()},
		&store.Customer{ID: 2, Name: "Bob Smith", Email: "bob@example.com", CreatedAt: time.Now()},
		&store.Customer{ID: 3, Name: "Charlie Brown", Email: "charlie@example.com", CreatedAt: time.Now()},
	)
	products := NewProducts(
		&store.Product{ID: 1, Name: "Widget", Price: 9.99, Description: "A useful widget"},
		&store.Product{ID: 2, Name: "Gadget", Price: 14.99, Description: "A clever gadget"},
		&store.Product{ID: 3, Name: "Tool", Price: 24.99, Description: "A sturdy tool"},
	)
	sales := NewSales(
		&store.Sale{ID: 1, CustomerID: 1, ProductID: 1, Quantity: 2, UnitPrice: 9.99, TotalAmount: 19.98, SaleDate: time.Now()},
		&store.Sale{ID: 2, CustomerID: 2, ProductID: 2, Quantity: 1, UnitPrice: 14.99, TotalAmount: 14.99, SaleDate: time.Now()},
		&store.Sale{ID: 3, CustomerID: 3, ProductID: 3, Quantity: 3, UnitPrice: 24.99, TotalAmount: 74.97, SaleDate: time.Now()},
	)
	return store.New(customers, products, sales, nil), customers, products, sales
}
