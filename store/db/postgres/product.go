package postgres

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/hrygo/shopchat/store"
)

// ProductDB is the product store backed by PostgreSQL.
type ProductDB struct {
	*DB
}

// NewProductDB opens the product database.
func NewProductDB(dsn string) (*ProductDB, error) {
	db, err := NewDB(dsn)
	if err != nil {
		return nil, err
	}
	return &ProductDB{DB: db}, nil
}

// Migrate creates the products table if it does not exist.
func (d *ProductDB) Migrate(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS products (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		price NUMERIC(10, 4) NOT NULL,
		description TEXT
	)`
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to create products table")
	}
	return nil
}

// CreateProduct inserts a new product and returns it with its assigned id.
func (d *ProductDB) CreateProduct(ctx context.Context, create *store.Product) (*store.Product, error) {
	stmt := `INSERT INTO products (name, price, description) VALUES ($1, $2, $3) RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, create.Name, create.Price, create.Description).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return create, nil
}

// ListProducts retrieves products matching the find filter in id order.
func (d *ProductDB) ListProducts(ctx context.Context, find *store.FindProduct) ([]*store.Product, error) {
	query := `SELECT id, name, price, COALESCE(description, '') FROM products WHERE 1=1`
	args := []any{}
	argIdx := 1

	if find.ID != nil {
		query += fmt.Sprintf(" AND id = %s", placeholder(argIdx))
		args = append(args, *find.ID)
		argIdx++
	}
	if find.NameEqualFold != nil {
		query += fmt.Sprintf(" AND LOWER(name) = LOWER(%s)", placeholder(argIdx))
		args = append(args, *find.NameEqualFold)
		argIdx++
	}
	if find.NameContains != nil {
		query += fmt.Sprintf(" AND name ILIKE '%%' || %s || '%%'", placeholder(argIdx))
		args = append(args, *find.NameContains)
	}

	query += " ORDER BY id ASC"
	if find.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*store.Product
	for rows.Next() {
		var p store.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}

	return products, nil
}

// UpdateProduct applies a partial update keyed by id.
func (d *ProductDB) UpdateProduct(ctx context.Context, update *store.UpdateProduct) error {
	if update.NewPrice == nil {
		return nil
	}

	result, err := d.db.ExecContext(ctx, `UPDATE products SET price = $1 WHERE id = $2`, *update.NewPrice, update.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("product %d not found", update.ID)
	}
	return nil
}

// DeleteProduct removes a product by id.
func (d *ProductDB) DeleteProduct(ctx context.Context, id int32) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("product %d not found", id)
	}
	return nil
}

// DeleteProductByName removes products matching the exact name and returns
// the number of rows removed.
func (d *ProductDB) DeleteProductByName(ctx context.Context, name string) (int64, error) {
	result, err := d.db.ExecContext(ctx, `DELETE FROM products WHERE name = $1`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to delete product by name: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

// DescribeProducts returns column metadata from information_schema.
func (d *ProductDB) DescribeProducts(ctx context.Context) ([]*store.ColumnInfo, error) {
	return describeTable(ctx, d.db, "products")
}
