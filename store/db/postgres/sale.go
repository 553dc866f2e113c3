package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	"github.com/hrygo/shopchat/store"
)

// SalesDB is the sales store backed by PostgreSQL. It runs against its own
// database, separate from the product store.
type SalesDB struct {
	*DB
}

// NewSalesDB opens the sales database.
func NewSalesDB(dsn string) (*SalesDB, error) {
	db, err := NewDB(dsn)
	if err != nil {
		return nil, err
	}
	return &SalesDB{DB: db}, nil
}

// Migrate creates the sales table if it does not exist.
func (d *SalesDB) Migrate(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS sales (
		id SERIAL PRIMARY KEY,
		customer_id INT NOT NULL,
		product_id INT NOT NULL,
		quantity INT NOT NULL DEFAULT 1,
		unit_price NUMERIC(10, 4) NOT NULL,
		total_amount NUMERIC(10, 4) NOT NULL,
		sale_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to create sales table")
	}
	return nil
}

// saleFilterColumns maps filter fields to real columns. Only fields listed
// here may appear in a predicate; everything else is rejected before SQL is
// built.
var saleFilterColumns = map[store.SaleFilterField]string{
	store.SaleFilterTotalPrice: "total_amount",
	store.SaleFilterQuantity:   "quantity",
	store.SaleFilterCustomerID: "customer_id",
	store.SaleFilterProductID:  "product_id",
}

var saleFilterOps = map[store.SaleFilterOp]string{
	store.SaleFilterGT: ">",
	store.SaleFilterLT: "<",
	store.SaleFilterEQ: "=",
}

// CreateSale inserts a new sale and returns it with its assigned id.
func (d *SalesDB) CreateSale(ctx context.Context, create *store.Sale) (*store.Sale, error) {
	stmt := `INSERT INTO sales (customer_id, product_id, quantity, unit_price, total_amount)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, sale_date`
	err := d.db.QueryRowContext(ctx, stmt,
		create.CustomerID, create.ProductID, create.Quantity, create.UnitPrice, create.TotalAmount).
		Scan(&create.ID, &create.SaleDate)
	if err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}
	return create, nil
}

// ListSales retrieves sales matching the find filter in id order. At most
// one predicate is supported per read.
func (d *SalesDB) ListSales(ctx context.Context, find *store.FindSale) ([]*store.Sale, error) {
	query := `SELECT id, customer_id, product_id, quantity, unit_price, total_amount, sale_date
		FROM sales WHERE 1=1`
	args := []any{}
	argIdx := 1

	if find.ID != nil {
		query += fmt.Sprintf(" AND id = %s", placeholder(argIdx))
		args = append(args, *find.ID)
		argIdx++
	}
	if find.Filter != nil {
		column, ok := saleFilterColumns[find.Filter.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported filter field %q", find.Filter.Field)
		}
		op, ok := saleFilterOps[find.Filter.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported filter operator %q", find.Filter.Op)
		}
		query += fmt.Sprintf(" AND %s %s %s", column, op, placeholder(argIdx))
		args = append(args, find.Filter.Value)
	}

	query += " ORDER BY id ASC"
	if find.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	var sales []*store.Sale
	for rows.Next() {
		var s store.Sale
		if err := rows.Scan(&s.ID, &s.CustomerID, &s.ProductID, &s.Quantity, &s.UnitPrice, &s.TotalAmount, &s.SaleDate); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale rows: %w", err)
	}

	return sales, nil
}

// UpdateSale sets a new quantity; the total amount is recalculated from the
// stored unit price.
func (d *SalesDB) UpdateSale(ctx context.Context, update *store.UpdateSale) error {
	stmt := `UPDATE sales SET quantity = $1, total_amount = unit_price * $1 WHERE id = $2`
	result, err := d.db.ExecContext(ctx, stmt, update.NewQuantity, update.ID)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("sale %d not found", update.ID)
	}
	return nil
}

// DeleteSale removes a sale by id.
func (d *SalesDB) DeleteSale(ctx context.Context, id int32) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("sale %d not found", id)
	}
	return nil
}

// DescribeSales returns column metadata from information_schema.
func (d *SalesDB) DescribeSales(ctx context.Context) ([]*store.ColumnInfo, error) {
	return describeTable(ctx, d.db, "sales")
}

// describeTable queries information_schema.columns for one table.
func describeTable(ctx context.Context, db *sql.DB, tableName string) ([]*store.ColumnInfo, error) {
	query := `SELECT column_name, data_type, is_nullable, character_maximum_length
		FROM information_schema.columns
		WHERE table_name = $1
		ORDER BY ordinal_position`

	rows, err := db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []*store.ColumnInfo
	for rows.Next() {
		var (
			col       store.ColumnInfo
			maxLength sql.NullInt64
		)
		if err := rows.Scan(&col.Column, &col.Type, &col.Nullable, &maxLength); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		if maxLength.Valid {
			col.MaxLength = &maxLength.Int64
		}
		columns = append(columns, &col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column rows: %w", err)
	}

	return columns, nil
}
