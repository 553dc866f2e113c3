package sqlite

import (
	"context"
	"fmt"

	"github.com/hrygo/shopchat/store"
)

// CreateCustomer inserts a new customer and returns it with its assigned id.
func (d *DB) CreateCustomer(ctx context.Context, create *store.Customer) (*store.Customer, error) {
	stmt := `INSERT INTO customers (name, email) VALUES (?, ?) RETURNING id, created_at`
	if err := d.db.QueryRowContext(ctx, stmt, create.Name, create.Email).Scan(&create.ID, &create.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return create, nil
}

// ListCustomers retrieves customers matching the find filter in id order.
func (d *DB) ListCustomers(ctx context.Context, find *store.FindCustomer) ([]*store.Customer, error) {
	query := `SELECT id, name, email, created_at FROM customers WHERE 1=1`
	args := []any{}

	if find.ID != nil {
		query += " AND id = ?"
		args = append(args, *find.ID)
	}
	if find.NameEqualFold != nil {
		query += " AND LOWER(name) = LOWER(?)"
		args = append(args, *find.NameEqualFold)
	}
	if find.NameContains != nil {
		query += " AND LOWER(name) LIKE '%' || LOWER(?) || '%'"
		args = append(args, *find.NameContains)
	}

	query += " ORDER BY id ASC"
	if find.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*store.Customer
	for rows.Next() {
		var c store.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customer rows: %w", err)
	}

	return customers, nil
}

// UpdateCustomer applies a partial update keyed by id.
func (d *DB) UpdateCustomer(ctx context.Context, update *store.UpdateCustomer) error {
	if update.NewEmail == nil {
		return nil
	}

	result, err := d.db.ExecContext(ctx, `UPDATE customers SET email = ? WHERE id = ?`, *update.NewEmail, update.ID)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("customer %d not found", update.ID)
	}
	return nil
}

// DeleteCustomer removes a customer by id.
func (d *DB) DeleteCustomer(ctx context.Context, id int32) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("customer %d not found", id)
	}
	return nil
}

// DescribeCustomers returns column metadata via PRAGMA table_info.
func (d *DB) DescribeCustomers(ctx context.Context) ([]*store.ColumnInfo, error) {
	rows, err := d.db.QueryContext(ctx, `PRAGMA table_info(customers)`)
	if err != nil {
		return nil, fmt.Errorf("failed to describe customers: %w", err)
	}
	defer rows.Close()

	var columns []*store.ColumnInfo
	for rows.Next() {
		var (
			cid        int
			name       string
			typ        string
			notNull    int
			defaultVal any
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}

		nullable := "YES"
		if notNull == 1 {
			nullable = "NO"
		}
		columns = append(columns, &store.ColumnInfo{
			Column:   name,
			Type:     typ,
			Nullable: nullable,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column rows: %w", err)
	}

	return columns, nil
}
