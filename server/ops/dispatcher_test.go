package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/shopchat/ai/intent"
)

func newIntent(operation string, action intent.Action, args map[string]any) *intent.Intent {
	if args == nil {
		args = map[string]any{}
	}
	return &intent.Intent{Operation: operation, Action: action, Args: args}
}

func TestDispatchCustomerCreate(t *testing.T) {
	s, customers, _, _ := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpCustomer, intent.ActionCreate, map[string]any{"name": "Dana White", "email": "dana@example.com"}),
		"create customer Dana White with email dana@example.com")
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, env.Status)
	require.Len(t, env.Rows, 1)
	assert.Equal(t, "Dana White", env.Rows[0]["name"])
	assert.Contains(t, env.QueryExecuted, "INSERT INTO customers")
	assert.Len(t, customers.Rows, 4)
}

func TestDispatchCustomerCreateRequiresName(t *testing.T) {
	s, _, _, _ := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpCustomer, intent.ActionCreate, nil), "create a customer")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, env.Status)
	assert.Contains(t, env.Message, "name is required")
}

func TestDispatchCustomerRead(t *testing.T) {
	s, _, _, _ := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpCustomer, intent.ActionRead, nil), "show all customers")
	require.NoError(t, err)
	assert.Equal(t, 3, env.RowCount)
	assert.Equal(t, "SELECT * FROM customers", env.QueryExecuted)
}

func TestDispatchCustomerReadWithLimit(t *testing.T) {
	s, _, _, _ := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpCustomer, intent.ActionRead, map[string]any{"limit": 2}), "show first 2 customers")
	require.NoError(t, err)
	assert.Equal(t, 2, env.RowCount)
	assert.Contains(t, env.QueryExecuted, "LIMIT 2")
}

func TestDispatchCustomerUpdateEmailByName(t *testing.T) {
	s, customers, _, _ := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpCustomer, intent.ActionUpdate, map[string]any{"name": "Bob", "new_email": "bob@corp.example"}),
		"update Bob's email to bob@corp.example")
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, env.Status)
	assert.Equal(t, "bob@corp.example", customers.Rows[1].Email)
}

func TestDispatchCustomerDeleteAmbiguousName(t *testing.T) {
	s, customers, _, _ := newTestStore()
	customers.Rows = append(customers.Rows, customers.Rows[0])
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpCustomer, intent.ActionDelete, map[string]any{"name": "Alice"}), "delete Alice")
	require.NoError(t, err)

	assert.Equal(t, StatusAmbiguous, env.Status)
	assert.NotEmpty(t, env.Candidates)
}

func TestDispatchProductDeleteByName(t *testing.T) {
	s, _, products, _ := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpProduct, intent.ActionDelete, map[string]any{"name": "Widget"}), "delete Widget")
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, env.Status)
	assert.Equal(t, int64(1), env.Rows[0]["deleted"])
	assert.Len(t, products.Rows, 2)
}

func TestDispatchProductDeleteUnknownName(t *testing.T) {
	s, _, _, _ := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpProduct, intent.ActionDelete, map[string]any{"name": "Sprocket"}), "delete Sprocket")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, env.Status)
}

func TestDispatchProductUpdatePriceByName(t *testing.T) {
	s, _, products, _ := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpProduct, intent.ActionUpdate, map[string]any{"name": "Tool", "new_price": 30.0}),
		"update price of Tool to 30")
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, env.Status)
	assert.Equal(t, 30.0, products.Rows[2].Price)
	assert.Contains(t, env.QueryExecuted, "UPDATE products SET price = 30.00")
}

func TestDispatchSalesReadEnrichesNames(t *testing.T) {
	s, _, _, _ := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpSales, intent.ActionRead, nil), "show all sales")
	require.NoError(t, err)

	require.Equal(t, 3, env.RowCount)
	assert.Equal(t, "Alice Johnson", env.Rows[0]["customer_name"])
	assert.Equal(t, "alice@example.com", env.Rows[0]["customer_email"])
	assert.Equal(t, "Widget", env.Rows[0]["product_name"])
}

func TestDispatchSalesReadNumericWhereClause(t *testing.T) {
	s, _, _, _ := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpSales, intent.ActionRead, map[string]any{"where_clause": "total_price > 15"}),
		"show sales where price > 15")
	require.NoError(t, err)

	assert.Equal(t, 2, env.RowCount)
	assert.Contains(t, env.QueryExecuted, "total_price > 15")
}

func TestDispatchSalesReadNameWhereClause(t *testing.T) {
	s, _, _, _ := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpSales, intent.ActionRead, map[string]any{"where_clause": "product_name = 'Gadget'"}),
		"show sales for Gadget")
	require.NoError(t, err)

	require.Equal(t, 1, env.RowCount)
	assert.Equal(t, int32(2), env.Rows[0]["product_id"])
}

func TestDispatchSalesReadRejectsConjunction(t *testing.T) {
	s, _, _, _ := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpSales, intent.ActionRead, map[string]any{"where_clause": "quantity > 1 AND total_price < 50"}),
		"show sales with quantity over 1 and total under 50")
	require.NoError(t, err)

	assert.Equal(t, StatusNotFound, env.Status)
	assert.Contains(t, env.Message, "single filter")
}

func TestDispatchSalesReadColumnsProjection(t *testing.T) {
	s, _, _, _ := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpSales, intent.ActionRead, map[string]any{"columns": "customer_name,total_amount"}),
		"show customer name and total for all sales")
	require.NoError(t, err)

	require.Equal(t, 3, env.RowCount)
	assert.Len(t, env.Rows[0], 2)
	assert.Contains(t, env.Rows[0], "customer_name")
	assert.Contains(t, env.Rows[0], "total_amount")
}

func TestDispatchSalesReadColumnsAcceptsSynonyms(t *testing.T) {
	s, _, _, _ := newTestStore()
	d := NewDispatcher(s)

	// Extracted column names use the query's vocabulary, not the row
	// keys; "total_price" must still project the amount column.
	env, err := d.Execute(context.Background(),
		newIntent(intent.OpSales, intent.ActionRead, map[string]any{"columns": "customer_name,total_price"}),
		"show customer name and total price for all sales")
	require.NoError(t, err)

	require.Equal(t, 3, env.RowCount)
	require.Len(t, env.Rows[0], 2)
	assert.Equal(t, "Alice Johnson", env.Rows[0]["customer_name"])
	assert.InDelta(t, 19.98, env.Rows[0]["total_amount"].(float64), 0.001)
}

func TestDispatchSalesReadColumnsEmailSynonym(t *testing.T) {
	s, _, _, _ := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpSales, intent.ActionRead, map[string]any{"columns": "customer_name,email"}),
		"show customer names and emails for all sales")
	require.NoError(t, err)

	require.Equal(t, 3, env.RowCount)
	require.Len(t, env.Rows[0], 2)
	assert.Equal(t, "alice@example.com", env.Rows[0]["customer_email"])
}

func TestDispatchSalesCreateDefaultsUnitPrice(t *testing.T) {
	s, _, _, sales := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpSales, intent.ActionCreate, map[string]any{
			"customer_name": "Charlie",
			"product_name":  "Gadget",
			"quantity":      2,
		}), "record a sale of 2 Gadgets to Charlie")
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, env.Status)
	require.Len(t, sales.Rows, 4)
	created := sales.Rows[3]
	assert.Equal(t, int32(3), created.CustomerID)
	assert.Equal(t, int32(2), created.ProductID)
	assert.Equal(t, 14.99, created.UnitPrice)
	assert.InDelta(t, 29.98, created.TotalAmount, 0.001)
}

func TestDispatchSalesCreateUnknownCustomer(t *testing.T) {
	s, _, _, sales := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpSales, intent.ActionCreate, map[string]any{
			"customer_name": "Nobody",
			"product_name":  "Widget",
		}), "record a sale of a Widget to Nobody")
	require.NoError(t, err)

	assert.Equal(t, StatusNotFound, env.Status)
	assert.Len(t, sales.Rows, 3)
}

func TestDispatchSalesUpdateQuantity(t *testing.T) {
	s, _, _, sales := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpSales, intent.ActionUpdate, map[string]any{"sale_id": 1, "new_quantity": 5}),
		"change sale 1 quantity to 5")
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, env.Status)
	assert.Equal(t, int32(5), sales.Rows[0].Quantity)
	assert.InDelta(t, 49.95, sales.Rows[0].TotalAmount, 0.001)
}

func TestDispatchSalesDeleteRequiresID(t *testing.T) {
	s, _, _, _ := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpSales, intent.ActionDelete, nil), "delete the sale")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, env.Status)
}

func TestDispatchDescribeWithTableAlias(t *testing.T) {
	s, _, _, _ := newTestStore()
	d := NewDispatcher(s)

	// A describe intent landing on sales_crud can still describe the
	// customer table when the query named it.
	env, err := d.Execute(context.Background(),
		newIntent(intent.OpSales, intent.ActionDescribe, map[string]any{"table_name": "customer table"}),
		"describe the customer table")
	require.NoError(t, err)

	assert.Equal(t, "DESCRIBE customers", env.QueryExecuted)
	require.Equal(t, 4, env.RowCount)
	assert.Equal(t, "id", env.Rows[0]["column"])
}

func TestDispatchDescribeDefaultsToOwnTable(t *testing.T) {
	s, _, _, _ := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpProduct, intent.ActionDescribe, nil), "what columns does the product table have")
	require.NoError(t, err)
	assert.Equal(t, "DESCRIBE products", env.QueryExecuted)
}

func TestDispatchSalesDeleteMissingIDBecomesErrorStatus(t *testing.T) {
	s, _, _, sales := newTestStore()
	d := NewDispatcher(s)

	env, err := d.Execute(context.Background(),
		newIntent(intent.OpSales, intent.ActionDelete, map[string]any{"sale_id": 999}),
		"delete sale 999")
	require.NoError(t, err)

	assert.Equal(t, StatusError, env.Status)
	assert.Contains(t, env.Message, "sale not found")
	assert.Empty(t, env.Rows)
	assert.Len(t, sales.Rows, 3)
}

func TestDispatchUnknownOperationErrors(t *testing.T) {
	s, _, _, _ := newTestStore()
	d := NewDispatcher(s)

	_, err := d.Execute(context.Background(),
		newIntent("inventory_crud", intent.ActionRead, nil), "show inventory")
	assert.Error(t, err)
}

func TestDispatchReadIsIdempotent(t *testing.T) {
	s, _, _, _ := newTestStore()
	d := NewDispatcher(s)

	it := newIntent(intent.OpSales, intent.ActionRead, map[string]any{"where_clause": "quantity > 1"})
	first, err := d.Execute(context.Background(), it, "sales with quantity over 1")
	require.NoError(t, err)
	second, err := d.Execute(context.Background(), it, "sales with quantity over 1")
	require.NoError(t, err)

	assert.Equal(t, first.RowCount, second.RowCount)
	assert.Equal(t, first.QueryExecuted, second.QueryExecuted)
}
