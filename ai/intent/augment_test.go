package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEntityNameDelete(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"delete Widget", "Widget"},
		{"remove product Gadget", "Gadget"},
		{"delete customer Bob Smith", "Bob Smith"},
		{"delete the product Widget", "Widget"},
		{"show all products", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractEntityName(tt.query), "query: %s", tt.query)
	}
}

func TestExtractEntityNameUpdate(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"update price of Tool to 30", "Tool"},
		{"change Widget price to 12.50", "Widget"},
		{"set email of Bob Smith to bob@new.example", "Bob Smith"},
		{"update Bob Smith email to bob@new.example", "Bob Smith"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractEntityName(tt.query), "query: %s", tt.query)
	}
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		query string
		want  float64
		found bool
	}{
		{"update price of Tool to 30", 30, true},
		{"set price = 12.50", 12.5, true},
		{"a product at $5.99", 5.99, true},
		{"costs 20 dollars", 20, true},
		{"show all products", 0, false},
	}
	for _, tt := range tests {
		got, found := extractPrice(tt.query)
		assert.Equal(t, tt.found, found, "query: %s", tt.query)
		assert.Equal(t, tt.want, got, "query: %s", tt.query)
	}
}

func TestExtractWhereClause(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"show sales where price > 14", "total_price > 14"},
		{"sales with total price above 50", "total_price > 50"},
		{"sales where price less than 20", "total_price < 20"},
		{"sales where quantity is 3", "quantity = 3"},
		{"sales with quantity over 2", "quantity > 2"},
		{"show sales by customer Alice Johnson", "customer_name = 'Alice Johnson'"},
		{"sales for product Widget", "product_name = 'Widget'"},
		// Directional keyword plus a bare number still yields a
		// threshold on the primary numeric field.
		{"sales over 100", "total_price > 100"},
		{"show all sales", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractWhereClause(tt.query), "query: %s", tt.query)
	}
}

func TestExtractColumns(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"show only name and total from sales", "customer_name,total_price"},
		{"display customer, product from sales", "customer_name,product_name"},
		// A single bare word without "only" is the table, not a column.
		{"show sales where price > 14", ""},
		{"show all sales", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractColumns(tt.query), "query: %s", tt.query)
	}
}

func TestExtractCreateCustomerName(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"create customer Dana White with email dana@example.com", "Dana White"},
		{"add new customer John Doe john@example.com", "John Doe"},
		{"create Dana White with dana@example.com", "Dana White"},
		{"show all customers", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractCreateCustomerName(tt.query), "query: %s", tt.query)
	}
}

func TestExtractLimit(t *testing.T) {
	limit, found := extractLimit("show first 5 customers")
	assert.True(t, found)
	assert.Equal(t, 5, limit)

	limit, found = extractLimit("top 10 sales")
	assert.True(t, found)
	assert.Equal(t, 10, limit)

	_, found = extractLimit("show all customers")
	assert.False(t, found)
}

func TestExtractDisplayFormat(t *testing.T) {
	assert.Equal(t, FormatDecimal, extractDisplayFormat("show sales with Decimal Value Formatting"))
	assert.Equal(t, FormatNullHandling, extractDisplayFormat("show sales and handle the null values"))
	assert.Equal(t, "", extractDisplayFormat("show all sales"))
}

func TestAugmentDeleteFillsName(t *testing.T) {
	it := &Intent{Operation: OpProduct, Action: ActionDelete, Args: map[string]any{}}
	augment("delete Widget", it)
	assert.Equal(t, "Widget", it.Args["name"])
}

func TestAugmentUpdateProductFillsPrice(t *testing.T) {
	it := &Intent{Operation: OpProduct, Action: ActionUpdate, Args: map[string]any{}}
	augment("update price of Tool to 30", it)
	assert.Equal(t, "Tool", it.Args["name"])
	assert.Equal(t, 30.0, it.Args["new_price"])
}

func TestAugmentUpdateCustomerFillsEmail(t *testing.T) {
	it := &Intent{Operation: OpCustomer, Action: ActionUpdate, Args: map[string]any{}}
	augment("update Bob Smith email to bob@new.example", it)
	assert.Equal(t, "Bob Smith", it.Args["name"])
	assert.Equal(t, "bob@new.example", it.Args["new_email"])
}

func TestAugmentNeverOverwrites(t *testing.T) {
	it := &Intent{Operation: OpProduct, Action: ActionUpdate, Args: map[string]any{
		"name":      "Gadget",
		"new_price": 99.0,
	}}
	augment("update price of Tool to 30", it)
	assert.Equal(t, "Gadget", it.Args["name"])
	assert.Equal(t, 99.0, it.Args["new_price"])
}

func TestAugmentSalesRead(t *testing.T) {
	it := &Intent{Operation: OpSales, Action: ActionRead, Args: map[string]any{}}
	augment("show sales where price > 14", it)
	assert.Equal(t, "total_price > 14", it.Args["where_clause"])
	assert.NotContains(t, it.Args, "columns")
}

func TestAugmentReadLimitAnyOperation(t *testing.T) {
	it := &Intent{Operation: OpCustomer, Action: ActionRead, Args: map[string]any{}}
	augment("show first 5 customers", it)
	assert.Equal(t, 5, it.Args["limit"])
}

func TestAugmentWhereClauseOnlyForSales(t *testing.T) {
	it := &Intent{Operation: OpCustomer, Action: ActionRead, Args: map[string]any{}}
	augment("show customers where price > 14", it)
	assert.NotContains(t, it.Args, "where_clause")
}

func TestAugmentCreateCustomer(t *testing.T) {
	it := &Intent{Operation: OpCustomer, Action: ActionCreate, Args: map[string]any{}}
	augment("create customer Dana White with email dana@example.com", it)
	assert.Equal(t, "Dana White", it.Args["name"])
	assert.Equal(t, "dana@example.com", it.Args["email"])
}
