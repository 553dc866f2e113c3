package ops

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/hrygo/shopchat/ai/intent"
	"github.com/hrygo/shopchat/ai/resolve"
	"github.com/hrygo/shopchat/store"
)

// Envelope statuses. Resolution misses, ambiguity and backend failures
// are all ordinary envelope outcomes; Execute only errors when asked to
// run an operation it has never heard of.
const (
	StatusSuccess   = "success"
	StatusNotFound  = "not_found"
	StatusAmbiguous = "ambiguous"
	StatusError     = "error"
)

// Envelope is the structured result of one dispatched operation.
type Envelope struct {
	Operation     string              `json:"operation"`
	Action        string              `json:"action"`
	QueryExecuted string              `json:"query_executed,omitempty"`
	Rows          []map[string]any    `json:"rows,omitempty"`
	RowCount      int                 `json:"row_count"`
	Status        string              `json:"status"`
	Message       string              `json:"message,omitempty"`
	Candidates    []resolve.Candidate `json:"candidates,omitempty"`
}

// Dispatcher executes parsed intents against the backing stores. Display
// names in arguments are resolved to ids before any store call; the
// stores never see free-form user text in a key position.
type Dispatcher struct {
	store    *store.Store
	resolver *resolve.Resolver
}

// NewDispatcher creates a dispatcher over the given store.
func NewDispatcher(s *store.Store) *Dispatcher {
	return &Dispatcher{
		store:    s,
		resolver: resolve.NewResolver(s, s),
	}
}

// Execute runs one intent to completion and reports what happened.
func (d *Dispatcher) Execute(ctx context.Context, it *intent.Intent, query string) (*Envelope, error) {
	env := &Envelope{
		Operation: it.Operation,
		Action:    string(it.Action),
		Status:    StatusSuccess,
	}

	start := time.Now()
	var err error
	switch it.Operation {
	case intent.OpCustomer:
		err = d.executeCustomer(ctx, it, env)
	case intent.OpProduct:
		err = d.executeProduct(ctx, it, env)
	case intent.OpSales:
		err = d.executeSales(ctx, it, env)
	default:
		return nil, fmt.Errorf("unknown operation %q", it.Operation)
	}
	if err != nil {
		// Backend failures stay on the envelope so the caller can still
		// narrate them; the store's own message is the failure string.
		slog.Warn("operation failed",
			"operation", it.Operation,
			"action", it.Action,
			"error", err,
		)
		env.Status = StatusError
		env.Message = err.Error()
		env.Rows = nil
	}

	env.RowCount = len(env.Rows)
	slog.Debug("operation dispatched",
		"operation", it.Operation,
		"action", it.Action,
		"status", env.Status,
		"rows", env.RowCount,
		"duration", time.Since(start),
	)
	return env, nil
}

func (d *Dispatcher) executeCustomer(ctx context.Context, it *intent.Intent, env *Envelope) error {
	switch it.Action {
	case intent.ActionCreate:
		name := argString(it.Args, "name")
		if name == "" {
			env.Status = StatusNotFound
			env.Message = "customer name is required to create a customer"
			return nil
		}
		created, err := d.store.CreateCustomer(ctx, &store.Customer{
			Name:  name,
			Email: argString(it.Args, "email"),
		})
		if err != nil {
			return fmt.Errorf("create customer: %w", err)
		}
		env.QueryExecuted = fmt.Sprintf("INSERT INTO customers (name, email) VALUES (%s, %s)",
			quoteSQL(created.Name), quoteSQL(created.Email))
		env.Rows = []map[string]any{customerRow(created)}
		return nil

	case intent.ActionRead:
		find := &store.FindCustomer{Limit: argInt(it.Args, "limit")}
		clauses := []string{}
		if name := argString(it.Args, "name"); name != "" {
			find.NameContains = &name
			clauses = append(clauses, fmt.Sprintf("name LIKE '%%%s%%'", name))
		}
		if id, ok := argInt32(it.Args, "customer_id"); ok {
			find.ID = &id
			clauses = append(clauses, fmt.Sprintf("id = %d", id))
		}
		customers, err := d.store.ListCustomers(ctx, find)
		if err != nil {
			return fmt.Errorf("list customers: %w", err)
		}
		env.QueryExecuted = selectQuery("customers", clauses, find.Limit)
		env.Rows = make([]map[string]any, 0, len(customers))
		for _, c := range customers {
			env.Rows = append(env.Rows, customerRow(c))
		}
		return nil

	case intent.ActionUpdate:
		newEmail := argString(it.Args, "new_email")
		if newEmail == "" {
			newEmail = argString(it.Args, "email")
		}
		if newEmail == "" {
			env.Status = StatusNotFound
			env.Message = "a new email address is required to update a customer"
			return nil
		}
		id, ok := d.resolveCustomerArg(ctx, it.Args, env)
		if !ok {
			return nil
		}
		if err := d.store.UpdateCustomer(ctx, &store.UpdateCustomer{ID: id, NewEmail: &newEmail}); err != nil {
			return fmt.Errorf("update customer: %w", err)
		}
		env.QueryExecuted = fmt.Sprintf("UPDATE customers SET email = %s WHERE id = %d", quoteSQL(newEmail), id)
		env.Rows = []map[string]any{{"id": id, "email": newEmail}}
		return nil

	case intent.ActionDelete:
		id, ok := d.resolveCustomerArg(ctx, it.Args, env)
		if !ok {
			return nil
		}
		if err := d.store.DeleteCustomer(ctx, id); err != nil {
			return fmt.Errorf("delete customer: %w", err)
		}
		env.QueryExecuted = fmt.Sprintf("DELETE FROM customers WHERE id = %d", id)
		env.Rows = []map[string]any{{"id": id}}
		return nil

	case intent.ActionDescribe:
		return d.describeTable(ctx, it, env, "customers")

	default:
		return fmt.Errorf("unsupported action %q for %s", it.Action, it.Operation)
	}
}

func (d *Dispatcher) executeProduct(ctx context.Context, it *intent.Intent, env *Envelope) error {
	switch it.Action {
	case intent.ActionCreate:
		name := argString(it.Args, "name")
		if name == "" {
			env.Status = StatusNotFound
			env.Message = "product name is required to create a product"
			return nil
		}
		price, _ := argFloat(it.Args, "price")
		created, err := d.store.CreateProduct(ctx, &store.Product{
			Name:        name,
			Price:       price,
			Description: argString(it.Args, "description"),
		})
		if err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		env.QueryExecuted = fmt.Sprintf("INSERT INTO products (name, price, description) VALUES (%s, %.2f, %s)",
			quoteSQL(created.Name), created.Price, quoteSQL(created.Description))
		env.Rows = []map[string]any{productRow(created)}
		return nil

	case intent.ActionRead:
		find := &store.FindProduct{Limit: argInt(it.Args, "limit")}
		clauses := []string{}
		if name := argString(it.Args, "name"); name != "" {
			find.NameContains = &name
			clauses = append(clauses, fmt.Sprintf("name ILIKE '%%%s%%'", name))
		}
		if id, ok := argInt32(it.Args, "product_id"); ok {
			find.ID = &id
			clauses = append(clauses, fmt.Sprintf("id = %d", id))
		}
		products, err := d.store.ListProducts(ctx, find)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		env.QueryExecuted = selectQuery("products", clauses, find.Limit)
		env.Rows = make([]map[string]any, 0, len(products))
		for _, p := range products {
			env.Rows = append(env.Rows, productRow(p))
		}
		return nil

	case intent.ActionUpdate:
		price, hasPrice := argFloat(it.Args, "new_price")
		if !hasPrice {
			price, hasPrice = argFloat(it.Args, "price")
		}
		if !hasPrice {
			env.Status = StatusNotFound
			env.Message = "a new price is required to update a product"
			return nil
		}
		id, canonical, ok := d.resolveProductArg(ctx, it.Args, env)
		if !ok {
			return nil
		}
		if err := d.store.UpdateProduct(ctx, &store.UpdateProduct{ID: id, NewPrice: &price}); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		env.QueryExecuted = fmt.Sprintf("UPDATE products SET price = %.2f WHERE id = %d", price, id)
		env.Rows = []map[string]any{{"id": id, "name": canonical, "price": price}}
		return nil

	case intent.ActionDelete:
		name := argString(it.Args, "name")
		if name == "" {
			env.Status = StatusNotFound
			env.Message = "product name is required to delete a product"
			return nil
		}
		res := d.resolver.Resolve(ctx, resolve.CategoryProduct, name)
		if !applyResolution(res, env) {
			return nil
		}
		deleted, err := d.store.DeleteProductByName(ctx, res.CanonicalName)
		if err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		env.QueryExecuted = fmt.Sprintf("DELETE FROM products WHERE name = %s", quoteSQL(res.CanonicalName))
		env.Rows = []map[string]any{{"name": res.CanonicalName, "deleted": deleted}}
		if deleted == 0 {
			env.Status = StatusNotFound
			env.Message = fmt.Sprintf("no product named %q", name)
		}
		return nil

	case intent.ActionDescribe:
		return d.describeTable(ctx, it, env, "products")

	default:
		return fmt.Errorf("unsupported action %q for %s", it.Action, it.Operation)
	}
}

// tableAliases folds the phrasings users reach for onto canonical table
// names.
var tableAliases = map[string]string{
	"customer": "customers", "customers": "customers", "customer table": "customers",
	"product": "products", "products": "products", "product table": "products",
	"sale": "sales", "sales": "sales", "sales table": "sales", "transaction": "sales", "transactions": "sales",
}

// describeTable returns column metadata. A table_name argument can point
// describe at any of the three tables regardless of which operation the
// intent landed on; the fallback is the operation's own table.
func (d *Dispatcher) describeTable(ctx context.Context, it *intent.Intent, env *Envelope, fallback string) error {
	table := fallback
	if raw := argString(it.Args, "table_name"); raw != "" {
		if canonical, ok := tableAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
			table = canonical
		}
	}

	var (
		columns []*store.ColumnInfo
		err     error
	)
	switch table {
	case "customers":
		columns, err = d.store.DescribeCustomers(ctx)
	case "products":
		columns, err = d.store.DescribeProducts(ctx)
	case "sales":
		columns, err = d.store.DescribeSales(ctx)
	default:
		env.Status = StatusNotFound
		env.Message = fmt.Sprintf("unknown table %q", table)
		return nil
	}
	if err != nil {
		return fmt.Errorf("describe %s: %w", table, err)
	}

	env.QueryExecuted = fmt.Sprintf("DESCRIBE %s", table)
	env.Rows = make([]map[string]any, 0, len(columns))
	for _, col := range columns {
		row := map[string]any{
			"column":   col.Column,
			"type":     col.Type,
			"nullable": col.Nullable,
		}
		if col.MaxLength != nil {
			row["max_length"] = *col.MaxLength
		}
		env.Rows = append(env.Rows, row)
	}
	return nil
}

// resolveCustomerArg turns a customer_id or name argument into a customer
// id, recording resolution misses on the envelope. The boolean reports
// whether dispatch should proceed.
func (d *Dispatcher) resolveCustomerArg(ctx context.Context, args map[string]any, env *Envelope) (int32, bool) {
	if id, ok := argInt32(args, "customer_id"); ok {
		return id, true
	}
	name := argString(args, "name")
	if name == "" {
		env.Status = StatusNotFound
		env.Message = "a customer name or id is required"
		return 0, false
	}
	res := d.resolver.Resolve(ctx, resolve.CategoryCustomer, name)
	if !applyResolution(res, env) {
		return 0, false
	}
	return res.ID, true
}

func (d *Dispatcher) resolveProductArg(ctx context.Context, args map[string]any, env *Envelope) (int32, string, bool) {
	if id, ok := argInt32(args, "product_id"); ok {
		name, _ := d.store.GetProductInfo(ctx, id)
		return id, name, true
	}
	name := argString(args, "name")
	if name == "" {
		env.Status = StatusNotFound
		env.Message = "a product name or id is required"
		return 0, "", false
	}
	res := d.resolver.Resolve(ctx, resolve.CategoryProduct, name)
	if !applyResolution(res, env) {
		return 0, "", false
	}
	return res.ID, res.CanonicalName, true
}

// applyResolution copies a non-found resolution onto the envelope and
// reports whether the caller may continue.
func applyResolution(res resolve.Resolution, env *Envelope) bool {
	switch res.Status {
	case resolve.StatusFound:
		return true
	case resolve.StatusAmbiguous:
		env.Status = StatusAmbiguous
		env.Message = "multiple matches found, please be more specific"
		env.Candidates = res.Candidates
		return false
	default:
		env.Status = StatusNotFound
		env.Message = res.Detail
		return false
	}
}

func customerRow(c *store.Customer) map[string]any {
	return map[string]any{
		"id":         c.ID,
		"name":       c.Name,
		"email":      c.Email,
		"created_at": c.CreatedAt,
	}
}

func productRow(p *store.Product) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"price":       p.Price,
		"description": p.Description,
	}
}

func selectQuery(table string, clauses []string, limit int) string {
	q := "SELECT * FROM " + table
	if len(clauses) > 0 {
		q += " WHERE " + strings.Join(clauses, " AND ")
	}
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	return q
}

func quoteSQL(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// argString fetches a trimmed string argument, tolerating numeric values
// the model occasionally emits for name-like keys.
func argString(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func argInt(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}

func argInt32(args map[string]any, key string) (int32, bool) {
	if _, ok := args[key]; !ok {
		return 0, false
	}
	n := argInt(args, key)
	if n == 0 {
		return 0, false
	}
	return int32(n), true
}

func argFloat(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(v, "$")), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
