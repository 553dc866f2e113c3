package ops

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hrygo/shopchat/ai/intent"
	"github.com/hrygo/shopchat/ai/resolve"
	"github.com/hrygo/shopchat/store"
)

func (d *Dispatcher) executeSales(ctx context.Context, it *intent.Intent, env *Envelope) error {
	switch it.Action {
	case intent.ActionCreate:
		return d.createSale(ctx, it, env)
	case intent.ActionRead:
		return d.readSales(ctx, it, env)
	case intent.ActionUpdate:
		return d.updateSale(ctx, it, env)
	case intent.ActionDelete:
		return d.deleteSale(ctx, it, env)
	case intent.ActionDescribe:
		return d.describeTable(ctx, it, env, "sales")
	default:
		return fmt.Errorf("unsupported action %q for %s", it.Action, it.Operation)
	}
}

func (d *Dispatcher) createSale(ctx context.Context, it *intent.Intent, env *Envelope) error {
	customerID, ok := argInt32(it.Args, "customer_id")
	if !ok {
		name := argString(it.Args, "customer_name")
		if name == "" {
			env.Status = StatusNotFound
			env.Message = "a customer name or id is required to record a sale"
			return nil
		}
		res := d.resolver.Resolve(ctx, resolve.CategoryCustomer, name)
		if !applyResolution(res, env) {
			return nil
		}
		customerID = res.ID
	} else if !d.store.CustomerExists(ctx, customerID) {
		env.Status = StatusNotFound
		env.Message = fmt.Sprintf("customer %d does not exist", customerID)
		return nil
	}

	productID, ok := argInt32(it.Args, "product_id")
	if !ok {
		name := argString(it.Args, "product_name")
		if name == "" {
			env.Status = StatusNotFound
			env.Message = "a product name or id is required to record a sale"
			return nil
		}
		res := d.resolver.Resolve(ctx, resolve.CategoryProduct, name)
		if !applyResolution(res, env) {
			return nil
		}
		productID = res.ID
	} else if !d.store.ProductExists(ctx, productID) {
		env.Status = StatusNotFound
		env.Message = fmt.Sprintf("product %d does not exist", productID)
		return nil
	}

	quantity := int32(argInt(it.Args, "quantity"))
	if quantity <= 0 {
		quantity = 1
	}

	unitPrice, hasPrice := argFloat(it.Args, "unit_price")
	if !hasPrice {
		// Default the unit price to the current catalog price.
		_, unitPrice = d.store.GetProductInfo(ctx, productID)
	}

	created, err := d.store.CreateSale(ctx, &store.Sale{
		CustomerID:  customerID,
		ProductID:   productID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalAmount: unitPrice * float64(quantity),
	})
	if err != nil {
		return fmt.Errorf("create sale: %w", err)
	}

	env.QueryExecuted = fmt.Sprintf(
		"INSERT INTO sales (customer_id, product_id, quantity, unit_price, total_amount) VALUES (%d, %d, %d, %.2f, %.2f)",
		created.CustomerID, created.ProductID, created.Quantity, created.UnitPrice, created.TotalAmount)
	env.Rows = []map[string]any{d.saleRow(ctx, created)}
	return nil
}

func (d *Dispatcher) readSales(ctx context.Context, it *intent.Intent, env *Envelope) error {
	find := &store.FindSale{Limit: argInt(it.Args, "limit")}
	clauses := []string{}

	if id, ok := argInt32(it.Args, "sale_id"); ok {
		find.ID = &id
		clauses = append(clauses, fmt.Sprintf("id = %d", id))
	}

	if clause := argString(it.Args, "where_clause"); clause != "" {
		filter, ok := d.parseWhereClause(ctx, clause, env)
		if !ok {
			return nil
		}
		find.Filter = filter
		clauses = append(clauses, fmt.Sprintf("%s %s %s",
			filter.Field, filter.Op, strconv.FormatFloat(filter.Value, 'f', -1, 64)))
	}

	sales, err := d.store.ListSales(ctx, find)
	if err != nil {
		return fmt.Errorf("list sales: %w", err)
	}

	env.QueryExecuted = selectQuery("sales", clauses, find.Limit)
	env.Rows = make([]map[string]any, 0, len(sales))
	for _, sale := range sales {
		env.Rows = append(env.Rows, d.saleRow(ctx, sale))
	}

	if columns := argString(it.Args, "columns"); columns != "" {
		env.Rows = projectColumns(env.Rows, columns)
	}
	if format := argString(it.Args, "display_format"); format != "" {
		env.Rows = applyDisplayFormat(env.Rows, format)
	}
	return nil
}

func (d *Dispatcher) updateSale(ctx context.Context, it *intent.Intent, env *Envelope) error {
	id, ok := argInt32(it.Args, "sale_id")
	if !ok {
		env.Status = StatusNotFound
		env.Message = "a sale id is required to update a sale"
		return nil
	}
	quantity := int32(argInt(it.Args, "new_quantity"))
	if quantity <= 0 {
		quantity = int32(argInt(it.Args, "quantity"))
	}
	if quantity <= 0 {
		env.Status = StatusNotFound
		env.Message = "a positive new quantity is required to update a sale"
		return nil
	}

	if err := d.store.UpdateSale(ctx, &store.UpdateSale{ID: id, NewQuantity: quantity}); err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	env.QueryExecuted = fmt.Sprintf(
		"UPDATE sales SET quantity = %d, total_amount = unit_price * %d WHERE id = %d", quantity, quantity, id)
	env.Rows = []map[string]any{{"id": id, "quantity": quantity}}
	return nil
}

func (d *Dispatcher) deleteSale(ctx context.Context, it *intent.Intent, env *Envelope) error {
	id, ok := argInt32(it.Args, "sale_id")
	if !ok {
		env.Status = StatusNotFound
		env.Message = "a sale id is required to delete a sale"
		return nil
	}
	if err := d.store.DeleteSale(ctx, id); err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	env.QueryExecuted = fmt.Sprintf("DELETE FROM sales WHERE id = %d", id)
	env.Rows = []map[string]any{{"id": id}}
	return nil
}

// saleRow joins the cross-store display fields onto a sale. Lookups
// degrade to placeholder names, so one unreachable store never breaks a
// sales read.
func (d *Dispatcher) saleRow(ctx context.Context, sale *store.Sale) map[string]any {
	customerName, customerEmail := d.store.GetCustomerInfo(ctx, sale.CustomerID)
	productName, _ := d.store.GetProductInfo(ctx, sale.ProductID)
	return map[string]any{
		"id":             sale.ID,
		"customer_id":    sale.CustomerID,
		"customer_name":  customerName,
		"customer_email": customerEmail,
		"product_id":     sale.ProductID,
		"product_name":   productName,
		"quantity":       sale.Quantity,
		"unit_price":     sale.UnitPrice,
		"total_amount":   sale.TotalAmount,
		"sale_date":      sale.SaleDate,
	}
}

// whereClauseRegex accepts exactly one comparison predicate. Conjunctions
// are rejected rather than partially applied.
var whereClauseRegex = regexp.MustCompile(`^\s*(\w+)\s*(>|<|=)\s*(.+?)\s*$`)

// whereFields maps predicate field spellings onto filterable sale
// columns.
var whereFields = map[string]store.SaleFilterField{
	"total_price":  store.SaleFilterTotalPrice,
	"total_amount": store.SaleFilterTotalPrice,
	"price":        store.SaleFilterTotalPrice,
	"quantity":     store.SaleFilterQuantity,
	"customer_id":  store.SaleFilterCustomerID,
	"product_id":   store.SaleFilterProductID,
}

// parseWhereClause turns the textual predicate carried by the intent into
// a parameterized filter. Name predicates are resolved to ids first, so
// the sales store only ever filters on its own columns. Failures land on
// the envelope; the boolean reports whether dispatch should continue.
func (d *Dispatcher) parseWhereClause(ctx context.Context, clause string, env *Envelope) (*store.SaleFilter, bool) {
	if strings.Contains(strings.ToLower(clause), " and ") || strings.Contains(strings.ToLower(clause), " or ") {
		env.Status = StatusNotFound
		env.Message = "only a single filter condition is supported"
		return nil, false
	}

	m := whereClauseRegex.FindStringSubmatch(clause)
	if m == nil {
		env.Status = StatusNotFound
		env.Message = fmt.Sprintf("unsupported filter %q", clause)
		return nil, false
	}
	field, op, value := strings.ToLower(m[1]), m[2], strings.Trim(m[3], `'" `)

	// Name predicates go through the resolver and become id equality.
	switch field {
	case "customer_name", "customer":
		if op != "=" {
			env.Status = StatusNotFound
			env.Message = "customer name filters only support equality"
			return nil, false
		}
		res := d.resolver.Resolve(ctx, resolve.CategoryCustomer, value)
		if !applyResolution(res, env) {
			return nil, false
		}
		return &store.SaleFilter{Field: store.SaleFilterCustomerID, Op: store.SaleFilterEQ, Value: float64(res.ID)}, true
	case "product_name", "product":
		if op != "=" {
			env.Status = StatusNotFound
			env.Message = "product name filters only support equality"
			return nil, false
		}
		res := d.resolver.Resolve(ctx, resolve.CategoryProduct, value)
		if !applyResolution(res, env) {
			return nil, false
		}
		return &store.SaleFilter{Field: store.SaleFilterProductID, Op: store.SaleFilterEQ, Value: float64(res.ID)}, true
	}

	column, ok := whereFields[field]
	if !ok {
		env.Status = StatusNotFound
		env.Message = fmt.Sprintf("cannot filter sales by %q", field)
		return nil, false
	}
	number, err := strconv.ParseFloat(strings.TrimPrefix(value, "$"), 64)
	if err != nil {
		env.Status = StatusNotFound
		env.Message = fmt.Sprintf("filter value %q is not numeric", value)
		return nil, false
	}
	return &store.SaleFilter{Field: column, Op: store.SaleFilterOp(op), Value: number}, true
}

// projectionAliases folds the column vocabulary users (and the extraction
// patterns) reach for onto the keys sale rows actually carry.
var projectionAliases = map[string]string{
	"total_price": "total_amount",
	"total":       "total_amount",
	"amount":      "total_amount",
	"price":       "total_amount",
	"name":        "customer_name",
	"customer":    "customer_name",
	"product":     "product_name",
	"email":       "customer_email",
	"date":        "sale_date",
}

// projectColumns keeps only the requested columns in each row. Requested
// names go through projectionAliases first; unknown names are ignored, and
// if nothing matches the rows pass through unchanged rather than
// collapsing to empty objects.
func projectColumns(rows []map[string]any, columns string) []map[string]any {
	wanted := make([]string, 0, 4)
	for _, col := range strings.Split(columns, ",") {
		col = strings.ToLower(strings.TrimSpace(col))
		if alias, ok := projectionAliases[col]; ok {
			col = alias
		}
		if col != "" {
			wanted = append(wanted, col)
		}
	}
	if len(wanted) == 0 {
		return rows
	}

	out := make([]map[string]any, 0, len(rows))
	matched := false
	for _, row := range rows {
		projected := make(map[string]any, len(wanted))
		for _, col := range wanted {
			if v, ok := row[col]; ok {
				projected[col] = v
				matched = true
			}
		}
		out = append(out, projected)
	}
	if !matched {
		return rows
	}
	return out
}
