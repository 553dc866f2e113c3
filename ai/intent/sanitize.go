package intent

import (
	"strconv"
	"strings"
)

// Operation names as registered by the three backing stores.
const (
	OpCustomer = "customer_crud"
	OpProduct  = "product_crud"
	OpSales    = "sales_crud"
)

// Display-format transform vocabulary, recognized only for sales reads.
const (
	FormatDataConversion = "Data Format Conversion"
	FormatDecimal        = "Decimal Value Formatting"
	FormatConcat         = "String Concatenation"
	FormatNullHandling   = "Null Value Removal/Handling"
)

var validDisplayFormats = map[string]bool{
	FormatDataConversion: true,
	FormatDecimal:        true,
	FormatConcat:         true,
	FormatNullHandling:   true,
}

// maxLimit bounds the row-limit argument; values outside [1, maxLimit] are
// dropped rather than clamped.
const maxLimit = 1000

// allowedArgs is the per-operation argument allow-list. Keys outside the
// list are silently dropped before dispatch and never reach a backing
// store.
var allowedArgs = map[string]map[string]bool{
	OpCustomer: setOf(
		"operation", "name", "email", "limit", "customer_id", "new_email", "table_name",
	),
	OpProduct: setOf(
		"operation", "name", "price", "description", "limit", "product_id", "new_price", "table_name",
	),
	OpSales: setOf(
		"operation", "customer_id", "product_id", "quantity", "unit_price",
		"total_amount", "sale_id", "new_quantity", "table_name", "display_format",
		"customer_name", "product_name", "email", "total_price",
		"columns", "where_clause", "filter_conditions", "limit",
	),
}

func setOf(keys ...string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// argAliases folds model variations onto canonical argument names before
// dispatch.
var argAliases = map[string]string{
	"product_name":  "name",
	"customer_name": "name",
	"item":          "name",
}

// NormalizeArgNames renames aliased keys in place. Sales arguments keep
// customer_name/product_name, which are real filter fields there.
func NormalizeArgNames(operation string, args map[string]any) {
	if operation == OpSales {
		return
	}
	for alias, canonical := range argAliases {
		if v, ok := args[alias]; ok {
			if _, exists := args[canonical]; !exists {
				args[canonical] = v
			}
			delete(args, alias)
		}
	}
}

// SanitizeArgs intersects args with the operation's allow-list and
// validates the constrained values. Invalid values are dropped, never
// errors: a lost argument degrades the request, a raised error would kill
// it.
func SanitizeArgs(operation string, args map[string]any) map[string]any {
	allowed, ok := allowedArgs[operation]
	if !ok {
		return args
	}

	cleaned := make(map[string]any, len(args))
	for k, v := range args {
		if allowed[k] {
			cleaned[k] = v
		}
	}

	if raw, ok := cleaned["display_format"]; ok {
		format, isString := raw.(string)
		if !isString || !validDisplayFormats[format] {
			delete(cleaned, "display_format")
		}
	}

	if raw, ok := cleaned["columns"]; ok {
		columns := normalizeColumnList(raw)
		if columns == "" {
			delete(cleaned, "columns")
		} else {
			cleaned["columns"] = columns
		}
	}

	if raw, ok := cleaned["where_clause"]; ok {
		clause, isString := raw.(string)
		if !isString || strings.TrimSpace(clause) == "" {
			delete(cleaned, "where_clause")
		} else {
			cleaned["where_clause"] = strings.TrimSpace(clause)
		}
	}

	if raw, ok := cleaned["limit"]; ok {
		limit, valid := coerceLimit(raw)
		if !valid {
			delete(cleaned, "limit")
		} else {
			cleaned["limit"] = limit
		}
	}

	return cleaned
}

// normalizeColumnList trims each comma-separated entry and drops blanks.
func normalizeColumnList(raw any) string {
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	var columns []string
	for _, col := range strings.Split(s, ",") {
		if col = strings.TrimSpace(col); col != "" {
			columns = append(columns, col)
		}
	}
	return strings.Join(columns, ",")
}

// coerceLimit accepts the numeric shapes a JSON decode or regex extraction
// can produce and range-checks the result.
func coerceLimit(raw any) (int, bool) {
	var limit int
	switch v := raw.(type) {
	case int:
		limit = v
	case float64:
		limit = int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		limit = n
	default:
		return 0, false
	}

	if limit <= 0 || limit > maxLimit {
		return 0, false
	}
	return limit, true
}
