package ops

import (
	"fmt"
	"time"

	"github.com/hrygo/shopchat/ai/intent"
)

// applyDisplayFormat post-processes result rows according to the
// display_format argument. Unknown formats pass rows through unchanged;
// the parser has already validated the value, so that branch only guards
// against drift between the two vocabularies.
func applyDisplayFormat(rows []map[string]any, format string) []map[string]any {
	switch format {
	case intent.FormatDataConversion:
		return mapRows(rows, convertDataFormats)
	case intent.FormatDecimal:
		return mapRows(rows, formatDecimals)
	case intent.FormatConcat:
		return mapRows(rows, concatSummary)
	case intent.FormatNullHandling:
		return mapRows(rows, dropNullValues)
	default:
		return rows
	}
}

func mapRows(rows []map[string]any, f func(map[string]any) map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, f(row))
	}
	return out
}

// convertDataFormats renders timestamps as human-readable dates and ids
// as plain strings.
func convertDataFormats(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		switch val := v.(type) {
		case time.Time:
			out[k] = val.Format("January 2, 2006")
		case int32:
			out[k] = fmt.Sprintf("%d", val)
		default:
			out[k] = v
		}
	}
	return out
}

// formatDecimals renders every numeric value with two decimal places.
func formatDecimals(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if f, ok := v.(float64); ok {
			out[k] = fmt.Sprintf("%.2f", f)
		} else {
			out[k] = v
		}
	}
	return out
}

// concatSummary adds a one-line description built from the row's display
// fields.
func concatSummary(row map[string]any) map[string]any {
	out := make(map[string]any, len(row)+1)
	for k, v := range row {
		out[k] = v
	}

	customer, _ := row["customer_name"].(string)
	product, _ := row["product_name"].(string)
	if customer == "" || product == "" {
		return out
	}

	summary := fmt.Sprintf("%s purchased %s", customer, product)
	if qty, ok := row["quantity"].(int32); ok && qty > 1 {
		summary = fmt.Sprintf("%s purchased %d x %s", customer, qty, product)
	}
	if total, ok := row["total_amount"].(float64); ok {
		summary = fmt.Sprintf("%s for $%.2f", summary, total)
	}
	out["summary"] = summary
	return out
}

// dropNullValues removes nil and empty-string fields from the row.
func dropNullValues(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		out[k] = v
	}
	return out
}
