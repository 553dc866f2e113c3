package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Deterministic augmentation: ordered regex cascades that fill in arguments
// the model omitted. Each table is evaluated in order and the first match
// wins; no pattern conjunction is attempted.

// Entity-name extraction for delete/update. The captured span still needs
// stopword stripping ("delete product Widget" captures "product Widget").
var nameExtractionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:delete|remove)\s+(?:product\s+|customer\s+)?([A-Za-z][A-Za-z0-9 ]*?)\s*$`),
	regexp.MustCompile(`(?i)(?:update|change|set)\s+(?:price\s+of\s+|email\s+of\s+)?([A-Za-z][A-Za-z0-9 ]*?)\s+(?:to|=)[\s$]`),
	regexp.MustCompile(`(?i)(?:update|change|set)\s+([A-Za-z][A-Za-z0-9 ]*?)\s+(?:price|email)\s+(?:to|=)`),
	regexp.MustCompile(`(?i)(?:delete|remove)\s+(?:product\s+|customer\s+)?([A-Za-z][A-Za-z0-9 ]*?)(?:\s|$)`),
}

// Words that leak into captured name spans and never belong to a name.
var nameStopwords = map[string]bool{
	"product": true, "customer": true, "price": true, "email": true,
	"to": true, "of": true, "the": true, "a": true, "an": true,
}

func extractEntityName(query string) string {
	for _, re := range nameExtractionPatterns {
		m := re.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		var kept []string
		for _, word := range strings.Fields(m[1]) {
			if !nameStopwords[strings.ToLower(word)] {
				kept = append(kept, word)
			}
		}
		if len(kept) > 0 {
			return strings.Join(kept, " ")
		}
	}
	return ""
}

// Numeric new-value extraction for price updates: a number after "to" or
// "=", behind a dollar sign, or before "dollars". First match wins.
var priceExtractionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)to\s+\$?(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)=\s*\$?(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`\$(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*dollars?`),
}

// extractPrice returns the extracted value and whether one was found.
func extractPrice(query string) (float64, bool) {
	for _, re := range priceExtractionPatterns {
		if m := re.FindStringSubmatch(query); m != nil {
			value, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				return value, true
			}
		}
	}
	return 0, false
}

var emailRegex = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)

func extractEmail(query string) string {
	return emailRegex.FindString(query)
}

// Column selection for read: "show only A and B", "display A, B from ...".
var columnPhrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:show|display|get|select)\s+only\s+(.+?)(?:\s+from\b|\s+where\b|\s*$)`),
	regexp.MustCompile(`(?i)(?:show|display|get|select)\s+(.+?)\s+(?:from|where)\b`),
}

var columnSplitRegex = regexp.MustCompile(`\s*,\s*|\s+and\s+`)

// columnSynonyms maps common column phrasings to the sales result columns.
// Tokens with no synonym pass through verbatim.
var columnSynonyms = map[string]string{
	"name":     "customer_name",
	"customer": "customer_name",
	"price":    "total_price",
	"total":    "total_price",
	"amount":   "total_price",
	"product":  "product_name",
	"date":     "sale_date",
	"email":    "customer_email",
}

func normalizeColumnToken(token string) string {
	col := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(token)), " ", "_")
	if mapped, ok := columnSynonyms[col]; ok {
		return mapped
	}
	return col
}

func extractColumns(query string) string {
	for i, re := range columnPhrasePatterns {
		m := re.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		span := strings.TrimSpace(m[1])
		if span == "" {
			continue
		}
		// Without an explicit "only", a single bare word is the table being
		// read ("show sales where ..."), not a column list.
		if i > 0 && !strings.Contains(span, ",") && !strings.Contains(span, " and ") {
			continue
		}

		var columns []string
		for _, token := range columnSplitRegex.Split(span, -1) {
			if col := normalizeColumnToken(token); col != "" {
				columns = append(columns, col)
			}
		}
		if len(columns) > 0 {
			return strings.Join(columns, ",")
		}
	}
	return ""
}

// Filter-predicate extraction for sales reads. Exactly one predicate per
// request; the table is ordered and the first matching pattern wins.
type wherePattern struct {
	re    *regexp.Regexp
	build func(value string) string
}

var wherePatterns = []wherePattern{
	{
		re:    regexp.MustCompile(`(?i)(?:with|where)\s+(?:total[\s_]*)?price\s*(?:exceeds?|above|greater\s+than|more\s+than|over|>)\s*\$?(\d+(?:\.\d+)?)`),
		build: func(v string) string { return "total_price > " + v },
	},
	{
		re:    regexp.MustCompile(`(?i)(?:with|where)\s+(?:total[\s_]*)?price\s*(?:below|less\s+than|under|<)\s*\$?(\d+(?:\.\d+)?)`),
		build: func(v string) string { return "total_price < " + v },
	},
	{
		re:    regexp.MustCompile(`(?i)(?:with|where)\s+(?:total[\s_]*)?price\s*(?:equals?|is|=)\s*\$?(\d+(?:\.\d+)?)`),
		build: func(v string) string { return "total_price = " + v },
	},
	{
		re:    regexp.MustCompile(`(?i)(?:with|where)\s+quantity\s*(?:above|greater\s+than|more\s+than|over|>)\s*(\d+)`),
		build: func(v string) string { return "quantity > " + v },
	},
	{
		re:    regexp.MustCompile(`(?i)(?:with|where)\s+quantity\s*(?:below|less\s+than|under|<)\s*(\d+)`),
		build: func(v string) string { return "quantity < " + v },
	},
	{
		re:    regexp.MustCompile(`(?i)(?:with|where)\s+quantity\s*(?:equals?|is|=)\s*(\d+)`),
		build: func(v string) string { return "quantity = " + v },
	},
	{
		re:    regexp.MustCompile(`(?i)(?:by|for)\s+customer\s+([A-Za-z][A-Za-z ]*?)\s*$`),
		build: func(v string) string { return "customer_name = '" + strings.TrimSpace(v) + "'" },
	},
	{
		re:    regexp.MustCompile(`(?i)(?:for|of)\s+product\s+([A-Za-z][A-Za-z ]*?)\s*$`),
		build: func(v string) string { return "product_name = '" + strings.TrimSpace(v) + "'" },
	},
}

var (
	bareNumberRegex  = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	directionalAbove = regexp.MustCompile(`(?i)\b(?:exceeds?|above|greater|more|over)\b`)
	directionalBelow = regexp.MustCompile(`(?i)\b(?:below|less|under)\b`)
)

func extractWhereClause(query string) string {
	for _, p := range wherePatterns {
		if m := p.re.FindStringSubmatch(query); m != nil {
			return p.build(m[1])
		}
	}

	// No curated pattern matched: a bare number next to a directional
	// keyword is still treated as a threshold on the primary numeric field.
	if num := bareNumberRegex.FindString(query); num != "" {
		switch {
		case directionalAbove.MatchString(query):
			return "total_price > " + num
		case directionalBelow.MatchString(query):
			return "total_price < " + num
		}
	}
	return ""
}

// Customer-create extraction: the name sits between an anchor word and the
// email span, minus filler words.
var (
	createNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:create|add|new)\s+customer\s+([^@]+?)(?:\s+with\b|\s+[\w.-]+@)`),
		regexp.MustCompile(`(?i)(?:create|add|new)\s+([^@]+?)(?:\s+with\b|\s+[\w.-]+@)`),
	}
	createAnchorRegex = regexp.MustCompile(`(?i)(?:customer|create|add|new)\s+(.+)`)
	createFillerRegex = regexp.MustCompile(`(?i)\b(with|email|named|called)\b`)
)

func extractCreateCustomerName(query string) string {
	var span string
	for _, re := range createNamePatterns {
		if m := re.FindStringSubmatch(query); m != nil {
			span = m[1]
			break
		}
	}
	if span == "" {
		// Fall back to everything between the last anchor word and the email.
		emailLoc := emailRegex.FindStringIndex(query)
		if emailLoc == nil {
			return ""
		}
		if m := createAnchorRegex.FindStringSubmatch(query[:emailLoc[0]]); m != nil {
			span = m[1]
		}
	}

	name := strings.TrimSpace(createFillerRegex.ReplaceAllString(span, ""))
	return strings.Join(strings.Fields(name), " ")
}

var limitRegex = regexp.MustCompile(`(?i)(?:first|top|last)\s+(\d+)`)

func extractLimit(query string) (int, bool) {
	if m := limitRegex.FindStringSubmatch(query); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Display-format detection: a small controlled vocabulary recognized only
// for the sales operation family.
type displayFormatPattern struct {
	re     *regexp.Regexp
	format string
}

var displayFormatPatterns = []displayFormatPattern{
	{regexp.MustCompile(`(?i)Data Format Conversion`), FormatDataConversion},
	{regexp.MustCompile(`(?i)Decimal Value Formatting`), FormatDecimal},
	{regexp.MustCompile(`(?i)String Concatenation`), FormatConcat},
	{regexp.MustCompile(`(?i)Null Value Removal/Handling`), FormatNullHandling},
	{regexp.MustCompile(`(?i)null handling`), FormatNullHandling},
	{regexp.MustCompile(`(?i)clean.*?null`), FormatNullHandling},
	{regexp.MustCompile(`(?i)handle.*?null.*?values`), FormatNullHandling},
}

func extractDisplayFormat(query string) string {
	for _, p := range displayFormatPatterns {
		if p.re.MatchString(query) {
			return p.format
		}
	}
	return ""
}

// augment fills argument gaps the model left, keyed by action and
// operation. Existing arguments are never overwritten.
func augment(query string, it *Intent) {
	if it.Args == nil {
		it.Args = map[string]any{}
	}

	switch it.Action {
	case ActionDelete, ActionUpdate:
		if _, ok := it.Args["name"]; !ok {
			if name := extractEntityName(query); name != "" {
				it.Args["name"] = name
			}
		}
		if it.Action == ActionUpdate {
			if it.Operation == OpProduct {
				if _, ok := it.Args["new_price"]; !ok {
					if price, found := extractPrice(query); found {
						it.Args["new_price"] = price
					}
				}
			}
			if it.Operation == OpCustomer {
				if _, ok := it.Args["new_email"]; !ok {
					if email := extractEmail(query); email != "" {
						it.Args["new_email"] = email
					}
				}
			}
			if it.Operation == OpSales {
				if _, ok := it.Args["new_quantity"]; !ok {
					if qty, found := extractPrice(query); found {
						it.Args["new_quantity"] = qty
					}
				}
			}
		}

	case ActionCreate:
		if it.Operation == OpCustomer {
			if _, ok := it.Args["email"]; !ok {
				if email := extractEmail(query); email != "" {
					it.Args["email"] = email
				}
			}
			if _, ok := it.Args["name"]; !ok {
				if name := extractCreateCustomerName(query); name != "" {
					it.Args["name"] = name
				}
			}
		}
		if it.Operation == OpProduct {
			if _, ok := it.Args["price"]; !ok {
				if price, found := extractPrice(query); found {
					it.Args["price"] = price
				}
			}
		}

	case ActionRead:
		if _, ok := it.Args["limit"]; !ok {
			if limit, found := extractLimit(query); found {
				it.Args["limit"] = limit
			}
		}
		if it.Operation == OpSales {
			if _, ok := it.Args["display_format"]; !ok {
				if format := extractDisplayFormat(query); format != "" {
					it.Args["display_format"] = format
				}
			}
			if _, ok := it.Args["columns"]; !ok {
				if columns := extractColumns(query); columns != "" {
					it.Args["columns"] = columns
				}
			}
			if _, ok := it.Args["where_clause"]; !ok {
				if clause := extractWhereClause(query); clause != "" {
					it.Args["where_clause"] = clause
				}
			}
		}
	}
}
