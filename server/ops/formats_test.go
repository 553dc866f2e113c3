package ops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/shopchat/ai/intent"
)

func sampleRows() []map[string]any {
	return []map[string]any{
		{
			"id":            int32(1),
			"customer_name": "Alice Johnson",
			"product_name":  "Widget",
			"quantity":      int32(2),
			"unit_price":    9.99,
			"total_amount":  19.98,
			"sale_date":     time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC),
			"notes":         "",
		},
	}
}

func TestDataFormatConversion(t *testing.T) {
	rows := applyDisplayFormat(sampleRows(), intent.FormatDataConversion)
	require.Len(t, rows, 1)

	assert.Equal(t, "March 15, 2026", rows[0]["sale_date"])
	assert.Equal(t, "1", rows[0]["id"])
	assert.Equal(t, 19.98, rows[0]["total_amount"])
}

func TestDecimalValueFormatting(t *testing.T) {
	rows := applyDisplayFormat(sampleRows(), intent.FormatDecimal)
	require.Len(t, rows, 1)

	assert.Equal(t, "19.98", rows[0]["total_amount"])
	assert.Equal(t, "9.99", rows[0]["unit_price"])
	assert.Equal(t, int32(1), rows[0]["id"])
}

func TestStringConcatenation(t *testing.T) {
	rows := applyDisplayFormat(sampleRows(), intent.FormatConcat)
	require.Len(t, rows, 1)

	assert.Equal(t, "Alice Johnson purchased 2 x Widget for $19.98", rows[0]["summary"])
	// Original fields stay in place.
	assert.Equal(t, "Widget", rows[0]["product_name"])
}

func TestStringConcatenationWithoutNames(t *testing.T) {
	rows := applyDisplayFormat([]map[string]any{{"id": int32(1)}}, intent.FormatConcat)
	require.Len(t, rows, 1)
	assert.NotContains(t, rows[0], "summary")
}

func TestNullValueRemoval(t *testing.T) {
	input := sampleRows()
	input[0]["refund"] = nil

	rows := applyDisplayFormat(input, intent.FormatNullHandling)
	require.Len(t, rows, 1)

	assert.NotContains(t, rows[0], "notes")
	assert.NotContains(t, rows[0], "refund")
	assert.Contains(t, rows[0], "customer_name")
}

func TestUnknownFormatPassesThrough(t *testing.T) {
	input := sampleRows()
	rows := applyDisplayFormat(input, "CSV Export")
	assert.Equal(t, input, rows)
}

func TestProjectColumnsIgnoresUnknown(t *testing.T) {
	rows := projectColumns(sampleRows(), "customer_name,bogus")
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 1)

	// A projection that matches nothing leaves the rows untouched.
	rows = projectColumns(sampleRows(), "bogus,nonsense")
	assert.Len(t, rows[0], 8)
}
