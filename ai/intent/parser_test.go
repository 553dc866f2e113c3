package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/shopchat/ai/llm"
)

type fakeCatalog struct {
	order []string
	ops   map[string]string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		order: []string{OpCustomer, OpProduct, OpSales},
		ops: map[string]string{
			OpCustomer: "Manage customer records.",
			OpProduct:  "Manage the product catalog.",
			OpSales:    "Manage sales transactions.",
		},
	}
}

func (c *fakeCatalog) Snapshot() map[string]string {
	out := make(map[string]string, len(c.ops))
	for k, v := range c.ops {
		out[k] = v
	}
	return out
}

func (c *fakeCatalog) DescribeAll() string {
	var sb strings.Builder
	for i, name := range c.order {
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, name, c.ops[name])
	}
	return sb.String()
}

func (c *fakeCatalog) DefaultOperation() string {
	if len(c.order) == 0 {
		return ""
	}
	return c.order[0]
}

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Chat(_ context.Context, _ []llm.Message) (string, error) {
	return f.reply, f.err
}

func TestParseEmptyCatalog(t *testing.T) {
	p := NewParser(&fakeLLM{}, &fakeCatalog{ops: map[string]string{}})

	_, err := p.Parse(context.Background(), "show all products")
	assert.ErrorIs(t, err, ErrNoOperations)
}

func TestParseNilLLMFallsBack(t *testing.T) {
	p := NewParser(nil, newFakeCatalog())

	it, err := p.Parse(context.Background(), "show all products")
	require.NoError(t, err)

	assert.Equal(t, OpCustomer, it.Operation)
	assert.Equal(t, ActionRead, it.Action)
	assert.Empty(t, it.Args)
	assert.Equal(t, "fallback", it.Source)
	assert.NotEmpty(t, it.Err)
}

func TestParseLLMErrorFallsBack(t *testing.T) {
	p := NewParser(&fakeLLM{err: errors.New("timeout")}, newFakeCatalog())

	it, err := p.Parse(context.Background(), "delete Widget")
	require.NoError(t, err)

	// The fallback intent is always the first operation with a read
	// action; the regex cascade does not run on this path.
	assert.Equal(t, OpCustomer, it.Operation)
	assert.Equal(t, ActionRead, it.Action)
	assert.Empty(t, it.Args)
	assert.Contains(t, it.Err, "timeout")
}

func TestParseUnparseableReplyFallsBack(t *testing.T) {
	p := NewParser(&fakeLLM{reply: "I am not sure what you mean."}, newFakeCatalog())

	it, err := p.Parse(context.Background(), "delete Widget")
	require.NoError(t, err)
	assert.Equal(t, "fallback", it.Source)
	assert.Contains(t, it.Err, "failed to parse query")
}

func TestParseFencedClassification(t *testing.T) {
	p := NewParser(&fakeLLM{
		reply: "```json\n{\"operation\": \"product_crud\", \"action\": \"delete\", \"args\": {\"name\": \"Widget\"}}\n```",
	}, newFakeCatalog())

	it, err := p.Parse(context.Background(), "delete Widget")
	require.NoError(t, err)

	assert.Equal(t, OpProduct, it.Operation)
	assert.Equal(t, ActionDelete, it.Action)
	assert.Equal(t, "Widget", it.Args["name"])
	assert.Equal(t, "llm", it.Source)
	assert.Empty(t, it.Err)
}

func TestParseCoercesUnknownOperation(t *testing.T) {
	p := NewParser(&fakeLLM{
		reply: `{"operation": "warehouse_crud", "action": "read", "args": {}}`,
	}, newFakeCatalog())

	it, err := p.Parse(context.Background(), "show the warehouse")
	require.NoError(t, err)

	assert.Equal(t, OpCustomer, it.Operation)
	assert.Equal(t, "llm", it.Source)
	assert.Empty(t, it.Err)
}

func TestParseAugmentsMissingArgs(t *testing.T) {
	// The model classified correctly but extracted nothing; the regex
	// cascade fills the gaps.
	p := NewParser(&fakeLLM{
		reply: `{"operation": "product_crud", "action": "update", "args": {}}`,
	}, newFakeCatalog())

	it, err := p.Parse(context.Background(), "update price of Tool to 30")
	require.NoError(t, err)

	assert.Equal(t, "Tool", it.Args["name"])
	assert.Equal(t, 30.0, it.Args["new_price"])
}

func TestParseSanitizesArgs(t *testing.T) {
	p := NewParser(&fakeLLM{
		reply: `{"operation": "product_crud", "action": "read", "args": {"bogus_key": "x", "limit": 5}}`,
	}, newFakeCatalog())

	it, err := p.Parse(context.Background(), "show 5 products")
	require.NoError(t, err)

	assert.NotContains(t, it.Args, "bogus_key")
	assert.Equal(t, 5, it.Args["limit"])
}

func TestParseNormalizesActionSynonym(t *testing.T) {
	p := NewParser(&fakeLLM{
		reply: `{"operation": "sales_crud", "action": "list", "args": {}}`,
	}, newFakeCatalog())

	it, err := p.Parse(context.Background(), "list all sales")
	require.NoError(t, err)
	assert.Equal(t, ActionRead, it.Action)
}

func TestParseFoldsArgAliases(t *testing.T) {
	p := NewParser(&fakeLLM{
		reply: `{"operation": "product_crud", "action": "delete", "args": {"product_name": "Widget"}}`,
	}, newFakeCatalog())

	it, err := p.Parse(context.Background(), "delete the Widget product")
	require.NoError(t, err)
	assert.Equal(t, "Widget", it.Args["name"])
	assert.NotContains(t, it.Args, "product_name")
}
