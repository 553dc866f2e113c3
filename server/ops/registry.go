// Package ops maintains the catalog of CRUD operations and dispatches
// parsed intents against the backing stores.
package ops

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hrygo/shopchat/ai/intent"
	"github.com/hrygo/shopchat/store"
)

// Operation describes one registered CRUD operation. The description is
// what the intent parser sees, so it carries the table schema.
type Operation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// knownOperations lists every operation this build ships, in registration
// order. The first registered operation doubles as the fallback when a
// query cannot be classified.
var knownOperations = []Operation{
	{
		Name: intent.OpCustomer,
		Description: "Manage customer records in the local customer database. " +
			"Table customers: id (integer), name (text), email (text), created_at (timestamp). " +
			"Supports create, read, update (email), delete, and schema description.",
	},
	{
		Name: intent.OpProduct,
		Description: "Manage the product catalog. " +
			"Table products: id (integer), name (text), price (numeric), description (text). " +
			"Supports create, read, update (price), delete, and schema description.",
	},
	{
		Name: intent.OpSales,
		Description: "Manage sales transactions. " +
			"Table sales: id (integer), customer_id (integer), product_id (integer), " +
			"quantity (integer), unit_price (numeric), total_amount (numeric), sale_date (timestamp). " +
			"Supports create, read with filters and display formats, update (quantity), delete, and schema description.",
	},
}

// Registry tracks which operations are currently available. An operation
// is available only while its backing store answers pings; Refresh
// re-checks and atomically swaps the registered set.
type Registry struct {
	store *store.Store

	mu    sync.RWMutex
	order []string
	ops   map[string]Operation
}

// NewRegistry creates an empty registry over the given store. Call
// Refresh before serving traffic.
func NewRegistry(s *store.Store) *Registry {
	return &Registry{
		store: s,
		ops:   make(map[string]Operation),
	}
}

// Refresh probes each backing store and rebuilds the registered set.
// Probe failures are soft: the operation is skipped, not fatal, so a
// single store outage degrades the catalog instead of the service.
func (r *Registry) Refresh(ctx context.Context) int {
	pings := map[string]func(context.Context) error{
		intent.OpCustomer: r.store.PingCustomers,
		intent.OpProduct:  r.store.PingProducts,
		intent.OpSales:    r.store.PingSales,
	}

	order := make([]string, 0, len(knownOperations))
	ops := make(map[string]Operation, len(knownOperations))
	for _, op := range knownOperations {
		if err := pings[op.Name](ctx); err != nil {
			slog.Warn("operation unavailable, skipping registration", "operation", op.Name, "error", err)
			continue
		}
		order = append(order, op.Name)
		ops[op.Name] = op
	}

	r.mu.Lock()
	r.order = order
	r.ops = ops
	r.mu.Unlock()

	slog.Info("operation registry refreshed", "registered", len(order))
	return len(order)
}

// Snapshot returns the registered operations keyed by name.
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[string]string, len(r.ops))
	for name, op := range r.ops {
		snapshot[name] = op.Description
	}
	return snapshot
}

// Names returns the registered operation names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// List returns the registered operations in registration order.
func (r *Registry) List() []Operation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Operation, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.ops[name])
	}
	return out
}

// DescribeAll renders a numbered listing of the registered operations,
// suitable for embedding in a classification prompt.
func (r *Registry) DescribeAll() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	for i, name := range r.order {
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, name, r.ops[name].Description)
	}
	return sb.String()
}

// DefaultOperation returns the first registered operation name, or ""
// when nothing is registered. Unclassifiable queries are routed here.
func (r *Registry) DefaultOperation() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return ""
	}
	return r.order[0]
}
