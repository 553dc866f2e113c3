// Package resolve translates human-readable entity names into internal
// identifiers. It sits inline in request handling, so it never returns an
// error: backend failures are re-expressed as not_found with a detail
// string.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hrygo/shopchat/store"
)

// Category selects which store a name is resolved against.
type Category string

const (
	CategoryCustomer Category = "customer"
	CategoryProduct  Category = "product"
)

// Status is the outcome of a resolution attempt.
type Status string

const (
	StatusFound     Status = "found"
	StatusAmbiguous Status = "ambiguous"
	StatusNotFound  Status = "not_found"
)

// Candidate is one possible match, surfaced when resolution is ambiguous
// so the caller can ask a clarifying question.
type Candidate struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
	// HasEmail reports whether the candidate already has an email on file;
	// useful when deciding between "existing customer" and "create new".
	HasEmail bool `json:"has_email"`
}

// Resolution is the result of resolving one display name.
type Resolution struct {
	Status        Status      `json:"status"`
	ID            int32       `json:"id,omitempty"`
	CanonicalName string      `json:"canonical_name,omitempty"`
	Candidates    []Candidate `json:"candidates,omitempty"`
	Detail        string      `json:"detail,omitempty"`
}

// CustomerFinder is the slice of the customer store the resolver needs.
type CustomerFinder interface {
	ListCustomers(ctx context.Context, find *store.FindCustomer) ([]*store.Customer, error)
}

// ProductFinder is the slice of the product store the resolver needs.
type ProductFinder interface {
	ListProducts(ctx context.Context, find *store.FindProduct) ([]*store.Product, error)
}

// Resolver maps display names to ids across the customer and product
// stores.
type Resolver struct {
	customers CustomerFinder
	products  ProductFinder
}

// NewResolver creates a resolver over the given stores.
func NewResolver(customers CustomerFinder, products ProductFinder) *Resolver {
	return &Resolver{customers: customers, products: products}
}

// Resolve maps a display name to exactly one internal id, or signals
// ambiguity or absence. Matching runs in narrowing stages: an exact
// case-insensitive full-name query, then single-token (first or last
// name) match, then substring.
func (r *Resolver) Resolve(ctx context.Context, category Category, name string) Resolution {
	name = strings.TrimSpace(name)
	if name == "" {
		return Resolution{Status: StatusNotFound, Detail: "empty name"}
	}

	switch category {
	case CategoryCustomer:
		return r.resolveCustomer(ctx, name)
	case CategoryProduct:
		return r.resolveProduct(ctx, name)
	default:
		return Resolution{Status: StatusNotFound, Detail: fmt.Sprintf("unknown category %q", category)}
	}
}

func (r *Resolver) resolveCustomer(ctx context.Context, name string) Resolution {
	// The exact stage is an equality query against the store; only when it
	// comes back empty does a substring fetch feed the widening stages.
	exact, err := r.customers.ListCustomers(ctx, &store.FindCustomer{NameEqualFold: &name})
	if err != nil {
		slog.Warn("customer resolution failed", "name", name, "error", err)
		return Resolution{Status: StatusNotFound, Detail: fmt.Sprintf("error finding customer %q: %v", name, err)}
	}
	if len(exact) == 1 {
		return Resolution{Status: StatusFound, ID: exact[0].ID, CanonicalName: exact[0].Name}
	}
	if len(exact) > 1 {
		return Resolution{Status: StatusAmbiguous, Candidates: customerCandidates(exact)}
	}

	customers, err := r.customers.ListCustomers(ctx, &store.FindCustomer{NameContains: &name})
	if err != nil {
		slog.Warn("customer resolution failed", "name", name, "error", err)
		return Resolution{Status: StatusNotFound, Detail: fmt.Sprintf("error finding customer %q: %v", name, err)}
	}

	lower := strings.ToLower(name)

	var token []*store.Customer
	for _, c := range customers {
		for _, part := range strings.Fields(strings.ToLower(c.Name)) {
			if part == lower {
				token = append(token, c)
				break
			}
		}
	}

	for _, stage := range [][]*store.Customer{token, customers} {
		switch len(stage) {
		case 0:
			continue
		case 1:
			return Resolution{Status: StatusFound, ID: stage[0].ID, CanonicalName: stage[0].Name}
		default:
			return Resolution{Status: StatusAmbiguous, Candidates: customerCandidates(stage)}
		}
	}

	return Resolution{Status: StatusNotFound, Detail: fmt.Sprintf("customer %q not found", name)}
}

func (r *Resolver) resolveProduct(ctx context.Context, name string) Resolution {
	exact, err := r.products.ListProducts(ctx, &store.FindProduct{NameEqualFold: &name})
	if err != nil {
		slog.Warn("product resolution failed", "name", name, "error", err)
		return Resolution{Status: StatusNotFound, Detail: fmt.Sprintf("error finding product %q: %v", name, err)}
	}
	if len(exact) == 1 {
		return Resolution{Status: StatusFound, ID: exact[0].ID, CanonicalName: exact[0].Name}
	}
	if len(exact) > 1 {
		return Resolution{Status: StatusAmbiguous, Candidates: productCandidates(exact)}
	}

	products, err := r.products.ListProducts(ctx, &store.FindProduct{NameContains: &name})
	if err != nil {
		slog.Warn("product resolution failed", "name", name, "error", err)
		return Resolution{Status: StatusNotFound, Detail: fmt.Sprintf("error finding product %q: %v", name, err)}
	}

	switch len(products) {
	case 0:
		return Resolution{Status: StatusNotFound, Detail: fmt.Sprintf("product %q not found", name)}
	case 1:
		return Resolution{Status: StatusFound, ID: products[0].ID, CanonicalName: products[0].Name}
	default:
		return Resolution{Status: StatusAmbiguous, Candidates: productCandidates(products)}
	}
}

func customerCandidates(customers []*store.Customer) []Candidate {
	candidates := make([]Candidate, 0, len(customers))
	for _, c := range customers {
		candidates = append(candidates, Candidate{ID: c.ID, Name: c.Name, HasEmail: c.Email != ""})
	}
	return candidates
}

func productCandidates(products []*store.Product) []Candidate {
	candidates := make([]Candidate, 0, len(products))
	for _, p := range products {
		candidates = append(candidates, Candidate{ID: p.ID, Name: p.Name})
	}
	return candidates
}
