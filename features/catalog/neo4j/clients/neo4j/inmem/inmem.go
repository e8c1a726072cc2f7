// Package inmem provides an in-memory catalog.Repository for tests and
// local development: a product table plus a symmetric COMPATIBLE_WITH edge
// set, searched with the same term and predicate semantics as the graph
// backend.
package inmem

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/catalog"
	"github.com/beedev/recommenderv2/configurator/compat"
)

// Repository is an in-memory product catalogue.
type Repository struct {
	mu       sync.RWMutex
	products map[string]configurator.Product
	edges    map[string]map[string]bool
	err      error
}

// New returns an empty catalogue.
func New() *Repository {
	return &Repository{
		products: make(map[string]configurator.Product),
		edges:    make(map[string]map[string]bool),
	}
}

// Add registers products, keyed by GIN.
func (r *Repository) Add(products ...configurator.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range products {
		r.products[p.GIN] = p
	}
}

// Connect records symmetric compatibility edges between gin and each peer.
func (r *Repository) Connect(gin string, peers ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, peer := range peers {
		if r.edges[gin] == nil {
			r.edges[gin] = make(map[string]bool)
		}
		if r.edges[peer] == nil {
			r.edges[peer] = make(map[string]bool)
		}
		r.edges[gin][peer] = true
		r.edges[peer][gin] = true
	}
}

// SetError makes every operation return err until cleared with nil.
func (r *Repository) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// LookupByName resolves a direct product mention against the catalogue
// names for the kind.
func (r *Repository) LookupByName(ctx context.Context, kind configurator.Kind, raw string) ([]configurator.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []configurator.Product
	for _, p := range r.products {
		if p.Kind != kind || !p.Available {
			continue
		}
		if catalog.NameMatch(raw, p.Name) {
			out = append(out, p)
		}
	}
	return capSorted(out), nil
}

// Search returns candidates matching the attribute filters, the category
// narrowing and the compatibility predicate.
func (r *Repository) Search(ctx context.Context, q catalog.Query) ([]configurator.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	groups := catalog.Terms(q.Bag)
	var out []configurator.Product
	for _, p := range r.products {
		if p.Kind != q.Kind || !p.Available {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if !matchTerms(p, groups) {
			continue
		}
		if !r.satisfied(q.Predicate, p) {
			continue
		}
		out = append(out, p)
	}
	return capSorted(out), nil
}

// FindAllCompatible returns candidates meeting only the compatibility
// predicate.
func (r *Repository) FindAllCompatible(ctx context.Context, kind configurator.Kind, pred compat.Predicate) ([]configurator.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []configurator.Product
	for _, p := range r.products {
		if p.Kind != kind || !p.Available {
			continue
		}
		if !r.satisfied(pred, p) {
			continue
		}
		out = append(out, p)
	}
	return capSorted(out), nil
}

func (r *Repository) satisfied(pred compat.Predicate, p configurator.Product) bool {
	return pred.Satisfied(p, func(gin string) bool {
		return r.edges[p.GIN][gin]
	})
}

// matchTerms applies the AND-of-OR filter groups against the product's
// searchable text.
func matchTerms(p configurator.Product, groups [][]string) bool {
	if len(groups) == 0 {
		return true
	}
	text := searchText(p)
	for _, group := range groups {
		hit := false
		for _, term := range group {
			if strings.Contains(text, term) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// searchText flattens the fields the graph backend indexes. The leading
// space lets measurement terms anchor on a word boundary.
func searchText(p configurator.Product) string {
	parts := []string{p.Name, p.Description}
	for _, attr := range sortedKeys(p.Attributes) {
		parts = append(parts, p.Attributes[attr])
	}
	return " " + strings.ToLower(strings.Join(parts, " "))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// capSorted orders by name and applies the repository cap.
func capSorted(products []configurator.Product) []configurator.Product {
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	if len(products) > catalog.MaxResults {
		products = products[:catalog.MaxResults]
	}
	return products
}
