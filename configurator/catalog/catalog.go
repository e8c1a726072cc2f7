// Package catalog defines the product repository port: the three search
// operations the orchestrator issues against the equipment catalogue, plus
// the matching helpers shared by storage backends. Backends live under
// features/catalog.
package catalog

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/compat"
)

// MaxResults caps every repository operation. Presenting more than five
// options per turn buries the user; the repository never returns more.
const MaxResults = 5

type (
	// Query is one attribute-filtered catalogue search.
	Query struct {
		// Kind is the component kind to search.
		Kind configurator.Kind
		// Bag carries the normalized attribute filters.
		Bag configurator.ParameterBag
		// Predicate is the compatibility constraint compiled from the cart.
		Predicate compat.Predicate
		// Category narrows an accessory search to one catalogue category.
		// Empty spans all categories. Ignored for single-valued kinds, and
		// dropped along with the attribute filters on the fallback rerun.
		Category configurator.AccessoryCategory
	}

	// Result is the outcome of FindOptions.
	Result struct {
		// Products holds at most MaxResults snapshots in repository order.
		Products []configurator.Product
		// Fallback is set when attribute filters matched nothing and the
		// result came from a compatibility-only rerun.
		Fallback bool
	}

	// Repository is the catalogue port.
	//
	// Contract:
	// - Results are sorted by the backend's internal score, ties broken by
	//   canonical name, and capped at MaxResults.
	// - Only available products are returned.
	// - Transport failures wrap configurator.ErrRepository.
	Repository interface {
		// LookupByName resolves a direct product mention against the known
		// catalogue names for the kind.
		LookupByName(ctx context.Context, kind configurator.Kind, raw string) ([]configurator.Product, error)

		// Search returns candidates matching the attribute filters and the
		// compatibility predicate.
		Search(ctx context.Context, q Query) ([]configurator.Product, error)

		// FindAllCompatible returns candidates meeting only the
		// compatibility predicate.
		FindAllCompatible(ctx context.Context, kind configurator.Kind, p compat.Predicate) ([]configurator.Product, error)
	}
)

// FindOptions runs a search and, when the attribute filters were non-empty
// but matched nothing, reruns compatibility-only and flags the fallback so
// the composer can tell the user the filters were relaxed.
func FindOptions(ctx context.Context, repo Repository, q Query) (Result, error) {
	products, err := repo.Search(ctx, q)
	if err != nil {
		return Result{}, err
	}
	if len(products) > 0 || q.Bag.Empty() {
		return Result{Products: products}, nil
	}
	products, err = repo.FindAllCompatible(ctx, q.Kind, q.Predicate)
	if err != nil {
		return Result{}, err
	}
	return Result{Products: products, Fallback: true}, nil
}

// FoldName normalizes a product name for fuzzy comparison: lowercased with
// all whitespace removed, so "warrior400i" finds "Warrior 400i".
func FoldName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NameMatch reports whether a raw mention and a canonical catalogue name
// refer to the same product: either folded form contains the other.
func NameMatch(raw, canonical string) bool {
	a, b := FoldName(raw), FoldName(canonical)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// measurement recognizes tokens like "5m", "4.5m", "300mm" or "25ft" whose
// numeric part must match on a word boundary.
var measurement = regexp.MustCompile(`^(\d+)(?:\.(\d+))?([a-z/]+)$`)

// ExpandTerm lowers a filter value into the substring set a text must contain
// one of. Measurement tokens expand with a leading space so "5m" matches
// "5.0m" in a description without also matching "15.0m"; everything else
// passes through lowercased.
func ExpandTerm(value string) []string {
	v := strings.ToLower(strings.TrimSpace(value))
	m := measurement.FindStringSubmatch(v)
	if m == nil {
		return []string{v}
	}
	whole, frac, unit := m[1], m[2], m[3]
	if frac != "" && strings.Trim(frac, "0") != "" {
		return []string{" " + whole + "." + frac + unit}
	}
	return []string{" " + whole + unit, " " + whole + ".0" + unit}
}

// Terms lowers a parameter bag into AND-of-OR filter groups: one group per
// attribute, each group listing the substrings any of which satisfies it.
// Groups come out in attribute-name order so backends build stable queries.
func Terms(bag configurator.ParameterBag) [][]string {
	attrs := bag.SortedAttributes()
	out := make([][]string, 0, len(attrs))
	for _, attr := range attrs {
		var group []string
		for _, value := range strings.Split(bag.Attributes[attr], ";") {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			group = append(group, ExpandTerm(value)...)
		}
		if len(group) > 0 {
			out = append(out, group)
		}
	}
	return out
}

// SortProducts orders snapshots by name then GIN, the tie-break every
// backend applies before capping.
func SortProducts(products []configurator.Product) {
	sort.Slice(products, func(i, j int) bool {
		if products[i].Name != products[j].Name {
			return products[i].Name < products[j].Name
		}
		return products[i].GIN < products[j].GIN
	})
}

// Cap truncates to MaxResults.
func Cap(products []configurator.Product) []configurator.Product {
	if len(products) > MaxResults {
		return products[:MaxResults]
	}
	return products
}
