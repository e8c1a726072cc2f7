package neo4j

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/catalog"
	"github.com/beedev/recommenderv2/configurator/compat"
	clientsneo4j "github.com/beedev/recommenderv2/features/catalog/neo4j/clients/neo4j"
)

// Repository implements catalog.Repository over a Neo4j product graph.
type Repository struct {
	client clientsneo4j.Client
}

// Options configures the graph repository.
type Options struct {
	// Client is the graph client. Required.
	Client clientsneo4j.Client
}

// New returns a Repository over the given graph client.
func New(opts Options) (*Repository, error) {
	if opts.Client == nil {
		return nil, errors.New("graph client is required")
	}
	return &Repository{client: opts.Client}, nil
}

// returnColumns is the product projection shared by every query.
const returnColumns = `p.gin AS gin, p.name AS name, p.category AS category, p.description AS description, p.specifications_json AS specifications`

// searchText is the lowercased document the term filters match against. The
// leading space lets measurement terms anchor on a word boundary.
const searchText = `' ' + toLower(coalesce(p.name, '') + ' ' + coalesce(p.description, '') + ' ' + coalesce(p.embedding_text, ''))`

// linksColumn collects the candidate's neighbours restricted to the
// predicate's anchor set. Both relationship types count as compatibility
// edges: the source data stores the power-source driven feeder and cooler
// pairings as DETERMINES rather than COMPATIBLE_WITH.
const linksColumn = `[(p)-[:COMPATIBLE_WITH|DETERMINES]-(peer:Product) WHERE peer.gin IN $anchors | peer.gin] AS links`

// LookupByName resolves a direct product mention with the dictionary's
// folding rules: lowercase, whitespace stripped, substring in either
// direction.
func (r *Repository) LookupByName(ctx context.Context, kind configurator.Kind, raw string) ([]configurator.Product, error) {
	mention := catalog.FoldName(raw)
	if mention == "" {
		return nil, nil
	}
	where, params := kindFilter(kind, "")
	params["mention"] = mention
	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (p:Product)\nWHERE %s AND p.is_available = true\n", where)
	b.WriteString("WITH p, replace(toLower(p.name), ' ', '') AS folded\n")
	b.WriteString("WHERE folded <> '' AND (folded CONTAINS $mention OR $mention CONTAINS folded)\n")
	return r.fetch(ctx, &b, params, compat.Predicate{}, "lookup by name")
}

// Search returns candidates matching the attribute filters and the
// compatibility predicate. Text matching happens in the graph; the anchor
// rows are checked per candidate against the collected links.
func (r *Repository) Search(ctx context.Context, q catalog.Query) ([]configurator.Product, error) {
	where, params := kindFilter(q.Kind, q.Category)
	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (p:Product)\nWHERE %s AND p.is_available = true\n", where)
	if groups := catalog.Terms(q.Bag); len(groups) > 0 {
		b.WriteString("WITH p, " + searchText + " AS text\n")
		b.WriteString("WHERE " + termsFilter(groups, params) + "\n")
	}
	return r.fetch(ctx, &b, params, q.Predicate, "search")
}

// FindAllCompatible returns candidates meeting only the compatibility
// predicate.
func (r *Repository) FindAllCompatible(ctx context.Context, kind configurator.Kind, pred compat.Predicate) ([]configurator.Product, error) {
	where, params := kindFilter(kind, "")
	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (p:Product)\nWHERE %s AND p.is_available = true\n", where)
	return r.fetch(ctx, &b, params, pred, "find compatible")
}

// fetch completes the query with the projection, runs it and applies the
// predicate. Empty predicates cap in the graph; otherwise the cap waits for
// the per-candidate anchor check, so a dropped candidate never costs a slot.
func (r *Repository) fetch(ctx context.Context, b *strings.Builder, params map[string]any, pred compat.Predicate, op string) ([]configurator.Product, error) {
	if pred.Empty() {
		params["limit"] = catalog.MaxResults
		fmt.Fprintf(b, "RETURN %s\nORDER BY p.name, p.gin\nLIMIT $limit", returnColumns)
	} else {
		anchors := pred.AnchorSet()
		gins := make([]string, len(anchors))
		for i, a := range anchors {
			gins[i] = a.GIN
		}
		params["anchors"] = gins
		fmt.Fprintf(b, "RETURN %s, %s\nORDER BY p.name, p.gin", returnColumns, linksColumn)
	}
	records, err := r.client.ReadQuery(ctx, b.String(), params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", configurator.ErrRepository, op, err)
	}
	rows := decodeRows(records)
	out := make([]configurator.Product, 0, len(rows))
	for _, rw := range rows {
		if pred.Satisfied(rw.product, func(gin string) bool { return rw.links[gin] }) {
			out = append(out, rw.product)
		}
	}
	return catalog.Cap(out), nil
}

// kindFilter returns the Cypher clause selecting nodes of the given kind.
// Accessory candidates span the five accessory categories unless narrowed.
func kindFilter(kind configurator.Kind, category configurator.AccessoryCategory) (string, map[string]any) {
	if kind != configurator.KindAccessory {
		return "p.category = $category", map[string]any{"category": string(kind)}
	}
	if category != "" {
		return "p.category = $category", map[string]any{"category": string(category)}
	}
	cats := configurator.AccessoryCategories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return "p.category IN $categories", map[string]any{"categories": names}
}

// termsFilter renders the AND-of-OR attribute groups as a Cypher predicate
// over the candidate's searchable text, binding one parameter per term.
func termsFilter(groups [][]string, params map[string]any) string {
	clauses := make([]string, 0, len(groups))
	for i, group := range groups {
		alts := make([]string, 0, len(group))
		for j, term := range group {
			name := fmt.Sprintf("term_%d_%d", i, j)
			params[name] = term
			alts = append(alts, "text CONTAINS $"+name)
		}
		clauses = append(clauses, "("+strings.Join(alts, " OR ")+")")
	}
	return strings.Join(clauses, " AND ")
}

type row struct {
	product configurator.Product
	links   map[string]bool
}

// decodeRows maps query records onto product snapshots plus their anchor
// links. Records without a gin are dropped.
func decodeRows(records []map[string]any) []row {
	out := make([]row, 0, len(records))
	for _, rec := range records {
		p := configurator.Product{
			GIN:         str(rec["gin"]),
			Name:        str(rec["name"]),
			Description: str(rec["description"]),
			Attributes:  parseSpecifications(str(rec["specifications"])),
			Available:   true,
		}
		if p.GIN == "" {
			continue
		}
		p.Kind, p.Category = splitCategory(str(rec["category"]))
		links := make(map[string]bool)
		if raw, ok := rec["links"].([]any); ok {
			for _, v := range raw {
				if gin, ok := v.(string); ok {
					links[gin] = true
				}
			}
		}
		out = append(out, row{product: p, links: links})
	}
	return out
}

// splitCategory maps the node's category property onto the port's kind and
// accessory category. Single-valued kinds store their kind name; accessory
// nodes store their accessory category.
func splitCategory(category string) (configurator.Kind, configurator.AccessoryCategory) {
	switch k := configurator.Kind(category); k {
	case configurator.KindPowerSource, configurator.KindFeeder, configurator.KindCooler,
		configurator.KindInterconnector, configurator.KindTorch:
		return k, ""
	}
	return configurator.KindAccessory, configurator.AccessoryCategory(category)
}

// parseSpecifications flattens the node's JSON specification document into
// the product's attribute bag. Nested values are dropped; the bag is flat.
func parseSpecifications(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil
	}
	attrs := make(map[string]string, len(decoded))
	for k, v := range decoded {
		switch val := v.(type) {
		case string:
			if val != "" {
				attrs[k] = val
			}
		case float64:
			attrs[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			attrs[k] = strconv.FormatBool(val)
		}
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
