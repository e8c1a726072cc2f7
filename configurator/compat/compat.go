// Package compat compiles the selection cart into the compatibility
// constraint a candidate product must satisfy. A candidate passes when it
// shares a compatibility edge with every anchor the cart pins for its kind;
// Skipped and NotApplicable entries pin nothing.
//
// The predicate is recompiled on every search, so replacing an anchor never
// requires retroactive re-validation of earlier turns.
package compat

import (
	"github.com/beedev/recommenderv2/configurator"
)

type (
	// Anchor names one selected cart product candidates must share a
	// compatibility edge with.
	Anchor struct {
		// GIN identifies the anchor product in the catalogue.
		GIN string
		// Kind is the anchor's component kind.
		Kind configurator.Kind
	}

	// Predicate is the compiled constraint for one search. Single-valued
	// kinds carry a fixed anchor list; accessory searches route each
	// candidate through its category's anchor row.
	Predicate struct {
		kind       configurator.Kind
		anchors    []Anchor
		byCategory map[configurator.AccessoryCategory][]Anchor
	}
)

// For compiles the constraint for searching candidates of kind k against the
// current cart. Only Selected entries become anchors.
func For(k configurator.Kind, c *configurator.Cart) Predicate {
	p := Predicate{kind: k}
	switch k {
	case configurator.KindPowerSource:
		// The power source is the root of the chain and is unconstrained.
	case configurator.KindFeeder:
		p.anchors = anchorsOf(c, configurator.KindPowerSource)
	case configurator.KindCooler:
		p.anchors = anchorsOf(c, configurator.KindPowerSource, configurator.KindFeeder)
	case configurator.KindInterconnector:
		p.anchors = anchorsOf(c,
			configurator.KindPowerSource,
			configurator.KindFeeder,
			configurator.KindCooler,
		)
	case configurator.KindTorch:
		// A selected feeder replaces the power source as the torch's
		// primary anchor.
		if feeder := anchorsOf(c, configurator.KindFeeder); len(feeder) > 0 {
			p.anchors = append(feeder, anchorsOf(c, configurator.KindCooler)...)
		} else {
			p.anchors = anchorsOf(c, configurator.KindPowerSource, configurator.KindCooler)
		}
	case configurator.KindAccessory:
		p.byCategory = map[configurator.AccessoryCategory][]Anchor{
			configurator.CategoryPowerSourceAccessory: anchorsOf(c, configurator.KindPowerSource),
			configurator.CategoryFeederAccessory:      anchorsOf(c, configurator.KindFeeder),
			configurator.CategoryConnectivity:         anchorsOf(c, configurator.KindPowerSource, configurator.KindFeeder),
			configurator.CategoryRemote:               anchorsOf(c, configurator.KindPowerSource, configurator.KindFeeder),
			configurator.CategoryGeneral:              anchorsOf(c, configurator.KindPowerSource, configurator.KindFeeder),
		}
	}
	return p
}

// anchorsOf collects the Selected entries for the given kinds, in order.
func anchorsOf(c *configurator.Cart, kinds ...configurator.Kind) []Anchor {
	var out []Anchor
	for _, k := range kinds {
		if p := c.Selected(k); p != nil {
			out = append(out, Anchor{GIN: p.GIN, Kind: k})
		}
	}
	return out
}

// Kind returns the candidate kind the predicate was compiled for.
func (p Predicate) Kind() configurator.Kind { return p.kind }

// Anchors returns the constraint for one candidate. Accessory candidates
// route through their category's row; unknown categories use the general row.
func (p Predicate) Anchors(candidate configurator.Product) []Anchor {
	if p.kind != configurator.KindAccessory {
		return p.anchors
	}
	if row, ok := p.byCategory[candidate.Category]; ok {
		return row
	}
	return p.byCategory[configurator.CategoryGeneral]
}

// AnchorSet returns every anchor the predicate can require, deduplicated and
// in cart order. Storage adapters use it to bound the graph traversal before
// per-candidate filtering.
func (p Predicate) AnchorSet() []Anchor {
	if p.kind != configurator.KindAccessory {
		out := make([]Anchor, len(p.anchors))
		copy(out, p.anchors)
		return out
	}
	var out []Anchor
	seen := make(map[string]bool)
	for _, cat := range configurator.AccessoryCategories() {
		for _, a := range p.byCategory[cat] {
			if seen[a.GIN] {
				continue
			}
			seen[a.GIN] = true
			out = append(out, a)
		}
	}
	return out
}

// Empty reports whether no candidate is constrained.
func (p Predicate) Empty() bool { return len(p.AnchorSet()) == 0 }

// Satisfied reports whether a candidate passes, given an edge oracle that
// reports whether the candidate shares a compatibility edge with the anchor
// product.
func (p Predicate) Satisfied(candidate configurator.Product, compatible func(gin string) bool) bool {
	for _, a := range p.Anchors(candidate) {
		if !compatible(a.GIN) {
			return false
		}
	}
	return true
}
