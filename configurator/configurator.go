// Package configurator defines the core data model of the welding-equipment
// configurator: component kinds, the normalized master parameter record, the
// selection cart, the per-power-source applicability table, the seven-step
// state machine, and the full session snapshot persisted between turns.
//
// The package holds no I/O. Ports for extraction, catalogue search, session
// storage and message composition live in subpackages; backends live under
// features/. Only the orchestrator mutates a Session.
package configurator

import "sort"

type (
	// Kind identifies one of the six component kinds a configuration is
	// assembled from. The set is closed; Accessory is the only multi-valued
	// kind.
	Kind string

	// AccessoryCategory narrows an accessory search to one catalogue
	// category. Categories drive the compatibility anchors used at S6.
	AccessoryCategory string

	// Product is an immutable catalogue snapshot returned by the repository.
	//
	// Contract:
	// - GIN is the opaque catalogue identifier and is never empty.
	// - Attributes carry the typed attribute bag (process, current, ...).
	// - Compatibility is a relation held by the catalogue, not the snapshot.
	Product struct {
		// GIN is the opaque catalogue identifier.
		GIN string `json:"gin"`
		// Name is the canonical product name.
		Name string `json:"name"`
		// Kind is the component kind of the product.
		Kind Kind `json:"kind"`
		// Category narrows accessories to their catalogue category. Empty
		// for the single-valued kinds.
		Category AccessoryCategory `json:"category,omitempty"`
		// Description is free-text catalogue copy used for matching.
		Description string `json:"description,omitempty"`
		// Attributes holds the typed attribute bag.
		Attributes map[string]string `json:"attributes,omitempty"`
		// Available reports whether the product can be selected.
		Available bool `json:"available"`
	}
)

const (
	// KindPowerSource is the mandatory S1 component.
	KindPowerSource Kind = "PowerSource"
	// KindFeeder is the wire feeder selected at S2.
	KindFeeder Kind = "Feeder"
	// KindCooler is the cooling unit selected at S3.
	KindCooler Kind = "Cooler"
	// KindInterconnector is the interconnection cable selected at S4.
	KindInterconnector Kind = "Interconnector"
	// KindTorch is the welding torch selected at S5.
	KindTorch Kind = "Torch"
	// KindAccessory is the multi-valued accessory kind selected at S6.
	KindAccessory Kind = "Accessory"
)

const (
	// CategoryPowerSourceAccessory anchors on the selected power source.
	CategoryPowerSourceAccessory AccessoryCategory = "PowerSourceAccessory"
	// CategoryFeederAccessory anchors on the selected feeder.
	CategoryFeederAccessory AccessoryCategory = "FeederAccessory"
	// CategoryConnectivity anchors on power source and feeder.
	CategoryConnectivity AccessoryCategory = "ConnectivityAccessory"
	// CategoryRemote anchors on power source and feeder.
	CategoryRemote AccessoryCategory = "Remote"
	// CategoryGeneral is the unclassified accessory category.
	CategoryGeneral AccessoryCategory = "Accessory"
)

// kindOrder fixes the canonical kind ordering used across the package.
var kindOrder = []Kind{
	KindPowerSource,
	KindFeeder,
	KindCooler,
	KindInterconnector,
	KindTorch,
	KindAccessory,
}

// attributeVocabulary lists the attribute names each kind accepts. Updates
// naming attributes outside the vocabulary of their kind are dropped on
// receipt rather than failing the turn.
var attributeVocabulary = map[Kind][]string{
	KindPowerSource: {
		"process", "current", "voltage", "phase", "material",
		"application", "environment", "duty_cycle", "portability",
	},
	KindFeeder: {
		"process", "material", "thickness", "cooling_type",
		"wire_size", "portability",
	},
	KindCooler: {
		"duty_cycle", "application", "environment", "cooling_capacity",
	},
	KindInterconnector: {
		"cable_length", "current", "cooling_type", "cross_section",
	},
	KindTorch: {
		"process", "current", "cooling_type", "neck_angle",
	},
	KindAccessory: {
		"accessory_type", "cable_length",
	},
}

// Kinds returns all component kinds in canonical S1..S6 order.
func Kinds() []Kind {
	out := make([]Kind, len(kindOrder))
	copy(out, kindOrder)
	return out
}

// Valid reports whether k is one of the six component kinds.
func (k Kind) Valid() bool {
	for _, known := range kindOrder {
		if k == known {
			return true
		}
	}
	return false
}

// MultiValued reports whether the kind holds an ordered list of selections
// rather than a single entry.
func (k Kind) MultiValued() bool { return k == KindAccessory }

// Vocabulary returns the attribute names the kind accepts, sorted.
func (k Kind) Vocabulary() []string {
	attrs, ok := attributeVocabulary[k]
	if !ok {
		return nil
	}
	out := make([]string, len(attrs))
	copy(out, attrs)
	sort.Strings(out)
	return out
}

// Accepts reports whether the kind's vocabulary contains the attribute name.
func (k Kind) Accepts(attr string) bool {
	for _, known := range attributeVocabulary[k] {
		if known == attr {
			return true
		}
	}
	return false
}

// AccessoryCategories returns the closed accessory category set in anchor
// precedence order.
func AccessoryCategories() []AccessoryCategory {
	return []AccessoryCategory{
		CategoryPowerSourceAccessory,
		CategoryFeederAccessory,
		CategoryConnectivity,
		CategoryRemote,
		CategoryGeneral,
	}
}

// Valid reports whether c is a known accessory category.
func (c AccessoryCategory) Valid() bool {
	for _, known := range AccessoryCategories() {
		if c == known {
			return true
		}
	}
	return false
}
