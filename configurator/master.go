package configurator

import "sort"

type (
	// ParameterBag is the normalized form of what the user asked for in one
	// component kind.
	//
	// Contract:
	// - Attribute writes overwrite; attributes are never auto-deleted.
	// - DirectMention holds free text naming a specific product. Receiving a
	//   mention preserves existing attributes; a later product lookup may
	//   enrich the bag from product attributes.
	ParameterBag struct {
		// Attributes maps attribute name to its canonical value.
		Attributes map[string]string `json:"attributes,omitempty"`
		// DirectMention is the raw product-name token from the user, if any.
		DirectMention string `json:"direct_mention,omitempty"`
	}

	// MasterRecord maps every component kind to its parameter bag. The
	// mapping is total: all six bags exist from creation, empty bags are
	// valid, and bags are zeroed only by the downstream-clear cascade.
	MasterRecord struct {
		PowerSource    ParameterBag `json:"power_source"`
		Feeder         ParameterBag `json:"feeder"`
		Cooler         ParameterBag `json:"cooler"`
		Interconnector ParameterBag `json:"interconnector"`
		Torch          ParameterBag `json:"torch"`
		Accessory      ParameterBag `json:"accessories"`
	}
)

// Set writes one attribute, overwriting any previous value.
func (b *ParameterBag) Set(attr, value string) {
	if b.Attributes == nil {
		b.Attributes = make(map[string]string)
	}
	b.Attributes[attr] = value
}

// Get returns the value of attr and whether it is present.
func (b *ParameterBag) Get(attr string) (string, bool) {
	v, ok := b.Attributes[attr]
	return v, ok
}

// Apply merges updates field by field, last write wins. The bag is never
// replaced wholesale.
func (b *ParameterBag) Apply(updates map[string]string) {
	for attr, value := range updates {
		b.Set(attr, value)
	}
}

// Enrich copies product attributes into the bag without overwriting values
// the user stated explicitly.
func (b *ParameterBag) Enrich(p Product) {
	for attr, value := range p.Attributes {
		if _, ok := b.Attributes[attr]; ok {
			continue
		}
		b.Set(attr, value)
	}
}

// Len returns the number of attributes in the bag. The direct mention does
// not count as an attribute.
func (b *ParameterBag) Len() int { return len(b.Attributes) }

// Empty reports whether the bag has no attributes and no direct mention.
func (b *ParameterBag) Empty() bool {
	return len(b.Attributes) == 0 && b.DirectMention == ""
}

// SortedAttributes returns the attribute names in the bag, sorted.
func (b *ParameterBag) SortedAttributes() []string {
	out := make([]string, 0, len(b.Attributes))
	for attr := range b.Attributes {
		out = append(out, attr)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy of the bag.
func (b ParameterBag) Clone() ParameterBag {
	out := ParameterBag{DirectMention: b.DirectMention}
	if len(b.Attributes) > 0 {
		out.Attributes = make(map[string]string, len(b.Attributes))
		for attr, value := range b.Attributes {
			out.Attributes[attr] = value
		}
	}
	return out
}

// NewMasterRecord returns a master record with empty bags for every kind.
func NewMasterRecord() MasterRecord { return MasterRecord{} }

// Bag returns the bag for the kind. The pointer aliases the record so writes
// through it mutate the record.
func (m *MasterRecord) Bag(k Kind) *ParameterBag {
	switch k {
	case KindPowerSource:
		return &m.PowerSource
	case KindFeeder:
		return &m.Feeder
	case KindCooler:
		return &m.Cooler
	case KindInterconnector:
		return &m.Interconnector
	case KindTorch:
		return &m.Torch
	case KindAccessory:
		return &m.Accessory
	}
	return nil
}

// Zero resets the bag for the kind to empty. Used by the downstream-clear
// cascade; nothing else prunes the record.
func (m *MasterRecord) Zero(k Kind) {
	if bag := m.Bag(k); bag != nil {
		*bag = ParameterBag{}
	}
}

// Clone returns a deep copy of the record.
func (m MasterRecord) Clone() MasterRecord {
	return MasterRecord{
		PowerSource:    m.PowerSource.Clone(),
		Feeder:         m.Feeder.Clone(),
		Cooler:         m.Cooler.Clone(),
		Interconnector: m.Interconnector.Clone(),
		Torch:          m.Torch.Clone(),
		Accessory:      m.Accessory.Clone(),
	}
}
