package configurator

import "fmt"

type (
	// EntryStatus is the lifecycle state of one cart slot.
	EntryStatus string

	// CartEntry is the tagged variant held per component kind: unset,
	// Selected (with product), Skipped, or NotApplicable.
	//
	// Contract:
	// - A Selected entry is locked: it changes only through an explicit
	//   replacement, which triggers the downstream-clear cascade.
	// - Product is non-nil iff Status is StatusSelected.
	CartEntry struct {
		// Status tags the variant.
		Status EntryStatus `json:"status"`
		// Product is the selection for StatusSelected entries.
		Product *Product `json:"product,omitempty"`
	}

	// Cart records what the user has selected: one entry per single-valued
	// kind plus an ordered accessory list.
	Cart struct {
		PowerSource    CartEntry   `json:"power_source"`
		Feeder         CartEntry   `json:"feeder"`
		Cooler         CartEntry   `json:"cooler"`
		Interconnector CartEntry   `json:"interconnector"`
		Torch          CartEntry   `json:"torch"`
		Accessories    []CartEntry `json:"accessories,omitempty"`
	}
)

const (
	// StatusUnset marks a slot not yet decided. Zero value.
	StatusUnset EntryStatus = ""
	// StatusSelected marks a locked product selection.
	StatusSelected EntryStatus = "selected"
	// StatusSkipped marks a slot the user declined.
	StatusSkipped EntryStatus = "skipped"
	// StatusNotApplicable marks a slot the applicability table excludes for
	// the selected power source.
	StatusNotApplicable EntryStatus = "not_applicable"
)

// Entry returns a pointer to the slot for a single-valued kind. Accessory
// slots are held in the Accessories list; Entry returns nil for them.
func (c *Cart) Entry(k Kind) *CartEntry {
	switch k {
	case KindPowerSource:
		return &c.PowerSource
	case KindFeeder:
		return &c.Feeder
	case KindCooler:
		return &c.Cooler
	case KindInterconnector:
		return &c.Interconnector
	case KindTorch:
		return &c.Torch
	}
	return nil
}

// Selected returns the selected product for the kind, or nil. For the
// accessory kind it returns nil; use the Accessories list directly.
func (c *Cart) Selected(k Kind) *Product {
	e := c.Entry(k)
	if e == nil || e.Status != StatusSelected {
		return nil
	}
	return e.Product
}

// Select commits a product into the slot for its kind. Accessories append in
// arrival order. A Selected entry is locked: committing over one without the
// replace flag is an integrity violation.
func (c *Cart) Select(p Product, replace bool) error {
	if p.Kind == KindAccessory {
		prod := p
		c.Accessories = append(c.Accessories, CartEntry{Status: StatusSelected, Product: &prod})
		return nil
	}
	e := c.Entry(p.Kind)
	if e == nil {
		return fmt.Errorf("%w: unknown kind %q", ErrIntegrity, p.Kind)
	}
	if e.Status == StatusSelected && !replace {
		return fmt.Errorf("%w: %s already selected", ErrIntegrity, p.Kind)
	}
	prod := p
	*e = CartEntry{Status: StatusSelected, Product: &prod}
	return nil
}

// Skip marks the slot skipped. The power source is mandatory and may never
// be skipped.
func (c *Cart) Skip(k Kind) error {
	if k == KindPowerSource {
		return fmt.Errorf("%w: power source marked skipped", ErrIntegrity)
	}
	if k == KindAccessory {
		// Skipping accessories leaves the list as it is.
		return nil
	}
	e := c.Entry(k)
	if e == nil {
		return fmt.Errorf("%w: unknown kind %q", ErrIntegrity, k)
	}
	if e.Status == StatusSelected {
		return fmt.Errorf("%w: %s already selected", ErrIntegrity, k)
	}
	*e = CartEntry{Status: StatusSkipped}
	return nil
}

// MarkNotApplicable fills the slot for a kind the applicability table marks
// N. Selected entries are never overwritten by applicability.
func (c *Cart) MarkNotApplicable(k Kind) error {
	if k == KindPowerSource {
		return fmt.Errorf("%w: power source marked not applicable", ErrIntegrity)
	}
	if k == KindAccessory {
		return nil
	}
	e := c.Entry(k)
	if e == nil {
		return fmt.Errorf("%w: unknown kind %q", ErrIntegrity, k)
	}
	if e.Status == StatusSelected {
		return fmt.Errorf("%w: %s selected but not applicable", ErrIntegrity, k)
	}
	*e = CartEntry{Status: StatusNotApplicable}
	return nil
}

// Reset clears the slot back to unset. The downstream-clear cascade is the
// only caller. Resetting the accessory kind drops the whole list.
func (c *Cart) Reset(k Kind) {
	if k == KindAccessory {
		c.Accessories = nil
		return
	}
	if e := c.Entry(k); e != nil {
		*e = CartEntry{}
	}
}

// RealComponents counts Selected entries, accessories individually. The
// finalization threshold compares against this count.
func (c *Cart) RealComponents() int {
	n := 0
	for _, k := range []Kind{KindPowerSource, KindFeeder, KindCooler, KindInterconnector, KindTorch} {
		if c.Entry(k).Status == StatusSelected {
			n++
		}
	}
	for _, e := range c.Accessories {
		if e.Status == StatusSelected {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the cart.
func (c Cart) Clone() Cart {
	out := c
	out.PowerSource = c.PowerSource.clone()
	out.Feeder = c.Feeder.clone()
	out.Cooler = c.Cooler.clone()
	out.Interconnector = c.Interconnector.clone()
	out.Torch = c.Torch.clone()
	if len(c.Accessories) > 0 {
		out.Accessories = make([]CartEntry, len(c.Accessories))
		for i, e := range c.Accessories {
			out.Accessories[i] = e.clone()
		}
	}
	return out
}

func (e CartEntry) clone() CartEntry {
	out := e
	if e.Product != nil {
		prod := *e.Product
		if len(e.Product.Attributes) > 0 {
			prod.Attributes = make(map[string]string, len(e.Product.Attributes))
			for k, v := range e.Product.Attributes {
				prod.Attributes[k] = v
			}
		}
		out.Product = &prod
	}
	return out
}
