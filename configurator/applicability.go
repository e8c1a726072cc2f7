package configurator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type (
	// Flag is a Y/N applicability marker.
	Flag string

	// Applicability records, for one power source, which downstream kinds
	// participate in the configuration. Filled at S1 commit time; read-only
	// afterwards until the power source is replaced.
	Applicability struct {
		Feeder         Flag `json:"feeder" yaml:"feeder"`
		Cooler         Flag `json:"cooler" yaml:"cooler"`
		Interconnector Flag `json:"interconnector" yaml:"interconnector"`
		Torch          Flag `json:"torch" yaml:"torch"`
		Accessories    Flag `json:"accessories" yaml:"accessories"`
	}

	// ApplicabilityTable maps power-source identifiers to their
	// applicability rows. Loaded once at startup and immutable afterwards.
	ApplicabilityTable struct {
		rows map[string]Applicability
		def  Applicability
	}

	// applicabilityFile is the on-disk YAML layout.
	applicabilityFile struct {
		Version       string                   `yaml:"version"`
		DefaultPolicy *Applicability           `yaml:"default_policy"`
		PowerSources  map[string]Applicability `yaml:"power_sources"`
	}
)

const (
	// FlagYes marks a kind as applicable.
	FlagYes Flag = "Y"
	// FlagNo marks a kind as not applicable.
	FlagNo Flag = "N"
)

// DefaultApplicability returns the all-Y row used for unknown power sources.
func DefaultApplicability() Applicability {
	return Applicability{
		Feeder:         FlagYes,
		Cooler:         FlagYes,
		Interconnector: FlagYes,
		Torch:          FlagYes,
		Accessories:    FlagYes,
	}
}

// Applicable reports whether the kind participates. The power source always
// participates; unknown kinds do not.
func (a Applicability) Applicable(k Kind) bool {
	switch k {
	case KindPowerSource:
		return true
	case KindFeeder:
		return a.Feeder != FlagNo
	case KindCooler:
		return a.Cooler != FlagNo
	case KindInterconnector:
		return a.Interconnector != FlagNo
	case KindTorch:
		return a.Torch != FlagNo
	case KindAccessory:
		return a.Accessories != FlagNo
	}
	return false
}

// NotApplicableKinds returns the kinds marked N, in canonical order.
func (a Applicability) NotApplicableKinds() []Kind {
	var out []Kind
	for _, k := range Kinds() {
		if k == KindPowerSource {
			continue
		}
		if !a.Applicable(k) {
			out = append(out, k)
		}
	}
	return out
}

// normalize fills unset flags with Y so partially specified rows behave like
// the original table's sparse entries.
func (a Applicability) normalize() Applicability {
	fill := func(f Flag) Flag {
		if f != FlagNo {
			return FlagYes
		}
		return FlagNo
	}
	return Applicability{
		Feeder:         fill(a.Feeder),
		Cooler:         fill(a.Cooler),
		Interconnector: fill(a.Interconnector),
		Torch:          fill(a.Torch),
		Accessories:    fill(a.Accessories),
	}
}

// NewApplicabilityTable builds a table from explicit rows and a default
// policy. Rows are normalized so unset flags read as Y.
func NewApplicabilityTable(rows map[string]Applicability, def Applicability) *ApplicabilityTable {
	normalized := make(map[string]Applicability, len(rows))
	for gin, row := range rows {
		normalized[gin] = row.normalize()
	}
	return &ApplicabilityTable{rows: normalized, def: def.normalize()}
}

// LoadApplicabilityTable reads the YAML applicability file. A missing
// default policy falls back to all-Y.
func LoadApplicabilityTable(path string) (*ApplicabilityTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read applicability table: %w", err)
	}
	var file applicabilityFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse applicability table: %w", err)
	}
	def := DefaultApplicability()
	if file.DefaultPolicy != nil {
		def = *file.DefaultPolicy
	}
	return NewApplicabilityTable(file.PowerSources, def), nil
}

// Lookup returns the applicability row for a power-source identifier,
// falling back to the default policy for unknown identifiers.
func (t *ApplicabilityTable) Lookup(gin string) Applicability {
	if t == nil {
		return DefaultApplicability()
	}
	if row, ok := t.rows[gin]; ok {
		return row
	}
	return t.def
}

// Size returns the number of explicit rows in the table.
func (t *ApplicabilityTable) Size() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}
