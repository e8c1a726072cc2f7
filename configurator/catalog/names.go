package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/beedev/recommenderv2/configurator"
)

type (
	// Names is the known product-name dictionary, per kind. The extractor
	// feeds a slice of it into prompts so the model can spot direct product
	// mentions, and name lookup falls back to it when the backend has no
	// dictionary of its own.
	Names map[configurator.Kind][]string

	// namesFile is the on-disk YAML layout.
	namesFile struct {
		Version      string   `yaml:"version"`
		PowerSources []string `yaml:"power_sources"`
		Feeders      []string `yaml:"feeders"`
		Coolers      []string `yaml:"coolers"`
	}
)

// LoadNames reads the product-name dictionary. Names come out sorted so
// prompt content is stable across restarts.
func LoadNames(path string) (Names, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read product names: %w", err)
	}
	var file namesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse product names: %w", err)
	}
	out := Names{
		configurator.KindPowerSource: file.PowerSources,
		configurator.KindFeeder:      file.Feeders,
		configurator.KindCooler:      file.Coolers,
	}
	for kind, names := range out {
		sort.Strings(names)
		out[kind] = names
	}
	return out, nil
}

// For returns up to limit names for the kind. A zero limit means all.
func (n Names) For(kind configurator.Kind, limit int) []string {
	names := n[kind]
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Resolve fuzzy-matches a raw mention against the dictionary for the kind,
// returning the canonical names that match in alphabetic order.
func (n Names) Resolve(kind configurator.Kind, raw string) []string {
	var out []string
	for _, name := range n[kind] {
		if NameMatch(raw, name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
