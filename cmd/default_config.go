package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cloudlet-sim/cloudlet-sim/sim/scenario"
)

// DefaultPreset is the preset used when neither --config nor --preset is given.
const DefaultPreset = "default"

// Defaults represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Defaults struct {
	Version   string                     `yaml:"version"`
	Scenarios map[string]scenario.Config `yaml:"scenarios"`
}

// loadDefaults parses defaults.yaml with strict field checking: typos must
// cause errors rather than silently falling back to zero values.
func loadDefaults(path string) (Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults{}, fmt.Errorf("reading defaults file %s: %w", path, err)
	}
	var d Defaults
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&d); err != nil {
		return Defaults{}, fmt.Errorf("parsing defaults file %s: %w", path, err)
	}
	return d, nil
}

// Preset returns the named scenario.
func (d Defaults) Preset(name string) (scenario.Config, error) {
	cfg, ok := d.Scenarios[name]
	if !ok {
		return scenario.Config{}, fmt.Errorf("unknown preset %q (available: %v)", name, d.PresetNames())
	}
	return cfg, nil
}

// PresetNames lists the presets in sorted order.
func (d Defaults) PresetNames() []string {
	names := make([]string, 0, len(d.Scenarios))
	for name := range d.Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
