// Package reference holds the static lookup data the normalizers consume:
// the region table, the target-city list and the skill keyword list.
//
// Tables are plain values. Callers get a fresh copy from Default or Load and
// pass it into each normalizer call, so alternate keyword sets or locales can
// be substituted without touching the matching rules.
package reference

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyRegionName = errors.New("region name is required")
	ErrEmptyRegion     = errors.New("region must list at least one area")
	ErrDuplicateRegion = errors.New("duplicate region name")
	ErrDuplicateSkill  = errors.New("duplicate skill keyword")
	ErrNoCities        = errors.New("at least one target city is required")
)

// Region is a named group of city/area substrings.
type Region struct {
	Name  string   `yaml:"name"`
	Areas []string `yaml:"areas"`
}

// RegionTable is ordered. Classification walks it in declaration order and
// the first area that matches wins, so the order is part of the contract.
type RegionTable []Region

// Names returns the region names in table order.
func (t RegionTable) Names() []string {
	names := make([]string, len(t))
	for i, r := range t {
		names[i] = r.Name
	}
	return names
}

// Tables bundles the reference data used by one pipeline run.
type Tables struct {
	Regions      RegionTable `yaml:"regions"`
	TargetCities []string    `yaml:"target_cities"`
	Skills       []string    `yaml:"skills"`
}

// Validate checks the invariants the normalizers rely on.
func (t Tables) Validate() error {
	seenRegions := make(map[string]bool, len(t.Regions))
	for i, r := range t.Regions {
		if r.Name == "" {
			return fmt.Errorf("%w: regions[%d]", ErrEmptyRegionName, i)
		}
		if len(r.Areas) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyRegion, r.Name)
		}
		if seenRegions[r.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateRegion, r.Name)
		}
		seenRegions[r.Name] = true
	}

	if len(t.TargetCities) == 0 {
		return ErrNoCities
	}

	//skill output must be a set
	seenSkills := make(map[string]bool, len(t.Skills))
	for _, s := range t.Skills {
		if seenSkills[s] {
			return fmt.Errorf("%w: %s", ErrDuplicateSkill, s)
		}
		seenSkills[s] = true
	}
	return nil
}

// Load reads tables from a YAML file. Sections missing from the file fall
// back to the defaults.
func Load(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read reference file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML reference data on top of the defaults.
func Parse(data []byte) (Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("failed to parse reference YAML: %w", err)
	}

	def := Default()
	if len(t.Regions) == 0 {
		t.Regions = def.Regions
	}
	if len(t.TargetCities) == 0 {
		t.TargetCities = def.TargetCities
	}
	if len(t.Skills) == 0 {
		t.Skills = def.Skills
	}

	if err := t.Validate(); err != nil {
		return Tables{}, fmt.Errorf("invalid reference data: %w", err)
	}
	return t, nil
}

// Default returns a fresh copy of the built-in UK tables.
func Default() Tables {
	regions := make(RegionTable, len(ukRegions))
	for i, r := range ukRegions {
		regions[i] = Region{Name: r.Name, Areas: append([]string(nil), r.Areas...)}
	}
	return Tables{
		Regions:      regions,
		TargetCities: append([]string(nil), ukTargetCities...),
		Skills:       append([]string(nil), techSkills...),
	}
}
