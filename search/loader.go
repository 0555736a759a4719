package search

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
)

// Config bundles the three authored inputs the compiler is built from.
type Config struct {
	Policy        Policy
	DerivedFields []DerivedFieldSpec
	FilterSets    map[string][]models.FilterDefinition
}

// DefaultConfig returns the in-tree authored configuration.
func DefaultConfig() Config {
	return Config{
		Policy:        DefaultPolicy(),
		DerivedFields: DefaultDerivedFields(),
		FilterSets:    DefaultFilterSets(),
	}
}

// fileConfig is the YAML override shape. Any section present replaces the
// corresponding default wholesale; absent sections keep the defaults.
type fileConfig struct {
	Policy        *Policy                    `yaml:"policy"`
	DerivedFields []DerivedFieldSpec         `yaml:"derived_fields"`
	FilterSets    map[string][]filterDefYAML `yaml:"filter_sets"`
}

// filterDefYAML is a FilterDefinition with the transform referenced by name,
// since YAML cannot carry a function value.
type filterDefYAML struct {
	Attribute    string                `yaml:"attribute"`
	Label        string                `yaml:"label"`
	Kind         string                `yaml:"kind"`
	SourceField  string                `yaml:"source_field"`
	DerivedField string                `yaml:"derived_field"`
	Group        string                `yaml:"group"`
	Transform    string                `yaml:"transform"`
	Sort         *models.FacetSortRule `yaml:"sort"`
}

// transformsByName are the named value transforms YAML overrides may use.
var transformsByName = map[string]models.TransformFunc{
	"title_case": TitleCase,
}

// LoadConfig reads an optional YAML override file on top of the defaults.
// An empty path means defaults only. Unknown transform names and malformed
// YAML are boot errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read search config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("failed to parse search config %s: %w", path, err)
	}

	if fc.Policy != nil {
		cfg.Policy = *fc.Policy
	}
	if len(fc.DerivedFields) > 0 {
		cfg.DerivedFields = fc.DerivedFields
	}
	if len(fc.FilterSets) > 0 {
		sets := make(map[string][]models.FilterDefinition, len(fc.FilterSets))
		for key, defs := range fc.FilterSets {
			for _, d := range defs {
				def := models.FilterDefinition{
					Attribute:    d.Attribute,
					Label:        d.Label,
					Kind:         models.FilterKind(d.Kind),
					SourceField:  d.SourceField,
					DerivedField: d.DerivedField,
					Group:        d.Group,
					SortRule:     d.Sort,
				}
				if d.Transform != "" {
					fn, ok := transformsByName[d.Transform]
					if !ok {
						return cfg, fmt.Errorf("filter set %q attribute %q: unknown transform %q", key, d.Attribute, d.Transform)
					}
					def.Transform = fn
				}
				sets[key] = append(sets[key], def)
			}
		}
		// The default set must always exist; keep it when the override file
		// only redefines vertical lists.
		if _, ok := sets[DefaultFilterSetKey]; !ok {
			sets[DefaultFilterSetKey] = cfg.FilterSets[DefaultFilterSetKey]
		}
		cfg.FilterSets = sets
	}

	return cfg, nil
}
