package search

import (
	"fmt"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
)

// DefaultFilterSetKey is the filter list used for plain search pages and as
// the fallback when a page references an unregistered key.
const DefaultFilterSetKey = "default"

// Registry is the static, per-vertical catalog of filter definitions. Each
// vertical's list is independently authored; the same attribute name may map
// to a different source field or transform in another vertical. Pure lookup,
// no I/O, safe for concurrent use once built.
type Registry struct {
	sets map[string][]models.FilterDefinition
}

// NewRegistry validates and indexes the given filter sets. It fails when a
// set repeats an attribute, names an unknown kind, or a definition does not
// resolve to exactly one field (direct or derived).
func NewRegistry(sets map[string][]models.FilterDefinition, rules *Ruleset) (*Registry, error) {
	if _, ok := sets[DefaultFilterSetKey]; !ok {
		return nil, fmt.Errorf("registry is missing the %q filter set", DefaultFilterSetKey)
	}
	for key, defs := range sets {
		seen := map[string]bool{}
		for _, def := range defs {
			if def.Attribute == "" {
				return nil, fmt.Errorf("filter set %q: definition with empty attribute", key)
			}
			if seen[def.Attribute] {
				return nil, fmt.Errorf("filter set %q: duplicate attribute %q", key, def.Attribute)
			}
			seen[def.Attribute] = true

			switch def.Kind {
			case models.FilterKindSingle, models.FilterKindMulti, models.FilterKindRange:
			default:
				return nil, fmt.Errorf("filter set %q: attribute %q has unknown kind %q", key, def.Attribute, def.Kind)
			}

			direct := def.SourceField != ""
			derived := def.DerivedField != ""
			if direct == derived {
				return nil, fmt.Errorf("filter set %q: attribute %q must set exactly one of source_field and derived_field", key, def.Attribute)
			}
			if derived && rules != nil && !rules.Has(def.DerivedField) {
				return nil, fmt.Errorf("filter set %q: attribute %q references unknown derived field %q", key, def.Attribute, def.DerivedField)
			}
		}
	}
	return &Registry{sets: sets}, nil
}

// Definitions returns the ordered filter list for a filter set key, or
// ErrUnknownScope when the key is not registered.
func (r *Registry) Definitions(filterSetKey string) ([]models.FilterDefinition, error) {
	defs, ok := r.sets[filterSetKey]
	if !ok {
		return nil, ErrUnknownScope(filterSetKey)
	}
	out := make([]models.FilterDefinition, len(defs))
	copy(out, defs)
	return out, nil
}

// DefinitionsOrDefault is Definitions with the documented fallback applied:
// an unknown key yields the default filter list, never an error.
func (r *Registry) DefinitionsOrDefault(filterSetKey string) []models.FilterDefinition {
	defs, err := r.Definitions(filterSetKey)
	if err != nil {
		defs, _ = r.Definitions(DefaultFilterSetKey)
	}
	return defs
}

// Keys lists the registered filter set keys.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.sets))
	for k := range r.sets {
		keys = append(keys, k)
	}
	return keys
}
