package search

import (
	"sort"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
)

// Normalize converts one filter's raw aggregation buckets into the ordered,
// labeled option list the UI renders. Buckets with zero or missing counts are
// dropped, as is any bucket whose raw key is the empty string ("no value" is
// never a selectable option). Ordering is deterministic: the definition's
// sort rule when present, else count descending with ties broken by raw value
// ascending, so collapsed lists do not reshuffle when expanded.
func Normalize(def models.FilterDefinition, buckets []models.AggBucket) models.FacetResult {
	result := models.FacetResult{
		Attribute: def.Attribute,
		Label:     def.Label,
		Options:   []models.FacetOption{},
	}

	for _, b := range buckets {
		if b.Count <= 0 || b.Key == "" {
			continue
		}
		label := b.Key
		if def.Transform != nil {
			label = def.Transform(b.Key)
		}
		result.Options = append(result.Options, models.FacetOption{
			Value: b.Key,
			Label: label,
			Count: b.Count,
		})
	}

	sortOptions(result.Options, def.SortRule)
	return result
}

// NormalizeRange folds a min_max aggregation into the range filter's bounds.
func NormalizeRange(def models.FilterDefinition, min, max *float64) models.FacetResult {
	return models.FacetResult{
		Attribute: def.Attribute,
		Label:     def.Label,
		Options:   []models.FacetOption{},
		Min:       min,
		Max:       max,
	}
}

func sortOptions(opts []models.FacetOption, rule *models.FacetSortRule) {
	switch {
	case rule != nil && len(rule.FixedOrder) > 0:
		rank := make(map[string]int, len(rule.FixedOrder))
		for i, v := range rule.FixedOrder {
			rank[v] = i
		}
		sort.SliceStable(opts, func(i, j int) bool {
			ri, iOK := rank[opts[i].Value]
			rj, jOK := rank[opts[j].Value]
			switch {
			case iOK && jOK:
				return ri < rj
			case iOK:
				return true
			case jOK:
				return false
			default:
				return opts[i].Value < opts[j].Value
			}
		})

	case rule != nil && rule.NumericAsc:
		sort.SliceStable(opts, func(i, j int) bool {
			ni, iOK := ParseMeasure(opts[i].Value)
			nj, jOK := ParseMeasure(opts[j].Value)
			if iOK && jOK && ni != nj {
				return ni < nj
			}
			return opts[i].Value < opts[j].Value
		})

	default:
		sort.SliceStable(opts, func(i, j int) bool {
			if opts[i].Count != opts[j].Count {
				return opts[i].Count > opts[j].Count
			}
			return opts[i].Value < opts[j].Value
		})
	}
}
