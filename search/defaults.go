package search

import (
	"strings"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
)

// TitleCase uppercases the first letter of each word in a raw value, for
// attributes merchandised in lowercase ("built-in" -> "Built-In").
func TitleCase(raw string) string {
	b := []byte(strings.ToLower(raw))
	upperNext := true
	for i, c := range b {
		if upperNext && 'a' <= c && c <= 'z' {
			b[i] = c - 32
		}
		upperNext = c == ' ' || c == '-' || c == '/'
	}
	return string(b)
}

// DefaultDerivedFields is the authored bucket-table set. Tables are
// first-match-wins: keep predicates ordered most-specific to least-specific
// (a width of exactly 30 must land in one bucket, not straddle two).
func DefaultDerivedFields() []DerivedFieldSpec {
	return []DerivedFieldSpec{
		{
			Name:   "size_category",
			Inputs: []string{"attributes.width"},
			Buckets: []BucketSpec{
				{When: `num <= 26`, Emit: "Small"},
				{When: `num <= 33`, Emit: "Medium"},
				{When: `num <= 42`, Emit: "Large"},
				{When: `num > 42`, Emit: "XL"},
			},
		},
		{
			Name:   "fuel_type",
			Inputs: []string{"tags", "attributes.fuel"},
			Buckets: []BucketSpec{
				{When: `hasTag("natural gas") or hasTag("natural-gas") or value == "Natural Gas"`, Emit: "Natural Gas"},
				{When: `hasTag("propane") or hasTag("lp") or value == "Propane"`, Emit: "Propane"},
				{When: `hasTag("charcoal") or value == "Charcoal"`, Emit: "Charcoal"},
				{When: `hasTag("pellet") or value == "Pellet"`, Emit: "Pellet"},
				{When: `hasTag("electric") or value == "Electric"`, Emit: "Electric"},
			},
		},
		{
			Name:   "btu_class",
			Inputs: []string{"attributes.btu"},
			Buckets: []BucketSpec{
				{When: `num >= 50000`, Emit: "High Output (50K+ BTU)"},
				{When: `num >= 30000`, Emit: "Standard (30-50K BTU)"},
				{When: `num > 0`, Emit: "Compact (under 30K BTU)"},
			},
		},
		{
			Name:   "fireplace_style",
			Inputs: []string{"tags"},
			Buckets: []BucketSpec{
				{When: `hasTag("see-through") or hasTag("see through")`, Emit: "See-Through"},
				{When: `hasTag("ventless") or hasTag("vent-free")`, Emit: "Ventless"},
				{When: `hasTag("direct-vent") or hasTag("direct vent")`, Emit: "Direct Vent"},
				{When: `hasTag("wood-burning") or hasTag("wood burning")`, Emit: "Wood Burning"},
			},
		},
		{
			Name:   "capacity_class",
			Inputs: []string{"attributes.capacity"},
			Buckets: []BucketSpec{
				{When: `num >= 7`, Emit: "Large (7+ cu ft)"},
				{When: `num >= 4.5`, Emit: "Mid-Size (4.5-7 cu ft)"},
				{When: `num > 0`, Emit: "Compact (under 4.5 cu ft)"},
			},
		},
	}
}

// DefaultFilterSets is the per-vertical filter schema. Each vertical's list
// is independently authored; "size" on grills and "capacity" on refrigeration
// resolve through different derived fields even though both render as a list.
func DefaultFilterSets() map[string][]models.FilterDefinition {
	brand := models.FilterDefinition{
		Attribute:   "brand",
		Label:       "Brand",
		Kind:        models.FilterKindMulti,
		SourceField: FieldBrand,
	}
	price := models.FilterDefinition{
		Attribute:   "price",
		Label:       "Price",
		Kind:        models.FilterKindRange,
		SourceField: FieldPrice,
	}

	return map[string][]models.FilterDefinition{
		"grills": {
			brand,
			{
				Attribute:    "fuel",
				Label:        "Fuel Type",
				Kind:         models.FilterKindMulti,
				DerivedField: "fuel_type",
			},
			{
				Attribute:    "size",
				Label:        "Grill Size",
				Kind:         models.FilterKindMulti,
				DerivedField: "size_category",
				SortRule:     &models.FacetSortRule{FixedOrder: []string{"Small", "Medium", "Large", "XL"}},
			},
			{
				Attribute:   "configuration",
				Label:       "Configuration",
				Kind:        models.FilterKindSingle,
				SourceField: "attributes.configuration",
				Transform:   TitleCase,
			},
			price,
		},
		"fireplaces": {
			brand,
			{
				Attribute:    "style",
				Label:        "Style",
				Kind:         models.FilterKindMulti,
				DerivedField: "fireplace_style",
			},
			{
				Attribute:    "fuel",
				Label:        "Fuel Type",
				Kind:         models.FilterKindMulti,
				DerivedField: "fuel_type",
			},
			price,
		},
		"refrigeration": {
			brand,
			{
				Attribute:    "capacity",
				Label:        "Capacity",
				Kind:         models.FilterKindMulti,
				DerivedField: "capacity_class",
				SortRule: &models.FacetSortRule{FixedOrder: []string{
					"Compact (under 4.5 cu ft)",
					"Mid-Size (4.5-7 cu ft)",
					"Large (7+ cu ft)",
				}},
			},
			{
				Attribute:   "configuration",
				Label:       "Configuration",
				Kind:        models.FilterKindSingle,
				SourceField: "attributes.configuration",
				Transform:   TitleCase,
			},
			price,
		},
		"patio-heating": {
			brand,
			{
				Attribute:    "heat_output",
				Label:        "Heat Output",
				Kind:         models.FilterKindMulti,
				DerivedField: "btu_class",
				SortRule:     &models.FacetSortRule{NumericAsc: true},
			},
			{
				Attribute:   "mount",
				Label:       "Mount Type",
				Kind:        models.FilterKindSingle,
				SourceField: "attributes.mount",
				Transform:   TitleCase,
			},
			price,
		},
		DefaultFilterSetKey: {
			brand,
			{
				Attribute:   "category",
				Label:       "Category",
				Kind:        models.FilterKindMulti,
				SourceField: FieldCategory,
			},
			price,
		},
	}
}

// DefaultPolicy carries the merchandising rules discovered with the system
// owner. The keyword and collection lists are configuration, not hard fact:
// override them from the policy file rather than editing code.
func DefaultPolicy() Policy {
	return Policy{
		ExcludedBrands:      []string{"Sample House", "Discontinued Imports"},
		ExcludedCollections: []string{"Gift Cards", "Internal QA"},
		NavGroups: map[string][]string{
			"outdoor-kitchen":  {"Outdoor Kitchens", "Built-In Grills", "Side Burners"},
			"backyard-comfort": {"Patio Heaters", "Fire Pits", "Outdoor Fireplaces"},
		},
		PreferredCollections: []string{"Bull Grills", "Bull Outdoor Products", "Bull Accessories"},
		BrandKeywords:        []string{"bull"},
	}
}
