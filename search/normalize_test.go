package search

import (
	"testing"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
)

func optionValues(r models.FacetResult) []string {
	vals := make([]string, len(r.Options))
	for i, o := range r.Options {
		vals[i] = o.Value
	}
	return vals
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNormalize_DropsEmptyAndZeroBuckets(t *testing.T) {
	def := models.FilterDefinition{Attribute: "brand", Label: "Brand", Kind: models.FilterKindMulti, SourceField: FieldBrand}
	buckets := []models.AggBucket{
		{Key: "Bull", Count: 12},
		{Key: "", Count: 9},
		{Key: "Blaze", Count: 0},
		{Key: "Napoleon", Count: -1},
		{Key: "Bromic", Count: 3},
	}

	result := Normalize(def, buckets)
	if got := optionValues(result); !equalStrings(got, []string{"Bull", "Bromic"}) {
		t.Fatalf("options = %v, want [Bull Bromic]", got)
	}
	for _, opt := range result.Options {
		if opt.Count <= 0 {
			t.Errorf("option %q has count %d", opt.Value, opt.Count)
		}
		if opt.Value == "" {
			t.Errorf("empty option value survived")
		}
	}
}

func TestNormalize_TransformShapesLabelNotValue(t *testing.T) {
	def := models.FilterDefinition{
		Attribute:   "configuration",
		Label:       "Configuration",
		Kind:        models.FilterKindSingle,
		SourceField: "attributes.configuration",
		Transform:   TitleCase,
	}
	result := Normalize(def, []models.AggBucket{{Key: "built-in", Count: 4}})
	if len(result.Options) != 1 {
		t.Fatalf("got %d options", len(result.Options))
	}
	opt := result.Options[0]
	if opt.Value != "built-in" {
		t.Errorf("value = %q, refinements must keep the raw key", opt.Value)
	}
	if opt.Label != "Built-In" {
		t.Errorf("label = %q, want Built-In", opt.Label)
	}
}

func TestNormalize_DefaultOrderCountDescValueAsc(t *testing.T) {
	def := models.FilterDefinition{Attribute: "brand", Label: "Brand", Kind: models.FilterKindMulti, SourceField: FieldBrand}
	buckets := []models.AggBucket{
		{Key: "Napoleon", Count: 5},
		{Key: "Blaze", Count: 9},
		{Key: "Bull", Count: 9},
		{Key: "Bromic", Count: 2},
	}

	result := Normalize(def, buckets)
	want := []string{"Blaze", "Bull", "Napoleon", "Bromic"}
	if got := optionValues(result); !equalStrings(got, want) {
		t.Fatalf("options = %v, want %v", got, want)
	}

	// Same buckets in a different arrival order produce the same list, so the
	// UI never reshuffles between identical responses.
	shuffled := []models.AggBucket{buckets[2], buckets[0], buckets[3], buckets[1]}
	again := Normalize(def, shuffled)
	if got := optionValues(again); !equalStrings(got, want) {
		t.Fatalf("order depends on bucket arrival order: %v", got)
	}
}

func TestNormalize_FixedOrder(t *testing.T) {
	def := models.FilterDefinition{
		Attribute:    "size",
		Label:        "Grill Size",
		Kind:         models.FilterKindMulti,
		DerivedField: "size_category",
		SortRule:     &models.FacetSortRule{FixedOrder: []string{"Small", "Medium", "Large", "XL"}},
	}
	buckets := []models.AggBucket{
		{Key: "XL", Count: 40},
		{Key: "Small", Count: 1},
		{Key: "Oversize", Count: 7},
		{Key: "Large", Count: 22},
	}

	result := Normalize(def, buckets)
	// Ranked values first in authored order, then the stragglers by value.
	want := []string{"Small", "Large", "XL", "Oversize"}
	if got := optionValues(result); !equalStrings(got, want) {
		t.Fatalf("options = %v, want %v", got, want)
	}
}

func TestNormalize_NumericAsc(t *testing.T) {
	def := models.FilterDefinition{
		Attribute:    "heat_output",
		Label:        "Heat Output",
		Kind:         models.FilterKindMulti,
		DerivedField: "btu_class",
		SortRule:     &models.FacetSortRule{NumericAsc: true},
	}
	buckets := []models.AggBucket{
		{Key: "High Output (50K+ BTU)", Count: 3},
		{Key: "Compact (under 30K BTU)", Count: 8},
		{Key: "Standard (30-50K BTU)", Count: 5},
	}

	result := Normalize(def, buckets)
	// Ordered by the first number in each value (30, 30, 50); the 30-30 tie
	// breaks on the value string.
	want := []string{
		"Compact (under 30K BTU)",
		"Standard (30-50K BTU)",
		"High Output (50K+ BTU)",
	}
	if got := optionValues(result); !equalStrings(got, want) {
		t.Fatalf("options = %v, want %v", got, want)
	}
}

func TestNormalizeRange_Bounds(t *testing.T) {
	def := models.FilterDefinition{Attribute: "price", Label: "Price", Kind: models.FilterKindRange, SourceField: FieldPrice}

	min, max := 99.0, 4999.0
	result := NormalizeRange(def, &min, &max)
	if result.Min == nil || result.Max == nil || *result.Min != 99 || *result.Max != 4999 {
		t.Fatalf("bounds = %+v", result)
	}
	if result.Options == nil || len(result.Options) != 0 {
		t.Fatalf("range facets carry no options, got %v", result.Options)
	}

	empty := NormalizeRange(def, nil, nil)
	if empty.Min != nil || empty.Max != nil {
		t.Fatalf("empty scope must yield nil bounds: %+v", empty)
	}
}
