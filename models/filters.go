package models

// FilterKind is the closed set of filter widget types. Anything outside this
// set is rejected when the registry is validated at startup, so an unhandled
// kind is a boot failure instead of a silent no-op at request time.
type FilterKind string

const (
	FilterKindSingle FilterKind = "single_select"
	FilterKindMulti  FilterKind = "multi_select"
	FilterKindRange  FilterKind = "numeric_range"
)

// TransformFunc maps a raw bucket key to the label shown in the filter UI.
type TransformFunc func(raw string) string

// FacetSortRule overrides the default count-descending option order.
// FixedOrder pins values to an authored sequence (e.g. Small → XL); values not
// listed sort after the pinned ones. NumericAsc sorts by the numeric value of
// the raw key (price bands, BTU bands).
type FacetSortRule struct {
	FixedOrder []string `yaml:"fixed_order,omitempty"`
	NumericAsc bool     `yaml:"numeric_asc,omitempty"`
}

// FilterDefinition is one entry in the filter schema registry. Exactly one of
// SourceField and DerivedField must be set: SourceField reads a document field
// directly, DerivedField names a bucket-table rule evaluated at query time.
type FilterDefinition struct {
	Attribute    string         `json:"attribute" yaml:"attribute"`
	Label        string         `json:"label" yaml:"label"`
	Kind         FilterKind     `json:"kind" yaml:"kind"`
	SourceField  string         `json:"-" yaml:"source_field,omitempty"`
	DerivedField string         `json:"-" yaml:"derived_field,omitempty"`
	Group        string         `json:"group,omitempty" yaml:"group,omitempty"`
	Transform    TransformFunc  `json:"-" yaml:"-"`
	SortRule     *FacetSortRule `json:"-" yaml:"sort,omitempty"`
}

// FacetOption represents a single selectable filter option with its count
type FacetOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// FacetResult is the UI-ready option list for one filter after a query ran.
// For numeric_range filters Min/Max carry the observed bounds instead of
// discrete options.
type FacetResult struct {
	Attribute string        `json:"attribute"`
	Label     string        `json:"label"`
	Options   []FacetOption `json:"options"`
	Min       *float64      `json:"min,omitempty"`
	Max       *float64      `json:"max,omitempty"`
}

// AggBucket is one raw aggregation bucket as returned by the search index.
type AggBucket struct {
	Key   string `json:"key"`
	Count int    `json:"doc_count"`
}
