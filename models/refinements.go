package models

// SortOrder is the fixed set of sort options the storefront exposes.
type SortOrder string

const (
	SortPopularity SortOrder = "popularity"
	SortNewest     SortOrder = "newest"
	SortPriceAsc   SortOrder = "price_asc"
	SortPriceDesc  SortOrder = "price_desc"
)

// RangeBounds is a half-open or closed numeric refinement. HasMin/HasMax
// distinguish "no bound" from a bound of zero.
type RangeBounds struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	HasMin bool    `json:"has_min"`
	HasMax bool    `json:"has_max"`
}

// RefinementState is the user's current filter/sort/page selection. It must
// round-trip losslessly through its URL encoding.
type RefinementState struct {
	Selected map[string][]string    `json:"selected,omitempty"` // attribute -> chosen values, selection order kept
	Ranges   map[string]RangeBounds `json:"ranges,omitempty"`
	Sort     SortOrder              `json:"sort"`
	Page     int                    `json:"page"` // 1-based
	Query    string                 `json:"q,omitempty"`
}

// NewRefinementState returns an empty state with defaults applied.
func NewRefinementState() RefinementState {
	return RefinementState{
		Selected: map[string][]string{},
		Ranges:   map[string]RangeBounds{},
		Sort:     SortPopularity,
		Page:     1,
	}
}
