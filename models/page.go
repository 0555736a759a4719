package models

// ScopeType identifies what kind of storefront page a search request runs on.
type ScopeType string

const (
	ScopeCategory    ScopeType = "category"
	ScopeBrand       ScopeType = "brand"
	ScopeCollection  ScopeType = "collection"
	ScopeNavGroup    ScopeType = "nav_group"
	ScopeOnSale      ScopeType = "on_sale"
	ScopeNewArrivals ScopeType = "new_arrivals"
	ScopeSearch      ScopeType = "search"
)

// PageContext is the resolved scope for a single search request, looked up by
// page handle from the pages store. FilterSetKey selects which vertical's
// filter list is active (grills, fireplaces, refrigeration, patio-heating).
type PageContext struct {
	Handle       string    `json:"handle"`
	DisplayName  string    `json:"display_name"`
	ScopeType    ScopeType `json:"scope_type"`
	ScopeValue   string    `json:"scope_value,omitempty"`
	FilterSetKey string    `json:"filter_set_key"`
}
